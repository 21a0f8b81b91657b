// SPDX-License-Identifier: MPL-2.0

// Package typeparser converts raw argument slices into typed values.
//
// A Registry maps type tags to parsers and enum definitions. Once handed to an
// engine it is frozen and wrapped in a Resolver, which applies the engine's
// comparison mode and absence nouns. Resolution order for a parameter is:
// the parameter's own parser, then the registry entry for its type tag, then
// the built-in primitive parsers, then registered enums.
package typeparser
