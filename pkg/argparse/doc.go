// SPDX-License-Identifier: MPL-2.0

// Package argparse splits the raw argument text of a matched command into one
// raw slice per parameter.
//
// Default is the built-in tokenizer: whitespace or the configured separator
// delimits tokens, quote pairs from a QuoteMap group text into one token, a
// remainder parameter takes the rest of the input verbatim, and a multiple
// parameter collects every remaining token. Shell is an alternative that
// applies POSIX shell word splitting and quoting rules.
//
// Type conversion of the resulting slices happens in package typeparser.
package argparse
