// SPDX-License-Identifier: MPL-2.0

// Package config loads cmdengine configuration with Viper.
//
// Files are written in CUE (config.cue) or TOML (config.toml) and are
// validated against the same embedded CUE schema. Lookup order is an explicit
// path, then the user config directory, then the working directory.
// CMDENGINE_* environment variables override file values, with "." in a key
// replaced by "_" (CMDENGINE_ENGINE_SEPARATOR).
package config
