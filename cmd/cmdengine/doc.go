// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cmdengine CLI.
//
// The CLI hosts a command engine over a CUE tree file: run executes one input
// line, repl reads lines from stdin, tree lists the loaded commands and config
// shows the effective configuration. Without a tree file the bundled demo tree
// is used.
package cmd
