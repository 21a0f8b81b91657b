// SPDX-License-Identifier: MPL-2.0

// Package treefile loads command trees declared in CUE.
//
// A tree file names its handlers, checks, hooks, type parsers and cooldown
// key functions; a Bindings table resolves those names to Go values. Every
// unresolved name and malformed value is reported together:
//
//	loader := treefile.Loader{Bindings: bindings, Types: registry}
//	root, err := loader.Load("tree.cue")
//	if err != nil {
//	    return err
//	}
//	tree, err := commandtree.Build(root, commandtree.BuildOptions{})
package treefile
