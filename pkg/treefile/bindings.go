// SPDX-License-Identifier: MPL-2.0

package treefile

import (
	"maps"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

// Bindings resolves the names used in a tree file to Go values.
//
// A bound Check or ParameterCheck keeps its own Name and Group unless the
// tree file overrides the group.
type Bindings struct {
	Handlers        map[string]commandtree.Handler
	Hooks           map[string]commandtree.Hook
	Checks          map[string]commandtree.Check
	ParameterChecks map[string]commandtree.ParameterCheck
	Parsers         map[string]commandtree.TypeParser
	Keys            map[string]commandtree.KeyFunc
}

// Merge returns a copy of b with every entry of other added, replacing
// entries with the same name.
func (b Bindings) Merge(other Bindings) Bindings {
	return Bindings{
		Handlers:        merged(b.Handlers, other.Handlers),
		Hooks:           merged(b.Hooks, other.Hooks),
		Checks:          merged(b.Checks, other.Checks),
		ParameterChecks: merged(b.ParameterChecks, other.ParameterChecks),
		Parsers:         merged(b.Parsers, other.Parsers),
		Keys:            merged(b.Keys, other.Keys),
	}
}

func merged[V any](a, b map[string]V) map[string]V {
	out := make(map[string]V, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
