// SPDX-License-Identifier: MPL-2.0

package typeparser

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

type (
	// EnumMember is one named value of an enumeration.
	EnumMember struct {
		Name  string
		Value int64
	}

	// EnumValue is the bound value of an enum parameter.
	EnumValue struct {
		Type  commandtree.TypeTag
		Name  string
		Value int64
	}

	// Enum is a registered enumeration type.
	Enum struct {
		tag     commandtree.TypeTag
		members []EnumMember
	}
)

func newEnum(tag commandtree.TypeTag, members []EnumMember) (*Enum, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: %s has no members", ErrInvalidEnum, tag)
	}
	for i, m := range members {
		if strings.TrimSpace(m.Name) == "" {
			return nil, fmt.Errorf("%w: %s member #%d has an empty name", ErrInvalidEnum, tag, i+1)
		}
		for _, prev := range members[:i] {
			if strings.EqualFold(prev.Name, m.Name) {
				return nil, fmt.Errorf("%w: %s member %q is repeated", ErrInvalidEnum, tag, m.Name)
			}
		}
	}
	return &Enum{tag: tag, members: slices.Clone(members)}, nil
}

// Members returns the enum's members in declaration order.
func (e *Enum) Members() []EnumMember {
	return slices.Clone(e.members)
}

// Parse resolves raw by member name under cmp, then by defined numeric value.
func (e *Enum) Parse(raw string, cmp commandtree.Comparison) (EnumValue, bool) {
	s := strings.TrimSpace(raw)
	for _, m := range e.members {
		if cmp.Equal(m.Name, s) {
			return EnumValue{Type: e.tag, Name: m.Name, Value: m.Value}, true
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return EnumValue{}, false
	}
	for _, m := range e.members {
		if m.Value == n {
			return EnumValue{Type: e.tag, Name: m.Name, Value: m.Value}, true
		}
	}
	return EnumValue{}, false
}

// String returns the member name.
func (v EnumValue) String() string {
	return v.Name
}
