// SPDX-License-Identifier: MPL-2.0

package typeparser

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

var (
	// ErrRegistryFrozen is returned when registering after the registry was frozen.
	ErrRegistryFrozen = errors.New("type parser registry is frozen")
	// ErrDuplicateType is returned when a type tag is registered twice.
	ErrDuplicateType = errors.New("type already registered")
	// ErrInvalidEnum is returned for an enum with no members or repeated members.
	ErrInvalidEnum = errors.New("invalid enum definition")
	// ErrUnsupportedType is returned when no parser can handle a type tag.
	ErrUnsupportedType = errors.New("no type parser for type")
	// ErrUnparsable is returned by ParseLiteral when the text is not a valid value.
	ErrUnparsable = errors.New("value cannot be parsed")
)

type (
	// Registry is a type-tag keyed table of parsers and enum definitions.
	// It is safe for concurrent registration until frozen and read-only after.
	Registry struct {
		mu      sync.RWMutex
		frozen  bool
		parsers map[commandtree.TypeTag]commandtree.TypeParser
		enums   map[commandtree.TypeTag]*Enum
	}

	// UnsupportedTypeError is returned when a type tag has no parser.
	// It wraps ErrUnsupportedType for errors.Is() compatibility.
	UnsupportedTypeError struct {
		Type commandtree.TypeTag
	}
)

// Error implements the error interface for UnsupportedTypeError.
func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no type parser for type %q (register a parser or enum for it)", e.Type)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}

// NewRegistry creates an empty registry. Built-in primitives need no registration.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make(map[commandtree.TypeTag]commandtree.TypeParser),
		enums:   make(map[commandtree.TypeTag]*Enum),
	}
}

// Register adds a parser for tag. A registered parser shadows the built-in
// primitive parser of the same tag.
func (r *Registry) Register(tag commandtree.TypeTag, parser commandtree.TypeParser) error {
	if ok, errs := tag.IsValid(); !ok {
		return errs[0]
	}
	if parser == nil {
		return fmt.Errorf("register %q: nil parser", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, exists := r.parsers[tag]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, tag)
	}
	if _, exists := r.enums[tag]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, tag)
	}
	r.parsers[tag] = parser
	return nil
}

// RegisterEnum adds an enumeration type.
func (r *Registry) RegisterEnum(tag commandtree.TypeTag, members ...EnumMember) error {
	if ok, errs := tag.IsValid(); !ok {
		return errs[0]
	}
	enum, err := newEnum(tag, members)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, exists := r.parsers[tag]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, tag)
	}
	if _, exists := r.enums[tag]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateType, tag)
	}
	r.enums[tag] = enum
	return nil
}

// Freeze stops further registration. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Supports reports whether tag can be parsed without a parameter override.
func (r *Registry) Supports(tag commandtree.TypeTag) bool {
	if r != nil {
		r.mu.RLock()
		_, hasParser := r.parsers[tag]
		_, hasEnum := r.enums[tag]
		r.mu.RUnlock()
		if hasParser || hasEnum {
			return true
		}
	}
	return isPrimitive(tag)
}

// Enum returns the enum registered under tag.
func (r *Registry) Enum(tag commandtree.TypeTag) (*Enum, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[tag]
	return e, ok
}

// Types returns every tag with a registered parser or enum, sorted.
func (r *Registry) Types() []commandtree.TypeTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := slices.Collect(maps.Keys(r.parsers))
	tags = slices.AppendSeq(tags, maps.Keys(r.enums))
	slices.Sort(tags)
	return tags
}

// ParseLiteral converts text for tag without an execution context, using the
// built-in primitives and registered enums only. Tree files use it for
// declared default values. A nil registry parses primitives only.
func (r *Registry) ParseLiteral(tag commandtree.TypeTag, text string) (any, error) {
	if v, ok, known := parsePrimitive(tag, text); known {
		if !ok {
			return nil, fmt.Errorf("%w: %q as %s", ErrUnparsable, text, tag)
		}
		return v, nil
	}
	if enum, ok := r.Enum(tag); ok {
		if v, ok := enum.Parse(text, commandtree.ComparisonIgnoreCase); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %q as %s", ErrUnparsable, text, tag)
	}
	return nil, &UnsupportedTypeError{Type: tag}
}

func (r *Registry) lookup(tag commandtree.TypeTag) (commandtree.TypeParser, *Enum) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.parsers[tag], r.enums[tag]
}
