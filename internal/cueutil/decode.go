// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against embedded schemas.
//
// Decoding compiles the schema, unifies the document with one of its
// definitions, validates the result and decodes it into a Go value. Every
// validation failure is reported with a JSON-style path into the document.
package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Decoded is a successfully decoded document.
type Decoded[T any] struct {
	// Value is the decoded Go value.
	Value *T
	// Unified is the validated CUE value, for callers that need fields the
	// Go type does not carry.
	Unified cue.Value
}

// Decode unifies data with the schema definition named by definition
// (for example "#Tree") and decodes the result into a T.
func Decode[T any](schema, data []byte, definition string, opts ...Option) (*Decoded[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if size := int64(len(data)); size > o.limit {
		return nil, &SizeError{File: o.filename, Size: size, Limit: o.limit}
	}

	cctx := cuecontext.New()
	schemaValue := cctx.CompileBytes(schema, cue.Filename("schema.cue"))
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("%w: definition %s: %w", ErrSchema, definition, err)
	}

	doc := cctx.CompileBytes(data, cue.Filename(o.filename))
	if err := doc.Err(); err != nil {
		return nil, newDecodeError(o.filename, err)
	}

	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return nil, newDecodeError(o.filename, err)
	}

	var out T
	if err := unified.Decode(&out); err != nil {
		return nil, newDecodeError(o.filename, err)
	}
	return &Decoded[T]{Value: &out, Unified: unified}, nil
}
