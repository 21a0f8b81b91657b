// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrSchema is returned when the embedded schema itself is broken.
	ErrSchema = errors.New("invalid embedded schema")

	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document too large")

	// ErrInvalidDocument is returned when a document fails to compile,
	// validate or decode.
	ErrInvalidDocument = errors.New("invalid document")
)

type (
	// Issue is one problem found in a document.
	Issue struct {
		// Path is a JSON-style path such as "modules[0].commands[1].name".
		Path    string
		Message string
	}

	// DecodeError lists every issue found in a document.
	// It wraps ErrInvalidDocument for errors.Is() compatibility.
	DecodeError struct {
		File   string
		Issues []Issue
	}

	// SizeError is returned when a document exceeds its size limit.
	// It wraps ErrTooLarge for errors.Is() compatibility.
	SizeError struct {
		File  string
		Size  int64
		Limit int64
	}
)

// Error implements the error interface for DecodeError.
func (e *DecodeError) Error() string {
	lines := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		lines = append(lines, is.String())
	}
	if len(lines) == 1 {
		return e.File + ": " + lines[0]
	}
	return fmt.Sprintf("%s: %d issues:\n  %s", e.File, len(lines), strings.Join(lines, "\n  "))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *DecodeError) Unwrap() error {
	return ErrInvalidDocument
}

// Error implements the error interface for SizeError.
func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: %d bytes exceeds the %d byte limit", e.File, e.Size, e.Limit)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *SizeError) Unwrap() error {
	return ErrTooLarge
}

// String renders the issue as "path: message", or just the message at the root.
func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// FormatError converts a CUE error into a *DecodeError for file.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}
	return newDecodeError(file, err)
}

func newDecodeError(file string, err error) *DecodeError {
	de := &DecodeError{File: file}
	all := cueerrors.Errors(err)
	if len(all) == 0 {
		de.Issues = []Issue{{Message: err.Error()}}
		return de
	}
	for _, e := range all {
		path := JSONPath(cueerrors.Path(e))
		msg := e.Error()
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		de.Issues = append(de.Issues, Issue{Path: path, Message: msg})
	}
	return de
}

// JSONPath renders CUE path selectors as "a.b[0].c".
func JSONPath(selectors []string) string {
	var b strings.Builder
	for i, s := range selectors {
		switch {
		case i > 0 && isIndex(s):
			b.WriteString("[" + s + "]")
		case i > 0:
			b.WriteString("." + s)
		default:
			b.WriteString(s)
		}
	}
	return b.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
