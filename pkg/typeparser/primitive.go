// SPDX-License-Identifier: MPL-2.0

package typeparser

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/exp/constraints"

	"github.com/invowk/cmdengine/pkg/commandtree"
)

func isPrimitive(tag commandtree.TypeTag) bool {
	_, _, known := parsePrimitive(tag, "")
	return known
}

// parsePrimitive runs the built-in parser for tag. known is false when tag is
// not a built-in primitive.
func parsePrimitive(tag commandtree.TypeTag, raw string) (value any, ok, known bool) {
	switch tag {
	case commandtree.TypeString:
		return raw, true, true
	case commandtree.TypeBool:
		v, ok := parseBool(raw)
		return v, ok, true
	case commandtree.TypeRune:
		v, ok := parseRune(raw)
		return v, ok, true
	case commandtree.TypeInt:
		v, ok := parseSigned[int](raw, strconv.IntSize)
		return v, ok, true
	case commandtree.TypeInt8:
		v, ok := parseSigned[int8](raw, 8)
		return v, ok, true
	case commandtree.TypeInt16:
		v, ok := parseSigned[int16](raw, 16)
		return v, ok, true
	case commandtree.TypeInt32:
		v, ok := parseSigned[int32](raw, 32)
		return v, ok, true
	case commandtree.TypeInt64:
		v, ok := parseSigned[int64](raw, 64)
		return v, ok, true
	case commandtree.TypeUint:
		v, ok := parseUnsigned[uint](raw, strconv.IntSize)
		return v, ok, true
	case commandtree.TypeUint8:
		v, ok := parseUnsigned[uint8](raw, 8)
		return v, ok, true
	case commandtree.TypeUint16:
		v, ok := parseUnsigned[uint16](raw, 16)
		return v, ok, true
	case commandtree.TypeUint32:
		v, ok := parseUnsigned[uint32](raw, 32)
		return v, ok, true
	case commandtree.TypeUint64:
		v, ok := parseUnsigned[uint64](raw, 64)
		return v, ok, true
	case commandtree.TypeFloat32:
		v, ok := parseFloat[float32](raw, 32)
		return v, ok, true
	case commandtree.TypeFloat64:
		v, ok := parseFloat[float64](raw, 64)
		return v, ok, true
	case commandtree.TypeDuration:
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		return d, err == nil, true
	default:
		return nil, false, false
	}
}

func parseSigned[T constraints.Signed](raw string, bitSize int) (T, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, bitSize)
	if err != nil {
		return 0, false
	}
	return T(v), true
}

func parseUnsigned[T constraints.Unsigned](raw string, bitSize int) (T, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, bitSize)
	if err != nil {
		return 0, false
	}
	return T(v), true
}

func parseFloat[T constraints.Float](raw string, bitSize int) (T, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), bitSize)
	if err != nil {
		return 0, false
	}
	return T(v), true
}

func parseBool(raw string) (bool, bool) {
	switch s := strings.TrimSpace(raw); {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	default:
		return false, false
	}
}

func parseRune(raw string) (rune, bool) {
	if utf8.RuneCountInString(raw) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == utf8.RuneError {
		return 0, false
	}
	return r, true
}
