// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultSizeLimit caps the size of a document handed to Decode (1 MiB).
const DefaultSizeLimit int64 = 1 << 20

type (
	decodeOptions struct {
		limit    int64
		concrete bool
		filename string
	}

	// Option configures Decode.
	Option func(*decodeOptions)
)

func defaultOptions() decodeOptions {
	return decodeOptions{
		limit:    DefaultSizeLimit,
		concrete: true,
		filename: "<input>",
	}
}

// WithSizeLimit overrides DefaultSizeLimit.
func WithSizeLimit(limit int64) Option {
	return func(o *decodeOptions) {
		o.limit = limit
	}
}

// WithConcrete controls whether every value must be concrete after
// unification. Defaults to true; config documents that leave fields unset
// turn it off.
func WithConcrete(concrete bool) Option {
	return func(o *decodeOptions) {
		o.concrete = concrete
	}
}

// WithFilename names the document in positions and error messages.
func WithFilename(name string) Option {
	return func(o *decodeOptions) {
		if name != "" {
			o.filename = name
		}
	}
}
