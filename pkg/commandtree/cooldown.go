// SPDX-License-Identifier: MPL-2.0

package commandtree

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCooldown is returned when a Cooldown definition has a non-positive
// amount or period.
var ErrInvalidCooldown = errors.New("invalid cooldown")

type (
	// KeyFunc maps an execution context to a cooldown bucket key. Returning
	// ok=false exempts the invocation from that cooldown.
	KeyFunc func(bucketType string, ec *ExecutionContext) (key string, ok bool)

	// Cooldown declares a fixed-window rate limit: Amount calls per Per, counted
	// separately for every key produced by Key (or the engine's default key
	// generator when Key is nil).
	Cooldown struct {
		// Amount is the number of calls allowed per window. Must be positive.
		Amount int
		// Per is the window length. Must be positive.
		Per time.Duration
		// BucketType is an arbitrary classification, e.g. "user" or "channel".
		BucketType string
		// Key overrides the engine's default key generator for this cooldown.
		Key KeyFunc
	}

	// InvalidCooldownError is returned when a Cooldown has invalid fields.
	// It wraps ErrInvalidCooldown for errors.Is() compatibility.
	InvalidCooldownError struct {
		Amount int
		Per    time.Duration
	}
)

// Error implements the error interface for InvalidCooldownError.
func (e *InvalidCooldownError) Error() string {
	return fmt.Sprintf("invalid cooldown: amount %d per %s (both must be positive)", e.Amount, e.Per)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidCooldownError) Unwrap() error {
	return ErrInvalidCooldown
}

// IsValid returns whether the cooldown has a positive amount and period,
// and a list of validation errors if it does not.
func (c *Cooldown) IsValid() (bool, []error) {
	if c.Amount <= 0 || c.Per <= 0 {
		return false, []error{&InvalidCooldownError{Amount: c.Amount, Per: c.Per}}
	}
	return true, nil
}

// String returns a short description such as "2/10s (user)".
func (c *Cooldown) String() string {
	if c.BucketType == "" {
		return fmt.Sprintf("%d/%s", c.Amount, c.Per)
	}
	return fmt.Sprintf("%d/%s (%s)", c.Amount, c.Per, c.BucketType)
}

// GlobalKey is a KeyFunc that puts every invocation in the same bucket.
func GlobalKey(string, *ExecutionContext) (string, bool) {
	return "", true
}
