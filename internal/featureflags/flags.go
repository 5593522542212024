// Package featureflags provides feature flag management for runtime
// configuration of planner behavior.
package featureflags

import (
	"time"
)

// Well-known feature flag keys.
const (
	// FlagConcurrentVerification resolves both route endpoints in parallel
	// during pre-flight verification. When off, start resolves before end.
	FlagConcurrentVerification = "planner.concurrent_verification"

	// FlagStaleResponseGuard discards search responses that complete after
	// a newer search was issued for the same endpoint. When off, the last
	// response to complete wins regardless of issue order.
	FlagStaleResponseGuard = "planner.stale_response_guard"
)

// Flag represents a feature flag with its current value.
type Flag struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// BoolValue returns the flag value as a boolean, or defaultValue if the
// flag is nil or not a boolean.
func (f *Flag) BoolValue(defaultValue bool) bool {
	if f == nil {
		return defaultValue
	}
	if b, ok := f.Value.(bool); ok {
		return b
	}
	return defaultValue
}
