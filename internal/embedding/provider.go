package embedding

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no embedding backend is configured.
// Callers treat it as a signal to fall back to heuristic scoring, never as
// a user-visible failure.
var ErrUnavailable = errors.New("embedding provider unavailable")

// Provider converts text into a fixed-length numeric vector. Its absence is
// a normal operating mode for the rest of the system.
type Provider interface {
	// Available reports whether the provider is configured at all. When it
	// returns false, callers skip the embedding path entirely.
	Available() bool
	// Embed returns a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Disabled is a Provider that is never available. It is wired when no API
// token is configured so the ranking path degrades to heuristics.
type Disabled struct{}

// NewDisabled creates a Disabled provider
func NewDisabled() *Disabled {
	return &Disabled{}
}

func (*Disabled) Available() bool { return false }

func (*Disabled) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, ErrUnavailable
}
