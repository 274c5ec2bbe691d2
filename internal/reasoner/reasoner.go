// Package reasoner provides the external reasoning client used by workflow
// nodes to produce structured values from natural-language prompts.
//
// The client contract is deliberately narrow: a prompt plus a structural
// contract in, a decoded JSON object out. The caller's contract determines
// what the client must return, which decouples workflow correctness from
// any specific provider. Returned objects are NOT validated here: the
// model is non-deterministic and may return well-formed-but-arbitrary
// output; the schema validator at the node boundary is the only defense.
//
// Implementations: OpenAI (production, any OpenAI-compatible endpoint) and
// Stub (deterministic, for tests and offline runs).
package reasoner

import (
	"context"
	"errors"
	"fmt"

	"github.com/clemhq/clem/internal/schema"
)

// Client produces a JSON object intended to satisfy the given contract.
//
// Invoke blocks until the provider responds, the context is cancelled, or
// the configured per-call timeout expires. Cancellation and timeout both
// surface as a *Error wrapping the context error.
type Client interface {
	Invoke(ctx context.Context, prompt string, contract schema.Contract) (map[string]any, error)
}

// Error reports a failed reasoner invocation: provider errors, timeouts,
// cancellation, or an unparseable response body.
type Error struct {
	// Contract names the contract that was requested.
	Contract string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("reasoner call for %s failed: %v", e.Contract, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsReasonerError reports whether err is (or wraps) a reasoner failure.
func IsReasonerError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}
