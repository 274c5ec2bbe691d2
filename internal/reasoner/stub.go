package reasoner

import (
	"context"
	"fmt"
	"sync"

	"github.com/clemhq/clem/internal/schema"
)

// Stub is a deterministic reasoner for tests and offline runs.
//
// Outputs and failures are scripted per contract name. Every invocation is
// recorded in order, so tests can assert which calls were (or were not)
// made. Safe for concurrent use.
type Stub struct {
	mu      sync.Mutex
	outputs map[string]map[string]any
	fail    map[string]error
	calls   []Call
}

// Call records one Invoke invocation.
type Call struct {
	Prompt   string
	Contract string
}

// NewStub creates an empty stub. Unscripted contracts fail with a *Error.
func NewStub() *Stub {
	return &Stub{
		outputs: make(map[string]map[string]any),
		fail:    make(map[string]error),
	}
}

// Respond scripts the output returned for a contract name.
func (s *Stub) Respond(contract string, output map[string]any) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outputs[contract] = output
	return s
}

// Fail scripts a failure for a contract name.
func (s *Stub) Fail(contract string, err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[contract] = err
	return s
}

// Calls returns the recorded invocations in order.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CalledFor reports whether any invocation requested the given contract.
func (s *Stub) CalledFor(contract string) bool {
	for _, c := range s.Calls() {
		if c.Contract == contract {
			return true
		}
	}
	return false
}

// Invoke returns the scripted output or failure for the contract.
func (s *Stub) Invoke(ctx context.Context, prompt string, contract schema.Contract) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Contract: contract.Name, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Prompt: prompt, Contract: contract.Name})

	if err, ok := s.fail[contract.Name]; ok {
		return nil, &Error{Contract: contract.Name, Err: err}
	}
	if out, ok := s.outputs[contract.Name]; ok {
		// Shallow copy so callers cannot mutate the script.
		cp := make(map[string]any, len(out))
		for k, v := range out {
			cp[k] = v
		}
		return cp, nil
	}
	return nil, &Error{
		Contract: contract.Name,
		Err:      fmt.Errorf("no scripted output for contract %s", contract.Name),
	}
}

var _ Client = (*Stub)(nil)
