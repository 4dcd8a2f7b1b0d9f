// Package executor runs a single piece of code with one stdin on an external
// code-execution provider and normalizes whatever comes back.
package executor

import (
	"context"
	"fmt"

	"github.com/CubeStar1/daa-code-sandbox-sub000/internal/domain/model"
)

const (
	RateLimitMessage    = "Rate limit exceeded. Please wait a moment and try again."
	NetworkErrorPrefix  = "Network Error: "
	RuntimeErrorPrefix  = "Runtime Error: "
	CompileErrorPrefix  = "Compilation Error: "
	InternalErrorPrefix = "Internal Error: "
	TimeLimitExceeded   = "Time Limit Exceeded"
)

// Result is the provider-independent outcome of one execution. Output is
// always displayable; hard failures also set Error.
type Result struct {
	Output        string   `json:"output"`
	Time          *float64 `json:"time,omitempty"`   // seconds
	Memory        *float64 `json:"memory,omitempty"` // kilobytes
	Error         *string  `json:"error,omitempty"`
	IsRateLimited bool     `json:"isRateLimited"`
}

func (r Result) Failed() bool { return r.Error != nil }

func (r Result) RuntimeMs() float64 {
	if r.Time == nil {
		return 0
	}
	return *r.Time * 1000
}

func (r Result) MemoryMb() float64 {
	if r.Memory == nil {
		return 0
	}
	return *r.Memory / 1024
}

// Executor never returns a Go error: transport and provider faults come back
// as a Result with Error set.
type Executor interface {
	Provider() model.ExecutionProvider
	Execute(ctx context.Context, code, stdin string, lang model.Language) Result
}

func errorResult(output string) Result {
	msg := output
	return Result{Output: output, Error: &msg}
}

func rateLimitedResult() Result {
	msg := RateLimitMessage
	return Result{Output: RateLimitMessage, Error: &msg, IsRateLimited: true}
}

func floatPtr(v float64) *float64 { return &v }

// Selector resolves a provider name to its executor.
type Selector struct {
	executors map[model.ExecutionProvider]Executor
	fallback  model.ExecutionProvider
}

func NewSelector(fallback model.ExecutionProvider, executors ...Executor) *Selector {
	s := &Selector{executors: make(map[model.ExecutionProvider]Executor, len(executors)), fallback: fallback}
	for _, e := range executors {
		s.executors[e.Provider()] = e
	}
	return s
}

// Select returns the executor for p; an empty p means the configured default.
func (s *Selector) Select(p model.ExecutionProvider) (Executor, error) {
	if p == "" {
		p = s.fallback
	}
	e, ok := s.executors[p]
	if !ok {
		return nil, fmt.Errorf("unknown execution provider %q", p)
	}
	return e, nil
}
