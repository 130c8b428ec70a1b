// Package mock provides a scripted llm.Completer for tests.
package mock

import (
	"context"
	"sync"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
)

// Reply is one scripted outcome
type Reply struct {
	Text string
	Err  error
}

// Completer returns scripted replies in order and records every call.
// When the script runs out the fallback is used. Safe for concurrent use.
type Completer struct {
	mu       sync.Mutex
	script   []Reply
	fallback func(messages []llm.Message) (string, error)
	calls    [][]llm.Message
}

// New returns a Completer that plays replies in order
func New(replies ...Reply) *Completer {
	return &Completer{script: replies}
}

// NewFunc returns a Completer that answers every call with fn
func NewFunc(fn func(messages []llm.Message) (string, error)) *Completer {
	return &Completer{fallback: fn}
}

// Text is a successful reply
func Text(s string) Reply {
	return Reply{Text: s}
}

// Fail is a transport failure reply
func Fail(msg string) Reply {
	return Reply{Err: errors.TransportError(nil, msg)}
}

// Complete implements llm.Completer
func (c *Completer) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append([]llm.Message(nil), messages...))
	var (
		next     Reply
		scripted bool
	)
	if len(c.script) > 0 {
		next, c.script = c.script[0], c.script[1:]
		scripted = true
	}
	fallback := c.fallback
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", errors.TransportError(err, "request cancelled")
	}
	if scripted {
		return next.Text, next.Err
	}
	if fallback != nil {
		return fallback(messages)
	}
	return "", errors.TransportError(nil, "mock: no scripted reply left")
}

// Calls returns a copy of the messages of every call so far
func (c *Completer) Calls() [][]llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]llm.Message, len(c.calls))
	copy(out, c.calls)
	return out
}

// CallCount returns how many calls were made
func (c *Completer) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}
