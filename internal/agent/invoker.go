// Package agent runs prompt templates against a completion transport with a
// bounded retry: one primary attempt and at most one retry of the same message.
package agent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/rohankatakam/autogippity/internal/prompts"
)

// MaxAttempts is the attempt budget of one Invocation
const MaxAttempts = 2

// State is the lifecycle position of an Invocation
type State int

const (
	StateInit State = iota
	StateSent1
	StateFailed1
	StateSent2
	StateSuccess
	StateFatalFailure
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSent1:
		return "sent-1"
	case StateFailed1:
		return "failed-1"
	case StateSent2:
		return "sent-2"
	case StateSuccess:
		return "success"
	case StateFatalFailure:
		return "fatal-failure"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFatalFailure
}

// Task is one unit of work handed to the invoker
type Task struct {
	Input     string
	Template  prompts.Template
	Agent     string // e.g. "Managing Agent"
	Operation string // e.g. "Defining user requirements"
}

// Invocation records one execution of a Task. It is owned by the goroutine
// running it and is never reused.
type Invocation struct {
	ID         string
	Task       Task
	Message    llm.Message
	Attempts   int
	State      State
	Result     string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall time of the invocation
func (inv *Invocation) Duration() time.Duration {
	if inv.FinishedAt.IsZero() {
		return 0
	}
	return inv.FinishedAt.Sub(inv.StartedAt)
}

// Invoker executes tasks against a Completer. It holds no mutable state and
// is safe for concurrent use.
type Invoker struct {
	client         llm.Completer
	reporter       StatusReporter
	attemptTimeout time.Duration
	recorder       Recorder
	logger         *slog.Logger
}

// Recorder persists finished invocations
type Recorder interface {
	Record(inv *Invocation) error
}

// Option configures an Invoker
type Option func(*Invoker)

// WithReporter sets the status reporter notified before each attempt
func WithReporter(r StatusReporter) Option {
	return func(iv *Invoker) {
		if r != nil {
			iv.reporter = r
		}
	}
}

// WithAttemptTimeout bounds each attempt; zero disables the bound
func WithAttemptTimeout(d time.Duration) Option {
	return func(iv *Invoker) { iv.attemptTimeout = d }
}

// WithRecorder sets where finished invocations are recorded
func WithRecorder(r Recorder) Option {
	return func(iv *Invoker) { iv.recorder = r }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(iv *Invoker) {
		if l != nil {
			iv.logger = l
		}
	}
}

// NewInvoker creates an invoker on top of client
func NewInvoker(client llm.Completer, opts ...Option) *Invoker {
	iv := &Invoker{
		client:   client,
		reporter: NopReporter{},
		logger:   slog.Default().With("component", "agent"),
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Invoke augments the task's template with its input and sends the result.
// A failed first attempt is retried once with the identical message; a
// second failure returns a FatalInvocation error. The Invocation is returned
// in every case once the task was valid.
func (iv *Invoker) Invoke(ctx context.Context, task Task) (*Invocation, error) {
	if task.Template == nil {
		return nil, errors.ValidationError("task has no template").
			WithContext(errors.ContextAgent, task.Agent).
			WithContext(errors.ContextOperation, task.Operation)
	}

	inv := &Invocation{
		ID:        uuid.NewString(),
		Task:      task,
		Message:   prompts.Augment(task.Template, task.Input),
		State:     StateInit,
		StartedAt: time.Now(),
	}
	logger := iv.logger.With(
		"invocation_id", inv.ID,
		"agent", task.Agent,
		"operation", task.Operation,
		"template", task.Template.Name(),
	)

	var lastErr error
	for inv.Attempts < MaxAttempts {
		if inv.Attempts == 0 {
			inv.State = StateSent1
		} else {
			inv.State = StateSent2
		}
		inv.Attempts++

		iv.reporter.Report(task.Agent, task.Operation, PhaseAICall)
		logger.Debug("sending completion request", "attempt", inv.Attempts)

		result, err := iv.attempt(ctx, inv.Message)
		if err == nil {
			inv.State = StateSuccess
			inv.Result = result
			inv.FinishedAt = time.Now()
			logger.Debug("completion succeeded", "attempt", inv.Attempts, "duration", inv.Duration())
			iv.record(inv, logger)
			return inv, nil
		}

		lastErr = err
		if inv.Attempts == 1 {
			inv.State = StateFailed1
			if ctx.Err() != nil {
				logger.Warn("first attempt failed and context is done, not retrying", "error", err)
				break
			}
			logger.Warn("first attempt failed, retrying", "error", err, "status_code", llm.StatusCode(err))
		}
	}

	inv.State = StateFatalFailure
	inv.Err = errors.FatalInvocationError(lastErr, inv.Attempts).
		WithContext(errors.ContextAgent, task.Agent).
		WithContext(errors.ContextOperation, task.Operation).
		WithContext(errors.ContextTemplate, task.Template.Name())
	inv.FinishedAt = time.Now()
	logger.Error("invocation failed", "attempts", inv.Attempts, "error", lastErr)
	iv.record(inv, logger)
	return inv, inv.Err
}

func (iv *Invoker) record(inv *Invocation, logger *slog.Logger) {
	if iv.recorder == nil {
		return
	}
	if err := iv.recorder.Record(inv); err != nil {
		logger.Warn("failed to record invocation", "error", err)
	}
}

func (iv *Invoker) attempt(ctx context.Context, msg llm.Message) (string, error) {
	if iv.attemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, iv.attemptTimeout)
		defer cancel()
	}
	return iv.client.Complete(ctx, []llm.Message{msg})
}

// Request runs one task and returns the raw completion text
func (iv *Invoker) Request(ctx context.Context, input, agent, operation string, tmpl prompts.Template) (string, error) {
	inv, err := iv.Invoke(ctx, Task{
		Input:     input,
		Template:  tmpl,
		Agent:     agent,
		Operation: operation,
	})
	if err != nil {
		return "", err
	}
	return inv.Result, nil
}
