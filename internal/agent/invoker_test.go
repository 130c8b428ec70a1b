package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/rohankatakam/autogippity/internal/llm/mock"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingReporter captures status notifications
type recordingReporter struct {
	mu      sync.Mutex
	entries []string
}

func (r *recordingReporter) Report(agent, operation string, phase Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, fmt.Sprintf("%s|%s|%s", agent, operation, phase))
}

func (r *recordingReporter) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

func colourTask() Task {
	return Task{
		Input:     "primary colours of light",
		Template:  prompts.Static("print_colours", "print_colours(topic: string) -> list of strings"),
		Agent:     "Test Agent",
		Operation: "Listing colours",
	}
}

func TestInvoke_FirstAttemptSucceeds(t *testing.T) {
	client := mock.New(mock.Text("ok"))
	reporter := &recordingReporter{}
	iv := NewInvoker(client, WithReporter(reporter))

	inv, err := iv.Invoke(context.Background(), colourTask())
	require.NoError(t, err)

	assert.Equal(t, "ok", inv.Result)
	assert.Equal(t, 1, inv.Attempts)
	assert.Equal(t, StateSuccess, inv.State)
	assert.NotEmpty(t, inv.ID)
	assert.Nil(t, inv.Err)
	assert.Equal(t, []string{"Test Agent|Listing colours|ai-call"}, reporter.Entries())

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, inv.Message, calls[0][0])
	assert.Equal(t, llm.RoleSystem, calls[0][0].Role)
}

func TestInvoke_RetrySucceeds(t *testing.T) {
	client := mock.New(mock.Fail("connection reset"), mock.Text("second"))
	reporter := &recordingReporter{}
	iv := NewInvoker(client, WithReporter(reporter))

	inv, err := iv.Invoke(context.Background(), colourTask())
	require.NoError(t, err)

	assert.Equal(t, "second", inv.Result)
	assert.Equal(t, 2, inv.Attempts)
	assert.Equal(t, StateSuccess, inv.State)
	assert.Len(t, reporter.Entries(), 2, "one notification per attempt")

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1], "retry sends the identical message")
}

func TestInvoke_BothAttemptsFail(t *testing.T) {
	client := mock.New(mock.Fail("boom 1"), mock.Fail("boom 2"), mock.Text("never"))
	iv := NewInvoker(client)

	inv, err := iv.Invoke(context.Background(), colourTask())
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
	assert.ErrorIs(t, err, errors.ErrTransport, "last diagnostic is kept as cause")
	assert.Contains(t, err.Error(), "boom 2")
	assert.Equal(t, 2, errors.Attempts(err))
	assert.True(t, errors.IsFatal(err))

	require.NotNil(t, inv)
	assert.Equal(t, StateFatalFailure, inv.State)
	assert.Empty(t, inv.Result)
	assert.Equal(t, 2, inv.Attempts)
	assert.Equal(t, err, inv.Err)
	assert.Equal(t, 2, client.CallCount(), "never more than two attempts")
}

func TestInvoke_NoRetryWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	client := mock.NewFunc(func([]llm.Message) (string, error) {
		cancel()
		return "", errors.TransportError(context.Canceled, "cancelled")
	})
	iv := NewInvoker(client)

	inv, err := iv.Invoke(ctx, colourTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
	assert.Equal(t, 1, inv.Attempts)
	assert.Equal(t, StateFatalFailure, inv.State)
	assert.Equal(t, 1, client.CallCount())
}

func TestInvoke_AttemptTimeout(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	client := mock.NewFunc(func([]llm.Message) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return "", errors.TransportError(context.DeadlineExceeded, "timed out")
		}
		return "late", nil
	})
	iv := NewInvoker(client, WithAttemptTimeout(50*time.Millisecond))

	inv, err := iv.Invoke(context.Background(), colourTask())
	require.NoError(t, err)
	assert.Equal(t, "late", inv.Result)
	assert.Equal(t, 2, inv.Attempts)
}

// deadlineCompleter blocks until the attempt context expires
type deadlineCompleter struct{}

func (deadlineCompleter) Complete(ctx context.Context, _ []llm.Message) (string, error) {
	<-ctx.Done()
	return "", errors.TransportError(ctx.Err(), "request timed out")
}

func TestInvoke_AttemptTimeoutBoundsEachAttempt(t *testing.T) {
	iv := NewInvoker(deadlineCompleter{}, WithAttemptTimeout(20*time.Millisecond))

	start := time.Now()
	inv, err := iv.Invoke(context.Background(), colourTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
	assert.Equal(t, 2, inv.Attempts)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestInvoke_MissingTemplate(t *testing.T) {
	iv := NewInvoker(mock.New())
	inv, err := iv.Invoke(context.Background(), Task{Input: "x"})
	require.Error(t, err)
	assert.Nil(t, inv)
	assert.ErrorIs(t, err, errors.ErrValidation)
}

func TestRequest(t *testing.T) {
	iv := NewInvoker(mock.New(mock.Text("build a website that tracks stock prices")))

	out, err := iv.Request(context.Background(),
		"Build me a web server for making stock price api requests.",
		"Managing Agent", "Defining user requirements",
		prompts.MustBuiltin(prompts.ConvertUserInputToGoal))
	require.NoError(t, err)
	assert.Equal(t, "build a website that tracks stock prices", out)

	_, err = NewInvoker(mock.New(mock.Fail("a"), mock.Fail("b"))).
		Request(context.Background(), "x", "A", "B", prompts.Static("t", "t()"))
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
}

func TestInvoke_ConcurrentIsolation(t *testing.T) {
	// echo the FUNCTION line so each caller can check it got its own answer
	client := mock.NewFunc(func(msgs []llm.Message) (string, error) {
		first := strings.SplitN(msgs[0].Content, "\n", 2)[0]
		return first, nil
	})
	iv := NewInvoker(client)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("tmpl_%d", i)
			task := Task{
				Input:    fmt.Sprintf("input-%d", i),
				Template: prompts.Static(name, name+"()"),
			}
			inv, err := iv.Invoke(context.Background(), task)
			if err != nil {
				errs <- err
				return
			}
			want := fmt.Sprintf("FUNCTION %s() ", name)
			if inv.Result != want {
				errs <- fmt.Errorf("task %d got %q, want %q", i, inv.Result, want)
				return
			}
			if !strings.Contains(inv.Message.Content, task.Input+".") {
				errs <- fmt.Errorf("task %d message lost its input", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, n, client.CallCount())
}

func TestState(t *testing.T) {
	assert.True(t, StateSuccess.Terminal())
	assert.True(t, StateFatalFailure.Terminal())
	assert.False(t, StateFailed1.Terminal())
	assert.Equal(t, "sent-2", StateSent2.String())
}
