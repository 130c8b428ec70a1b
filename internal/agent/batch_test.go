package agent

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/rohankatakam/autogippity/internal/llm/mock"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colours struct {
	Colours []string `json:"colours"`
}

func TestRequestDecoded_Colours(t *testing.T) {
	client := mock.New(mock.Text(`["red","green","blue"]`))
	iv := NewInvoker(client)

	got, err := RequestDecoded[[]string](context.Background(), iv, colourTask())
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "green", "blue"}, got)
}

func TestRequestDecoded_DecodeFailureNotRetried(t *testing.T) {
	client := mock.New(mock.Text(`{"colours": ["red"], "extra": 1}`), mock.Text(`{"colours": ["red"]}`))
	iv := NewInvoker(client)

	got, err := RequestDecoded[colours](context.Background(), iv, colourTask())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDecode)
	assert.False(t, errors.IsFatal(err))
	assert.Empty(t, got.Colours)
	assert.Equal(t, 1, client.CallCount())
}

func TestRequestDecoded_TransportFailure(t *testing.T) {
	iv := NewInvoker(mock.New(mock.Fail("a"), mock.Fail("b")))

	_, err := RequestDecoded[colours](context.Background(), iv, colourTask())
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
}

func TestInvokeAll_KeepsOrder(t *testing.T) {
	client := mock.NewFunc(func(msgs []llm.Message) (string, error) {
		for _, line := range strings.Split(msgs[0].Content, "\n") {
			if i := strings.Index(line, "input to the function: "); i >= 0 {
				return strings.TrimSuffix(line[i+len("input to the function: "):], "."), nil
			}
		}
		return "", errors.TransportError(nil, "no input")
	})
	iv := NewInvoker(client)

	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{Input: fmt.Sprintf("task-%d", i), Template: prompts.Static("t", "t()")}
	}

	results, err := iv.InvokeAll(context.Background(), tasks, 3)
	require.NoError(t, err)
	require.Len(t, results, len(tasks))
	for i, inv := range results {
		require.NotNil(t, inv)
		assert.Equal(t, fmt.Sprintf("task-%d", i), inv.Result)
		assert.Equal(t, StateSuccess, inv.State)
	}
}

func TestInvokeAll_FirstFailureReturned(t *testing.T) {
	var calls atomic.Int32
	client := mock.NewFunc(func(msgs []llm.Message) (string, error) {
		calls.Add(1)
		if strings.Contains(msgs[0].Content, "bad") {
			return "", errors.TransportError(nil, "refused")
		}
		return "ok", nil
	})
	iv := NewInvoker(client)

	tasks := []Task{
		{Input: "bad", Template: prompts.Static("t", "t()")},
		{Input: "good", Template: prompts.Static("t", "t()")},
	}

	results, err := iv.InvokeAll(context.Background(), tasks, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFatalInvocation)
	require.Len(t, results, 2)
	require.NotNil(t, results[0])
	assert.Equal(t, StateFatalFailure, results[0].State)
	assert.Nil(t, results[1], "remaining task is cancelled")
	assert.Equal(t, int32(2), calls.Load())
}

func TestInvokeAll_Empty(t *testing.T) {
	results, err := NewInvoker(mock.New()).InvokeAll(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
