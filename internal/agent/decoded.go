package agent

import (
	"context"

	"github.com/rohankatakam/autogippity/internal/decode"
	"github.com/rohankatakam/autogippity/internal/errors"
)

// RequestDecoded runs task and strictly decodes the completion into T.
// A decode failure is returned as is; it does not trigger another attempt.
func RequestDecoded[T any](ctx context.Context, iv *Invoker, task Task) (T, error) {
	var zero T

	inv, err := iv.Invoke(ctx, task)
	if err != nil {
		return zero, err
	}

	out, err := decode.Decode[T](inv.Result)
	if err != nil {
		iv.logger.Warn("response did not decode",
			"invocation_id", inv.ID,
			"agent", task.Agent,
			"operation", task.Operation,
			"error", err,
		)
		if e, ok := err.(*errors.Error); ok {
			e.WithContext(errors.ContextAgent, task.Agent).
				WithContext(errors.ContextOperation, task.Operation)
		}
		return zero, err
	}
	return out, nil
}
