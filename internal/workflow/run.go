package workflow

import (
	"context"
	"log/slog"
	"time"
)

// Step is one stage of the build
type Step struct {
	Name string
	Run  func(ctx context.Context, fs *FactSheet) error
}

// Steps returns the build stages in order for request
func Steps(deps Deps, request string) []Step {
	managing := NewManaging(deps)
	architect := NewArchitect(deps)
	backend := NewBackend(deps)

	return []Step{
		{"define goal", func(ctx context.Context, fs *FactSheet) error {
			return managing.DefineGoal(ctx, fs, request)
		}},
		{"define scope", architect.DefineScope},
		{"list external urls", func(ctx context.Context, fs *FactSheet) error {
			if fs.ProjectScope == nil || !fs.ProjectScope.IsExternalURLsRequired {
				return nil
			}
			return architect.ListExternalURLs(ctx, fs)
		}},
		{"write code", backend.WriteCode},
		{"improve code", backend.ImproveCode},
		{"list endpoints", backend.ListEndpoints},
	}
}

// Run executes every step in order and stops at the first error.
// The fact sheet built so far is returned in both cases.
func Run(ctx context.Context, deps Deps, request string) (*FactSheet, error) {
	logger := slog.Default().With("component", "workflow")
	fs := &FactSheet{}

	for _, step := range Steps(deps, request) {
		start := time.Now()
		logger.Info("step started", "step", step.Name)
		if err := step.Run(ctx, fs); err != nil {
			logger.Error("step failed", "step", step.Name, "error", err)
			return fs, err
		}
		logger.Info("step finished", "step", step.Name, "duration", time.Since(start))
	}

	return fs, nil
}
