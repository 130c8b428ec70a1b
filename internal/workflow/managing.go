package workflow

import (
	"context"
	"strings"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/prompts"
)

// ManagingAgentName labels the managing agent in status output
const ManagingAgentName = "Managing Agent"

// Managing turns the user's request into the project goal
type Managing struct {
	deps Deps
}

// NewManaging creates the managing agent
func NewManaging(deps Deps) *Managing {
	return &Managing{deps: deps}
}

// DefineGoal summarises request into fs.ProjectDescription
func (m *Managing) DefineGoal(ctx context.Context, fs *FactSheet, request string) error {
	if strings.TrimSpace(request) == "" {
		return errors.ValidationError("project request is empty")
	}

	goal, err := m.deps.Invoker.Request(ctx, request, ManagingAgentName, "Defining user requirements",
		prompts.MustBuiltin(prompts.ConvertUserInputToGoal))
	if err != nil {
		return err
	}

	fs.ProjectDescription = strings.TrimSpace(goal)
	return nil
}
