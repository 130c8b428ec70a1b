package workflow

import (
	"context"
	"log/slog"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/rohankatakam/autogippity/internal/urlcheck"
)

// ArchitectAgentName labels the solutions architect in status output
const ArchitectAgentName = "Solutions Architect"

// Architect decides the project scope and the external APIs it relies on
type Architect struct {
	deps   Deps
	logger *slog.Logger
}

// NewArchitect creates the solutions architect
func NewArchitect(deps Deps) *Architect {
	return &Architect{deps: deps, logger: slog.Default().With("component", "workflow", "agent", ArchitectAgentName)}
}

// DefineScope decodes the project scope from the project description
func (a *Architect) DefineScope(ctx context.Context, fs *FactSheet) error {
	if fs.ProjectDescription == "" {
		return errors.ValidationError("project description is required before scoping")
	}

	scope, err := agent.RequestDecoded[ProjectScope](ctx, a.deps.Invoker, agent.Task{
		Input:     fs.ProjectDescription,
		Template:  prompts.MustBuiltin(prompts.PrintProjectScope),
		Agent:     ArchitectAgentName,
		Operation: "Defining project scope",
	})
	if err != nil {
		return err
	}

	fs.ProjectScope = &scope
	return nil
}

// ListExternalURLs asks for external API URLs and keeps those that answer 200
func (a *Architect) ListExternalURLs(ctx context.Context, fs *FactSheet) error {
	urls, err := agent.RequestDecoded[[]string](ctx, a.deps.Invoker, agent.Task{
		Input:     fs.ProjectDescription,
		Template:  prompts.MustBuiltin(prompts.PrintSiteURLs),
		Agent:     ArchitectAgentName,
		Operation: "Getting external API URLs",
	})
	if err != nil {
		return err
	}

	reporter := a.deps.reporter()
	for _, u := range urls {
		reporter.Report(ArchitectAgentName, "Testing URL endpoint: "+u, agent.PhaseUnitTest)
	}

	kept := make([]string, 0, len(urls))
	for _, res := range urlcheck.CheckAll(ctx, a.deps.HTTPClient, urls, a.deps.CheckLimit) {
		if res.OK() {
			kept = append(kept, res.URL)
			continue
		}
		reporter.Report(ArchitectAgentName, "Excluding faulty URL: "+res.URL, agent.PhaseIssue)
		a.logger.Info("dropping url", "url", res.URL, "status_code", res.StatusCode, "error", res.Err)
	}

	fs.ExternalURLs = kept
	return nil
}
