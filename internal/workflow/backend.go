package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/prompts"
)

// BackendAgentName labels the backend developer in status output
const BackendAgentName = "Backend Developer"

// Backend writes the server code and documents its endpoints
type Backend struct {
	deps Deps
}

// NewBackend creates the backend developer
func NewBackend(deps Deps) *Backend {
	return &Backend{deps: deps}
}

// WriteCode fills the code template for the project and saves the result
func (b *Backend) WriteCode(ctx context.Context, fs *FactSheet) error {
	tmpl, err := b.deps.Store.ReadCodeTemplate(ctx)
	if err != nil {
		return err
	}

	input := fmt.Sprintf("CODE_TEMPLATE: %s \n PROJECT_DESCRIPTION: %s \n", tmpl, fs)
	return b.generate(ctx, fs, input, prompts.PrintBackendWebserverCode, "Writing backend code")
}

// ImproveCode asks for a bug-fixed, complete version of the current code
func (b *Backend) ImproveCode(ctx context.Context, fs *FactSheet) error {
	if fs.BackendCode == "" {
		return errors.ValidationError("no backend code to improve")
	}

	input := fmt.Sprintf("CODE_TEMPLATE: %s \n PROJECT_DESCRIPTION: %s \n", fs.BackendCode, fs)
	return b.generate(ctx, fs, input, prompts.PrintImprovedWebserverCode, "Improving backend code")
}

// FixCode asks for a version of the current code without the reported errors
func (b *Backend) FixCode(ctx context.Context, fs *FactSheet, errorOutput string) error {
	if fs.BackendCode == "" {
		return errors.ValidationError("no backend code to fix")
	}

	input := fmt.Sprintf("BROKEN_CODE: %s \n ERROR_BUGS: %s \n THIS FUNCTION ONLY OUTPUTS CODE. JUST OUTPUT THE CODE.",
		fs.BackendCode, errorOutput)
	return b.generate(ctx, fs, input, prompts.PrintFixedCode, "Fixing backend code")
}

func (b *Backend) generate(ctx context.Context, fs *FactSheet, input, template, operation string) error {
	code, err := b.deps.Invoker.Request(ctx, input, BackendAgentName, operation, prompts.MustBuiltin(template))
	if err != nil {
		return err
	}

	if err := b.deps.Store.SaveBackendCode(ctx, code); err != nil {
		return err
	}
	fs.BackendCode = code
	return nil
}

// ListEndpoints extracts the REST endpoints of the backend code and saves them
func (b *Backend) ListEndpoints(ctx context.Context, fs *FactSheet) error {
	if fs.BackendCode == "" {
		return errors.ValidationError("no backend code to document")
	}

	routes, err := agent.RequestDecoded[[]RouteObject](ctx, b.deps.Invoker, agent.Task{
		Input:     fs.BackendCode,
		Template:  prompts.MustBuiltin(prompts.PrintRESTAPIEndpoints),
		Agent:     BackendAgentName,
		Operation: "Collecting API endpoints",
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(routes, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh, "failed to encode endpoint schema")
	}
	if err := b.deps.Store.SaveAPIEndpoints(ctx, string(data)); err != nil {
		return err
	}

	fs.APIEndpointSchema = routes
	return nil
}
