package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/config"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/llm"
	"github.com/rohankatakam/autogippity/internal/output"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/rohankatakam/autogippity/internal/storage"
	"github.com/rohankatakam/autogippity/internal/workflow"
)

// signalContext is cancelled on SIGINT/SIGTERM
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// resolveCredentials fills a missing key or organization from the
// credential chain (env, keychain, credentials file, prompt) and then
// requires both to be present.
func resolveCredentials() error {
	if cfg.API.OpenAIKey == "" || cfg.API.OrganizationID == "" {
		cm := config.NewCredentialManager()
		if cfg.API.OpenAIKey == "" {
			if key, err := cm.GetAPIKey(); err == nil {
				cfg.API.OpenAIKey = key
			}
		}
		if cfg.API.OrganizationID == "" {
			if org, err := cm.GetOrganizationID(); err == nil {
				cfg.API.OrganizationID = org
			}
		}
	}
	return cfg.RequireAPI()
}

func newClient() (*llm.Client, error) {
	if err := resolveCredentials(); err != nil {
		return nil, err
	}
	return llm.NewClient(llm.Options{
		APIKey:         cfg.API.OpenAIKey,
		OrganizationID: cfg.API.OrganizationID,
		Model:          cfg.API.Model,
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
	}), nil
}

// newInvoker wires the client, console reporter and journal. The returned
// func releases the journal.
func newInvoker(reporter agent.StatusReporter) (*agent.Invoker, func(), error) {
	client, err := newClient()
	if err != nil {
		return nil, nil, err
	}

	opts := []agent.Option{
		agent.WithReporter(reporter),
		agent.WithAttemptTimeout(cfg.Invoker.AttemptTimeout),
	}

	cleanup := func() {}
	if cfg.Paths.Journal != "" {
		journal, err := storage.OpenJournal(cfg.Paths.Journal)
		if err != nil {
			logger.Warn("journal unavailable, invocations will not be recorded", "error", err)
		} else {
			opts = append(opts, agent.WithRecorder(journal))
			cleanup = func() {
				if err := journal.Close(); err != nil {
					logger.Warn("failed to close journal", "error", err)
				}
			}
		}
	}

	return agent.NewInvoker(client, opts...), cleanup, nil
}

// loadLibrary returns the built-in templates plus any from the configured
// or given template file
func loadLibrary(extra string) (*prompts.Library, error) {
	lib := prompts.Builtin()
	for _, path := range []string{cfg.Paths.Templates, extra} {
		if path == "" {
			continue
		}
		if err := prompts.LoadInto(lib, path); err != nil {
			return nil, err
		}
		logger.Debug("loaded templates", "path", path)
	}
	return lib, nil
}

// newDeps builds the collaborators for workflow commands
func newDeps() (workflow.Deps, func(), error) {
	if err := resolveCredentials(); err != nil {
		return workflow.Deps{}, nil, err
	}
	if result := cfg.Validate(config.ValidationContextBuild); result.HasErrors() {
		return workflow.Deps{}, nil, errors.ConfigErrorf("invalid configuration:\n%s", result.Error())
	}

	reporter := output.NewConsoleReporter(os.Stdout, verbosity())
	iv, cleanup, err := newInvoker(reporter)
	if err != nil {
		return workflow.Deps{}, nil, err
	}

	return workflow.Deps{
		Invoker: iv,
		Store: storage.NewFileStore(storage.Paths{
			CodeTemplate: cfg.Paths.CodeTemplate,
			ExecMain:     cfg.Paths.ExecMain,
			APISchema:    cfg.Paths.APISchema,
		}),
		Reporter:   reporter,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		CheckLimit: cfg.Invoker.Concurrency,
	}, cleanup, nil
}
