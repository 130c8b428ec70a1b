package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/autogippity/internal/errors"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextRun - issuing completion requests requires credentials
	ValidationContextRun ValidationContext = "run"
	// ValidationContextBuild - the build workflow also writes artifacts
	ValidationContextBuild ValidationContext = "build"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Validate validates configuration for the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	switch ctx {
	case ValidationContextRun:
		c.validateAPI(result, true)
		c.validateInvoker(result)
	case ValidationContextBuild:
		c.validateAPI(result, true)
		c.validateInvoker(result)
		c.validatePaths(result)
	case ValidationContextAll:
		c.validateAPI(result, false)
		c.validateInvoker(result)
		c.validatePaths(result)
	}

	return result
}

func (c *Config) validateAPI(result *ValidationResult, required bool) {
	if c.API.OpenAIKey == "" {
		if required {
			result.AddError("OPEN_AI_KEY is required but not set. Set it via environment variable or run: autogippity configure")
		} else {
			result.AddWarning("OPEN_AI_KEY is not set")
		}
	}

	if c.API.OrganizationID == "" {
		if required {
			result.AddError("OPEN_AI_ORG is required but not set. Set it via environment variable or run: autogippity configure")
		} else {
			result.AddWarning("OPEN_AI_ORG is not set")
		}
	}

	if c.API.Model == "" {
		result.AddWarning("api.model is not set, will use default model")
	}

	if c.API.BaseURL != "" {
		if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			result.AddError("api.base_url is invalid: %q", c.API.BaseURL)
		}
	}

	if c.API.Timeout < 0 {
		result.AddError("api.timeout must not be negative, got %s", c.API.Timeout)
	}
}

func (c *Config) validateInvoker(result *ValidationResult) {
	if c.Invoker.AttemptTimeout < 0 {
		result.AddError("invoker.attempt_timeout must not be negative, got %s", c.Invoker.AttemptTimeout)
	}
	if c.Invoker.Concurrency <= 0 {
		result.AddWarning("invoker.concurrency is %d, will run tasks one at a time", c.Invoker.Concurrency)
	}
}

func (c *Config) validatePaths(result *ValidationResult) {
	if c.Paths.CodeTemplate == "" {
		result.AddError("paths.code_template is required but not set")
	}
	if c.Paths.ExecMain == "" {
		result.AddError("paths.exec_main is required but not set")
	}
	if c.Paths.APISchema == "" {
		result.AddError("paths.api_schema is required but not set")
	}
}

// RequireAPI checks if API configuration is valid and returns error if not
func (c *Config) RequireAPI() error {
	result := &ValidationResult{Valid: true}
	c.validateAPI(result, true)

	if result.HasErrors() {
		return errors.ConfigError(result.Error())
	}

	return nil
}
