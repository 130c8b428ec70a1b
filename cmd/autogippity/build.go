package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/output"
	"github.com/rohankatakam/autogippity/internal/workflow"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [description...]",
	Short: "Turn a website request into webserver code and an endpoint schema",
	Long: `Runs the agent workflow:
  1. Managing agent      - states the goal
  2. Solutions architect - decides the scope and checks external URLs
  3. Backend developer   - writes, improves and documents the server code

The generated code is written to paths.exec_main and the endpoint schema
to paths.api_schema. The build stops at the first failing step.`,
	Example: `  autogippity build "I need a website that shows live crypto prices"
  autogippity build -o json "a todo app with login" > factsheet.json`,
	RunE: runBuild,
}

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Fix the generated webserver code using compiler output",
	Long: `Sends the saved backend code (paths.exec_main) and compiler errors to the
backend developer agent and overwrites the code with the fixed version.`,
	Example: `  go build ./... 2> errors.txt; autogippity fix --errors errors.txt
  go vet ./... 2>&1 | autogippity fix`,
	RunE: runFix,
}

func init() {
	fixCmd.Flags().String("errors", "", "file with compiler output (default: stdin)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	request, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	deps, cleanup, err := newDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fs, runErr := workflow.Run(ctx, deps, request)
	if runErr != nil && fs.ProjectDescription == "" {
		return runErr
	}

	if err := output.NewFormatter(verbosity()).Format(fs, cmd.OutOrStdout()); err != nil {
		return err
	}
	return runErr
}

func runFix(cmd *cobra.Command, args []string) error {
	errorOutput, err := readErrors(cmd)
	if err != nil {
		return err
	}

	deps, cleanup, err := newDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	code, err := deps.Store.ReadBackendCode(ctx)
	if err != nil {
		return err
	}

	fs := &workflow.FactSheet{BackendCode: code}
	if err := workflow.NewBackend(deps).FixCode(ctx, fs, errorOutput); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Fixed code written to %s\n", cfg.Paths.ExecMain)
	return nil
}

func readErrors(cmd *cobra.Command) (string, error) {
	path, _ := cmd.Flags().GetString("errors")
	if path == "" {
		return readInput(nil, cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.FileSystemErrorf(err, "failed to read %s", path).
			WithContext(errors.ContextPath, path)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.ValidationErrorf("%s is empty", path)
	}
	return string(data), nil
}
