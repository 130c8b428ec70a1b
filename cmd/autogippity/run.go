package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/rohankatakam/autogippity/internal/agent"
	"github.com/rohankatakam/autogippity/internal/decode"
	"github.com/rohankatakam/autogippity/internal/errors"
	"github.com/rohankatakam/autogippity/internal/output"
	"github.com/rohankatakam/autogippity/internal/prompts"
	"github.com/rohankatakam/autogippity/internal/workflow"
	"github.com/spf13/cobra"
)

// decodeKinds are the shapes --decode and schema understand
var decodeKinds = []string{"scope", "urls", "routes"}

var runCmd = &cobra.Command{
	Use:   "run [input...]",
	Short: "Run one prompt template against the model",
	Long: `Augments a template with the given input (or stdin when no input is
given), sends it to the model with one retry on transport failure and prints
the result. With --decode the result is validated against the named shape
and printed as JSON. With --each every argument (or stdin line) is a separate
task; tasks run concurrently (invoker.concurrency) and print one JSON line
each, in input order.`,
	Example: `  autogippity run "I need a crypto price tracker"
  autogippity run --template print_project_scope --decode scope "build a blog"
  autogippity run --templates-file my_templates.yaml --template colours "three colours"
  autogippity run --each --template print_project_scope --decode scope "a blog" "a todo app"`,
	RunE: runTemplate,
}

var schemaCmd = &cobra.Command{
	Use:       "schema <scope|urls|routes>",
	Short:     "Print the JSON Schema a decoded result must satisfy",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: decodeKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "scope":
			return printSchema[workflow.ProjectScope](cmd.OutOrStdout())
		case "urls":
			return printSchema[[]string](cmd.OutOrStdout())
		default:
			return printSchema[[]workflow.RouteObject](cmd.OutOrStdout())
		}
	},
}

func init() {
	runCmd.Flags().StringP("template", "t", prompts.ConvertUserInputToGoal, "template name (see: autogippity templates)")
	runCmd.Flags().String("templates-file", "", "YAML file with additional templates")
	runCmd.Flags().String("decode", "", "decode the result as: "+strings.Join(decodeKinds, ", "))
	runCmd.Flags().Bool("each", false, "treat every argument (or stdin line) as a separate input and run them concurrently")
}

func runTemplate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("template")
	file, _ := cmd.Flags().GetString("templates-file")
	kind, _ := cmd.Flags().GetString("decode")
	each, _ := cmd.Flags().GetBool("each")

	if kind != "" && !slices.Contains(decodeKinds, kind) {
		return errors.ValidationErrorf("unknown --decode %q (want %s)", kind, strings.Join(decodeKinds, ", "))
	}

	var inputs []string
	if each {
		lines, err := readInputs(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		inputs = lines
	} else {
		input, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
		inputs = []string{input}
	}

	lib, err := loadLibrary(file)
	if err != nil {
		return err
	}
	tmpl, ok := lib.Lookup(name)
	if !ok {
		return errors.ValidationErrorf("unknown template %q (see: autogippity templates)", name)
	}

	iv, cleanup, err := newInvoker(output.NewConsoleReporter(os.Stderr, verbosity()))
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	if each {
		tasks := make([]agent.Task, len(inputs))
		for i, in := range inputs {
			tasks[i] = agent.Task{Input: in, Template: tmpl, Agent: "CLI", Operation: fmt.Sprintf("Running %s [%d/%d]", name, i+1, len(inputs))}
		}
		return runEach(ctx, iv, tasks, kind, out)
	}

	task := agent.Task{Input: inputs[0], Template: tmpl, Agent: "CLI", Operation: "Running " + name}

	switch kind {
	case "":
		inv, err := iv.Invoke(ctx, task)
		if err != nil {
			return err
		}
		logger.Debug("invocation finished", "invocation_id", inv.ID, "attempts", inv.Attempts, "duration", inv.Duration())
		_, err = fmt.Fprintln(out, inv.Result)
		return err
	case "scope":
		return decodeAndPrint[workflow.ProjectScope](ctx, iv, task, out)
	case "urls":
		return decodeAndPrint[[]string](ctx, iv, task, out)
	case "routes":
		return decodeAndPrint[[]workflow.RouteObject](ctx, iv, task, out)
	default:
		return errors.ValidationErrorf("unknown --decode %q (want %s)", kind, strings.Join(decodeKinds, ", "))
	}
}

// eachResult is one line of --each output
type eachResult struct {
	Input  string `json:"input"`
	Result any    `json:"result"`
}

// runEach fans tasks out at invoker.concurrency and prints one JSON line per
// input, in input order. Nothing is printed unless every task succeeds.
func runEach(ctx context.Context, iv *agent.Invoker, tasks []agent.Task, kind string, w io.Writer) error {
	invs, err := iv.InvokeAll(ctx, tasks, cfg.Invoker.Concurrency)
	if err != nil {
		return err
	}

	lines := make([]eachResult, len(invs))
	for i, inv := range invs {
		v, err := decodeKind(kind, inv.Result)
		if err != nil {
			return err
		}
		lines[i] = eachResult{Input: inv.Task.Input, Result: v}
	}

	enc := json.NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

// decodeKind decodes text as the --decode shape; no kind keeps the raw text
func decodeKind(kind, text string) (any, error) {
	switch kind {
	case "scope":
		return decode.Decode[workflow.ProjectScope](text)
	case "urls":
		return decode.Decode[[]string](text)
	case "routes":
		return decode.Decode[[]workflow.RouteObject](text)
	}
	return text, nil
}

// readInputs returns the arguments, or the non-empty stdin lines when there are none
func readInputs(args []string, stdin io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, errors.FileSystemError(err, "failed to read input from stdin")
	}
	var inputs []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			inputs = append(inputs, line)
		}
	}
	if len(inputs) == 0 {
		return nil, errors.ValidationError("no input given")
	}
	return inputs, nil
}

// readInput joins args, or reads stdin when there are none
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.FileSystemError(err, "failed to read input from stdin")
	}
	input := strings.TrimSpace(string(data))
	if input == "" {
		return "", errors.ValidationError("no input given")
	}
	return input, nil
}

func decodeAndPrint[T any](ctx context.Context, iv *agent.Invoker, task agent.Task, w io.Writer) error {
	v, err := agent.RequestDecoded[T](ctx, iv, task)
	if err != nil {
		return err
	}
	return writeJSON(w, v)
}

func printSchema[T any](w io.Writer) error {
	schema, err := decode.Schema[T]()
	if err != nil {
		return err
	}
	return writeJSON(w, schema)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
