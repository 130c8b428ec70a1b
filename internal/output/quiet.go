package output

import (
	"fmt"
	"io"

	"github.com/rohankatakam/autogippity/internal/workflow"
)

// QuietFormatter outputs a one-line summary
type QuietFormatter struct{}

func (f *QuietFormatter) Format(fs *workflow.FactSheet, w io.Writer) error {
	if fs.BackendCode == "" {
		_, err := fmt.Fprintf(w, "⚠️  build incomplete: %s\n", fallback(fs.ProjectDescription, "no goal defined"))
		return err
	}
	_, err := fmt.Fprintf(w, "✅ %s (%d endpoint%s)\n",
		fs.ProjectDescription, len(fs.APIEndpointSchema), pluralize(len(fs.APIEndpointSchema)))
	return err
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
