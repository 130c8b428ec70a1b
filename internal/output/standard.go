package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rohankatakam/autogippity/internal/workflow"
)

// StandardFormatter outputs a readable build summary
type StandardFormatter struct{}

func (f *StandardFormatter) Format(fs *workflow.FactSheet, w io.Writer) error {
	var sb strings.Builder

	sb.WriteString("═══════════════════════════════════════════════════════════════\n")
	sb.WriteString(fmt.Sprintf("Goal: %s\n", fallback(fs.ProjectDescription, "(not defined)")))

	if s := fs.ProjectScope; s != nil {
		sb.WriteString("\nScope:\n")
		sb.WriteString(fmt.Sprintf("  CRUD:            %s\n", yesNo(s.IsCRUDRequired)))
		sb.WriteString(fmt.Sprintf("  Login / logout:  %s\n", yesNo(s.IsUserLoginAndLogoutRequired)))
		sb.WriteString(fmt.Sprintf("  External APIs:   %s\n", yesNo(s.IsExternalURLsRequired)))
	}

	if len(fs.ExternalURLs) > 0 {
		sb.WriteString("\nExternal URLs:\n")
		for _, u := range fs.ExternalURLs {
			sb.WriteString(fmt.Sprintf("  • %s\n", u))
		}
	}

	if fs.BackendCode != "" {
		lines := strings.Count(fs.BackendCode, "\n") + 1
		sb.WriteString(fmt.Sprintf("\nBackend code: %d line%s\n", lines, pluralize(lines)))
	}

	if len(fs.APIEndpointSchema) > 0 {
		sb.WriteString(fmt.Sprintf("\nEndpoints (%d):\n", len(fs.APIEndpointSchema)))
		for _, r := range fs.APIEndpointSchema {
			sb.WriteString(fmt.Sprintf("  %-6s %s", strings.ToUpper(r.Method), r.Route))
			if r.IsRouteDynamic {
				sb.WriteString("  (dynamic)")
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("═══════════════════════════════════════════════════════════════\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// JSONFormatter outputs the fact sheet as indented JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(fs *workflow.FactSheet, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(fs)
}
