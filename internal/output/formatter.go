package output

import (
	"io"
	"os"
	"strings"

	"github.com/rohankatakam/autogippity/internal/workflow"
)

// Formatter renders a finished build
type Formatter interface {
	Format(fs *workflow.FactSheet, w io.Writer) error
}

// VerbosityLevel determines output detail
type VerbosityLevel int

const (
	VerbosityQuiet    VerbosityLevel = iota // One-line summary, no status lines
	VerbosityStandard                       // Status lines + readable summary
	VerbosityJSON                           // Machine-readable fact sheet
)

// NewFormatter creates appropriate formatter based on level
func NewFormatter(level VerbosityLevel) Formatter {
	switch level {
	case VerbosityQuiet:
		return &QuietFormatter{}
	case VerbosityJSON:
		return &JSONFormatter{}
	default:
		return &StandardFormatter{}
	}
}

// ParseVerbosity maps a flag value to a level
func ParseVerbosity(s string) (VerbosityLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiet", "q":
		return VerbosityQuiet, true
	case "standard", "":
		return VerbosityStandard, true
	case "json":
		return VerbosityJSON, true
	default:
		return VerbosityStandard, false
	}
}

// GetDefaultVerbosity returns appropriate default based on environment
func GetDefaultVerbosity() VerbosityLevel {
	if level, ok := ParseVerbosity(os.Getenv("AUTOGIPPITY_OUTPUT")); ok && os.Getenv("AUTOGIPPITY_OUTPUT") != "" {
		return level
	}
	return VerbosityStandard
}
