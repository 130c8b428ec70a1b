package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rohankatakam/autogippity/internal/agent"
	"golang.org/x/term"
)

const (
	ansiReset   = "\033[0m"
	ansiRed     = "\033[31m"
	ansiGreen   = "\033[32m"
	ansiMagenta = "\033[35m"
	ansiCyan    = "\033[36m"
)

// ConsoleReporter prints agent status lines. Writes are serialized so
// concurrent invocations never interleave within a line.
type ConsoleReporter struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	quiet bool
}

// NewConsoleReporter writes to w, colouring output when w is a terminal
// and NO_COLOR is unset
func NewConsoleReporter(w io.Writer, level VerbosityLevel) *ConsoleReporter {
	return &ConsoleReporter{
		w:     w,
		color: supportsColor(w),
		quiet: level == VerbosityQuiet || level == VerbosityJSON,
	}
}

func supportsColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Report implements agent.StatusReporter
func (r *ConsoleReporter) Report(agentName, operation string, phase agent.Phase) {
	if r.quiet && phase == agent.PhaseAICall {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.color {
		fmt.Fprintf(r.w, "Agent: %s [%s]: %s\n", agentName, phase, operation)
		return
	}
	fmt.Fprintf(r.w, "%sAgent: %s: %s%s%s\n", ansiGreen, agentName, phaseColor(phase), operation, ansiReset)
}

func phaseColor(p agent.Phase) string {
	switch p {
	case agent.PhaseUnitTest:
		return ansiMagenta
	case agent.PhaseIssue:
		return ansiRed
	default:
		return ansiCyan
	}
}
