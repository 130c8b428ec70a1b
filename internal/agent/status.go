package agent

// Phase is the kind of progress notification an agent emits
type Phase int

const (
	// PhaseAICall precedes every completion attempt
	PhaseAICall Phase = iota
	// PhaseUnitTest marks testing of generated code
	PhaseUnitTest
	// PhaseIssue marks a problem found by an agent
	PhaseIssue
)

// String returns the label shown for the phase
func (p Phase) String() string {
	switch p {
	case PhaseAICall:
		return "ai-call"
	case PhaseUnitTest:
		return "unit-test"
	case PhaseIssue:
		return "issue"
	default:
		return "unknown"
	}
}

// StatusReporter receives progress notifications. Implementations must be
// safe for concurrent use.
type StatusReporter interface {
	Report(agent, operation string, phase Phase)
}

// NopReporter discards every notification
type NopReporter struct{}

// Report implements StatusReporter
func (NopReporter) Report(string, string, Phase) {}
