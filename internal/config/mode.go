package config

import (
	"os"
	"strings"
)

// DeploymentMode decides where credentials may come from
type DeploymentMode string

const (
	// ModeDevelopment: source checkout, credentials usually in .env
	ModeDevelopment DeploymentMode = "development"
	// ModePackaged: installed binary, credentials from env, keychain or prompt
	ModePackaged DeploymentMode = "packaged"
	// ModeCI: pipeline, environment variables only and never a prompt
	ModeCI DeploymentMode = "ci"
)

var modeAliases = map[string]DeploymentMode{
	"development": ModeDevelopment,
	"dev":         ModeDevelopment,
	"packaged":    ModePackaged,
	"pkg":         ModePackaged,
	"production":  ModePackaged,
	"prod":        ModePackaged,
	"ci":          ModeCI,
	"cicd":        ModeCI,
}

// ciMarkers are variables set by common CI runners
var ciMarkers = []string{
	"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI",
	"CIRCLECI", "JENKINS_URL", "BUILDKITE", "TF_BUILD",
}

// ParseMode maps a mode name or alias to a DeploymentMode
func ParseMode(s string) (DeploymentMode, bool) {
	m, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	return m, ok
}

// DetectMode picks the mode from AUTOGIPPITY_MODE, then CI markers, then
// whether the working directory looks like a checkout
func DetectMode() DeploymentMode {
	if m, ok := ParseMode(os.Getenv("AUTOGIPPITY_MODE")); ok {
		return m
	}
	if isCI() {
		return ModeCI
	}
	for _, marker := range []string{".env", "go.mod"} {
		if _, err := os.Stat(marker); err == nil {
			return ModeDevelopment
		}
	}
	return ModePackaged
}

func isCI() bool {
	return firstEnv(ciMarkers...) != ""
}

func (m DeploymentMode) String() string {
	return string(m)
}

// AllowsInteractivePrompts is false only in CI
func (m DeploymentMode) AllowsInteractivePrompts() bool {
	return m != ModeCI
}

// Description is the label shown by configure
func (m DeploymentMode) Description() string {
	switch m {
	case ModeDevelopment:
		return "Local development (source checkout)"
	case ModePackaged:
		return "Packaged installation"
	case ModeCI:
		return "CI/CD pipeline"
	}
	return "Unknown mode"
}

// ConfigSource names where credentials are expected in this mode
func (m DeploymentMode) ConfigSource() string {
	switch m {
	case ModeDevelopment:
		return ".env file or environment variables"
	case ModeCI:
		return "environment variables only"
	}
	return "environment variables, keychain, or `autogippity configure`"
}
