package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohankatakam/autogippity/internal/errors"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// CredentialManager handles credential retrieval with priority chain
// Priority: Environment Variables → Keychain → Credentials File → Interactive Prompt
type CredentialManager struct {
	mode       DeploymentMode
	keyring    *KeyringManager
	configPath string
	in         io.Reader
	out        io.Writer
}

// Credentials holds the provider credentials
type Credentials struct {
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	OrganizationID string `yaml:"openai_organization"`
}

// NewCredentialManager creates a new credential manager
func NewCredentialManager() *CredentialManager {
	homeDir, _ := os.UserHomeDir()
	return &CredentialManager{
		mode:       DetectMode(),
		keyring:    NewKeyringManager(),
		configPath: filepath.Join(homeDir, ".autogippity", "credentials.yaml"),
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// GetAPIKey retrieves the OpenAI API key using priority chain
func (cm *CredentialManager) GetAPIKey() (string, error) {
	return cm.resolve(
		[]string{"OPEN_AI_KEY", "OPENAI_API_KEY"},
		cm.keyring.GetAPIKey,
		func(c *Credentials) string { return c.OpenAIAPIKey },
		cm.promptForAPIKey,
		"OPEN_AI_KEY",
	)
}

// GetOrganizationID retrieves the OpenAI organization id using priority chain
func (cm *CredentialManager) GetOrganizationID() (string, error) {
	return cm.resolve(
		[]string{"OPEN_AI_ORG", "OPENAI_ORG_ID"},
		cm.keyring.GetOrganizationID,
		func(c *Credentials) string { return c.OrganizationID },
		cm.promptForOrganization,
		"OPEN_AI_ORG",
	)
}

func (cm *CredentialManager) resolve(
	envVars []string,
	fromKeychain func() (string, error),
	fromFile func(*Credentials) string,
	prompt func() (string, error),
	primaryEnv string,
) (string, error) {
	// 1. Environment variable (highest priority)
	if v := firstEnv(envVars...); v != "" {
		return v, nil
	}

	// 2. Keychain
	if cm.keyring.IsAvailable() {
		if v, err := fromKeychain(); err == nil && v != "" {
			return v, nil
		}
	}

	// 3. Credentials file
	if creds, err := cm.loadConfigFile(); err == nil {
		if v := fromFile(creds); v != "" {
			return v, nil
		}
	}

	// 4. Interactive prompt (never in CI)
	if cm.mode.AllowsInteractivePrompts() && isInteractive() {
		return prompt()
	}

	return "", errors.ConfigErrorf(
		"%s not found (%s mode expects %s). Set it via:\n"+
			"  1. Environment variable: export %s=...\n"+
			"  2. Run: autogippity configure (to set up keychain)\n"+
			"  3. Credentials file: %s",
		primaryEnv, cm.mode, cm.mode.ConfigSource(), primaryEnv, cm.configPath)
}

// SaveCredentials saves credentials to keychain (preferred) or credentials file (fallback)
func (cm *CredentialManager) SaveCredentials(creds Credentials) error {
	if cm.keyring.IsAvailable() {
		if creds.OpenAIAPIKey != "" {
			if err := cm.keyring.SaveAPIKey(creds.OpenAIAPIKey); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityHigh,
					"failed to save OpenAI API key to keychain")
			}
		}
		if creds.OrganizationID != "" {
			if err := cm.keyring.SaveOrganizationID(creds.OrganizationID); err != nil {
				return errors.Wrap(err, errors.ErrorTypeConfig, errors.SeverityHigh,
					"failed to save organization id to keychain")
			}
		}
		return nil
	}

	return cm.saveConfigFile(creds)
}

// loadConfigFile loads credentials from the credentials file
func (cm *CredentialManager) loadConfigFile() (*Credentials, error) {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return nil, err
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, err
	}

	return &creds, nil
}

// saveConfigFile merges creds into the credentials file, user-only permissions
func (cm *CredentialManager) saveConfigFile(creds Credentials) error {
	existing, err := cm.loadConfigFile()
	if err != nil {
		existing = &Credentials{}
	}
	if creds.OpenAIAPIKey != "" {
		existing.OpenAIAPIKey = creds.OpenAIAPIKey
	}
	if creds.OrganizationID != "" {
		existing.OrganizationID = creds.OrganizationID
	}

	if err := os.MkdirAll(filepath.Dir(cm.configPath), 0700); err != nil {
		return errors.FileSystemErrorf(err, "failed to create credentials directory")
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh, "failed to encode credentials")
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return errors.FileSystemErrorf(err, "failed to write %s", cm.configPath)
	}

	return nil
}

func (cm *CredentialManager) promptForAPIKey() (string, error) {
	fmt.Fprintln(cm.out, "\n⚠️  OpenAI API Key not found.")
	fmt.Fprintln(cm.out, "   Create one at: https://platform.openai.com/api-keys")
	fmt.Fprint(cm.out, "\nEnter OpenAI API Key: ")

	key, err := cm.readSecurely()
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.ConfigError("OpenAI API key is required")
	}
	if !strings.HasPrefix(key, "sk-") {
		return "", errors.ValidationError("OpenAI API key should start with 'sk-'")
	}

	cm.persist(Credentials{OpenAIAPIKey: key})
	return key, nil
}

func (cm *CredentialManager) promptForOrganization() (string, error) {
	fmt.Fprintln(cm.out, "\n⚠️  OpenAI organization id not found.")
	fmt.Fprintln(cm.out, "   Find it at: https://platform.openai.com/account/organization")
	fmt.Fprint(cm.out, "\nEnter OpenAI Organization ID: ")

	org, err := cm.readSecurely()
	if err != nil {
		return "", err
	}
	if org == "" {
		return "", errors.ConfigError("OpenAI organization id is required")
	}

	cm.persist(Credentials{OrganizationID: org})
	return org, nil
}

func (cm *CredentialManager) persist(creds Credentials) {
	if cm.keyring.IsAvailable() {
		if err := cm.SaveCredentials(creds); err == nil {
			fmt.Fprintln(cm.out, "✓ Saved to keychain")
		}
		return
	}
	if err := cm.saveConfigFile(creds); err == nil {
		fmt.Fprintf(cm.out, "✓ Saved to %s\n", cm.configPath)
	}
}

// readSecurely reads a secret without echoing when stdin is a terminal
func (cm *CredentialManager) readSecurely() (string, error) {
	if f, ok := cm.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytes, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cm.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	// Piped input
	line, err := bufio.NewReader(cm.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// isInteractive returns true if stdin is a terminal (not piped)
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// GetMode returns the current deployment mode
func (cm *CredentialManager) GetMode() DeploymentMode {
	return cm.mode
}

// GetConfigPath returns the path to the credentials file
func (cm *CredentialManager) GetConfigPath() string {
	return cm.configPath
}

// Keyring exposes the underlying keychain manager
func (cm *CredentialManager) Keyring() *KeyringManager {
	return cm.keyring
}

// HasCredentials checks if both key and organization can be resolved without prompting
func (cm *CredentialManager) HasCredentials() bool {
	has := func(env []string, kc func() (string, error), file func(*Credentials) string) bool {
		if firstEnv(env...) != "" {
			return true
		}
		if cm.keyring.IsAvailable() {
			if v, err := kc(); err == nil && v != "" {
				return true
			}
		}
		if creds, err := cm.loadConfigFile(); err == nil && file(creds) != "" {
			return true
		}
		return false
	}

	return has([]string{"OPEN_AI_KEY", "OPENAI_API_KEY"}, cm.keyring.GetAPIKey,
		func(c *Credentials) string { return c.OpenAIAPIKey }) &&
		has([]string{"OPEN_AI_ORG", "OPENAI_ORG_ID"}, cm.keyring.GetOrganizationID,
			func(c *Credentials) string { return c.OrganizationID })
}
