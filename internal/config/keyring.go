package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name in the OS keychain
	KeyringService = "AutoGippity"

	// KeyringAPIKeyItem is the key for the OpenAI API key
	KeyringAPIKeyItem = "openai-api-key"

	// KeyringOrganizationItem is the key for the OpenAI organization id
	KeyringOrganizationItem = "openai-organization"
)

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SaveAPIKey stores the API key in the OS keychain
// - macOS: Keychain Access.app → "AutoGippity" → "openai-api-key"
// - Windows: Credential Manager → "AutoGippity"
// - Linux: Secret Service (requires libsecret)
func (km *KeyringManager) SaveAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}
	return km.set(KeyringAPIKeyItem, apiKey)
}

// GetAPIKey retrieves the API key; a missing entry is not an error
func (km *KeyringManager) GetAPIKey() (string, error) {
	return km.get(KeyringAPIKeyItem)
}

// DeleteAPIKey removes the API key from the OS keychain
func (km *KeyringManager) DeleteAPIKey() error {
	return km.delete(KeyringAPIKeyItem)
}

// SaveOrganizationID stores the organization id in the OS keychain
func (km *KeyringManager) SaveOrganizationID(org string) error {
	if org == "" {
		return fmt.Errorf("organization id cannot be empty")
	}
	return km.set(KeyringOrganizationItem, org)
}

// GetOrganizationID retrieves the organization id; a missing entry is not an error
func (km *KeyringManager) GetOrganizationID() (string, error) {
	return km.get(KeyringOrganizationItem)
}

// DeleteOrganizationID removes the organization id from the OS keychain
func (km *KeyringManager) DeleteOrganizationID() error {
	return km.delete(KeyringOrganizationItem)
}

func (km *KeyringManager) set(item, value string) error {
	if err := keyring.Set(KeyringService, item, value); err != nil {
		km.logger.Error("failed to save to keychain", "item", item, "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}
	km.logger.Info("saved to keychain", "service", KeyringService, "item", item)
	return nil
}

func (km *KeyringManager) get(item string) (string, error) {
	value, err := keyring.Get(KeyringService, item)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to read from keychain", "item", item, "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}
	km.logger.Debug("retrieved from keychain", "item", item)
	return value, nil
}

func (km *KeyringManager) delete(item string) error {
	err := keyring.Delete(KeyringService, item)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete from keychain", "item", item, "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}
	return nil
}

// IsAvailable checks if OS keychain is available
// Returns false on headless systems (CI/CD) where keychain isn't available
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == nil || err == keyring.ErrNotFound {
		return true
	}
	km.logger.Debug("keychain not available", "error", err)
	return false
}

// KeySourceInfo describes where the API key is coming from
type KeySourceInfo struct {
	Source      string // "env", "keychain", "config", "none"
	Secure      bool
	Recommended string
}

// GetAPIKeySource determines where the API key is coming from
func (km *KeyringManager) GetAPIKeySource(cfg *Config) KeySourceInfo {
	if firstEnv("OPEN_AI_KEY", "OPENAI_API_KEY") != "" {
		return KeySourceInfo{
			Source:      "env",
			Secure:      true,
			Recommended: "Using environment variable (good for CI/CD)",
		}
	}

	if key, _ := km.GetAPIKey(); key != "" {
		return KeySourceInfo{
			Source:      "keychain",
			Secure:      true,
			Recommended: "Stored securely in OS keychain",
		}
	}

	if cfg.API.OpenAIKey != "" {
		return KeySourceInfo{
			Source:      "config",
			Secure:      false,
			Recommended: "Plaintext storage detected. Run: autogippity configure",
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		return KeySourceInfo{
			Source:      "env_file",
			Secure:      false,
			Recommended: "Using .env file (consider keychain for local dev)",
		}
	}

	return KeySourceInfo{
		Source:      "none",
		Recommended: "No API key configured. Run: autogippity configure",
	}
}

// MaskAPIKey masks an API key for display
// Shows first 7 chars and last 4 chars: "sk-proj...abc1"
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:7], apiKey[len(apiKey)-4:])
}
