package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/browser"
	"github.com/rohankatakam/autogippity/internal/config"
	"github.com/spf13/cobra"
)

const apiKeysURL = "https://platform.openai.com/api-keys"

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive setup wizard (with OS keychain support)",
	Long: `Walk through AutoGippity configuration step-by-step with secure credential storage.

This will configure:
1. OpenAI API key (stored in OS keychain by default)
2. OpenAI organization id
3. Model selection
4. Artifact paths`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().Bool("open", false, "open the OpenAI API keys page in a browser")
}

func runConfigure(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔧 AutoGippity Configuration Wizard")
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)

	if open, _ := cmd.Flags().GetBool("open"); open {
		fmt.Fprintf(out, "🌐 Opening %s ...\n\n", apiKeysURL)
		if err := browser.OpenURL(apiKeysURL); err != nil {
			fmt.Fprintf(out, "⚠️  Could not open browser automatically. Please visit the URL above.\n\n")
		}
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	ask := func(prompt string) string {
		fmt.Fprint(out, prompt)
		response, _ := reader.ReadString('\n')
		return strings.TrimSpace(response)
	}

	homeDir, _ := os.UserHomeDir()
	configPath := cfgFile
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".autogippity", "config.yaml")
	}
	loadedCfg, err := config.Load(configPath)
	if err != nil {
		loadedCfg = config.Default()
	}

	cm := config.NewCredentialManager()
	km := cm.Keyring()
	keychainAvailable := km.IsAvailable()
	if !keychainAvailable {
		fmt.Fprintln(out, "⚠️  OS keychain not available (headless system or Linux without libsecret)")
		fmt.Fprintf(out, "   Credentials will be stored in %s instead.\n\n", cm.GetConfigPath())
	}

	var creds config.Credentials

	// Step 1: API key
	fmt.Fprintln(out, "Step 1/4: OpenAI API Key")
	fmt.Fprintln(out)
	sourceInfo := km.GetAPIKeySource(loadedCfg)
	keep := false
	if sourceInfo.Source != "none" && loadedCfg.API.OpenAIKey != "" {
		fmt.Fprintf(out, "Current: %s\n", config.MaskAPIKey(loadedCfg.API.OpenAIKey))
		fmt.Fprintf(out, "Source: %s\n", sourceInfo.Recommended)
		response := ask("Keep existing key? (Y/n): ")
		keep = response == "" || strings.ToLower(response) == "y"
	} else {
		fmt.Fprintf(out, "Get your key at: %s\n\n", apiKeysURL)
	}
	if !keep {
		apiKey := ask("Enter your OpenAI API key (starts with sk-...): ")
		if strings.HasPrefix(apiKey, "sk-") {
			creds.OpenAIAPIKey = apiKey
		} else {
			fmt.Fprintln(out, "⚠️  Invalid API key format (should start with sk-), skipping")
		}
	}
	fmt.Fprintln(out)

	// Step 2: organization
	fmt.Fprintln(out, "Step 2/4: OpenAI Organization")
	fmt.Fprintln(out)
	if loadedCfg.API.OrganizationID != "" {
		fmt.Fprintf(out, "Current: %s\n", loadedCfg.API.OrganizationID)
	}
	if org := ask("Enter organization id (org-...) or press Enter to keep current: "); org != "" {
		creds.OrganizationID = org
	}
	fmt.Fprintln(out)

	if creds.OpenAIAPIKey != "" || creds.OrganizationID != "" {
		if err := cm.SaveCredentials(creds); err != nil {
			return err
		}
		loadedCfg.API.UseKeychain = keychainAvailable
		if keychainAvailable {
			fmt.Fprintln(out, "✅ Credentials saved to OS keychain (secure)")
			fmt.Fprintf(out, "   📍 %s\n\n", getKeychainLocation())
		} else {
			fmt.Fprintf(out, "✅ Credentials saved to %s (mode 0600)\n\n", cm.GetConfigPath())
		}
	}

	// Step 3: model
	fmt.Fprintln(out, "Step 3/4: Model")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Current: %s\n", loadedCfg.API.Model)
	if model := ask("Model name or press Enter to keep current: "); model != "" {
		loadedCfg.API.Model = model
	}
	fmt.Fprintf(out, "✅ Using %s\n\n", loadedCfg.API.Model)

	// Step 4: save
	fmt.Fprintln(out, "Step 4/4: Save Configuration")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Code template: %s\n", loadedCfg.Paths.CodeTemplate)
	fmt.Fprintf(out, "Generated code: %s\n", loadedCfg.Paths.ExecMain)
	fmt.Fprintf(out, "API schema: %s\n", loadedCfg.Paths.APISchema)
	fmt.Fprintf(out, "Save to: %s\n", configPath)

	response := ask("Confirm? (Y/n): ")
	if response != "" && strings.ToLower(response) != "y" {
		fmt.Fprintln(out, "⏭️  Configuration not saved")
		return nil
	}

	if err := loadedCfg.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Fprintln(out, "✅ Configuration saved!")
	fmt.Fprintln(out)

	if reloaded, err := config.Load(configPath); err == nil {
		if result := reloaded.Validate(config.ValidationContextAll); result.HasErrors() {
			fmt.Fprintln(out, result.Error())
		}
	}

	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out, "🎯 Next Steps:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "   autogippity build \"I need a website that ...\"")
	fmt.Fprintf(out, "   (mode: %s)\n", cm.GetMode().Description())
	return nil
}

func getKeychainLocation() string {
	switch runtime.GOOS {
	case "darwin":
		return "macOS Keychain Access.app → '" + config.KeyringService + "'"
	case "windows":
		return "Windows Credential Manager → '" + config.KeyringService + "'"
	case "linux":
		return "Linux Secret Service (libsecret)"
	default:
		return "OS Keychain"
	}
}
