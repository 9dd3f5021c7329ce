package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"servicedesk/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Write the example configuration to --configFile, the active config path, or
$HOME/.servicedesk.yaml (first match wins).

An existing file is never overwritten.`,
	Example: `
  # Create default config at $HOME/.servicedesk.yaml
  servicedesk config create

  # Create config at a custom path
  servicedesk --configFile ./servicedesk.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := writeExampleConfig(configPath)
	if err != nil {
		return err
	}
	if !created {
		fmt.Printf("Config file already exists at: %s\n", configPath)
		return nil
	}

	fmt.Printf("New config file created at: %s\n", configPath)
	fmt.Println("Set sheet.spreadsheet_id, credentials and users before running: servicedesk serve")
	return nil
}

func resolveConfigPath(flagValue, activePath string) (string, error) {
	for _, candidate := range []string{flagValue, activePath} {
		if strings.TrimSpace(candidate) != "" {
			return candidate, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".servicedesk.yaml"), nil
}

// writeExampleConfig reports false without touching path when it already exists.
// The file holds passwords, so it is created owner-readable only.
func writeExampleConfig(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleYAML()), 0o600); err != nil {
		return false, fmt.Errorf("write example config: %w", err)
	}
	return true, nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
