package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"servicedesk/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values. Passwords and
inline credentials are masked.`,
	Example: `
  # Show active configuration
  servicedesk config show
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		}
		printConfig(os.Stdout, *cfg)
		return nil
	},
}

func printConfig(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "server.port: %d\n", cfg.Server.Port)
	fmt.Fprintf(w, "sheet.spreadsheet_id: %s\n", cfg.Sheet.SpreadsheetID)
	fmt.Fprintf(w, "sheet.sheet_name: %s\n", cfg.Sheet.SheetName)
	fmt.Fprintf(w, "sheet.credentials_file: %s\n", cfg.Sheet.CredentialsFile)
	fmt.Fprintf(w, "sheet.credentials_json: %s\n", mask(cfg.Sheet.CredentialsJSON))
	fmt.Fprintf(w, "storage.db_path: %s\n", cfg.Storage.DBPath)
	fmt.Fprintf(w, "defaults.priority: %s\n", cfg.Defaults.Priority)
	fmt.Fprintf(w, "defaults.technician: %s\n", cfg.Defaults.Technician)
	fmt.Fprintf(w, "defaults.status: %s\n", cfg.Defaults.Status)
	fmt.Fprintf(w, "users: %d\n", len(cfg.Users))
	for i, user := range cfg.Users {
		fmt.Fprintf(w, "users[%d].username: %s\n", i, user.Username)
		fmt.Fprintf(w, "users[%d].password: %s\n", i, mask(user.Password))
		fmt.Fprintf(w, "users[%d].technician: %s\n", i, user.Technician)
		fmt.Fprintf(w, "users[%d].admin: %t\n", i, user.Admin)
	}
}

func mask(secret string) string {
	if strings.TrimSpace(secret) == "" {
		return "(not set)"
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
