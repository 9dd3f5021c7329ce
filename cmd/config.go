package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the servicedesk configuration file.",
	Long: `Create and display the servicedesk configuration file.

The configuration holds:
- server.port and storage.db_path for the web form
- sheet.spreadsheet_id / sheet_name / credentials_file for the Google Sheet
- defaults.priority / technician / status stamped on every request
- users[].username / password / technician / admin for sign-in`,
	Example: `
  # Create default config in $HOME/.servicedesk.yaml
  servicedesk config create

  # Show active config and source file
  servicedesk config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
