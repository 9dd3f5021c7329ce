/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"servicedesk/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "servicedesk",
	Short: "Log IT service requests to a Google Sheet and export filtered reports.",
	Long: `
**********************************************
*              SERVICE DESK                  *
**********************************************

This CLI serves a small web form that appends service requests to a Google Sheet,
shows the logged requests filtered by date range and technician, and exports the
filtered rows (or per-day effort summaries) to Excel or CSV.

Google credentials are read from GOOGLE_CREDENTIALS_JSON (environment or .env file)
or from sheet.credentials_file in the configuration.
`,
	Example: `
  # Create configuration file
  servicedesk config create

  # Start the web form on the configured port
  servicedesk serve

  # Export one month of requests for a technician
  servicedesk export --from 2024-03-01 --to 2024-03-31 --technician Alice --output ./march.xlsx

  # Export per-day effort totals as CSV
  servicedesk export --from 2024-03-01 --to 2024-03-31 --mode summary --output ./effort.csv
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.servicedesk.yaml, then ./.servicedesk.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func configureLogging(debug bool) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	if debug {
		log.SetLevel(log.DebugLevel)
		return
	}
	log.SetLevel(log.InfoLevel)
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.WithError(err).Warn("could not load .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".servicedesk")
	}

	viper.SetEnvPrefix("SERVICEDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Debug("no config file found, create one with: servicedesk config create")
	}
}
