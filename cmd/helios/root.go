package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/config"
	"github.com/ssvibitha/Health-report-to-recipes/internal/home"
	"github.com/ssvibitha/Health-report-to-recipes/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "helios",
	Short: "Turn medical reports into personalised recipe suggestions",
	Long: `Helios reads medical reports (PDF or text), extracts a clinical profile
with an AI provider and suggests recipes that suit it from photos of your
kitchen ingredients.

It provides:
  - Report analysis into a structured clinical profile
  - Recipe suggestions from kitchen photos and cooking preferences
  - Per-session report and recipe history with lab marker trends
  - A standalone report parser that writes JSON to disk`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.helios/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "helios home directory (default: ~/.helios)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// API keys usually live in a .env file next to config.yaml
		_ = godotenv.Load()
		return api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

// getHome returns the home directory from --home.
func getHome() (*home.Dir, error) {
	return home.New(homeDir)
}

// loadConfig loads configuration from --config, falling back to the config
// file in the home directory when it exists.
func loadConfig() (*config.Manager, error) {
	path := cfgFile
	if path == "" && homeDir != "" {
		h, err := getHome()
		if err != nil {
			return nil, err
		}
		if h.ConfigExists() {
			path = h.ConfigPath()
		}
	}
	return config.NewManager(path)
}
