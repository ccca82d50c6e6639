package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/server/endpoints"
)

var (
	serverURL string
	sessionID string
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Helios server via HTTP.

These commands require a running server (helios serve).
Use --server to specify a custom server URL.

Most commands act on a login session. Log in once and export the
session it prints, or pass --session:

Examples:
  helios api auth signup -u alice -p secret
  eval $(helios api auth login -u alice -p secret)
  helios api reports analyze blood_test.pdf
  helios api kitchen recipes fridge.jpg pantry.jpg --cuisine Italian
  helios api history trends`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := rootCmd.PersistentPreRunE(cmd, args); err != nil {
			return err
		}
		api.SetSessionID(sessionID)
		return nil
	},
}

// commands returns the CLI commands of eps.
func commands(eps []api.Endpoint) []*cobra.Command {
	var cmds []*cobra.Command
	for _, ep := range eps {
		if cmd := ep.Command(getServerURL); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// group builds a subcommand group from endpoint commands.
func group(use, short string, eps []api.Endpoint) *cobra.Command {
	g := &cobra.Command{Use: use, Short: short}
	g.AddCommand(commands(eps)...)
	return g
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)
	apiCmd.PersistentFlags().StringVar(
		&sessionID, "session", os.Getenv("HELIOS_SESSION"), "Session ID (default: $HELIOS_SESSION)",
	)

	// Health, extraction and docs at top level of api
	apiCmd.AddCommand(commands(endpoints.HealthCommands())...)

	apiCmd.AddCommand(group("auth", "Sign up, log in and log out", endpoints.AuthCommands()))
	apiCmd.AddCommand(group("profile", "Active health profile commands", endpoints.ProfileCommands()))
	apiCmd.AddCommand(group("reports", "Medical report commands", endpoints.ReportCommands()))
	apiCmd.AddCommand(group("kitchen", "Recipe suggestion commands", endpoints.KitchenCommands()))
	apiCmd.AddCommand(group("history", "Report and recipe history commands", endpoints.HistoryCommands()))
	apiCmd.AddCommand(group("llmcalls", "LLM call history commands", endpoints.LLMCallCommands()))
	apiCmd.AddCommand(group("prompts", "Prompt template commands", endpoints.PromptCommands()))
	apiCmd.AddCommand(group("settings", "Configuration settings commands", endpoints.SettingsCommands()))

	rootCmd.AddCommand(apiCmd)
}
