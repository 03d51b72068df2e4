package main

import (
	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/server/endpoints"
)

var serverURL string

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Commands that call the running server",
	Long: `API commands call the running Convertx server via HTTP.

These commands require a running server (convertx serve).
Use --server to specify a custom server URL.

Examples:
  convertx api health                  # Check server health
  convertx api convert scan.pdf        # Upload a PDF for conversion
  convertx api jobs list               # List all jobs
  convertx api jobs status <id>        # Poll a job
  convertx api jobs download <id>      # Fetch the finished .docx`,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Job management commands",
}

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

func init() {
	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:8080", "Server URL",
	)

	// Health and upload at top level of api
	apiCmd.AddCommand((&endpoints.HealthEndpoint{}).Command(getServerURL))
	apiCmd.AddCommand((&endpoints.ConvertEndpoint{}).Command(getServerURL))

	// Jobs as subcommand group
	for _, ep := range endpoints.JobCommands() {
		if cmd := ep.Command(getServerURL); cmd != nil {
			jobsCmd.AddCommand(cmd)
		}
	}

	apiCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(apiCmd)
}
