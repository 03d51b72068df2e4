package main

import (
	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/api"
	"github.com/kumarraju1982/Convertx/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "convertx",
	Short: "Convert scanned PDFs into editable Word documents",
	Long: `Convertx turns scanned, image-only PDFs into structured .docx files.

Each page is rendered to an image, run through OCR, and analyzed for
structure before assembly:
  - Headings inferred from relative text height
  - Bulleted and numbered lists from marker detection
  - Tables from repeated column alignment
  - Two-column pages flattened into reading order`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.convertx/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "convertx home directory (default: ~/.convertx)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
