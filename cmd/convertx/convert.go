package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/convert"
	"github.com/kumarraju1982/Convertx/internal/ledger"
)

var (
	convertOut    string
	convertEngine string
	convertQuiet  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.pdf>",
	Short: "Convert a scanned PDF locally, without a server",
	Long: `Convert a scanned PDF into a .docx file in-process.

Unlike "convertx api convert", this does not talk to a running server;
the whole pipeline runs inside this command.

Examples:
  convertx convert scan.pdf                       # writes scan.docx
  convertx convert scan.pdf --out report.docx
  convertx convert scan.pdf --engine remote`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if !convertQuiet {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))

		cfgMgr, err := config.NewManager(cfgFile)
		if err != nil {
			return err
		}

		store := ledger.NewStore(logger)
		orch := convert.New(cfgMgr.Get(), store, logger)

		inputPath := args[0]
		job := store.Create(filepath.Base(inputPath), convertEngine)

		opts := convert.Options{
			InputPath:  inputPath,
			OutputPath: convertOut,
			Engine:     convertEngine,
		}
		if !convertQuiet {
			opts.OnProgress = func(done, total int) {
				fmt.Fprintf(os.Stderr, "page %d/%d\n", done, total)
			}
		}

		res, err := orch.Run(cmd.Context(), job.ID, opts)
		if err != nil {
			return err
		}

		fmt.Printf("Saved %s\n", res.OutputPath)
		if res.PagesFailed > 0 {
			fmt.Printf("%d of %d pages could not be recognized:\n", res.PagesFailed, res.PagesProcessed)
			for _, e := range res.Errors {
				fmt.Printf("  page %d: %s: %v\n", e.Page, e.Kind, e.Err)
			}
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "f", "", "Output .docx path (default: input name with .docx extension)")
	convertCmd.Flags().StringVar(&convertEngine, "engine", "", "Recognition engine: tesseract or remote (default: config)")
	convertCmd.Flags().BoolVarP(&convertQuiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(convertCmd)
}
