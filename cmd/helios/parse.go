package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/analyzer"
	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/document"
	"github.com/ssvibitha/Health-report-to-recipes/internal/providers"
)

var parseOutput string

var parseCmd = &cobra.Command{
	Use:   "parse <report>",
	Short: "Parse a report into structured JSON without a server",
	Long: `Parse a PDF or text medical report into the medical report schema
with the default AI provider and write the result as JSON.

The output file defaults to storage.output_file from config, or
~/.helios/reports/medical_report.json. Quota errors and unusable model
answers are written to the file as {"error": "..."}.

Examples:
  helios parse blood_test.pdf
  helios parse notes.txt --out parsed.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

		h, err := getHome()
		if err != nil {
			return err
		}

		doc, err := document.LoadFile(args[0])
		if err != nil {
			return err
		}

		registry := providers.NewRegistry()
		registry.SetLogger(logger)
		registry.Reload(cfg.ToProviderRegistryConfig())
		client, err := registry.GetLLM(cfg.Defaults.LLMProvider)
		if err != nil {
			return fmt.Errorf("%w: set the API key for %s in your environment or .env", err, cfg.Defaults.LLMProvider)
		}

		a, err := analyzer.New(analyzer.Config{
			Client:         client,
			Logger:         logger,
			Mode:           cfg.ExtractionMode(),
			RepairAttempts: cfg.Defaults.RepairAttempts,
		})
		if err != nil {
			return err
		}

		if timeout := cfg.RequestTimeout(); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res, err := a.ParseReport(ctx, doc)
		if err != nil {
			return err
		}

		out := parseOutput
		if out == "" {
			out = h.Resolve(cfg.Storage.OutputFile, h.ReportPath())
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := api.WriteJSONFile(out, res.Output); err != nil {
			return err
		}

		logger.Info("report parsed", "file", doc.Name, "valid", res.Valid, "duration", res.Duration, "output", out)
		return api.Output(res)
	},
}

func init() {
	parseCmd.Flags().StringVar(&parseOutput, "out", "", "Output JSON file")

	rootCmd.AddCommand(parseCmd)
}
