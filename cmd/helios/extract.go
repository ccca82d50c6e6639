package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssvibitha/Health-report-to-recipes/internal/api"
	"github.com/ssvibitha/Health-report-to-recipes/internal/extract"
)

var (
	extractSchema string
	extractStrict bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a schema record from saved model output",
	Long: `Extract a schema-conforming record from AI model output without a server.

Reads the file argument, or stdin when it is omitted or "-". Markdown code
fences and surrounding prose are ignored; the first JSON object is used.

Examples:
  helios extract answer.txt
  helios extract --schema medical_report --strict answer.txt
  pbpaste | helios extract`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, ok := extract.Lookup(extractSchema)
		if !ok {
			return fmt.Errorf("unknown schema %q (available: %s)", extractSchema, strings.Join(extract.SchemaNames(), ", "))
		}

		var raw []byte
		var err error
		if len(args) == 0 || args[0] == "-" {
			raw, err = io.ReadAll(cmd.InOrStdin())
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		var notes []string
		rec, err := extract.Extract(string(raw), schema, extract.WithStrict(extractStrict), extract.WithNotes(&notes))
		if err != nil {
			return err
		}
		for _, n := range notes {
			fmt.Fprintf(os.Stderr, "note: %s\n", n)
		}
		return api.Output(rec)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSchema, "schema", extract.ClinicalProfile.Name, "Schema name")
	extractCmd.Flags().BoolVar(&extractStrict, "strict", false, "Reject values that do not match the schema")

	rootCmd.AddCommand(extractCmd)
}
