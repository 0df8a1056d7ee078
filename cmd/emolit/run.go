package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/emolit/internal/batch"
	"github.com/Epistemic-Technology/emolit/internal/storage"
)

func runCmd() *cobra.Command {
	var input string
	var output string
	var noLedger bool
	var report bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Summarize every PDF in the input directory",
		Long: "Summarize every PDF in the input directory, one JSON file per document.\n" +
			"Per-document failures are logged and do not change the exit status.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(true)
			if err != nil {
				return err
			}
			if input != "" {
				cfg.InputDir = input
			}
			if output != "" {
				cfg.OutputDir = output
			}
			if noLedger {
				cfg.DBPath = ""
			}

			store, err := storage.OpenLedger(cfg.DBPath, log)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			ctx := cmd.Context()
			driver, closer, err := batch.NewFromConfig(ctx, cfg, store, log)
			if err != nil {
				return err
			}
			defer closer.Close()

			result, err := driver.Run(ctx)
			if err != nil {
				return err
			}

			if report {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "    ")
				return enc.Encode(result)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "directory of PDFs (overrides input_dir)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory for summary files (overrides output_dir)")
	cmd.Flags().BoolVar(&noLedger, "no-ledger", false, "do not record the run in the SQLite ledger")
	cmd.Flags().BoolVar(&report, "report", false, "print the run report as JSON to stdout")

	return cmd
}
