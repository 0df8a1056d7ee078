package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/emolit/internal/citations"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
	"github.com/Epistemic-Technology/emolit/tools"
)

func bibtexCmd() *cobra.Command {
	var runID string
	var out string

	cmd := &cobra.Command{
		Use:   "bibtex",
		Short: "Export the guessed citations in the ledger as BibTeX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(false)
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return errors.New("db_path is not set, there is no ledger to export")
			}

			store, err := storage.OpenLedger(cfg.DBPath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			var docs []models.DocumentInfo
			if runID != "" {
				docs, err = store.ListByRun(cmd.Context(), runID)
			} else {
				docs, err = store.ListDocuments(cmd.Context())
			}
			if err != nil {
				return err
			}

			entries, untitled := tools.BibliographyEntries(docs)
			for _, id := range untitled {
				log.Warn("Document %s has no guessed title", id)
			}
			content := citations.GenerateBibTeXFile(entries)

			if out == "" {
				_, err = fmt.Fprint(os.Stdout, content)
				return err
			}
			if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			log.Info("Wrote %d entries to %s", len(entries), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "only export documents from this run")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to a file instead of stdout")

	return cmd
}
