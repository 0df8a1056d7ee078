package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/emolit/internal/extract"
)

func citationCmd() *cobra.Command {
	var engine string

	cmd := &cobra.Command{
		Use:   "citation <pdf>",
		Short: "Print the citation guessed from a PDF's text layer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(false)
			if err != nil {
				return err
			}
			if engine != "" {
				cfg.Extract.DigitalEngine = engine
			}

			reader, err := extract.NewTextReader(cfg.Extract.DigitalEngine)
			if err != nil {
				return err
			}
			result, err := extract.NewDigitalExtractor(reader, log).Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "    ")
			return enc.Encode(result.Citation)
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "text engine: mupdf or native (overrides extract.digital_engine)")

	return cmd
}
