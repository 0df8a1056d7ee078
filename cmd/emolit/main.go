package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:           "emolit",
		Short:         "Summarize academic PDFs into teen-friendly emotional-literacy explanations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("EMOLIT_CONFIG"), "path to a YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn, error or fatal")

	root.AddCommand(runCmd(), citationCmd(), bibtexCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment. Only commands that call
// a model validate it.
func loadConfig(validate bool) (config.Config, logger.Logger, error) {
	load := config.Read
	if validate {
		load = config.Load
	}
	cfg, err := load(configPath)
	if err != nil {
		return cfg, nil, err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}
