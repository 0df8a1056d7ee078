package main

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("EMOLIT_CONFIG"))
	if err != nil {
		panic(err)
	}

	// stdout carries the MCP protocol, so never log there
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		panic(err)
	}

	log.Info("Starting emolit MCP server")

	ctx := context.Background()
	srv, cleanup, err := server.CreateServer(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to create server: %v", err)
	}
	defer cleanup()

	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal("Server failed: %v", err)
	}
}
