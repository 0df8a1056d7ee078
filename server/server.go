package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/batch"
	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/resources"
	"github.com/Epistemic-Technology/emolit/tools"
)

// CreateServer builds the MCP server over the summary pipeline and ledger.
// The returned cleanup closes the ledger and the OCR engine.
func CreateServer(ctx context.Context, cfg config.Config, log logger.Logger) (*mcp.Server, func(), error) {
	if cfg.DBPath == "" {
		return nil, nil, errors.New("db_path is required for the MCP server")
	}
	store, err := storage.OpenLedger(cfg.DBPath, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	driver, closer, err := batch.NewFromConfig(ctx, cfg, store, log)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := closer.Close(); err != nil {
			log.Warn("Failed to close OCR engine: %v", err)
		}
		if err := store.Close(); err != nil {
			log.Warn("Failed to close ledger: %v", err)
		}
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "emolit", Version: "v0.1.0"}, nil)
	summaryResourceHandler := resources.NewSummaryResourceHandler(store)
	readSummary := func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return summaryResourceHandler.ReadResource(ctx, req.Params.URI)
	}

	mcp.AddTool(server, tools.SummarizePDFTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.SummarizePDFQuery) (*mcp.CallToolResult, *tools.SummarizePDFResponse, error) {
		result, response, err := tools.SummarizePDFToolHandler(ctx, req, query, driver, cfg.Zotero, log)
		if err == nil {
			publishResources(ctx, server, summaryResourceHandler, readSummary, log)
		}
		return result, response, err
	})

	mcp.AddTool(server, tools.GuessCitationTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.GuessCitationQuery) (*mcp.CallToolResult, *tools.GuessCitationResponse, error) {
		return tools.GuessCitationToolHandler(ctx, req, query, log)
	})

	mcp.AddTool(server, tools.ListSummariesTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ListSummariesQuery) (*mcp.CallToolResult, *tools.ListSummariesResponse, error) {
		return tools.ListSummariesToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.BibliographyExportTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.BibliographyExportQuery) (*mcp.CallToolResult, *tools.BibliographyExportResponse, error) {
		return tools.BibliographyExportToolHandler(ctx, req, query, store, log)
	})

	mcp.AddTool(server, tools.ZoteroSearchTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.ZoteroSearchQuery) (*mcp.CallToolResult, *tools.ZoteroSearchResponse, error) {
		return tools.ZoteroSearchToolHandler(ctx, req, query, store, cfg.Zotero, log)
	})

	// Template for summary records
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "summary://{documentId}",
		Name:        "summary-record",
		Description: "Teen-friendly summary record with the guessed citation attached",
		MIMEType:    "application/json",
	}, readSummary)

	// Template for guessed citations
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "summary://{documentId}/citation",
		Name:        "summary-citation",
		Description: "Citation guessed heuristically from the PDF text",
		MIMEType:    "application/json",
	}, readSummary)

	publishResources(ctx, server, summaryResourceHandler, readSummary, log)

	return server, cleanup, nil
}

// publishResources registers a concrete resource for every ledger document so
// clients can list them. Re-adding a URI replaces it.
func publishResources(ctx context.Context, server *mcp.Server, h *resources.SummaryResourceHandler, read mcp.ResourceHandler, log logger.Logger) {
	list, err := h.ListResources(ctx)
	if err != nil {
		log.Warn("Failed to list summary resources: %v", err)
		return
	}
	for _, r := range list {
		server.AddResource(r, read)
	}
	log.Debug("Published %d summary resources", len(list))
}
