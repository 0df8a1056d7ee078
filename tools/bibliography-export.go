package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/citations"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

type BibliographyExportQuery struct {
	DocumentIDs []string `json:"document_ids,omitempty"`
	RunID       string   `json:"run_id,omitempty"`
	Format      string   `json:"format,omitempty"` // Currently only "bibtex" is supported
}

type BibliographyExportResponse struct {
	Format        string   `json:"format"`
	Content       string   `json:"content"`
	DocumentCount int      `json:"document_count"`
	Untitled      []string `json:"untitled,omitempty"`
}

func BibliographyExportTool() *mcp.Tool {
	inputschema, err := jsonschema.For[BibliographyExportQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "emolit.bibliography-export",
		Description: "Export the guessed citations of summarized documents in BibTeX format. Select documents by document_ids or run_id; with neither, the whole ledger is exported. Entries are marked as guessed and should be checked before use.",
		InputSchema: inputschema,
	}
}

func BibliographyExportToolHandler(ctx context.Context, req *mcp.CallToolRequest, query BibliographyExportQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *BibliographyExportResponse, error) {
	log.Info("emolit.bibliography-export tool called")

	format := query.Format
	if format == "" {
		format = "bibtex"
	}
	if strings.ToLower(format) != "bibtex" {
		log.Error("Unsupported format: %s", format)
		return nil, nil, fmt.Errorf("unsupported format: %s (only 'bibtex' is supported)", format)
	}

	docs, err := selectDocuments(ctx, query, store)
	if err != nil {
		log.Error("Failed to load documents: %v", err)
		return nil, nil, err
	}

	entries, untitled := BibliographyEntries(docs)
	for _, id := range untitled {
		log.Warn("Document %s has no guessed title", id)
	}

	log.Info("Generated BibTeX file with %d entries", len(entries))

	return nil, &BibliographyExportResponse{
		Format:        format,
		Content:       citations.GenerateBibTeXFile(entries),
		DocumentCount: len(entries),
		Untitled:      untitled,
	}, nil
}

func selectDocuments(ctx context.Context, query BibliographyExportQuery, store storage.Store) ([]models.DocumentInfo, error) {
	if len(query.DocumentIDs) == 0 {
		if query.RunID != "" {
			return store.ListByRun(ctx, query.RunID)
		}
		return store.ListDocuments(ctx)
	}

	docs := make([]models.DocumentInfo, 0, len(query.DocumentIDs))
	for _, id := range query.DocumentIDs {
		doc, err := store.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get document %s: %w", id, err)
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// BibliographyEntries turns ledger documents into BibTeX entries. Documents
// that were never summarized are left out. Documents still titled "Untitled"
// are exported but their IDs are reported.
func BibliographyEntries(docs []models.DocumentInfo) ([]citations.Entry, []string) {
	var entries []citations.Entry
	var untitled []string
	for _, doc := range docs {
		if doc.Status == models.StatusSkipped || doc.Status == models.StatusFailed {
			continue
		}
		if doc.Citation.Title == "" || doc.Citation.Title == "Untitled" {
			untitled = append(untitled, doc.DocumentID)
		}
		entries = append(entries, citations.Entry{Citation: doc.Citation, ConceptName: doc.ConceptName})
	}
	return entries, untitled
}
