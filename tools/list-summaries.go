package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

type ListSummariesQuery struct {
	RunID  string `json:"run_id,omitempty" jsonschema:"Only list documents processed in this batch run"`
	Status string `json:"status,omitempty" jsonschema:"Only list documents with this status: summarized, degraded, skipped or failed"`
}

type ListSummariesResponse struct {
	Documents []SummaryListing `json:"documents"`
	Count     int              `json:"count"`
}

type SummaryListing struct {
	DocumentID  string          `json:"document_id"`
	RunID       string          `json:"run_id,omitempty"`
	ConceptName string          `json:"concept_name"`
	Status      string          `json:"status"`
	Strategy    models.Strategy `json:"strategy,omitempty"`
	Title       string          `json:"title"`
	Year        string          `json:"year,omitempty"`
	OutputPath  string          `json:"output_path,omitempty"`
	ProcessedAt string          `json:"processed_at"`
	Resources   []string        `json:"resources"`
}

func ListSummariesTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ListSummariesQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "emolit.list-summaries",
		Description: "List documents recorded in the summary ledger, most recent first, with the resource URIs to read their records and citations.",
		InputSchema: inputschema,
	}
}

func ListSummariesToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ListSummariesQuery, store storage.Store, log logger.Logger) (*mcp.CallToolResult, *ListSummariesResponse, error) {
	log.Info("emolit.list-summaries tool called")

	var docs []models.DocumentInfo
	var err error
	if query.RunID != "" {
		docs, err = store.ListByRun(ctx, query.RunID)
	} else {
		docs, err = store.ListDocuments(ctx)
	}
	if err != nil {
		log.Error("Failed to list documents: %v", err)
		return nil, nil, fmt.Errorf("failed to list documents: %w", err)
	}

	listings := []SummaryListing{}
	for i := range docs {
		doc := &docs[i]
		if query.Status != "" && doc.Status != query.Status {
			continue
		}
		listings = append(listings, SummaryListing{
			DocumentID:  doc.DocumentID,
			RunID:       doc.RunID,
			ConceptName: doc.ConceptName,
			Status:      doc.Status,
			Strategy:    doc.Strategy,
			Title:       doc.Citation.Title,
			Year:        doc.Citation.Year,
			OutputPath:  doc.OutputPath,
			ProcessedAt: doc.ProcessedAt.Format(time.RFC3339),
			Resources:   storage.CalculateResourcePaths(doc),
		})
	}

	return nil, &ListSummariesResponse{Documents: listings, Count: len(listings)}, nil
}
