package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/storage"
)

const scheme = "summary://"

// SummaryResourceHandler serves summary records and guessed citations from the ledger
type SummaryResourceHandler struct {
	store storage.Store
}

// NewSummaryResourceHandler creates a new summary resource handler
func NewSummaryResourceHandler(store storage.Store) *SummaryResourceHandler {
	return &SummaryResourceHandler{store: store}
}

// ListResources returns the resources of every stored document
func (h *SummaryResourceHandler) ListResources(ctx context.Context) ([]*mcp.Resource, error) {
	docs, err := h.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var resources []*mcp.Resource
	for i := range docs {
		doc := &docs[i]
		for _, uri := range storage.CalculateResourcePaths(doc) {
			name := fmt.Sprintf("%s (Summary)", doc.ConceptName)
			description := fmt.Sprintf("Teen-friendly summary of %q", doc.Citation.Title)
			if strings.HasSuffix(uri, "/citation") {
				name = fmt.Sprintf("%s (Citation)", doc.ConceptName)
				description = "Citation guessed heuristically from the PDF text"
			}
			resources = append(resources, &mcp.Resource{
				URI:         uri,
				Name:        name,
				Description: description,
				MIMEType:    "application/json",
			})
		}
	}

	return resources, nil
}

// ReadResource reads a specific resource by URI
func (h *SummaryResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	// Parse URI: summary://doc_id or summary://doc_id/citation
	if !strings.HasPrefix(uri, scheme) {
		return nil, fmt.Errorf("invalid URI scheme, expected %s", scheme)
	}

	docID, resourceType, _ := strings.Cut(strings.TrimPrefix(uri, scheme), "/")
	if docID == "" {
		return nil, fmt.Errorf("invalid URI, missing document ID")
	}

	doc, err := h.store.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	var content []byte
	switch resourceType {
	case "":
		if len(doc.Record) == 0 {
			return nil, fmt.Errorf("document %s has no summary (status: %s)", docID, doc.Status)
		}
		content = doc.Record
	case "citation":
		content, err = json.Marshal(doc.Citation)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal citation: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown resource type: %s", resourceType)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
