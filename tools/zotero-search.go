package tools

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/operations"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

type ZoteroSearchQuery struct {
	Query      string   `json:"query,omitempty"`      // Quick search text (searches title, creator, year)
	Tags       []string `json:"tags,omitempty"`       // Filter by tags
	Collection string   `json:"collection,omitempty"` // Filter by collection key (optional)
	Limit      int      `json:"limit,omitempty"`      // Max results (default 25)
}

type ZoteroSearchResponse struct {
	Items []ZoteroItemResult `json:"items"`
	Count int                `json:"count"`
}

type ZoteroItemResult struct {
	Key         string           `json:"key"`
	Title       string           `json:"title"`
	Creators    []string         `json:"creators,omitempty"`
	Attachments []AttachmentInfo `json:"attachments"`
}

type AttachmentInfo struct {
	Key              string `json:"key"` // Use this as zotero_id in emolit.summarize-pdf
	Filename         string `json:"filename"`
	SuggestedConcept string `json:"suggested_concept"`
	Status           string `json:"status,omitempty"` // Ledger status if already processed
}

func ZoteroSearchTool() *mcp.Tool {
	inputschema, err := jsonschema.For[ZoteroSearchQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "emolit.zotero-search",
		Description: "Search a Zotero library for items with PDF attachments. Each attachment comes with the concept name its filename suggests and, if it was summarized before, its ledger status. Pass the attachment key as zotero_id to emolit.summarize-pdf.",
		InputSchema: inputschema,
	}
}

func ZoteroSearchToolHandler(ctx context.Context, req *mcp.CallToolRequest, query ZoteroSearchQuery, store storage.Store, zcfg config.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *ZoteroSearchResponse, error) {
	log.Info("emolit.zotero-search tool called")

	if !zcfg.Enabled() {
		return nil, nil, fmt.Errorf("ZOTERO_API_KEY and ZOTERO_LIBRARY_ID environment variables must be set")
	}

	items, err := operations.FindPDFAttachments(ctx, zcfg.APIKey, zcfg.LibraryID, operations.ZoteroSearchParams{
		Query:      query.Query,
		Tags:       query.Tags,
		Collection: query.Collection,
		Limit:      query.Limit,
	}, log)
	if err != nil {
		return nil, nil, err
	}

	results := make([]ZoteroItemResult, len(items))
	for i, item := range items {
		results[i] = ZoteroItemResult{
			Key:      item.Key,
			Title:    item.Title,
			Creators: item.Creators,
		}
		for _, att := range item.Attachments {
			info := AttachmentInfo{
				Key:              att.Key,
				Filename:         att.Filename,
				SuggestedConcept: att.SuggestedConcept,
			}
			docID := storage.GenerateDocumentID(models.SourceInfo{ZoteroID: att.Key}, "")
			if doc, err := store.GetDocument(ctx, docID); err == nil {
				info.Status = doc.Status
			}
			results[i].Attachments = append(results[i].Attachments, info)
		}
	}

	return nil, &ZoteroSearchResponse{Items: results, Count: len(results)}, nil
}
