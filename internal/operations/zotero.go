package operations

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/emolit/internal/batch"
	"github.com/Epistemic-Technology/emolit/internal/logger"
)

// ZoteroSearchParams contains parameters for searching a Zotero library.
type ZoteroSearchParams struct {
	Query      string   // Quick search text (searches title, creator, year)
	Tags       []string // Filter by tags
	Collection string   // Filter by collection key (optional)
	Limit      int      // Max results (default 25)
}

// ZoteroItemResult is a library item that has at least one PDF attachment
type ZoteroItemResult struct {
	Key         string
	Title       string
	Creators    []string
	Attachments []PDFAttachment
}

// PDFAttachment is a PDF file that can be passed to emolit.summarize-pdf
type PDFAttachment struct {
	Key              string // Use this as zotero_id in emolit.summarize-pdf
	Filename         string
	SuggestedConcept string
}

// FindPDFAttachments searches a Zotero library and keeps the items that carry
// PDF attachments, suggesting a concept name for each from its filename.
func FindPDFAttachments(ctx context.Context, apiKey, libraryID string, params ZoteroSearchParams, log logger.Logger) ([]ZoteroItemResult, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Zotero API key is required")
	}
	if libraryID == "" {
		return nil, fmt.Errorf("Zotero library ID is required")
	}

	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))

	queryParams := &zotero.QueryParams{
		Q:        params.Query,
		QMode:    "titleCreatorYear",
		Tag:      params.Tags,
		ItemType: []string{"-attachment"},
		Limit:    params.Limit,
		Sort:     "dateModified",
	}
	if queryParams.Limit == 0 {
		queryParams.Limit = 25
	}

	var items []zotero.Item
	var err error
	if params.Collection != "" {
		items, err = client.CollectionItems(ctx, params.Collection, queryParams)
	} else {
		items, err = client.Items(ctx, queryParams)
	}
	if err != nil {
		log.Error("Failed to search Zotero library: %v", err)
		return nil, fmt.Errorf("failed to search Zotero library: %w", err)
	}

	log.Info("Found %d items in Zotero library", len(items))

	results := make([]ZoteroItemResult, 0, len(items))
	for _, item := range items {
		children, err := client.Children(ctx, item.Key, nil)
		if err != nil {
			log.Error("Failed to retrieve children for item %s: %v", item.Key, err)
			continue
		}

		result := ZoteroItemResult{Key: item.Key, Title: item.Data.Title}
		for _, creator := range item.Data.Creators {
			if creator.Name != "" {
				result.Creators = append(result.Creators, creator.Name)
			} else if creator.FirstName != "" || creator.LastName != "" {
				result.Creators = append(result.Creators, joinName(creator.FirstName, creator.LastName))
			}
		}

		for _, child := range children {
			if child.Data.ItemType != "attachment" || child.Data.ContentType != "application/pdf" {
				continue
			}
			result.Attachments = append(result.Attachments, PDFAttachment{
				Key:              child.Key,
				Filename:         child.Data.Filename,
				SuggestedConcept: batch.ConceptName(child.Data.Filename),
			})
		}

		if len(result.Attachments) > 0 {
			results = append(results, result)
		}
	}

	log.Info("Returning %d items with PDF attachments", len(results))

	return results, nil
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
