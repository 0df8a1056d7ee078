package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/Epistemic-Technology/zotero/zotero"
)

// Attachment describes a Zotero attachment item
type Attachment struct {
	Key         string
	Filename    string
	ContentType string
	ParentTitle string
}

// IsPDF reports whether the attachment is a PDF by content type or extension
func (a Attachment) IsPDF() bool {
	return a.ContentType == "application/pdf" || strings.HasSuffix(strings.ToLower(a.Filename), ".pdf")
}

// FetchZoteroAttachment looks up an attachment item so its filename can name
// the concept. The parent item's title is included when there is one.
func FetchZoteroAttachment(ctx context.Context, zoteroID string, apiKey string, libraryID string) (*Attachment, error) {
	if zoteroID == "" || apiKey == "" || libraryID == "" {
		return nil, fmt.Errorf("zoteroID, apiKey, and libraryID are required")
	}

	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))

	item, err := client.Item(ctx, zoteroID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Zotero item %s: %w", zoteroID, err)
	}
	if item.Data.ItemType != "attachment" {
		return nil, fmt.Errorf("Zotero item %s is a %s, not an attachment", zoteroID, item.Data.ItemType)
	}

	attachment := &Attachment{
		Key:         item.Key,
		Filename:    item.Data.Filename,
		ContentType: item.Data.ContentType,
	}

	if item.Data.ParentItem != "" {
		parent, err := client.Item(ctx, item.Data.ParentItem, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch parent item %s: %w", item.Data.ParentItem, err)
		}
		attachment.ParentTitle = parent.Data.Title
	}

	return attachment, nil
}
