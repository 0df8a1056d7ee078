package operations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/Epistemic-Technology/emolit/internal/batch"
	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/documents"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// Processor is satisfied by *batch.Driver
type Processor interface {
	Process(ctx context.Context, job batch.Job) (*models.DocumentInfo, error)
}

// SummarizeRequest names exactly one source. ConceptName overrides the name
// derived from the source's filename.
type SummarizeRequest struct {
	Path        string
	URL         string
	ZoteroID    string
	ConceptName string
}

// SummarizeSource fetches a single PDF from a local path, URL or Zotero
// attachment and runs it through the same pipeline as a batch run.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - processor: Pipeline that extracts, summarizes, writes and records the document
//   - zcfg: Zotero credentials, only needed for Zotero sources
//   - req: The source and optional concept name
//   - log: Logger for recording operations
//
// Returns:
//   - doc: The processed document, including its record when one was written
//   - error: Any error fetching the source, or a failed model call
func SummarizeSource(ctx context.Context, processor Processor, zcfg config.ZoteroConfig, req SummarizeRequest, log logger.Logger) (*models.DocumentInfo, error) {
	source := models.SourceInfo{Path: req.Path, URL: req.URL, ZoteroID: req.ZoteroID}
	if n := countSet(req.Path, req.URL, req.ZoteroID); n != 1 {
		return nil, errors.New("exactly one of path, url or zotero_id must be provided")
	}

	name, err := sourceName(ctx, req, zcfg, log)
	if err != nil {
		return nil, err
	}

	local, cleanup, err := documents.Materialize(ctx, source, zcfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch PDF data: %w", err)
	}
	defer cleanup()

	return processor.Process(ctx, batch.Job{
		Path:        local,
		Name:        name,
		ConceptName: req.ConceptName,
		Source:      source,
	})
}

// sourceName picks the filename that decides the concept and output names
func sourceName(ctx context.Context, req SummarizeRequest, zcfg config.ZoteroConfig, log logger.Logger) (string, error) {
	switch {
	case req.Path != "":
		return filepath.Base(req.Path), nil
	case req.URL != "":
		u, err := url.Parse(req.URL)
		if err != nil {
			return "", fmt.Errorf("invalid url: %w", err)
		}
		if base := path.Base(u.Path); strings.HasSuffix(strings.ToLower(base), ".pdf") {
			return base, nil
		}
		return "document.pdf", nil
	default:
		if !zcfg.Enabled() {
			return "", errors.New("ZOTERO_API_KEY and ZOTERO_LIBRARY_ID must be set to fetch Zotero attachments")
		}
		attachment, err := documents.FetchZoteroAttachment(ctx, req.ZoteroID, zcfg.APIKey, zcfg.LibraryID)
		if err != nil {
			return "", err
		}
		if !attachment.IsPDF() {
			return "", fmt.Errorf("Zotero attachment %s is not a PDF (%s)", req.ZoteroID, attachment.ContentType)
		}
		if attachment.Filename == "" {
			log.Warn("Zotero attachment %s has no filename, using its key", req.ZoteroID)
			return req.ZoteroID + ".pdf", nil
		}
		return attachment.Filename, nil
	}
}

func countSet(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
