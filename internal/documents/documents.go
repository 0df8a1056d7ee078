// Package documents fetches PDFs from local paths, URLs and Zotero libraries
// and hands them to the extractors as files on disk.
package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Epistemic-Technology/zotero/zotero"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/pdf"
	"github.com/Epistemic-Technology/emolit/models"
)

// maxDownloadBytes caps URL and Zotero downloads
const maxDownloadBytes = 200 << 20

// GetData retrieves PDF bytes from a source and validates them
func GetData(ctx context.Context, sourceInfo models.SourceInfo, zcfg config.ZoteroConfig) ([]byte, error) {
	var data []byte
	var err error

	switch {
	case sourceInfo.Path != "":
		data, err = os.ReadFile(sourceInfo.Path)
	case sourceInfo.ZoteroID != "":
		if !zcfg.Enabled() {
			return nil, errors.New("ZOTERO_API_KEY and ZOTERO_LIBRARY_ID must be set to fetch Zotero attachments")
		}
		data, err = GetFromZotero(ctx, sourceInfo.ZoteroID, zcfg.APIKey, zcfg.LibraryID)
	case sourceInfo.URL != "":
		data, err = GetFromURL(ctx, sourceInfo.URL)
	default:
		return nil, errors.New("no source provided")
	}
	if err != nil {
		return nil, err
	}

	if _, err := pdf.Inspect(data); err != nil {
		return nil, fmt.Errorf("source is not a readable PDF: %w", err)
	}
	return data, nil
}

// Materialize makes a source available as a local file. Local paths are
// returned as-is; downloads are written to a temporary file that cleanup
// removes.
func Materialize(ctx context.Context, sourceInfo models.SourceInfo, zcfg config.ZoteroConfig, log logger.Logger) (path string, cleanup func(), err error) {
	noop := func() {}
	if sourceInfo.Path != "" {
		if _, err := pdf.InspectFile(sourceInfo.Path); err != nil {
			return "", noop, err
		}
		return sourceInfo.Path, noop, nil
	}

	data, err := GetData(ctx, sourceInfo, zcfg)
	if err != nil {
		return "", noop, err
	}

	f, err := os.CreateTemp("", "emolit-*.pdf")
	if err != nil {
		return "", noop, fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanup = func() {
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Failed to remove temporary file %s: %v", f.Name(), err)
		}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", noop, fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("failed to write temporary file: %w", err)
	}

	log.Debug("Downloaded %d bytes to %s", len(data), f.Name())
	return f.Name(), cleanup, nil
}

// GetFromURL fetches document data from a URL
func GetFromURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: %s", url, resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
}

// GetFromZotero fetches an attachment file from a Zotero library
func GetFromZotero(ctx context.Context, zoteroID string, apiKey string, libraryID string) ([]byte, error) {
	client := zotero.NewClient(libraryID, zotero.LibraryTypeUser, zotero.WithAPIKey(apiKey))
	data, err := client.File(ctx, zoteroID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Zotero attachment %s: %w", zoteroID, err)
	}
	return data, nil
}
