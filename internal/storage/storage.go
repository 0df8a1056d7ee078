package storage

import (
	"context"

	"github.com/Epistemic-Technology/emolit/models"
)

// Store defines the interface for the run ledger of processed documents
type Store interface {
	// SaveDocument stores or replaces a processed document and returns its ID.
	// An empty DocumentID is derived from the document's source.
	SaveDocument(ctx context.Context, doc *models.DocumentInfo) (string, error)

	// GetDocument retrieves a document by ID
	GetDocument(ctx context.Context, docID string) (*models.DocumentInfo, error)

	// ListDocuments returns every stored document, most recent first
	ListDocuments(ctx context.Context) ([]models.DocumentInfo, error)

	// ListByRun returns the documents processed during one batch run
	ListByRun(ctx context.Context, runID string) ([]models.DocumentInfo, error)

	// DeleteDocument removes a document from the ledger
	DeleteDocument(ctx context.Context, docID string) error

	// Close closes the database connection
	Close() error
}
