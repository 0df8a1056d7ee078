package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		concept_name TEXT,
		strategy TEXT,
		reason TEXT,
		status TEXT NOT NULL,
		output_path TEXT,
		title TEXT,
		authors TEXT,
		journal TEXT,
		year TEXT,
		record TEXT,
		path TEXT,
		zotero_id TEXT,
		url TEXT,
		processed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run_id ON documents(run_id);
	CREATE INDEX IF NOT EXISTS idx_documents_zotero_id ON documents(zotero_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

const documentColumns = `id, run_id, concept_name, strategy, reason, status, output_path,
	title, authors, journal, year, record, path, zotero_id, url, processed_at`

// SaveDocument stores or replaces a processed document and returns its ID
func (s *SQLiteStore) SaveDocument(ctx context.Context, doc *models.DocumentInfo) (string, error) {
	if doc.DocumentID == "" {
		doc.DocumentID = GenerateDocumentID(doc.SourceInfo, doc.ConceptName)
	}
	if doc.ProcessedAt.IsZero() {
		doc.ProcessedAt = time.Now().UTC()
	}

	authorsJSON, err := json.Marshal(doc.Citation.Clone().Authors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.DocumentID, doc.RunID, doc.ConceptName, string(doc.Strategy), doc.Reason, doc.Status,
		doc.OutputPath, doc.Citation.Title, string(authorsJSON), doc.Citation.Journal,
		doc.Citation.Year, string(doc.Record), doc.SourceInfo.Path, doc.SourceInfo.ZoteroID,
		doc.SourceInfo.URL, doc.ProcessedAt.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return doc.DocumentID, nil
}

// GetDocument retrieves a document by ID
func (s *SQLiteStore) GetDocument(ctx context.Context, docID string) (*models.DocumentInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, docID)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document not found: %s", docID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return doc, nil
}

// ListDocuments returns every stored document, most recent first
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+` FROM documents
		ORDER BY processed_at DESC, id
	`)
}

// ListByRun returns the documents of one run in processing order
func (s *SQLiteStore) ListByRun(ctx context.Context, runID string) ([]models.DocumentInfo, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE run_id = ?
		ORDER BY processed_at, id
	`, runID)
}

func (s *SQLiteStore) queryDocuments(ctx context.Context, query string, args ...any) ([]models.DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var documents []models.DocumentInfo
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		documents = append(documents, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	return documents, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.DocumentInfo, error) {
	var (
		doc         models.DocumentInfo
		strategy    string
		authorsJSON string
		record      string
		processedAt string
	)
	if err := row.Scan(&doc.DocumentID, &doc.RunID, &doc.ConceptName, &strategy, &doc.Reason,
		&doc.Status, &doc.OutputPath, &doc.Citation.Title, &authorsJSON, &doc.Citation.Journal,
		&doc.Citation.Year, &record, &doc.SourceInfo.Path, &doc.SourceInfo.ZoteroID,
		&doc.SourceInfo.URL, &processedAt); err != nil {
		return nil, err
	}

	doc.Strategy = models.Strategy(strategy)
	doc.Citation.Source = models.CitationSource
	if err := json.Unmarshal([]byte(authorsJSON), &doc.Citation.Authors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal authors: %w", err)
	}
	if record != "" {
		doc.Record = json.RawMessage(record)
	}
	t, err := time.Parse(time.RFC3339Nano, processedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse processed_at: %w", err)
	}
	doc.ProcessedAt = t

	return &doc, nil
}

// DeleteDocument removes a document from the ledger
func (s *SQLiteStore) DeleteDocument(ctx context.Context, docID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("document not found: %s", docID)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// NewRunID returns a fresh identifier for a batch run
func NewRunID() string {
	return uuid.NewString()
}

// GenerateDocumentID creates a stable document ID from where the PDF came from,
// so reprocessing the same source replaces its ledger entry.
func GenerateDocumentID(source models.SourceInfo, conceptName string) string {
	if source.ZoteroID != "" {
		return "zotero_" + source.ZoteroID
	}
	if source.URL != "" {
		return fmt.Sprintf("url_%x", hashString(source.URL))
	}
	if source.Path != "" {
		if abs, err := filepath.Abs(source.Path); err == nil {
			return fmt.Sprintf("file_%x", hashString(abs))
		}
		return fmt.Sprintf("file_%x", hashString(source.Path))
	}
	return fmt.Sprintf("concept_%x", hashString(conceptName))
}

// hashString creates a simple hash of a string
func hashString(s string) uint32 {
	var hash uint32
	for i := 0; i < len(s); i++ {
		hash = hash*31 + uint32(s[i])
	}
	return hash
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)

// OpenLedger opens the SQLite ledger at dbPath, creating its directory. An
// empty path disables the ledger and returns a nil Store.
func OpenLedger(dbPath string, log logger.Logger) (Store, error) {
	if dbPath == "" {
		log.Info("Ledger disabled")
		return nil, nil
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	log.Info("Initializing SQLite database at: %s", dbPath)

	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite store: %w", err)
	}
	return store, nil
}
