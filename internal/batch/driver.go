// Package batch drives the per-document pipeline over a directory of PDFs:
// extraction, summarization, one JSON file per document and a ledger entry.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Epistemic-Technology/emolit/internal/extract"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

const outputIndent = "    "

// Extractor is satisfied by *extract.Selector
type Extractor interface {
	Select(ctx context.Context, path string) extract.Selection
	FallbackOCR(ctx context.Context, path string, cause error) extract.Selection
}

// Summarizer is satisfied by *llm.Summarizer
type Summarizer interface {
	Summarize(ctx context.Context, text, conceptName string, citation models.Citation) (models.SummaryRecord, error)
}

type Options struct {
	InputDir  string
	OutputDir string
}

// Driver processes documents one at a time. The store is optional.
type Driver struct {
	opts       Options
	extractor  Extractor
	summarizer Summarizer
	store      storage.Store
	log        logger.Logger
	now        func() time.Time
}

func NewDriver(opts Options, extractor Extractor, summarizer Summarizer, store storage.Store, log logger.Logger) *Driver {
	return &Driver{
		opts:       opts,
		extractor:  extractor,
		summarizer: summarizer,
		store:      store,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Job is one document to process. Name is the original filename and decides
// the output filename; Path is where the PDF can be read.
type Job struct {
	RunID       string
	Path        string
	Name        string
	ConceptName string
	Source      models.SourceInfo
}

// Run processes every PDF in the input directory. Per-document failures are
// logged and counted in the report; only an unreadable input directory, an
// uncreatable output directory or cancellation end the run early.
func (d *Driver) Run(ctx context.Context) (models.RunReport, error) {
	report := models.RunReport{RunID: storage.NewRunID(), Files: []models.FileOutcome{}}

	names, err := ListPDFs(d.opts.InputDir)
	if err != nil {
		return report, err
	}
	report.Found = len(names)

	if err := os.MkdirAll(d.opts.OutputDir, 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}

	d.log.Info("Starting run %s: %d PDF files in %s", report.RunID, len(names), d.opts.InputDir)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			d.log.Warn("Run %s cancelled after %d of %d files", report.RunID, len(report.Files), len(names))
			return report, err
		}
		report.Add(d.ProcessFile(ctx, report.RunID, name))
	}

	d.log.Info("Run %s finished: %d summarized, %d degraded, %d skipped, %d failed",
		report.RunID, report.Summarized, report.Degraded, report.Skipped, report.Failed)
	return report, nil
}

// ProcessFile processes one file of the input directory and reports its outcome
func (d *Driver) ProcessFile(ctx context.Context, runID, name string) models.FileOutcome {
	path := filepath.Join(d.opts.InputDir, name)
	d.log.Info("Processing: %s", name)

	doc, err := d.Process(ctx, Job{
		RunID:       runID,
		Path:        path,
		Name:        name,
		ConceptName: ConceptName(name),
		Source:      models.SourceInfo{Path: path},
	})

	outcome := models.FileOutcome{
		File:        name,
		ConceptName: doc.ConceptName,
		Strategy:    doc.Strategy,
		Status:      doc.Status,
		OutputPath:  doc.OutputPath,
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}

// Process runs extraction and summarization for one document, writes its
// summary file and records it in the ledger. The returned document is always
// populated; a non-nil error means its status is failed.
func (d *Driver) Process(ctx context.Context, job Job) (*models.DocumentInfo, error) {
	if job.Name == "" {
		job.Name = filepath.Base(job.Path)
	}
	if job.ConceptName == "" {
		job.ConceptName = ConceptName(job.Name)
	}

	selection := d.extract(ctx, job.Path)
	result := selection.Result()

	doc := &models.DocumentInfo{
		RunID:       job.RunID,
		ConceptName: job.ConceptName,
		Strategy:    selection.Strategy(),
		Reason:      string(selection.Reason()),
		Citation:    result.Citation.Clone(),
		SourceInfo:  job.Source,
		ProcessedAt: d.now(),
	}

	if strings.TrimSpace(result.Text) == "" {
		d.log.Warn("No text extracted from %s. Skipping", job.Name)
		doc.Status = models.StatusSkipped
		d.save(ctx, doc)
		return doc, nil
	}

	record, callErr := d.summarizer.Summarize(ctx, result.Text, job.ConceptName, result.Citation)

	out, err := d.writeRecord(job.Name, record)
	if err != nil {
		d.log.Error("Failed to write summary for %s: %v", job.Name, err)
		doc.Status = models.StatusFailed
		d.save(ctx, doc)
		return doc, err
	}
	doc.OutputPath = out

	if compact, err := EncodeRecord(record, ""); err == nil {
		doc.Record = compact
	}

	switch {
	case callErr != nil:
		doc.Status = models.StatusFailed
	case record.Degraded():
		doc.Status = models.StatusDegraded
	default:
		doc.Status = models.StatusSummarized
	}
	d.log.Info("Saved: %s", out)

	d.save(ctx, doc)
	return doc, callErr
}

// extract runs the selector with an outer safety net: a panic escaping it is
// treated as a digital failure and OCR is tried instead.
func (d *Driver) extract(ctx context.Context, path string) (selection extract.Selection) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("Extraction of %s panicked: %v. Trying OCR fallback", path, r)
			selection = d.extractor.FallbackOCR(ctx, path, fmt.Errorf("panic: %v", r))
		}
	}()

	selection = d.extractor.Select(ctx, path)
	if selection == nil {
		selection = d.extractor.FallbackOCR(ctx, path, fmt.Errorf("selector returned no result"))
	}
	return selection
}

func (d *Driver) writeRecord(name string, record models.SummaryRecord) (string, error) {
	data, err := EncodeRecord(record, outputIndent)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	out := filepath.Join(d.opts.OutputDir, OutputName(name))
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return out, nil
}

func (d *Driver) save(ctx context.Context, doc *models.DocumentInfo) {
	if d.store == nil {
		return
	}
	if _, err := d.store.SaveDocument(ctx, doc); err != nil {
		d.log.Warn("Failed to record %s in the ledger: %v", doc.ConceptName, err)
	}
}

// EncodeRecord renders a record as JSON, indented with indent unless it is
// empty. Keys keep their order and HTML characters are not escaped.
func EncodeRecord(record models.SummaryRecord, indent string) ([]byte, error) {
	raw, err := record.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}

	var buf bytes.Buffer
	if indent == "" {
		err = json.Compact(&buf, raw)
	} else {
		err = json.Indent(&buf, raw, "", indent)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	return buf.Bytes(), nil
}
