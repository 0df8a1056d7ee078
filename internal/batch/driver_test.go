package batch

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Epistemic-Technology/emolit/internal/extract"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

const longText = "Emotional granularity is the ability to describe feelings with precise words, " +
	"and adolescents who practise it report fewer symptoms of anxiety over time."

var testCitation = models.Citation{
	Title:   "Emotional Granularity in Adolescence",
	Authors: []string{"Jane Doe"},
	Journal: "Journal of Affect",
	Year:    "2021",
	Source:  models.CitationSource,
}

type fakeExtractor struct {
	byName        map[string]extract.Selection
	panicOn       string
	fallback      extract.Selection
	selectCalls   int
	fallbackCalls int
}

func (f *fakeExtractor) Select(ctx context.Context, path string) extract.Selection {
	f.selectCalls++
	name := filepath.Base(path)
	if name == f.panicOn {
		panic("engine crashed")
	}
	if s, ok := f.byName[name]; ok {
		return s
	}
	return extract.DigitalResult{ExtractionResult: models.ExtractionResult{Text: longText, Citation: testCitation}}
}

func (f *fakeExtractor) FallbackOCR(ctx context.Context, path string, cause error) extract.Selection {
	f.fallbackCalls++
	if f.fallback != nil {
		return f.fallback
	}
	return extract.OCRResult{Why: extract.ReasonRecovered, Cause: cause}
}

type summarizeCall struct {
	text     string
	concept  string
	citation models.Citation
}

type fakeSummarizer struct {
	calls   []summarizeCall
	records map[string]models.SummaryRecord
	errs    map[string]error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text, conceptName string, citation models.Citation) (models.SummaryRecord, error) {
	f.calls = append(f.calls, summarizeCall{text, conceptName, citation})
	if err, ok := f.errs[conceptName]; ok {
		return models.SummaryRecord{Citation: citation}, err
	}
	if r, ok := f.records[conceptName]; ok {
		r.Citation = citation
		return r, nil
	}
	citationJSON, _ := json.Marshal(citation)
	fields := `{"title":"` + conceptName + `","friendly_definition":"d","real_life_example":"e",` +
		`"often_confused_with":"c","research_insight":"r","personal_check_in":"p","citation":` + string(citationJSON) + `}`
	return models.SummaryRecord{Fields: json.RawMessage(fields), Citation: citation}, nil
}

func writeInputs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
}

func outputFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read output dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func newTestDriver(t *testing.T, ext Extractor, sum Summarizer, store storage.Store) (*Driver, string, string) {
	t.Helper()
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "nested", "summaries")
	return NewDriver(Options{InputDir: in, OutputDir: out}, ext, sum, store, logger.NewNoOpLogger()), in, out
}

func TestRun_EmptyDirectory(t *testing.T) {
	sum := &fakeSummarizer{}
	d, _, out := newTestDriver(t, &fakeExtractor{}, sum, nil)

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.Found != 0 || len(report.Files) != 0 {
		t.Errorf("Expected empty report, got %+v", report)
	}
	if files := outputFiles(t, out); len(files) != 0 {
		t.Errorf("Expected no output files, got %v", files)
	}
	if len(sum.calls) != 0 {
		t.Errorf("Expected no summarizer calls, got %d", len(sum.calls))
	}
}

func TestRun_MissingInputDirectory(t *testing.T) {
	d := NewDriver(Options{InputDir: filepath.Join(t.TempDir(), "absent"), OutputDir: t.TempDir()},
		&fakeExtractor{}, &fakeSummarizer{}, nil, logger.NewNoOpLogger())

	if _, err := d.Run(context.Background()); err == nil {
		t.Error("Expected error for missing input directory, got nil")
	}
}

func TestRun_OneOutputPerPDF(t *testing.T) {
	sum := &fakeSummarizer{}
	d, in, out := newTestDriver(t, &fakeExtractor{}, sum, nil)
	writeInputs(t, in, "02_Shame.PDF", "01_Fear_And_Anxiety.pdf", "readme.txt")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Found != 2 || report.Summarized != 2 {
		t.Errorf("Expected 2 found and summarized, got %+v", report)
	}
	files := outputFiles(t, out)
	want := []string{"01_Fear_And_Anxiety_summary.json", "02_Shame_summary.json"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, files)
	}

	if len(sum.calls) != 2 {
		t.Fatalf("Expected 2 summarizer calls, got %d", len(sum.calls))
	}
	if sum.calls[0].concept != "Fear And Anxiety" || sum.calls[1].concept != "Shame" {
		t.Errorf("Expected sorted concept names, got %q and %q", sum.calls[0].concept, sum.calls[1].concept)
	}
	if sum.calls[0].text != longText {
		t.Errorf("Expected extracted text to reach the summarizer, got %q", sum.calls[0].text)
	}
}

func TestRun_OutputFormat(t *testing.T) {
	d, in, out := newTestDriver(t, &fakeExtractor{}, &fakeSummarizer{}, nil)
	writeInputs(t, in, "01_Fear_And_Anxiety.pdf")

	if _, err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "01_Fear_And_Anxiety_summary.json"))
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "{\n    \"title\": \"Fear And Anxiety\",") {
		t.Errorf("Expected 4-space indented output starting with title, got %s", content)
	}
	if !strings.Contains(content, "\n    \"citation\": {\n        \"title\": \"Emotional Granularity in Adolescence\",") {
		t.Errorf("Expected nested citation, got %s", content)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(parsed) != 7 {
		t.Errorf("Expected six fields plus citation, got %d keys", len(parsed))
	}
}

func TestRun_DegradedRecord(t *testing.T) {
	completion := "Sure! Here is <your> summary & more"
	sum := &fakeSummarizer{records: map[string]models.SummaryRecord{
		"Shame": {Raw: completion},
	}}
	d, in, out := newTestDriver(t, &fakeExtractor{}, sum, nil)
	writeInputs(t, in, "02_Shame.pdf")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Degraded != 1 {
		t.Errorf("Expected 1 degraded, got %+v", report)
	}

	data, err := os.ReadFile(filepath.Join(out, "02_Shame_summary.json"))
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if !strings.Contains(string(data), "<your> summary & more") {
		t.Errorf("Expected unescaped raw text, got %s", data)
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(parsed) != 2 || parsed["raw"] == nil || parsed["citation"] == nil {
		t.Errorf("Expected only raw and citation keys, got %v", parsed)
	}
	var raw string
	json.Unmarshal(parsed["raw"], &raw)
	if raw != completion {
		t.Errorf("Expected raw %q, got %q", completion, raw)
	}
}

func TestRun_SkipsEmptyText(t *testing.T) {
	ext := &fakeExtractor{byName: map[string]extract.Selection{
		"01_Blank.pdf": extract.OCRResult{
			ExtractionResult: models.ExtractionResult{Text: " \n\t "},
			Why:              extract.ReasonLowQuality,
		},
	}}
	sum := &fakeSummarizer{}
	d, in, out := newTestDriver(t, ext, sum, nil)
	writeInputs(t, in, "01_Blank.pdf", "02_Shame.pdf")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Skipped != 1 || report.Summarized != 1 {
		t.Errorf("Expected 1 skipped and 1 summarized, got %+v", report)
	}
	if len(sum.calls) != 1 || sum.calls[0].concept != "Shame" {
		t.Errorf("Expected the summarizer to be called only for Shame, got %+v", sum.calls)
	}
	if files := outputFiles(t, out); len(files) != 1 || files[0] != "02_Shame_summary.json" {
		t.Errorf("Expected only the Shame output, got %v", files)
	}
	if report.Files[0].Status != models.StatusSkipped || report.Files[0].Strategy != models.StrategyOCR {
		t.Errorf("Expected skipped OCR outcome, got %+v", report.Files[0])
	}
}

func TestRun_SummarizerErrorContinues(t *testing.T) {
	sum := &fakeSummarizer{errs: map[string]error{
		"Fear And Anxiety": errors.New("llm call failed: context deadline exceeded"),
	}}
	d, in, out := newTestDriver(t, &fakeExtractor{}, sum, nil)
	writeInputs(t, in, "01_Fear_And_Anxiety.pdf", "02_Shame.pdf")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Failed != 1 || report.Summarized != 1 {
		t.Errorf("Expected 1 failed and 1 summarized, got %+v", report)
	}
	if !strings.Contains(report.Files[0].Error, "deadline exceeded") {
		t.Errorf("Expected error in outcome, got %q", report.Files[0].Error)
	}
	if files := outputFiles(t, out); len(files) != 2 {
		t.Errorf("Expected an output file for each input, got %v", files)
	}

	data, _ := os.ReadFile(filepath.Join(out, "01_Fear_And_Anxiety_summary.json"))
	if !strings.Contains(string(data), `"raw": ""`) {
		t.Errorf("Expected degraded record with empty raw, got %s", data)
	}
}

func TestRun_PanicFallsBackToOCR(t *testing.T) {
	ext := &fakeExtractor{
		panicOn: "01_Fear_And_Anxiety.pdf",
		fallback: extract.OCRResult{
			ExtractionResult: models.ExtractionResult{Text: "\n\n--- PAGE 1 ---\n\nrecognized text", Citation: models.Citation{Title: "Untitled", Source: models.CitationSource}},
			Why:              extract.ReasonRecovered,
		},
	}
	sum := &fakeSummarizer{}
	d, in, _ := newTestDriver(t, ext, sum, nil)
	writeInputs(t, in, "01_Fear_And_Anxiety.pdf")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if ext.fallbackCalls != 1 {
		t.Errorf("Expected 1 fallback call, got %d", ext.fallbackCalls)
	}
	if report.Summarized != 1 || report.Files[0].Strategy != models.StrategyOCR {
		t.Errorf("Expected OCR-summarized outcome, got %+v", report.Files[0])
	}
	if len(sum.calls) != 1 || !strings.Contains(sum.calls[0].text, "recognized text") {
		t.Errorf("Expected OCR text to be summarized, got %+v", sum.calls)
	}
}

func TestRun_Cancelled(t *testing.T) {
	sum := &fakeSummarizer{}
	d, in, _ := newTestDriver(t, &fakeExtractor{}, sum, nil)
	writeInputs(t, in, "01_a.pdf", "02_b.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := d.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(report.Files) != 0 || len(sum.calls) != 0 {
		t.Errorf("Expected no files processed, got %+v", report)
	}
}

func TestRun_RecordsLedger(t *testing.T) {
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ext := &fakeExtractor{byName: map[string]extract.Selection{
		"02_Empty.pdf": extract.OCRResult{Why: extract.ReasonDigitalFailed},
	}}
	d, in, _ := newTestDriver(t, ext, &fakeSummarizer{}, store)
	writeInputs(t, in, "01_Fear_And_Anxiety.pdf", "02_Empty.pdf")

	report, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	docs, err := store.ListByRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 ledger entries, got %d", len(docs))
	}

	byConcept := map[string]models.DocumentInfo{}
	for _, doc := range docs {
		byConcept[doc.ConceptName] = doc
	}
	fear := byConcept["Fear And Anxiety"]
	if fear.Status != models.StatusSummarized || fear.Reason != string(extract.ReasonDigitalOK) {
		t.Errorf("Expected summarized digital entry, got %+v", fear)
	}
	if !strings.HasSuffix(fear.OutputPath, "01_Fear_And_Anxiety_summary.json") {
		t.Errorf("Expected output path, got %s", fear.OutputPath)
	}
	if !json.Valid(fear.Record) || strings.Contains(string(fear.Record), "\n") {
		t.Errorf("Expected compact record JSON, got %s", fear.Record)
	}
	empty := byConcept["Empty"]
	if empty.Status != models.StatusSkipped || empty.Reason != string(extract.ReasonDigitalFailed) {
		t.Errorf("Expected skipped entry, got %+v", empty)
	}
}

func TestProcess_UsesJobNameForOutput(t *testing.T) {
	d, _, _ := newTestDriver(t, &fakeExtractor{}, &fakeSummarizer{}, nil)

	doc, err := d.Process(context.Background(), Job{
		Path:   filepath.Join(t.TempDir(), "emolit-123.pdf"),
		Name:   "05_Loneliness.pdf",
		Source: models.SourceInfo{URL: "https://example.org/05_Loneliness.pdf"},
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if doc.ConceptName != "Loneliness" {
		t.Errorf("Expected concept from job name, got %s", doc.ConceptName)
	}
	if filepath.Base(doc.OutputPath) != "05_Loneliness_summary.json" {
		t.Errorf("Expected output named after the job, got %s", doc.OutputPath)
	}
	if doc.SourceInfo.URL == "" {
		t.Error("Expected source info to be kept")
	}
}

func TestProcess_CreatesMissingOutputDir(t *testing.T) {
	sum := &fakeSummarizer{}
	d, _, out := newTestDriver(t, &fakeExtractor{}, sum, nil)
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Fatalf("Expected output dir to be absent before Process, got %v", err)
	}

	doc, err := d.Process(context.Background(), Job{
		Path: filepath.Join(t.TempDir(), "03_Shame.pdf"),
		Name: "03_Shame.pdf",
	})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if doc.Status != models.StatusSummarized {
		t.Errorf("Expected status %s, got %s", models.StatusSummarized, doc.Status)
	}
	if len(doc.Record) == 0 {
		t.Error("Expected record to be kept")
	}
	want := filepath.Join(out, "03_Shame_summary.json")
	if doc.OutputPath != want {
		t.Errorf("Expected output path %s, got %s", want, doc.OutputPath)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("Expected summary file to exist, got %v", err)
	}
	if len(sum.calls) != 1 {
		t.Errorf("Expected one summarizer call, got %d", len(sum.calls))
	}
}

func TestEncodeRecord(t *testing.T) {
	record := models.SummaryRecord{
		Fields:   json.RawMessage(`{"title":"Fear & Worry","citation":{"title":"A <b> study"}}`),
		Citation: testCitation,
	}

	indented, err := EncodeRecord(record, "    ")
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	want := "{\n    \"title\": \"Fear & Worry\",\n    \"citation\": {\n        \"title\": \"A <b> study\"\n    }\n}"
	if string(indented) != want {
		t.Errorf("Expected %s, got %s", want, indented)
	}

	compact, err := EncodeRecord(record, "")
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	if string(compact) != `{"title":"Fear & Worry","citation":{"title":"A <b> study"}}` {
		t.Errorf("Expected compact JSON, got %s", compact)
	}
}
