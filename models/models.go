package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// CitationSource is the only provenance the pipeline ever claims for a citation.
const CitationSource = "guessed"

// Citation holds bibliographic fields inferred from extracted text.
type Citation struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Journal string   `json:"journal"`
	Year    string   `json:"year"`
	Source  string   `json:"source"`
}

// MarshalJSON always emits authors as an array, never null.
func (c Citation) MarshalJSON() ([]byte, error) {
	type citation Citation
	out := citation(c)
	if out.Authors == nil {
		out.Authors = []string{}
	}
	return marshalUnescaped(out)
}

// Clone returns a copy that shares no memory with c.
func (c Citation) Clone() Citation {
	out := c
	out.Authors = append([]string{}, c.Authors...)
	return out
}

// Strategy names the extractor that produced an ExtractionResult.
type Strategy string

const (
	StrategyDigital Strategy = "digital"
	StrategyOCR     Strategy = "ocr"
)

type ExtractionResult struct {
	Text     string   `json:"text"`
	Citation Citation `json:"citation"`
}

// Summary is the six-field teen-friendly explanation requested from the model.
type Summary struct {
	Title              string `json:"title" jsonschema:"A simple engaging title in everyday terms, at most 8 words"`
	FriendlyDefinition string `json:"friendly_definition" jsonschema:"What the concept is in everyday language and how it feels in body and mind"`
	RealLifeExample    string `json:"real_life_example" jsonschema:"One situation where teens or young adults might experience it"`
	OftenConfusedWith  string `json:"often_confused_with" jsonschema:"How people might misunderstand it or mistake it for something else"`
	ResearchInsight    string `json:"research_insight" jsonschema:"One key finding from the paper explained simply"`
	PersonalCheckIn    string `json:"personal_check_in" jsonschema:"A reflective question to recognize this in your own life"`
}

// SummaryRecord is the persisted output for one document. Exactly one of
// Fields or Raw is meaningful: Fields holds the model's JSON object with the
// citation attached, Raw holds the unparsed completion of a degraded record.
type SummaryRecord struct {
	Fields   json.RawMessage
	Raw      string
	Citation Citation
}

// Degraded reports whether the record carries the raw completion instead of
// structured fields.
func (r SummaryRecord) Degraded() bool {
	return len(r.Fields) == 0
}

func (r SummaryRecord) MarshalJSON() ([]byte, error) {
	if !r.Degraded() {
		return r.Fields, nil
	}
	return marshalUnescaped(struct {
		Raw      string   `json:"raw"`
		Citation Citation `json:"citation"`
	}{Raw: r.Raw, Citation: r.Citation})
}

// marshalUnescaped is json.Marshal without HTML escaping, so text such as
// "Fear & Anxiety" stays readable in the output files.
func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Document status values recorded in the ledger
const (
	StatusSummarized = "summarized"
	StatusDegraded   = "degraded"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

// SourceInfo contains information about where the PDF came from
type SourceInfo struct {
	Path     string `json:"path,omitempty"`
	ZoteroID string `json:"zotero_id,omitempty"`
	URL      string `json:"url,omitempty"`
}

// DocumentInfo describes one processed document as stored in the ledger
type DocumentInfo struct {
	DocumentID  string          `json:"document_id"`
	RunID       string          `json:"run_id,omitempty"`
	ConceptName string          `json:"concept_name"`
	Strategy    Strategy        `json:"strategy,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Status      string          `json:"status"`
	OutputPath  string          `json:"output_path,omitempty"`
	Citation    Citation        `json:"citation"`
	Record      json.RawMessage `json:"record,omitempty"`
	SourceInfo  SourceInfo      `json:"source_info"`
	ProcessedAt time.Time       `json:"processed_at"`
}

// FileOutcome is the result of processing a single input file during a run
type FileOutcome struct {
	File        string   `json:"file"`
	ConceptName string   `json:"concept_name"`
	Strategy    Strategy `json:"strategy,omitempty"`
	Status      string   `json:"status"`
	OutputPath  string   `json:"output_path,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// RunReport summarizes one batch run
type RunReport struct {
	RunID      string        `json:"run_id"`
	Found      int           `json:"found"`
	Summarized int           `json:"summarized"`
	Degraded   int           `json:"degraded"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Files      []FileOutcome `json:"files"`
}

// Add records an outcome and bumps the matching counter
func (r *RunReport) Add(o FileOutcome) {
	r.Files = append(r.Files, o)
	switch o.Status {
	case StatusSummarized:
		r.Summarized++
	case StatusDegraded:
		r.Degraded++
	case StatusSkipped:
		r.Skipped++
	case StatusFailed:
		r.Failed++
	}
}
