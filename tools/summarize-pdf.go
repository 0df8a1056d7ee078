package tools

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/config"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/internal/operations"
	"github.com/Epistemic-Technology/emolit/internal/storage"
	"github.com/Epistemic-Technology/emolit/models"
)

type SummarizePDFQuery struct {
	Path        string `json:"path,omitempty" jsonschema:"Local path of the PDF"`
	URL         string `json:"url,omitempty" jsonschema:"URL to download the PDF from"`
	ZoteroID    string `json:"zotero_id,omitempty" jsonschema:"Key of a Zotero PDF attachment"`
	ConceptName string `json:"concept_name,omitempty" jsonschema:"Concept to explain. Derived from the filename when omitted"`
}

type SummarizePDFResponse struct {
	DocumentID  string          `json:"document_id"`
	ConceptName string          `json:"concept_name"`
	Strategy    models.Strategy `json:"strategy"`
	Reason      string          `json:"reason"`
	Status      string          `json:"status"`
	OutputPath  string          `json:"output_path,omitempty"`
	Record      any             `json:"record,omitempty"`
	Resources   []string        `json:"resources,omitempty"`
}

func SummarizePDFTool() *mcp.Tool {
	inputschema, err := jsonschema.For[SummarizePDFQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "emolit.summarize-pdf",
		Description: "Summarize one academic PDF as a teen-friendly explanation of an emotional-literacy concept. Provide exactly one of path, url or zotero_id. The text layer is used when readable, otherwise the first pages are OCRed. The record carries six fields plus a heuristically guessed citation, or raw model output when it was not valid JSON.",
		InputSchema: inputschema,
	}
}

func SummarizePDFToolHandler(ctx context.Context, req *mcp.CallToolRequest, query SummarizePDFQuery, processor operations.Processor, zcfg config.ZoteroConfig, log logger.Logger) (*mcp.CallToolResult, *SummarizePDFResponse, error) {
	log.Info("emolit.summarize-pdf tool called")

	doc, err := operations.SummarizeSource(ctx, processor, zcfg, operations.SummarizeRequest{
		Path:        query.Path,
		URL:         query.URL,
		ZoteroID:    query.ZoteroID,
		ConceptName: query.ConceptName,
	}, log)
	if doc == nil {
		return nil, nil, err
	}
	if err != nil {
		log.Error("Summarization of %s failed: %v", doc.ConceptName, err)
	}

	response := &SummarizePDFResponse{
		DocumentID:  doc.DocumentID,
		ConceptName: doc.ConceptName,
		Strategy:    doc.Strategy,
		Reason:      doc.Reason,
		Status:      doc.Status,
		OutputPath:  doc.OutputPath,
	}
	if len(doc.Record) > 0 {
		response.Record = json.RawMessage(doc.Record)
	}
	if doc.DocumentID != "" {
		response.Resources = storage.CalculateResourcePaths(doc)
	}

	return nil, response, nil
}
