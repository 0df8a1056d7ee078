package tools

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/emolit/internal/citations"
	"github.com/Epistemic-Technology/emolit/internal/logger"
	"github.com/Epistemic-Technology/emolit/models"
)

type GuessCitationQuery struct {
	Text string `json:"text" jsonschema:"Text of the first pages of a paper, lines separated by newlines"`
}

type GuessCitationResponse struct {
	Citation models.Citation `json:"citation"`
	Citekey  string          `json:"citekey"`
}

func GuessCitationTool() *mcp.Tool {
	inputschema, err := jsonschema.For[GuessCitationQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "emolit.guess-citation",
		Description: "Guess title, authors, journal and year from the opening lines of a paper using simple line heuristics. Results are best effort and always marked as guessed.",
		InputSchema: inputschema,
	}
}

func GuessCitationToolHandler(ctx context.Context, req *mcp.CallToolRequest, query GuessCitationQuery, log logger.Logger) (*mcp.CallToolResult, *GuessCitationResponse, error) {
	log.Info("emolit.guess-citation tool called")

	if query.Text == "" {
		return nil, nil, errors.New("text is required")
	}

	citation := citations.GuessFromText(query.Text)
	return nil, &GuessCitationResponse{
		Citation: citation,
		Citekey:  citations.GenerateCitekey(citation, map[string]bool{}),
	}, nil
}
