package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Splendour-K/Opp/internal/models"
)

const (
	DefaultSearchModel  = "gemini-3-pro-preview"
	DefaultAdvisorModel = "gemini-3-flash-preview"
)

type GeminiClient struct {
	client       *genai.Client
	DefaultModel string
}

func NewGeminiClient(ctx context.Context, apiKey, defaultModel string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if defaultModel == "" {
		defaultModel = DefaultAdvisorModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, DefaultModel: defaultModel}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	model := req.Model
	if model == "" {
		model = c.DefaultModel
	}

	cfg := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.Search {
		// Grounding metadata is dropped when a response MIME type is forced,
		// so JSON mode only applies to ungrounded calls.
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini: generate content: %w", err)
	}

	return Response{
		Text:      resp.Text(),
		Citations: citationsFromResponse(resp),
	}, nil
}

// citationsFromResponse lists the web grounding chunks of the first candidate.
// Chunks without a URI are skipped; a missing title falls back to the URI.
func citationsFromResponse(resp *genai.GenerateContentResponse) []models.Citation {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	meta := resp.Candidates[0].GroundingMetadata
	if meta == nil {
		return nil
	}

	var out []models.Citation
	for _, chunk := range meta.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		out = append(out, models.Citation{Title: title, URI: chunk.Web.URI})
	}
	return out
}
