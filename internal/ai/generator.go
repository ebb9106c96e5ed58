package ai

import (
	"context"

	"github.com/Splendour-K/Opp/internal/models"
)

// Request is a single text generation call.
type Request struct {
	Model             string // empty means the client default
	Prompt            string
	SystemInstruction string
	Search            bool // ground the answer with web search where supported
	JSON              bool // ask for a JSON-only answer where supported
}

type Response struct {
	Text      string
	Citations []models.Citation
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}
