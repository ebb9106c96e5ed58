package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Splendour-K/Opp/internal/ai"
)

// SearchProvider asks a search-grounded model for recent opportunities and
// parses the JSON array out of its answer.
type SearchProvider struct {
	Generator ai.Generator
	Model     string
	Prompt    string
}

func (p *SearchProvider) Discover(ctx context.Context) (ProviderResult, error) {
	if p.Generator == nil {
		return ProviderResult{}, errors.New("search provider: no generator configured")
	}

	resp, err := p.Generator.Generate(ctx, ai.Request{
		Model:  p.Model,
		Prompt: p.Prompt,
		Search: true,
	})
	if err != nil {
		return ProviderResult{}, fmt.Errorf("search provider: %w", err)
	}

	result := ProviderResult{Citations: resp.Citations}
	candidates, err := ParseCandidates(resp.Text)
	if err != nil {
		// Citations are still worth keeping when the answer itself is unusable.
		return result, fmt.Errorf("search provider: %w", err)
	}
	result.Candidates = candidates
	return result, nil
}
