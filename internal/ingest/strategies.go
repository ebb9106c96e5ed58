package ingest

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/ai"
)

// Deps are the shared resources a provider may need.
type Deps struct {
	Generator   ai.Generator
	SearchModel string // used when a source does not name a model
	Logger      *logrus.Logger

	// NewFetcher overrides fetcher construction, mainly for tests.
	NewFetcher func(src SourceConfig) Fetcher
}

// ProviderBuilder creates the provider for one source.
type ProviderBuilder func(src SourceConfig, deps Deps) (Provider, error)

// StrategyFactory maps strategy IDs (from sources.yaml) to provider builders.
type StrategyFactory struct {
	builders map[string]ProviderBuilder
}

// NewStrategyFactory returns a factory with the built-in strategies registered.
func NewStrategyFactory() *StrategyFactory {
	f := &StrategyFactory{builders: make(map[string]ProviderBuilder)}
	f.Register(StrategyAISearch, buildSearchProvider)
	f.Register(StrategyWordPressREST, buildWordPressProvider)
	return f
}

func (f *StrategyFactory) Register(id string, builder ProviderBuilder) {
	f.builders[id] = builder
}

func (f *StrategyFactory) Build(src SourceConfig, deps Deps) (Provider, error) {
	builder, ok := f.builders[src.Strategy]
	if !ok {
		return nil, fmt.Errorf("strategy not found: %s", src.Strategy)
	}
	return builder(src, deps)
}

func buildSearchProvider(src SourceConfig, deps Deps) (Provider, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("source %s: ai_search needs a generator", src.ID)
	}
	if src.Prompt == "" {
		return nil, fmt.Errorf("source %s: ai_search needs a prompt", src.ID)
	}
	model := src.Model
	if model == "" {
		model = deps.SearchModel
	}
	return &SearchProvider{Generator: deps.Generator, Model: model, Prompt: src.Prompt}, nil
}

func buildWordPressProvider(src SourceConfig, deps Deps) (Provider, error) {
	if _, err := postsURL(src.BaseURL); err != nil {
		return nil, fmt.Errorf("source %s: %w", src.ID, err)
	}
	if src.Name == "" {
		return nil, fmt.Errorf("source %s: wordpress_rest needs a name", src.ID)
	}

	var fetcher Fetcher
	switch {
	case deps.NewFetcher != nil:
		fetcher = deps.NewFetcher(src)
	case src.Fetcher == FetcherColly:
		fetcher = NewCollyFetcher(src.Fetch, deps.Logger)
	case src.Fetcher == "" || src.Fetcher == FetcherHTTP:
		fetcher = NewHTTPFetcher(src.Fetch)
	default:
		return nil, fmt.Errorf("source %s: unknown fetcher %q", src.ID, src.Fetcher)
	}
	return &WordPressProvider{Fetcher: fetcher, Source: src}, nil
}
