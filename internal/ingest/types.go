package ingest

import (
	"context"
	"io"
	"time"

	"github.com/Splendour-K/Opp/internal/models"
)

// RawCandidate is an untrusted opportunity as reported by a provider, before
// validation and defaults.
type RawCandidate struct {
	Title        string `validate:"required"`
	Organization string `validate:"required"`
	Type         string `validate:"required"`
	Description  string `validate:"required"`
	Content      string
	Amount       string
	Deadline     string
	DeadlineDate string // ISO 8601; the Deadline label is never parsed
	Tags         []string
	ImageURL     string
	SourceName   string
	SourceURL    string
	MatchScore   *float64
	IsUrgent     bool
}

// ProviderResult is what one provider found.
type ProviderResult struct {
	Candidates []RawCandidate
	Citations  []models.Citation
}

// Provider discovers opportunities from one configured source.
type Provider interface {
	Discover(ctx context.Context) (ProviderResult, error)
}

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}
