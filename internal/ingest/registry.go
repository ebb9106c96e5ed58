package ingest

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all sync sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 30
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
	ProxyURL       string  `yaml:"proxy_url,omitempty"`
	AcceptLanguage string  `yaml:"accept_language,omitempty"` // e.g., "en-US,en;q=0.5"
}

const (
	StrategyAISearch      = "ai_search"
	StrategyWordPressREST = "wordpress_rest"

	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// SourceConfig defines a single sync source.
type SourceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Strategy string `yaml:"strategy"` // "ai_search", "wordpress_rest"
	Active   bool   `yaml:"active"`

	// ai_search
	Prompt string `yaml:"prompt,omitempty"`
	Model  string `yaml:"model,omitempty"`

	// wordpress_rest
	BaseURL  string      `yaml:"base_url,omitempty"`
	MaxPosts int         `yaml:"max_posts,omitempty"`
	Fetcher  string      `yaml:"fetcher,omitempty"` // "http" (default) or "colly"
	Fetch    FetchConfig `yaml:"fetch,omitempty"`
}

// LoadRegistry reads the registry from path, or the embedded sources.yaml when
// path is empty.
func LoadRegistry(path string) (*Registry, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = sourcesYAML.ReadFile("config/sources.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes registry YAML after expanding environment variables
// (e.g. ${GEMINI_SEARCH_MODEL}).
func ParseRegistry(data []byte) (*Registry, error) {
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	seen := make(map[string]struct{}, len(reg.Sources))
	for _, src := range reg.Sources {
		if src.ID == "" {
			return nil, fmt.Errorf("parse sources: source without id")
		}
		if _, dup := seen[src.ID]; dup {
			return nil, fmt.Errorf("parse sources: duplicate source id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	return &reg, nil
}

// Active returns the enabled sources in file order.
func (r *Registry) Active() []SourceConfig {
	var out []SourceConfig
	for _, src := range r.Sources {
		if src.Active {
			out = append(out, src)
		}
	}
	return out
}

// Get returns the source with id.
func (r *Registry) Get(id string) (SourceConfig, bool) {
	for _, src := range r.Sources {
		if src.ID == id {
			return src, true
		}
	}
	return SourceConfig{}, false
}
