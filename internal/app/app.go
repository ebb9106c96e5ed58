package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/ai"
	"github.com/Splendour-K/Opp/internal/config"
	"github.com/Splendour-K/Opp/internal/dashboard"
	"github.com/Splendour-K/Opp/internal/ingest"
	"github.com/Splendour-K/Opp/internal/models"
)

// App is the wired dashboard shared by the server and the CLI tools.
type App struct {
	Dashboard *dashboard.Controller
	Advisor   *ai.Advisor
	Gateway   *ingest.Gateway
}

// NewGenerator builds the configured AI backend. A missing Gemini key is not
// fatal: search sources are then disabled and the advisor answers with its
// fallback text.
func NewGenerator(ctx context.Context, cfg config.Config, logger *logrus.Logger) (ai.Generator, error) {
	switch cfg.AIBackend {
	case config.BackendOllama:
		return ai.NewOllamaClient(cfg.OllamaHost, cfg.OllamaModel), nil
	case config.BackendGemini:
		key := cfg.GeminiKey()
		if key == "" {
			logger.Warn("API_KEY not set, AI search and match analysis are disabled")
			return nil, nil
		}
		client, err := ai.NewGeminiClient(ctx, key, cfg.GeminiAdvisorModel)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.AIBackend)
	}
}

func New(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*App, error) {
	gen, err := NewGenerator(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewWithGenerator(cfg, gen, logger)
}

// NewWithGenerator wires the dashboard around gen, which may be nil.
func NewWithGenerator(cfg config.Config, gen ai.Generator, logger *logrus.Logger) (*App, error) {
	reg, err := ingest.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	deps := ingest.Deps{Generator: gen, Logger: logger}
	advisorModel := cfg.GeminiAdvisorModel
	if cfg.AIBackend == config.BackendOllama {
		// Ollama serves the one configured model for every request.
		advisorModel = ""
		for i := range reg.Sources {
			reg.Sources[i].Model = ""
		}
	} else {
		deps.SearchModel = cfg.GeminiSearchModel
	}

	gateway := ingest.NewGatewayFromRegistry(reg, nil, deps, ingest.NewNormalizer(nil, nil), cfg.SyncTimeout())

	ctrl := dashboard.NewController(dashboard.Options{
		Syncer:      gateway,
		Logger:      logger,
		PublicURL:   cfg.PublicURL,
		SyncTimeout: cfg.SyncTimeout(),
		Settings:    models.UserSettings{ReminderThreshold: cfg.ReminderThresholdDays},
		Bio:         cfg.UserBio,
		Seed:        cfg.Seed,
	})

	return &App{
		Dashboard: ctrl,
		Advisor:   ai.NewAdvisor(gen, advisorModel, logger),
		Gateway:   gateway,
	}, nil
}

// Close discards any sync still in flight and waits for it to return.
func (a *App) Close() {
	a.Dashboard.Close()
	a.Dashboard.Wait()
}
