package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Splendour-K/Opp/internal/models"
)

const DefaultSyncTimeout = 90 * time.Second

type namedProvider struct {
	id       string
	provider Provider
}

// Gateway runs every active provider and normalizes what they find. It
// satisfies dashboard.Syncer.
type Gateway struct {
	Timeout time.Duration

	providers  []namedProvider
	normalizer *Normalizer
	log        *logrus.Entry
}

func NewGateway(normalizer *Normalizer, timeout time.Duration, logger *logrus.Logger) *Gateway {
	if normalizer == nil {
		normalizer = NewNormalizer(nil, nil)
	}
	if timeout <= 0 {
		timeout = DefaultSyncTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Gateway{
		Timeout:    timeout,
		normalizer: normalizer,
		log:        logger.WithField("component", "sync"),
	}
}

// NewGatewayFromRegistry builds a provider for each active source. Sources
// whose provider cannot be built are logged and skipped.
func NewGatewayFromRegistry(reg *Registry, factory *StrategyFactory, deps Deps, normalizer *Normalizer, timeout time.Duration) *Gateway {
	g := NewGateway(normalizer, timeout, deps.Logger)
	if factory == nil {
		factory = NewStrategyFactory()
	}
	for _, src := range reg.Active() {
		p, err := factory.Build(src, deps)
		if err != nil {
			g.log.WithError(err).WithField("source", src.ID).Warn("source disabled")
			continue
		}
		g.AddProvider(src.ID, p)
	}
	return g
}

func (g *Gateway) AddProvider(id string, p Provider) {
	g.providers = append(g.providers, namedProvider{id: id, provider: p})
}

// Sources lists the provider ids in run order.
func (g *Gateway) Sources() []string {
	out := make([]string, 0, len(g.providers))
	for _, np := range g.providers {
		out = append(out, np.id)
	}
	return out
}

// Sync runs all providers concurrently under the gateway timeout. It never
// fails: provider errors are logged and whatever was found is returned,
// candidates in provider order.
func (g *Gateway) Sync(ctx context.Context) models.SyncResult {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	started := time.Now()
	results := make([]ProviderResult, len(g.providers))
	var wg sync.WaitGroup
	for i, np := range g.providers {
		wg.Add(1)
		go func(i int, np namedProvider) {
			defer wg.Done()
			res, err := g.discover(ctx, np)
			entry := g.log.WithFields(logrus.Fields{
				"source":     np.id,
				"candidates": len(res.Candidates),
				"citations":  len(res.Citations),
			})
			if err != nil {
				entry.WithError(err).Warn("provider failed")
			} else {
				entry.Debug("provider finished")
			}
			results[i] = res
		}(i, np)
	}
	wg.Wait()

	var (
		candidates []RawCandidate
		citations  []models.Citation
	)
	for _, res := range results {
		candidates = append(candidates, res.Candidates...)
		citations = append(citations, res.Citations...)
	}

	opps, rejected := g.normalizer.Normalize(candidates)
	for _, err := range rejected {
		g.log.WithError(err).Debug("candidate rejected")
	}

	g.log.WithFields(logrus.Fields{
		"providers":     len(g.providers),
		"opportunities": len(opps),
		"rejected":      len(rejected),
		"citations":     len(citations),
		"duration":      time.Since(started).String(),
	}).Info("sync finished")

	return models.SyncResult{Opportunities: opps, Citations: citations}
}

// discover runs one provider. A panic is logged and reported as an error with
// an empty result.
func (g *Gateway) discover(ctx context.Context, np namedProvider) (res ProviderResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			g.log.WithFields(logrus.Fields{"source": np.id, "panic": r}).Error("provider panicked")
			res, err = ProviderResult{}, fmt.Errorf("provider %s panicked: %v", np.id, r)
		}
	}()
	return np.provider.Discover(ctx)
}
