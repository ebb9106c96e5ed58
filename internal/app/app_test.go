package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Splendour-K/Opp/internal/ai"
	"github.com/Splendour-K/Opp/internal/config"
	"github.com/Splendour-K/Opp/internal/dashboard"
)

type cannedGenerator struct {
	text string
	reqs []ai.Request
}

func (g *cannedGenerator) Generate(_ context.Context, req ai.Request) (ai.Response, error) {
	g.reqs = append(g.reqs, req)
	return ai.Response{Text: g.text}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig(backend string) config.Config {
	return config.Config{
		AIBackend:             backend,
		GeminiSearchModel:     "search-model",
		GeminiAdvisorModel:    "advisor-model",
		PublicURL:             "http://localhost:4200",
		SyncTimeoutSeconds:    5,
		ReminderThresholdDays: 3,
		Seed:                  true,
	}
}

func TestNewGenerator(t *testing.T) {
	gen, err := NewGenerator(context.Background(), testConfig(config.BackendGemini), quietLogger())
	require.NoError(t, err)
	assert.Nil(t, gen, "no key means no generator")

	gen, err = NewGenerator(context.Background(), testConfig(config.BackendOllama), quietLogger())
	require.NoError(t, err)
	assert.IsType(t, &ai.OllamaClient{}, gen)

	_, err = NewGenerator(context.Background(), testConfig("openai"), quietLogger())
	assert.Error(t, err)
}

func TestNewWithGenerator_SyncsThroughGateway(t *testing.T) {
	gen := &cannedGenerator{text: "```json\n[{\"title\":\"Tech Innovation Grant 2024\",\"organization\":\"TechForward\",\"type\":\"Grant\",\"description\":\"Refreshed.\"}," +
		"{\"title\":\"Brand New Fellowship\",\"organization\":\"Org\",\"type\":\"Fellowship\",\"description\":\"New.\"}]\n```"}

	a, err := NewWithGenerator(testConfig(config.BackendGemini), gen, quietLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Equal(t, []string{"ai_search"}, a.Gateway.Sources())
	assert.Equal(t, 5*time.Second, a.Gateway.Timeout)

	_, _, err = a.Dashboard.AddTask("1")
	require.NoError(t, err)

	run, err := a.Dashboard.SyncNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dashboard.SyncCompleted, run.Status)
	assert.Equal(t, 2, run.Found)
	assert.Equal(t, 1, run.Replaced)

	require.Len(t, gen.reqs, 1)
	assert.True(t, gen.reqs[0].Search)

	all := a.Dashboard.Opportunities(dashboard.Filter{})
	assert.Len(t, all, 5)
	tasks := a.Dashboard.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Refreshed.", tasks[0].Opportunity.Description)

	assert.Equal(t, "advisor-model", a.Advisor.Model)
}

func TestNewWithGenerator_OllamaClearsModels(t *testing.T) {
	gen := &cannedGenerator{text: "[]"}
	a, err := NewWithGenerator(testConfig(config.BackendOllama), gen, quietLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	_, err = a.Dashboard.SyncNow(context.Background())
	require.NoError(t, err)
	require.Len(t, gen.reqs, 1)
	assert.Empty(t, gen.reqs[0].Model)
	assert.Empty(t, a.Advisor.Model)
}

func TestNewWithGenerator_NoGenerator(t *testing.T) {
	a, err := NewWithGenerator(testConfig(config.BackendGemini), nil, quietLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Empty(t, a.Gateway.Sources())
	assert.Equal(t, ai.AdvisorFallback, a.Advisor.AnalyzeMatch(context.Background(), "x", "y"))
}
