package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Splendour-K/Opp/internal/app"
	"github.com/Splendour-K/Opp/internal/config"
	"github.com/Splendour-K/Opp/internal/ingest"
)

// manual_sync runs one source, active or not, and prints what it found
// without touching a running server.
func main() {
	sourceID := flag.String("source", "", "Source ID to run (e.g., opportunity_desk)")
	flag.Parse()

	if *sourceID == "" {
		log.Fatal("Please provide a source ID using -source flag")
	}

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx := context.Background()
	reg, err := ingest.LoadRegistry(cfg.SourcesFile)
	if err != nil {
		log.Fatalf("Failed to load sources: %v", err)
	}
	src, ok := reg.Get(*sourceID)
	if !ok {
		log.Fatalf("Unknown source %q", *sourceID)
	}

	gen, err := app.NewGenerator(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}
	deps := ingest.Deps{Generator: gen, SearchModel: cfg.GeminiSearchModel, Logger: logger}
	if cfg.AIBackend == config.BackendOllama {
		deps.SearchModel = ""
		src.Model = ""
	}
	provider, err := ingest.NewStrategyFactory().Build(src, deps)
	if err != nil {
		log.Fatalf("Failed to build source: %v", err)
	}

	gateway := ingest.NewGateway(nil, cfg.SyncTimeout(), logger)
	gateway.AddProvider(src.ID, provider)

	log.Printf("Starting manual sync for source: %s", src.ID)
	result := gateway.Sync(ctx)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Type", "Title", "Organization", "Deadline", "Source"})
	for _, opp := range result.Opportunities {
		deadline := opp.Deadline
		if opp.DeadlineDate != nil {
			deadline = opp.DeadlineDate.Format("2006-01-02")
		}
		source := ""
		if opp.Source != nil {
			source = opp.Source.URL
		}
		t.AppendRow(table.Row{opp.ID, opp.Type, ingest.TruncateText(opp.Title, 60), opp.Organization, deadline, source})
	}
	t.Render()

	log.Printf("Sync finished for %s. Found: %d, Citations: %d", src.ID, len(result.Opportunities), len(result.Citations))
}
