package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Splendour-K/Opp/internal/app"
	"github.com/Splendour-K/Opp/internal/config"
	"github.com/Splendour-K/Opp/internal/dashboard"
	"github.com/Splendour-K/Opp/internal/models"
)

type output struct {
	Sync      *dashboard.SyncRun   `json:"sync,omitempty"`
	Reminders []dashboard.Reminder `json:"reminders"`
	Feed      []models.Opportunity `json:"feed"`
	Related   []dashboard.Related  `json:"related,omitempty"`
	Analysis  string               `json:"analysis,omitempty"`
}

// digest prints the reminders and feed the dashboard would show today,
// optionally after a sync.
func main() {
	doSync := flag.Bool("sync", false, "run a sync before building the digest")
	threshold := flag.Int("threshold", -1, "reminder threshold in days (-1 = REMINDER_THRESHOLD_DAYS)")
	minScore := flag.Int("min-score", 0, "only list opportunities with at least this match score")
	oppType := flag.String("type", "", "only list opportunities of this type")
	oppID := flag.String("opp", "", "also list opportunities related to this ID")
	analyze := flag.Bool("analyze", false, "ask the advisor about -opp (needs an AI backend)")
	asJSON := flag.Bool("json", false, "print JSON instead of tables")
	flag.Parse()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *threshold >= 0 {
		cfg.ReminderThresholdDays = *threshold
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	logger.SetOutput(os.Stderr)

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to build dashboard: %v", err)
	}
	defer a.Close()

	var result output
	if *doSync {
		run, err := a.Dashboard.SyncNow(ctx)
		if err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		result.Sync = &run
	}
	result.Reminders = a.Dashboard.Notifications()
	result.Feed = a.Dashboard.Opportunities(dashboard.Filter{Type: *oppType, MinScore: *minScore})

	if *oppID != "" {
		related, err := a.Dashboard.Related(*oppID)
		if err != nil {
			log.Fatalf("Related: %v", err)
		}
		result.Related = related
		if *analyze {
			opp, _ := a.Dashboard.Opportunity(*oppID)
			actx, cancel := context.WithTimeout(ctx, 60*time.Second)
			result.Analysis = a.Advisor.AnalyzeMatch(actx, opp.Title, a.Dashboard.Bio())
			cancel()
		}
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		return
	}
	render(result, cfg.ReminderThresholdDays)
}

func render(result output, threshold int) {
	if run := result.Sync; run != nil {
		fmt.Printf("Sync %s %s: found=%d added=%d replaced=%d citations=%d\n\n", run.ID, run.Status, run.Found, run.Added, run.Replaced, run.Citations)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Deadlines within %d days", threshold))
	t.AppendHeader(table.Row{"ID", "Kind", "Title", "Due", "Days Left"})
	for _, r := range result.Reminders {
		t.AppendRow(table.Row{r.ID, r.Kind, r.Title, r.DeadlineDate.Format("2006-01-02"), r.DaysLeft})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Feed")
	t.AppendHeader(table.Row{"ID", "Type", "Title", "Organization", "Score", "Amount"})
	for _, opp := range result.Feed {
		t.AppendRow(table.Row{opp.ID, opp.Type, opp.Title, opp.Organization, opp.Score(), opp.Amount})
	}
	t.Render()

	if len(result.Related) > 0 {
		t = table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("Related")
		t.AppendHeader(table.Row{"ID", "Title", "Score", "Label"})
		for _, r := range result.Related {
			t.AppendRow(table.Row{r.Opportunity.ID, r.Opportunity.Title, r.Score, r.Label})
		}
		t.Render()
	}
	if result.Analysis != "" {
		fmt.Printf("\nMatch analysis:\n%s\n", result.Analysis)
	}
}
