package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Splendour-K/Opp/internal/dashboard"
)

func main() {
	base := flag.String("url", "http://localhost:8081", "dashboard server base URL")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(strings.TrimRight(*base, "/") + "/api/v1/sync/runs")
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("unexpected status: %s", resp.Status)
	}

	var runs []dashboard.SyncRun
	if err := json.NewDecoder(resp.Body).Decode(&runs); err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Run", "Status", "Found", "Added", "Replaced", "Citations", "Duration", "Started At", "Error"})

	for _, run := range runs {
		duration := "Running..."
		if run.EndedAt != nil {
			duration = run.EndedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		t.AppendRow(table.Row{run.ID, run.Status, run.Found, run.Added, run.Replaced, run.Citations, duration, run.StartedAt.Local().Format("15:04:05"), run.Error})
	}
	t.Render()
}
