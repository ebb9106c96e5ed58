package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type startResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id"`
	Poll  string `json:"poll"`
}

type runResponse struct {
	Status   string `json:"status"`
	Found    int    `json:"found"`
	Added    int    `json:"added"`
	Replaced int    `json:"replaced"`
	Error    string `json:"error"`
}

func main() {
	base := flag.String("url", "http://localhost:8081", "dashboard server base URL")
	wait := flag.Duration("wait", 2*time.Minute, "how long to poll for the result (0 = don't poll)")
	flag.Parse()
	baseURL := strings.TrimRight(*base, "/")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(baseURL+"/api/v1/sync", "application/json", nil)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		os.Exit(1)
	}
	var started startResponse
	err = json.NewDecoder(resp.Body).Decode(&started)
	resp.Body.Close()
	if err != nil {
		fmt.Printf("Error decoding response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Response Status: %s\n", resp.Status)
	switch resp.StatusCode {
	case http.StatusAccepted:
		fmt.Printf("Sync %s started\n", started.RunID)
	case http.StatusConflict:
		fmt.Printf("Sync %s already running, following it\n", started.RunID)
	default:
		fmt.Printf("Error: %s\n", started.Error)
		os.Exit(1)
	}
	if *wait <= 0 {
		return
	}

	deadline := time.Now().Add(*wait)
	for time.Now().Before(deadline) {
		time.Sleep(2 * time.Second)

		resp, err := client.Get(fmt.Sprintf("%s/api/v1/sync/runs/%s", baseURL, started.RunID))
		if err != nil {
			fmt.Printf("Error polling: %v\n", err)
			continue
		}
		var run runResponse
		err = json.NewDecoder(resp.Body).Decode(&run)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("Error decoding run: %v\n", err)
			continue
		}
		if run.Status == "running" {
			continue
		}

		fmt.Printf("Sync %s %s: found=%d added=%d replaced=%d\n", started.RunID, run.Status, run.Found, run.Added, run.Replaced)
		if run.Error != "" {
			fmt.Printf("Error: %s\n", run.Error)
		}
		if run.Status != "completed" {
			os.Exit(1)
		}
		return
	}
	fmt.Printf("Sync %s still running after %s\n", started.RunID, *wait)
	os.Exit(1)
}
