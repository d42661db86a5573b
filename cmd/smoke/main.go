// Command smoke exercises the API end to end: health check, a chart
// derivation, dataset generation, then an evaluation run polled to
// completion.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type datasetResp struct {
	Ref     string `json:"ref"`
	Samples int    `json:"samples"`
}

type runResp struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

type runOut struct {
	RunID   string          `json:"run_id"`
	Status  string          `json:"status"`
	Error   string          `json:"error,omitempty"`
	Metrics json.RawMessage `json:"metrics,omitempty"`
}

func main() {
	base := envOr("API_BASE_URL", "http://localhost:8000")
	token := envOr("API_TOKEN", "dev-secret-token")

	baseFlag := flag.String("base", base, "API base URL (e.g., http://localhost:8000)")
	tokenFlag := flag.String("token", token, "API token")
	model := flag.String("model", "gpt-4o-mini", "model name for the evaluation run")
	count := flag.Int("count", 8, "dataset sample count")
	wait := flag.Duration("wait", 2*time.Minute, "how long to poll for run completion")
	flag.Parse()

	httpc := &http.Client{Timeout: 30 * time.Second}

	// 1) Health
	var health map[string]any
	if err := getJSON(httpc, *baseFlag+"/healthz", "", &health); err != nil {
		fatalf("healthz: %v", err)
	}
	fmt.Printf("✅ Health: %v\n", health["status"])

	// 2) Chart derivation
	chartBody := map[string]any{
		"year": 1994, "month": 8, "day": 15, "hour": 10, "minute": 30,
		"gender": "male",
	}
	var chart map[string]any
	if err := postJSON(httpc, *baseFlag+"/charts", *tokenFlag, chartBody, &chart); err != nil {
		fatalf("compute chart: %v", err)
	}
	fmt.Printf("✅ Chart: %s\n", compactJSON(chart["chart"]))

	// 3) Dataset
	var ds datasetResp
	if err := postJSON(httpc, *baseFlag+"/datasets", *tokenFlag, map[string]any{"seed": 42, "count": *count}, &ds); err != nil {
		fatalf("create dataset: %v", err)
	}
	fmt.Printf("✅ Dataset: ref=%s samples=%d\n", ds.Ref, ds.Samples)

	// 4) Run
	var run runResp
	runBody := map[string]any{"model": *model, "dataset_ref": ds.Ref}
	if err := postJSON(httpc, *baseFlag+"/runs", *tokenFlag, runBody, &run); err != nil {
		fatalf("create run: %v", err)
	}
	fmt.Printf("✅ Run enqueued: id=%s\n", run.RunID)

	// 5) Poll
	deadline := time.Now().Add(*wait)
	for {
		var out runOut
		if err := getJSON(httpc, fmt.Sprintf("%s/runs/%s", *baseFlag, run.RunID), *tokenFlag, &out); err != nil {
			fatalf("get run: %v", err)
		}
		switch out.Status {
		case "completed":
			fmt.Printf("🎉 Run completed. Metrics:\n%s\n", compactJSON(out.Metrics))
			return
		case "failed":
			fatalf("run failed: %s", out.Error)
		}
		if time.Now().After(deadline) {
			fmt.Printf("ℹ️  Run still %s after %s. RunID=%s\n", out.Status, *wait, run.RunID)
			return
		}
		time.Sleep(5 * time.Second)
	}
}

// --- helpers ---

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func postJSON(c *http.Client, url, bearer string, body any, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("POST %s -> %d: %s", url, res.StatusCode, string(b))
	}
	if out != nil {
		return json.NewDecoder(res.Body).Decode(out)
	}
	return nil
}

func getJSON(c *http.Client, url, bearer string, out any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("GET %s -> %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func compactJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func fatalf(format string, args ...any) {
	fmt.Printf("❌ "+format+"\n", args...)
	os.Exit(1)
}
