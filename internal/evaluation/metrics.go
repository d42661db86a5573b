package evaluation

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
)

// Stat is a mean/stddev/count triple over a slice of scores.
type Stat struct {
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	Count int     `json:"count"`
}

// Metrics aggregates a result set overall and along the difficulty and
// tag axes.
type Metrics struct {
	Overall      Stat            `json:"overall"`
	ByDifficulty map[string]Stat `json:"by_difficulty"`
	ByTag        map[string]Stat `json:"by_tag"`
}

func stat(scores []float64) Stat {
	n := len(scores)
	if n == 0 {
		return Stat{}
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(n)

	return Stat{
		Mean:  math.Round(mean*10000) / 10000,
		Std:   math.Round(math.Sqrt(variance)*10000) / 10000,
		Count: n,
	}
}

// ComputeMetrics summarizes a result set. Results that errored count with
// their zero score, so flaky samples drag the mean down instead of
// disappearing.
func ComputeMetrics(results []Result) Metrics {
	var all []float64
	byDifficulty := map[string][]float64{}
	byTag := map[string][]float64{}

	for _, r := range results {
		all = append(all, r.Score)
		dk := strconv.Itoa(r.Difficulty)
		byDifficulty[dk] = append(byDifficulty[dk], r.Score)
		for _, tag := range r.Tags {
			byTag[tag] = append(byTag[tag], r.Score)
		}
	}

	m := Metrics{
		Overall:      stat(all),
		ByDifficulty: make(map[string]Stat, len(byDifficulty)),
		ByTag:        make(map[string]Stat, len(byTag)),
	}
	for k, v := range byDifficulty {
		m.ByDifficulty[k] = stat(v)
	}
	for k, v := range byTag {
		m.ByTag[k] = stat(v)
	}
	return m
}

// WriteMetrics stores metrics as one indented JSON document.
func WriteMetrics(path string, m Metrics) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
