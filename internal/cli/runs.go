package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/savfod/UnPaSt/internal/run"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show past run records and timing statistics",
	RunE:  runRuns,
}

func runRuns(cmd *cobra.Command, args []string) error {
	entries, err := os.ReadDir(run.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No runs found.")
			return nil
		}
		return fmt.Errorf("reading runs dir: %w", err)
	}

	type record struct {
		id   string
		meta run.Meta
	}

	var records []record
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "latest" {
			continue
		}
		metaPath := filepath.Join(run.BaseDir, e.Name(), "meta.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var meta run.Meta
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		records = append(records, record{id: e.Name(), meta: meta})
	}

	if len(records) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	// Sort by started_at descending
	sort.Slice(records, func(i, j int) bool {
		return records[i].meta.StartedAt.After(records[j].meta.StartedAt)
	})

	var totalMS int64
	var completed, failed int
	for _, r := range records {
		totalMS += r.meta.TotalDurationMS
		switch r.meta.Status {
		case "completed":
			completed++
		case "failed":
			failed++
		}
	}

	fmt.Printf("Runs: %d total, %d completed, %d failed\n", len(records), completed, failed)
	fmt.Printf("Total time: %s\n", (time.Duration(totalMS) * time.Millisecond).Round(time.Second))
	fmt.Println()
	fmt.Printf("%-40s %-10s %-10s %-16s %s\n", "Run ID", "Status", "Time", "Event", "Workflow/Job")
	fmt.Println(strings.Repeat("─", 92))
	for _, r := range records {
		d := (time.Duration(r.meta.TotalDurationMS) * time.Millisecond).Round(time.Second)
		fmt.Printf("%-40s %-10s %-10s %-16s %s/%s\n",
			r.id, r.meta.Status, d, r.meta.Event.Type, r.meta.Workflow, r.meta.Job)
	}
	return nil
}
