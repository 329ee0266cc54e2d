package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danwhitfield/war-coach/internal/replay"
	"github.com/danwhitfield/war-coach/internal/store"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	dbPath := flag.String("db", "", "replay into this DB instead of a throwaway one")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--db path/to/war_coach.db]")
		os.Exit(2)
	}

	os.Exit(run(*fixturePath, *dbPath))
}

// #endregion main

// #region run

func run(fixturePath, dbPath string) int {
	f, err := replay.LoadFixture(fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	if dbPath == "" {
		dir, err := os.MkdirTemp("", "warcoach-replay-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
			return 2
		}
		defer os.RemoveAll(dir)
		dbPath = filepath.Join(dir, "replay.db")
	}

	st, err := store.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	if f.Description != "" {
		fmt.Printf("Fixture: %s\n\n", f.Description)
	}

	results, err := replay.Run(st, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	printEvents(results)

	mismatches, err := replay.Compare(st, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		return 2
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d events (%d am, %d pm, %d ticks), %d failed, %d mismatches\n",
		s.Events, s.Mornings, s.Evenings, s.Ticks, s.Failures, len(mismatches))

	if len(mismatches) > 0 {
		fmt.Println("\nMismatches:")
		for _, m := range mismatches {
			fmt.Printf("  %s\n", m)
		}
		return 1
	}
	return 0
}

// #endregion run

// #region output

func printEvents(results []replay.EventResult) {
	fmt.Printf("%-17s| %-5s| %-30s| %s\n", "At", "Kind", "Outcome", "Status")
	fmt.Printf("%-17s+%-6s+%-31s+%s\n",
		"-----------------", "------", "-------------------------------", "------")

	for _, r := range results {
		outcome := "-"
		switch {
		case r.Kind == "am" && r.Err == nil:
			outcome = "verdict " + r.Verdict
		case r.Kind == "pm" && r.Score != nil:
			outcome = fmt.Sprintf("compliance %d%%", *r.Score)
			if r.Punished {
				outcome += " (punished)"
			}
		case r.Kind == "tick" && len(r.Fired) > 0:
			outcome = "fired " + strings.Join(r.Fired, ", ")
		case r.Kind == "tick":
			outcome = "nothing due"
		}

		status := "OK"
		if r.Err != nil {
			status = "FAIL: " + r.Err.Error()
		}
		fmt.Printf("%-17s| %-5s| %-30s| %s\n",
			r.At.Format("2006-01-02 15:04"), r.Kind, outcome, status)
	}
}

// #endregion output
