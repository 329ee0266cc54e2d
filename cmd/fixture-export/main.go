package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/replay"
	"github.com/danwhitfield/war-coach/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to war_coach.db")
	last := flag.Int("last", 7, "number of most recent days to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/war_coach.db --out path/to/fixture.json [--last N]")
		os.Exit(2)
	}

	if err := run(*dbPath, *last, *outPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath string, last int, outPath string) error {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer st.Close()

	recs, err := st.ListDays(last)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}
	if len(recs) == 0 {
		return fmt.Errorf("no day records found")
	}

	// Store returns newest first; fixtures replay chronologically.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}

	cfg, err := st.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fixture := buildFixture(recs, cfg.Targets)
	return writeFixture(fixture, outPath)
}

// #endregion extract

// #region output

// buildFixture reconstructs the submission events from the stored reports.
// Scheduler ticks are not reconstructable from day records alone, so the
// fixture replays submissions only and pins compliance and punishments that
// came from grading; deadline punishments queued by ticks will not reappear.
func buildFixture(recs []day.Record, targets day.Targets) replay.Fixture {
	f := replay.Fixture{
		Description: fmt.Sprintf("Exported session: %d day records from a live DB", len(recs)),
		Targets:     &targets,
	}

	for _, rec := range recs {
		if rec.AM != nil {
			f.Events = append(f.Events, replay.FixtureEvent{
				Kind: "am",
				At:   rec.AM.SubmittedAt.Format("2006-01-02T15:04"),
				Fields: map[string]string{
					"distance": strconv.FormatFloat(rec.AM.Distance, 'f', -1, 64),
					"steps":    strconv.Itoa(rec.AM.Steps),
					"kcal":     strconv.FormatFloat(rec.AM.Kcal, 'f', -1, 64),
				},
			})
		}
		if rec.PM != nil {
			f.Events = append(f.Events, replay.FixtureEvent{
				Kind: "pm",
				At:   rec.PM.SubmittedAt.Format("2006-01-02T15:04"),
				Fields: map[string]string{
					"wake":       rec.PM.Wake,
					"strength":   rec.PM.Strength,
					"calories":   strconv.Itoa(rec.PM.Calories),
					"protein":    strconv.Itoa(rec.PM.Protein),
					"steps":      strconv.Itoa(rec.PM.Steps),
					"sleep":      strconv.FormatFloat(rec.PM.Sleep, 'f', -1, 64),
					"indulgence": rec.PM.Indulgence,
					"discipline": strconv.Itoa(rec.PM.Discipline),
				},
			})
		}

		expected := replay.FixtureExpected{Date: rec.Date, Punishments: []string{}}
		if rec.PM != nil {
			// Only grading-driven state replays from submissions alone.
			expected.Compliance = rec.Compliance
			if rec.Compliance != nil && *rec.Compliance < 80 {
				expected.Punishments = day.EveningFailPunishments()
			}
		}
		f.Expected = append(f.Expected, expected)
	}
	return f
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote fixture to %s (%d bytes, %d events)\n", outPath, len(data), len(fixture.Events))
	return nil
}

// #endregion output
