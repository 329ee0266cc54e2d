// Package replay runs scripted day fixtures through the real tracker and
// scheduler against a throwaway SQLite store, then diffs the resulting day
// records against the fixture's expectations. Used by cmd/replay and as a
// regression harness in tests.
package replay

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/notify"
	"github.com/danwhitfield/war-coach/internal/schedule"
	"github.com/danwhitfield/war-coach/internal/store"
	"github.com/danwhitfield/war-coach/internal/tracker"
)

// #region result-types

// EventResult captures the outcome of one scripted event.
type EventResult struct {
	Kind string
	At   time.Time
	Date string

	// Morning events
	Verdict string

	// Evening events
	Score    *int
	Punished bool

	// Tick events
	Fired []string

	Err error
}

// Summary aggregates a replay run.
type Summary struct {
	Events   int
	Mornings int
	Evenings int
	Ticks    int
	Failures int
}

// #endregion result-types

// #region run

// Run executes the fixture's events in order through a tracker and scheduler
// built over st. Validation failures are recorded per event, not fatal; only
// broken fixtures (bad timestamps, unknown kinds) abort the run.
func Run(st *store.Store, f *Fixture) ([]EventResult, error) {
	if f.Targets != nil {
		cfg, err := st.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Targets = *f.Targets
		if err := st.SaveConfig(cfg); err != nil {
			return nil, fmt.Errorf("apply fixture targets: %w", err)
		}
	}

	auditLog, err := audit.NewLog(st.DB())
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	tr, err := tracker.New(st, auditLog)
	if err != nil {
		return nil, fmt.Errorf("tracker: %w", err)
	}

	times := schedule.DefaultTimes()
	if f.Times != nil {
		times = *f.Times
	}
	sched := schedule.New(tr, notify.LogNotifier{}, auditLog, times)

	ctx := context.Background()
	results := make([]EventResult, 0, len(f.Events))

	for i, ev := range f.Events {
		at, err := ev.Time()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		res := EventResult{Kind: ev.Kind, At: at, Date: day.DateOf(at)}

		switch ev.Kind {
		case "am":
			mr, err := tr.SubmitMorning(res.Date, ev.Fields, at)
			if err != nil {
				res.Err = err
			} else {
				res.Verdict = mr.Verdict
			}
		case "pm":
			er, err := tr.SubmitEvening(res.Date, ev.Fields, at)
			if err != nil {
				res.Err = err
			} else {
				score := er.Score.Score
				res.Score = &score
				res.Punished = er.Punished
			}
		case "tick":
			for _, firing := range sched.Tick(ctx, at) {
				res.Fired = append(res.Fired, firing.Rule)
				if firing.Err != nil && res.Err == nil {
					res.Err = firing.Err
				}
			}
		default:
			return nil, fmt.Errorf("event %d: unknown kind %q", i, ev.Kind)
		}

		results = append(results, res)
	}
	return results, nil
}

// Summarize computes aggregate stats from event results.
func Summarize(results []EventResult) Summary {
	s := Summary{Events: len(results)}
	for _, r := range results {
		switch r.Kind {
		case "am":
			s.Mornings++
		case "pm":
			s.Evenings++
		case "tick":
			s.Ticks++
		}
		if r.Err != nil {
			s.Failures++
		}
	}
	return s
}

// #endregion run

// #region compare

// Compare diffs the store's day records against the fixture's expectations
// and returns one human-readable line per mismatch. Empty means the run
// matched.
func Compare(st *store.Store, f *Fixture) ([]string, error) {
	var mismatches []string
	for _, want := range f.Expected {
		rec, err := st.GetDay(want.Date)
		if err != nil {
			return nil, fmt.Errorf("get day %s: %w", want.Date, err)
		}

		switch {
		case want.Compliance == nil && rec.Compliance != nil:
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected ungraded, got compliance %d", want.Date, *rec.Compliance))
		case want.Compliance != nil && rec.Compliance == nil:
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected compliance %d, got ungraded", want.Date, *want.Compliance))
		case want.Compliance != nil && *rec.Compliance != *want.Compliance:
			mismatches = append(mismatches,
				fmt.Sprintf("%s: expected compliance %d, got %d", want.Date, *want.Compliance, *rec.Compliance))
		}

		if d := setDiff(want.Punishments, rec.Punishments); d != "" {
			mismatches = append(mismatches, fmt.Sprintf("%s: punishments %s", want.Date, d))
		}
		if len(want.Fired) > 0 {
			if d := setDiff(want.Fired, rec.Fired); d != "" {
				mismatches = append(mismatches, fmt.Sprintf("%s: fired %s", want.Date, d))
			}
		}
	}
	return mismatches, nil
}

// setDiff compares two label sets and describes the difference, or returns
// "" when they match.
func setDiff(want, got []string) string {
	w := append([]string(nil), want...)
	g := append([]string(nil), got...)
	sort.Strings(w)
	sort.Strings(g)
	if len(w) != len(g) {
		return fmt.Sprintf("expected %v, got %v", w, g)
	}
	for i := range w {
		if w[i] != g[i] {
			return fmt.Sprintf("expected %v, got %v", w, g)
		}
	}
	return ""
}

// #endregion compare
