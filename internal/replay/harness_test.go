package replay

import (
	"path/filepath"
	"testing"

	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestCleanDayFixture replays the clean_day fixture and diffs the resulting
// day record. This is the primary regression test: if scoring, the rule
// table, or checkpoint consumption drift, the comparison catches it.
func TestCleanDayFixture(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "clean_day.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	st := newStore(t)

	results, err := Run(st, f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s event at %s failed: %v", r.Kind, r.At, r.Err)
		}
	}

	mismatches, err := Compare(st, f)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("fixture mismatches:\n%v", mismatches)
	}

	s := Summarize(results)
	if s.Events != 6 || s.Mornings != 1 || s.Evenings != 1 || s.Ticks != 4 || s.Failures != 0 {
		t.Fatalf("unexpected summary: %+v", s)
	}
}

// TestFailedDayAccumulatesPunishments scripts a day that misses both the
// morning deadline and the compliance line: four labels end up queued.
func TestFailedDayAccumulatesPunishments(t *testing.T) {
	f := &Fixture{
		Description: "missed morning, failed audit",
		Events: []FixtureEvent{
			{Kind: "tick", At: "2026-03-02T07:30"},
			{Kind: "pm", At: "2026-03-02T21:55", Fields: map[string]string{
				"wake": "06:10", "strength": "N", "calories": "2100", "protein": "150",
				"steps": "9000", "sleep": "6", "indulgence": "Y", "discipline": "5",
			}},
		},
	}
	st := newStore(t)

	results, err := Run(st, f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[1].Score == nil || *results[1].Score >= 80 || !results[1].Punished {
		t.Fatalf("evening should grade below the line: %+v", results[1])
	}

	rec, err := st.GetDay("2026-03-02")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{
		day.PunishDoubleCardio: true,
		day.PunishHalfCarbCut:  true,
		day.PunishExtraCardio:  true,
		day.PunishCarbCut:      true,
	}
	if len(rec.Punishments) != len(want) {
		t.Fatalf("expected 4 queued labels, got %v", rec.Punishments)
	}
	for _, p := range rec.Punishments {
		if !want[p] {
			t.Fatalf("unexpected label %q", p)
		}
	}
}

func TestRunAppliesFixtureTargets(t *testing.T) {
	targets := day.DefaultTargets()
	targets.ProteinFloor = 150
	f := &Fixture{
		Targets: &targets,
		Events: []FixtureEvent{
			// Protein 160 passes only under the relaxed floor.
			{Kind: "pm", At: "2026-03-02T21:55", Fields: map[string]string{
				"wake": "05:30", "strength": "Y", "calories": "1700", "protein": "160",
				"steps": "15200", "sleep": "8", "discipline": "9",
			}},
		},
		Expected: []FixtureExpected{
			// No morning report, so the cardio check fails: 6 of 7.
			{Date: "2026-03-02", Compliance: intPtr(86), Punishments: []string{}},
		},
	}
	st := newStore(t)

	if _, err := Run(st, f); err != nil {
		t.Fatalf("Run: %v", err)
	}
	mismatches, err := Compare(st, f)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("fixture mismatches: %v", mismatches)
	}
}

func TestRunRecordsValidationErrors(t *testing.T) {
	f := &Fixture{
		Events: []FixtureEvent{
			{Kind: "pm", At: "2026-03-02T21:55", Fields: map[string]string{"calories": "junk"}},
		},
	}
	st := newStore(t)

	results, err := Run(st, f)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("malformed evening report must surface on the event result")
	}
	if s := Summarize(results); s.Failures != 1 {
		t.Fatalf("expected 1 failure, got %+v", s)
	}
}

func TestRunRejectsUnknownKind(t *testing.T) {
	f := &Fixture{Events: []FixtureEvent{{Kind: "noon", At: "2026-03-02T12:00"}}}
	if _, err := Run(newStore(t), f); err == nil {
		t.Fatal("expected error for unknown event kind")
	}
}

func TestCompareReportsMismatches(t *testing.T) {
	st := newStore(t)
	f := &Fixture{
		Expected: []FixtureExpected{
			{Date: "2026-03-02", Compliance: intPtr(86), Punishments: []string{day.PunishCarbCut}},
		},
	}
	// Nothing ran: the day is ungraded with no punishments.
	mismatches, err := Compare(st, f)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(mismatches) != 2 {
		t.Fatalf("expected compliance and punishment mismatches, got %v", mismatches)
	}
}

func intPtr(v int) *int { return &v }
