package schedule

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/notify"
	"github.com/danwhitfield/war-coach/internal/store"
	"github.com/danwhitfield/war-coach/internal/tracker"
)

// captureNotifier records sent notifications; fails when failWith is set.
type captureNotifier struct {
	sent     []notify.Notification
	failWith error
}

func (c *captureNotifier) Send(_ context.Context, n notify.Notification) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.sent = append(c.sent, n)
	return nil
}

func newScheduler(t *testing.T, n notify.Notifier) (*Scheduler, *tracker.Tracker) {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	auditLog, err := audit.NewLog(st.DB())
	if err != nil {
		t.Fatalf("NewLog: %v", err)
	}
	tr, err := tracker.New(st, auditLog)
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	return New(tr, n, auditLog, DefaultTimes()), tr
}

// monday is 2026-03-02; sunday is 2026-03-01.
func monday(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.Local)
}

func sunday(hour, min int) time.Time {
	return time.Date(2026, 3, 1, hour, min, 0, 0, time.Local)
}

func firingFor(firings []Firing, rule string) *Firing {
	for i := range firings {
		if firings[i].Rule == rule {
			return &firings[i]
		}
	}
	return nil
}

func TestNothingDueBeforeFirstTrigger(t *testing.T) {
	sink := &captureNotifier{}
	s, _ := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(5, 0))
	if len(firings) != 0 {
		t.Fatalf("expected no firings at 05:00, got %v", firings)
	}
}

func TestWakeFiresOncePerDay(t *testing.T) {
	sink := &captureNotifier{}
	s, _ := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(5, 30))
	if f := firingFor(firings, "wake"); f == nil || !f.Notified {
		t.Fatalf("expected notified wake firing, got %v", firings)
	}
	if len(sink.sent) != 1 || sink.sent[0].Checkpoint != "wake" {
		t.Fatalf("expected one wake notification, got %v", sink.sent)
	}

	// Double tick in the same minute: nothing more fires.
	firings = s.Tick(context.Background(), monday(5, 30))
	if len(firings) != 0 {
		t.Fatalf("expected no refire, got %v", firings)
	}
	if len(sink.sent) != 1 {
		t.Fatalf("expected still one notification, got %d", len(sink.sent))
	}
}

func TestAMDeadlinePunishesMissingReportExactlyOnce(t *testing.T) {
	sink := &captureNotifier{}
	s, tr := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(7, 30))
	f := firingFor(firings, "am_deadline")
	if f == nil {
		t.Fatalf("expected am_deadline firing, got %v", firings)
	}
	if len(f.Punishments) != 2 {
		t.Fatalf("expected 2 punishment labels, got %v", f.Punishments)
	}

	// A second tick at the same minute must not duplicate labels.
	s.Tick(context.Background(), monday(7, 30))

	rec, _ := tr.Day("2026-03-02")
	want := []string{day.PunishHalfCarbCut, day.PunishDoubleCardio}
	if len(rec.Punishments) != 2 {
		t.Fatalf("expected exactly 2 queued punishments, got %v", rec.Punishments)
	}
	got := map[string]bool{}
	for _, p := range rec.Punishments {
		got[p] = true
	}
	for _, p := range want {
		if !got[p] {
			t.Fatalf("missing punishment %q in %v", p, rec.Punishments)
		}
	}
}

func TestAMDeadlineQuietWhenMorningAtStandard(t *testing.T) {
	sink := &captureNotifier{}
	s, tr := newScheduler(t, sink)

	if _, err := tr.SubmitMorning("2026-03-02", map[string]string{
		"distance": "8.2", "steps": "12345", "kcal": "640",
	}, monday(6, 45)); err != nil {
		t.Fatalf("SubmitMorning: %v", err)
	}

	firings := s.Tick(context.Background(), monday(7, 30))
	f := firingFor(firings, "am_deadline")
	if f == nil {
		t.Fatal("am_deadline checkpoint must still be consumed")
	}
	if len(f.Punishments) != 0 || f.Notified {
		t.Fatalf("morning at standard must not punish or notify: %+v", f)
	}

	rec, _ := tr.Day("2026-03-02")
	if len(rec.Punishments) != 0 {
		t.Fatalf("no punishments expected, got %v", rec.Punishments)
	}
	if !rec.HasFired("am_deadline") {
		t.Fatal("checkpoint must be marked consumed")
	}
}

func TestAMDeadlinePunishesSubstandardReport(t *testing.T) {
	sink := &captureNotifier{}
	s, tr := newScheduler(t, sink)

	tr.SubmitMorning("2026-03-02", map[string]string{
		"distance": "6.0", "steps": "8000", "kcal": "640",
	}, monday(6, 45))

	firings := s.Tick(context.Background(), monday(7, 30))
	f := firingFor(firings, "am_deadline")
	if f == nil || len(f.Punishments) != 2 {
		t.Fatalf("substandard distance must punish: %v", firings)
	}
}

func TestLateTickCatchesUpMissedRules(t *testing.T) {
	sink := &captureNotifier{}
	s, _ := newScheduler(t, sink)

	// First tick of the day at 07:45: wake (05:30) and am_deadline (07:30)
	// are both due and unfired.
	firings := s.Tick(context.Background(), monday(7, 45))
	if firingFor(firings, "wake") == nil {
		t.Fatalf("missed wake must fire late, got %v", firings)
	}
	if firingFor(firings, "am_deadline") == nil {
		t.Fatalf("missed am_deadline must fire late, got %v", firings)
	}
}

func TestPMGradeSkipsWhenAuditSubmitted(t *testing.T) {
	sink := &captureNotifier{}
	s, tr := newScheduler(t, sink)

	if _, err := tr.SubmitEvening("2026-03-02", map[string]string{
		"wake": "05:30", "strength": "Y", "calories": "1700", "protein": "195",
		"steps": "15200", "sleep": "8", "discipline": "9",
	}, monday(21, 50)); err != nil {
		t.Fatalf("SubmitEvening: %v", err)
	}

	firings := s.Tick(context.Background(), monday(22, 10))
	f := firingFor(firings, "pm_grade")
	if f == nil {
		t.Fatal("pm_grade checkpoint must be consumed")
	}
	if len(f.Punishments) != 0 {
		t.Fatalf("submitted audit must not punish: %v", f.Punishments)
	}
}

func TestPMGradePunishesMissingAudit(t *testing.T) {
	sink := &captureNotifier{}
	s, tr := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(22, 10))
	f := firingFor(firings, "pm_grade")
	if f == nil || len(f.Punishments) != 2 {
		t.Fatalf("missing audit must punish: %v", firings)
	}

	rec, _ := tr.Day("2026-03-02")
	got := map[string]bool{}
	for _, p := range rec.Punishments {
		got[p] = true
	}
	if !got[day.PunishExtraCardio] || !got[day.PunishCarbCut] {
		t.Fatalf("wrong labels queued: %v", rec.Punishments)
	}
}

func TestSundayAuditOnlyOnSundays(t *testing.T) {
	sink := &captureNotifier{}
	s, _ := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(21, 0))
	if firingFor(firings, "sunday_audit") != nil {
		t.Fatal("sunday_audit must not fire on a Monday")
	}

	firings = s.Tick(context.Background(), sunday(21, 0))
	if firingFor(firings, "sunday_audit") == nil {
		t.Fatalf("sunday_audit must fire on Sunday, got %v", firings)
	}
}

func TestNotifierFailureIsIsolated(t *testing.T) {
	sink := &captureNotifier{failWith: errors.New("relay down")}
	s, tr := newScheduler(t, sink)

	firings := s.Tick(context.Background(), monday(7, 30))

	// Both rules still run; punishments still persist.
	wake := firingFor(firings, "wake")
	deadline := firingFor(firings, "am_deadline")
	if wake == nil || deadline == nil {
		t.Fatalf("all rules must run despite delivery failures: %v", firings)
	}
	if wake.Err == nil || deadline.Err == nil {
		t.Fatal("delivery failures must be reported on the firing")
	}

	rec, _ := tr.Day("2026-03-02")
	if len(rec.Punishments) != 2 {
		t.Fatalf("punishments must persist despite delivery failure: %v", rec.Punishments)
	}

	// Decided firings are not retried.
	firings = s.Tick(context.Background(), monday(7, 31))
	if firingFor(firings, "wake") != nil || firingFor(firings, "am_deadline") != nil {
		t.Fatalf("failed deliveries must not refire: %v", firings)
	}
}

func TestDateRolloverResetsCheckpoints(t *testing.T) {
	sink := &captureNotifier{}
	s, _ := newScheduler(t, sink)

	if f := firingFor(s.Tick(context.Background(), monday(5, 30)), "wake"); f == nil {
		t.Fatal("wake must fire on day one")
	}
	next := monday(5, 30).AddDate(0, 0, 1)
	if f := firingFor(s.Tick(context.Background(), next), "wake"); f == nil {
		t.Fatal("wake must fire again after date rollover")
	}
}
