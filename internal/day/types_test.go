package day

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddPunishmentsIdempotent(t *testing.T) {
	rec := NewRecord("2026-03-02")
	rec.AddPunishments("+30 min morning cardio", "24h carb cut")
	rec.AddPunishments("+30 min morning cardio", "24h carb cut")

	if len(rec.Punishments) != 2 {
		t.Fatalf("expected 2 punishments, got %d: %v", len(rec.Punishments), rec.Punishments)
	}
}

func TestAddPunishmentsSortedAndAdditive(t *testing.T) {
	rec := NewRecord("2026-03-02")
	rec.AddPunishments("Double cardio tomorrow")
	rec.AddPunishments("24h carb cut", "+30 min morning cardio")

	want := []string{"+30 min morning cardio", "24h carb cut", "Double cardio tomorrow"}
	if len(rec.Punishments) != len(want) {
		t.Fatalf("expected %d punishments, got %v", len(want), rec.Punishments)
	}
	for i, p := range want {
		if rec.Punishments[i] != p {
			t.Fatalf("at %d: expected %q, got %q", i, p, rec.Punishments[i])
		}
	}
}

func TestMarkFiredDedupes(t *testing.T) {
	rec := NewRecord("2026-03-02")
	if rec.HasFired("am_deadline") {
		t.Fatal("fresh record should have no fired checkpoints")
	}
	rec.MarkFired("am_deadline")
	rec.MarkFired("am_deadline")
	if len(rec.Fired) != 1 {
		t.Fatalf("expected 1 fired entry, got %v", rec.Fired)
	}
	if !rec.HasFired("am_deadline") {
		t.Fatal("expected am_deadline to be marked fired")
	}
}

func TestRecordJSONPreservesAbsence(t *testing.T) {
	rec := NewRecord("2026-03-02")
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	for _, key := range []string{"am", "pm", "compliance"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("absent field %q must not appear in JSON", key)
		}
	}

	rec.AM = &AMReport{Distance: 8.2, Steps: 12345, Kcal: 640, SubmittedAt: time.Now()}
	data, _ = json.Marshal(rec)
	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.AM == nil || back.AM.Distance != 8.2 {
		t.Fatalf("AM report did not round-trip: %+v", back.AM)
	}
	if back.PM != nil || back.Compliance != nil {
		t.Fatal("unset fields must stay nil after round-trip")
	}
}

func TestDateHelpers(t *testing.T) {
	sun := time.Date(2026, 3, 1, 21, 0, 0, 0, time.Local) // a Sunday
	if DateOf(sun) != "2026-03-01" {
		t.Fatalf("DateOf: got %s", DateOf(sun))
	}
	if MinuteOf(sun) != "21:00" {
		t.Fatalf("MinuteOf: got %s", MinuteOf(sun))
	}
	if !IsSunday(sun) {
		t.Fatal("2026-03-01 is a Sunday")
	}
	if IsSunday(sun.AddDate(0, 0, 1)) {
		t.Fatal("2026-03-02 is a Monday")
	}
}
