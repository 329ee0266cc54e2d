package day

import (
	"sort"
	"time"
)

// #region targets
// Targets holds the configurable compliance thresholds. Shared read-only by
// the scorer and the scheduler; mutated only through the tracker's
// UpdateTargets.
type Targets struct {
	CalorieCeiling  int     `json:"cal_target"`      // max kcal/day
	ProteinFloor    int     `json:"protein_target"`  // g/day
	StepFloor       int     `json:"steps_target"`    // steps/day
	CardioKcalFloor int     `json:"cardio_target"`   // morning fasted cardio kcal
	SleepFloor      float64 `json:"sleep_target"`    // hours
	DisciplineFloor int     `json:"discipline_min"`  // 1..10
}

// DefaultTargets returns the stock thresholds.
func DefaultTargets() Targets {
	return Targets{
		CalorieCeiling:  1800,
		ProteinFloor:    190,
		StepFloor:       12000,
		CardioKcalFloor: 600,
		SleepFloor:      7.5,
		DisciplineFloor: 8,
	}
}

// #endregion targets

// #region reports
// AMReport is the morning cardio report. A re-submission the same day
// replaces the whole report (last write wins).
type AMReport struct {
	Distance    float64   `json:"distance"` // km
	Steps       int       `json:"steps"`
	Kcal        float64   `json:"kcal"`
	SubmittedAt time.Time `json:"ts"`
}

// PMReport is the night audit report. Same replace-on-resubmit semantics
// as AMReport.
type PMReport struct {
	Wake        string    `json:"wake"`       // free-text HH:MM
	Strength    string    `json:"strength"`   // "Y" | "N"
	Calories    int       `json:"calories"`
	Protein     int       `json:"protein"`    // grams
	Steps       int       `json:"steps"`
	Sleep       float64   `json:"sleep"`      // hours
	Indulgence  string    `json:"indulgence"` // "Y" | "N"
	Discipline  int       `json:"discipline"` // 1..10
	SubmittedAt time.Time `json:"ts"`
}

// #endregion reports

// #region record
// Record is the full tracked state for one calendar date. Created lazily on
// first access and never deleted. Compliance stays nil until the first PM
// report has been graded.
type Record struct {
	Date        string    `json:"date"` // "2006-01-02", local time zone
	AM          *AMReport `json:"am,omitempty"`
	PM          *PMReport `json:"pm,omitempty"`
	Compliance  *int      `json:"compliance,omitempty"` // 0..100
	Punishments []string  `json:"punishment_next_day"`  // sorted set of labels
	Fired       []string  `json:"fired"`                // sorted set of checkpoint names fired this date
}

// NewRecord returns an empty record for the given date.
func NewRecord(date string) Record {
	return Record{
		Date:        date,
		Punishments: []string{},
		Fired:       []string{},
	}
}

// #endregion record

// #region punishments
// AddPunishments unions labels into the record's punishment set. Duplicates
// collapse; the set stays sorted for stable display. Never removes entries.
func (r *Record) AddPunishments(labels ...string) {
	r.Punishments = unionSorted(r.Punishments, labels)
}

// MarkFired records that a checkpoint has fired on this date.
func (r *Record) MarkFired(checkpoint string) {
	r.Fired = unionSorted(r.Fired, []string{checkpoint})
}

// HasFired reports whether a checkpoint already fired on this date.
func (r *Record) HasFired(checkpoint string) bool {
	for _, f := range r.Fired {
		if f == checkpoint {
			return true
		}
	}
	return false
}

func unionSorted(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(add))
	for _, s := range existing {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		seen[s] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// #endregion punishments
