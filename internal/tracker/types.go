package tracker

import (
	"fmt"

	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/score"
)

// #region validation-error
// ValidationError rejects a malformed submission. The day record is left
// untouched when one is returned.
type ValidationError struct {
	Field string
	Value string
	Hint  string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %q: missing (%s)", e.Field, e.Hint)
	}
	return fmt.Sprintf("field %q: cannot parse %q (%s)", e.Field, e.Value, e.Hint)
}

// #endregion validation-error

// #region results
// MorningResult is the immediate feedback for a morning submission. The
// verdict is independent of the 7-check compliance score and is never
// persisted.
type MorningResult struct {
	Report  day.AMReport
	Passed  bool   // distance and cardio kcal both at standard
	Verdict string // "PASS" | "CHECK"
}

// EveningResult is the outcome of a graded night audit.
type EveningResult struct {
	Report      day.PMReport
	Score       score.Result
	Punished    bool     // score dropped below the grading line
	Punishments []string // full punishment queue for the date after grading
}

// #endregion results
