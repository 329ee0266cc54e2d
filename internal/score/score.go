// Package score computes the daily compliance percentage from a graded
// day record. The scorer is a pure function: no clock, no store, identical
// inputs always yield the identical integer, so it can be re-run on every
// PM re-submission without drift.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/danwhitfield/war-coach/internal/day"
)

// #region types

// Check captures a single compliance check result.
type Check struct {
	Name   string
	Pass   bool
	Detail string
}

// Result is the output of grading one day.
type Result struct {
	Score  int // 0..100
	Passed int // checks satisfied
	Total  int // always 7
	Checks []Check
}

// Reason summarizes the failed checks, or "all checks passed".
func (r Result) Reason() string {
	var failed []string
	for _, c := range r.Checks {
		if !c.Pass {
			failed = append(failed, c.Name)
		}
	}
	if len(failed) == 0 {
		return "all checks passed"
	}
	return fmt.Sprintf("failed: %s", strings.Join(failed, ", "))
}

// #endregion types

// #region compliance

// Compliance grades a day against the targets using seven equally weighted
// binary checks. A missing AM or PM report fails every check that depends on
// it; no partial credit. Missing PM discipline substitutes the discipline
// floor, which trivially satisfies check 7 (deliberate default-pass).
//
// The percentage is rounded once at the end, half-to-even.
func Compliance(rec day.Record, targets day.Targets) Result {
	checks := make([]Check, 0, 7)

	// 1. Calories at or under ceiling.
	checks = append(checks, intCeiling("calories", pmCalories(rec), targets.CalorieCeiling, rec.PM != nil))

	// 2. Protein at or over floor.
	checks = append(checks, intFloor("protein", pmProtein(rec), targets.ProteinFloor, rec.PM != nil))

	// 3. Steps at or over floor.
	checks = append(checks, intFloor("steps", pmSteps(rec), targets.StepFloor, rec.PM != nil))

	// 4. Strength session done.
	strength := rec.PM != nil && strings.EqualFold(rec.PM.Strength, "Y")
	checks = append(checks, Check{
		Name:   "strength",
		Pass:   strength,
		Detail: fmt.Sprintf("strength=%s", pmStrength(rec)),
	})

	// 5. Morning cardio kcal at or over floor.
	cardio := rec.AM != nil && rec.AM.Kcal >= float64(targets.CardioKcalFloor)
	checks = append(checks, Check{
		Name:   "cardio",
		Pass:   cardio,
		Detail: fmt.Sprintf("am kcal %s vs floor %d", amKcal(rec), targets.CardioKcalFloor),
	})

	// 6. Sleep hours at or over floor.
	sleep := rec.PM != nil && rec.PM.Sleep >= targets.SleepFloor
	checks = append(checks, Check{
		Name:   "sleep",
		Pass:   sleep,
		Detail: fmt.Sprintf("sleep vs floor %.1f", targets.SleepFloor),
	})

	// 7. Discipline at or over floor; absent discipline means the floor.
	disc := targets.DisciplineFloor
	if rec.PM != nil {
		disc = rec.PM.Discipline
	}
	checks = append(checks, Check{
		Name:   "discipline",
		Pass:   disc >= targets.DisciplineFloor,
		Detail: fmt.Sprintf("discipline %d vs floor %d", disc, targets.DisciplineFloor),
	})

	passed := 0
	for _, c := range checks {
		if c.Pass {
			passed++
		}
	}

	pct := int(math.RoundToEven(float64(passed) / 7.0 * 100.0))

	return Result{
		Score:  pct,
		Passed: passed,
		Total:  7,
		Checks: checks,
	}
}

// #endregion compliance

// #region check-helpers

func intCeiling(name string, value int, ceiling int, present bool) Check {
	return Check{
		Name:   name,
		Pass:   present && value <= ceiling,
		Detail: fmt.Sprintf("%s %d vs ceiling %d", name, value, ceiling),
	}
}

func intFloor(name string, value int, floor int, present bool) Check {
	return Check{
		Name:   name,
		Pass:   present && value >= floor,
		Detail: fmt.Sprintf("%s %d vs floor %d", name, value, floor),
	}
}

func pmCalories(rec day.Record) int {
	if rec.PM == nil {
		return 0
	}
	return rec.PM.Calories
}

func pmProtein(rec day.Record) int {
	if rec.PM == nil {
		return 0
	}
	return rec.PM.Protein
}

func pmSteps(rec day.Record) int {
	if rec.PM == nil {
		return 0
	}
	return rec.PM.Steps
}

func pmStrength(rec day.Record) string {
	if rec.PM == nil {
		return "?"
	}
	return rec.PM.Strength
}

func amKcal(rec day.Record) string {
	if rec.AM == nil {
		return "?"
	}
	return fmt.Sprintf("%.0f", rec.AM.Kcal)
}

// #endregion check-helpers
