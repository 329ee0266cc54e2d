package schedule

import (
	"fmt"

	"github.com/danwhitfield/war-coach/internal/day"
)

// #region times
// Times holds the local "HH:MM" trigger points of the daily rule table.
type Times struct {
	Wake         string   `yaml:"wake"`
	AMDeadline   string   `yaml:"am_deadline"`
	ProteinPings []string `yaml:"protein_pings"`
	Midday       string   `yaml:"midday"`
	PMAudit      string   `yaml:"pm_audit"`
	PMGrade      string   `yaml:"pm_grade"`
	SundayAudit  string   `yaml:"sunday_audit"` // Sundays only
}

// DefaultTimes returns the stock daily schedule.
func DefaultTimes() Times {
	return Times{
		Wake:         "05:30",
		AMDeadline:   "07:30",
		ProteinPings: []string{"09:00", "13:00", "17:00", "21:00"},
		Midday:       "13:00",
		PMAudit:      "22:00",
		PMGrade:      "22:10",
		SundayAudit:  "21:00",
	}
}

// #endregion times

// #region rule-types
// Decision is what a rule wants done once its trigger time is consumed.
// An empty Message emits no notification; an empty Punishments queues nothing.
type Decision struct {
	Message     string
	Punishments []string
	Reason      string
}

// Rule is one row of the daily checkpoint table. Decide runs against a
// snapshot of the day record at firing time.
type Rule struct {
	Name       string
	At         string // "HH:MM" local
	SundayOnly bool
	Decide     func(rec day.Record, targets day.Targets) Decision
}

// #endregion rule-types

// #region rule-table
// Rules builds the fixed daily rule table for the given trigger times.
func Rules(times Times) []Rule {
	rules := []Rule{
		{
			Name: "wake",
			At:   times.Wake,
			Decide: func(_ day.Record, _ day.Targets) Decision {
				return Decision{
					Message: fmt.Sprintf(
						"WAKE UP. Report awake. If cardio is not logged by %s you FAIL: double cardio tomorrow plus a 50%% carb cut.",
						times.AMDeadline),
				}
			},
		},
	}

	for _, at := range times.ProteinPings {
		rules = append(rules, Rule{
			Name: "protein_ping_" + at,
			At:   at,
			Decide: func(_ day.Record, _ day.Targets) Decision {
				return Decision{Message: "Protein feed NOW: at least 40 g. Don't underfeed or tomorrow burns harder."}
			},
		})
	}

	rules = append(rules,
		Rule{
			Name: "midday",
			At:   times.Midday,
			Decide: func(_ day.Record, _ day.Targets) Decision {
				return Decision{Message: "Midday check: protein at 100 g by now? Calories logging started? Steps at 6k? Report if behind."}
			},
		},
		Rule{
			Name:   "am_deadline",
			At:     times.AMDeadline,
			Decide: amDeadline,
		},
		Rule{
			Name: "pm_audit",
			At:   times.PMAudit,
			Decide: func(_ day.Record, _ day.Targets) Decision {
				return Decision{Message: "Night Audit time. Post: pm wake=HH:MM strength=Y/N calories=#### protein=### steps=##### sleep=# indulgence=Y/N discipline=#"}
			},
		},
		Rule{
			Name:   "pm_grade",
			At:     times.PMGrade,
			Decide: pmGrade,
		},
		Rule{
			Name:       "sunday_audit",
			At:         times.SundayAudit,
			SundayOnly: true,
			Decide: func(_ day.Record, _ day.Targets) Decision {
				return Decision{Message: "Weekly Audit (Sunday): upload front/side/back photos, morning weight, waist, and 7-day averages."}
			},
		},
	)

	return rules
}

// amDeadline punishes a missing or substandard morning report.
func amDeadline(rec day.Record, targets day.Targets) Decision {
	if rec.AM == nil {
		return Decision{
			Message:     "FAIL: no morning cardio report. Punishment set for tomorrow: double cardio plus a 50% carb cut.",
			Punishments: day.MorningFailPunishments(),
			Reason:      "no morning cardio report",
		}
	}
	if rec.AM.Distance < day.MinMorningDistanceKm || rec.AM.Kcal < float64(targets.CardioKcalFloor) {
		reason := fmt.Sprintf("morning below standard (distance %.2f km, kcal %.0f)", rec.AM.Distance, rec.AM.Kcal)
		return Decision{
			Message:     fmt.Sprintf("FAIL: %s. Punishment set for tomorrow: double cardio plus a 50%% carb cut.", reason),
			Punishments: day.MorningFailPunishments(),
			Reason:      reason,
		}
	}
	return Decision{Reason: "morning at standard"}
}

// pmGrade punishes a missed night audit. Graded submissions punish
// themselves at ingestion time.
func pmGrade(rec day.Record, _ day.Targets) Decision {
	if rec.PM != nil {
		return Decision{Reason: "night audit submitted"}
	}
	return Decision{
		Message:     "FAIL: no Night Audit. Punishment set for tomorrow: +30 min morning cardio plus a 24h carb cut.",
		Punishments: day.EveningFailPunishments(),
		Reason:      "no night audit",
	}
}

// #endregion rule-table
