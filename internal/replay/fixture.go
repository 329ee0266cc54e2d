package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/schedule"
)

// eventTimeLayout is the local wall-clock stamp used in fixtures.
const eventTimeLayout = "2006-01-02T15:04"

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a scripted
// sequence of report submissions and scheduler ticks, plus the per-day
// records expected once the script has run.
type Fixture struct {
	Description string            `json:"description"`
	Targets     *day.Targets      `json:"targets,omitempty"`
	Times       *schedule.Times   `json:"times,omitempty"`
	Events      []FixtureEvent    `json:"events"`
	Expected    []FixtureExpected `json:"expected_results"`
}

// FixtureEvent is one scripted step. Kind is "am", "pm", or "tick"; At is a
// local wall-clock stamp ("2006-01-02T15:04"). Fields carries the report
// key/values for am and pm events and is ignored for ticks.
type FixtureEvent struct {
	Kind   string            `json:"kind"`
	At     string            `json:"at"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FixtureExpected pins the day record a replay run must end with.
// Compliance nil means "must be ungraded". Punishments and Fired are
// compared as sets.
type FixtureExpected struct {
	Date        string   `json:"date"`
	Compliance  *int     `json:"compliance,omitempty"`
	Punishments []string `json:"punishments"`
	Fired       []string `json:"fired,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Time parses the event's local wall-clock stamp.
func (e *FixtureEvent) Time() (time.Time, error) {
	t, err := time.ParseInLocation(eventTimeLayout, e.At, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("event at %q: %w", e.At, err)
	}
	return t, nil
}

// #endregion fixture-loader
