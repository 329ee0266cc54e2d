// Package tracker owns all mutations to the Configuration Document and the
// day records. One mutex serializes submissions, target updates, and
// scheduler firings, so no two mutations to the same day record interleave.
package tracker

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/score"
	"github.com/danwhitfield/war-coach/internal/store"
)

// gradeLine is the compliance percentage under which an evening submission
// queues punishments.
const gradeLine = 80

// #region tracker-struct

// Tracker is the single-writer state holder over the store. All reads of
// mutable state go through it as well, so callers always see a committed
// record.
type Tracker struct {
	mu    sync.Mutex
	store *store.Store
	audit *audit.Log
	cfg   store.Config
}

// #endregion tracker-struct

// #region constructor

// New loads the Configuration Document (seeding defaults on first run) and
// returns a ready tracker. auditLog may be nil to disable audit rows.
func New(st *store.Store, auditLog *audit.Log) (*Tracker, error) {
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &Tracker{store: st, audit: auditLog, cfg: cfg}, nil
}

// #endregion constructor

// #region config-ops

// Targets returns a snapshot of the current compliance targets.
func (t *Tracker) Targets() day.Targets {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.Targets
}

// ChannelID returns the bound notification channel reference, empty if none.
func (t *Tracker) ChannelID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg.ChannelID
}

// BindChannel persists the notification channel reference.
func (t *Tracker) BindChannel(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.cfg
	cfg.ChannelID = id
	if err := t.store.SaveConfig(cfg); err != nil {
		return err
	}
	t.cfg = cfg
	log.Printf("[TRACK] bound channel %s", id)
	return nil
}

// UpdateTargets applies key=value threshold changes. Unknown keys and
// unparseable values are skipped, not errors: partial success is the
// contract here, unlike report ingestion. Returns the applied changes as
// "name=value" strings. An error is returned only when persisting fails, in
// which case nothing is applied.
func (t *Tracker) UpdateTargets(kv map[string]string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cfg := t.cfg
	var changed []string

	for k, v := range kv {
		switch strings.ToLower(k) {
		case "cal", "calories":
			if n, ok := parseIntLoose(v); ok {
				cfg.Targets.CalorieCeiling = n
				changed = append(changed, "cal_target="+strconv.Itoa(n))
			}
		case "protein":
			if n, ok := parseIntLoose(v); ok {
				cfg.Targets.ProteinFloor = n
				changed = append(changed, "protein_target="+strconv.Itoa(n))
			}
		case "steps":
			if n, ok := parseIntLoose(v); ok {
				cfg.Targets.StepFloor = n
				changed = append(changed, "steps_target="+strconv.Itoa(n))
			}
		case "cardio", "cardiokcal":
			if n, ok := parseIntLoose(v); ok {
				cfg.Targets.CardioKcalFloor = n
				changed = append(changed, "cardio_target="+strconv.Itoa(n))
			}
		case "sleep":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cfg.Targets.SleepFloor = f
				changed = append(changed, "sleep_target="+strconv.FormatFloat(f, 'g', -1, 64))
			}
		case "discipline":
			if n, ok := parseIntLoose(v); ok {
				cfg.Targets.DisciplineFloor = n
				changed = append(changed, "discipline_min="+strconv.Itoa(n))
			}
		}
	}

	if len(changed) == 0 {
		return nil, nil
	}
	if err := t.store.SaveConfig(cfg); err != nil {
		return nil, err
	}
	t.cfg = cfg

	t.recordAudit(audit.Entry{
		Date:        day.DateOf(time.Now()),
		TriggerType: "targets_update",
		Decision:    "updated",
		Reason:      strings.Join(changed, ", "),
	})
	log.Printf("[TRACK] targets updated: %s", strings.Join(changed, ", "))
	return changed, nil
}

// #endregion config-ops

// #region day-access

// Day returns the committed record for a date, or a fresh empty one. Never
// an error for an unknown date: records come into being on first access.
func (t *Tracker) Day(date string) (day.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.GetDay(date)
}

// Punishments returns the sorted punishment queue for a date.
func (t *Tracker) Punishments(date string) ([]string, error) {
	rec, err := t.Day(date)
	if err != nil {
		return nil, err
	}
	return rec.Punishments, nil
}

// #endregion day-access

// #region submit-morning

// SubmitMorning ingests a morning cardio report for the given date. Missing
// numeric fields default to zero; malformed ones reject the whole submission
// with a ValidationError and leave the record unchanged. A re-submission
// replaces the prior AM report.
//
// The returned verdict (distance and cardio kcal at standard) is immediate
// feedback only; it is not the compliance score and is not persisted.
func (t *Tracker) SubmitMorning(date string, fields map[string]string, ts time.Time) (MorningResult, error) {
	distance, err := parseFloatField(fields, "distance", "0")
	if err != nil {
		return MorningResult{}, err
	}
	steps, err := parseIntField(fields, "steps", "0")
	if err != nil {
		return MorningResult{}, err
	}
	kcal, err := parseFloatField(fields, "kcal", "0")
	if err != nil {
		return MorningResult{}, err
	}

	report := day.AMReport{
		Distance:    distance,
		Steps:       steps,
		Kcal:        kcal,
		SubmittedAt: ts,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.store.GetDay(date)
	if err != nil {
		return MorningResult{}, err
	}
	rec.AM = &report
	if err := t.store.PutDay(rec); err != nil {
		return MorningResult{}, err
	}

	passed := distance >= day.MinMorningDistanceKm && kcal >= float64(t.cfg.Targets.CardioKcalFloor)
	verdict := "CHECK"
	decision := "check"
	if passed {
		verdict = "PASS"
		decision = "pass"
	}

	t.recordAudit(audit.Entry{
		Date:        date,
		TriggerType: "am_report",
		Decision:    decision,
	})
	log.Printf("[TRACK] %s am logged: %.2f km, %d steps, %.0f kcal (%s)", date, distance, steps, kcal, verdict)

	return MorningResult{Report: report, Passed: passed, Verdict: verdict}, nil
}

// #endregion submit-morning

// #region submit-evening

// SubmitEvening ingests the night audit for the given date, then grades the
// day. calories, protein, steps and sleep are required; discipline defaults
// to the configured floor. The full new record (report, recomputed score,
// any punishments) is built in memory and committed in one write.
func (t *Tracker) SubmitEvening(date string, fields map[string]string, ts time.Time) (EveningResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	calories, err := parseIntField(fields, "calories", "")
	if err != nil {
		return EveningResult{}, err
	}
	protein, err := parseIntField(fields, "protein", "")
	if err != nil {
		return EveningResult{}, err
	}
	steps, err := parseIntField(fields, "steps", "")
	if err != nil {
		return EveningResult{}, err
	}
	sleep, err := parseFloatField(fields, "sleep", "")
	if err != nil {
		return EveningResult{}, err
	}
	discipline := t.cfg.Targets.DisciplineFloor
	if v, ok := fields["discipline"]; ok {
		n, parsed := parseIntLoose(v)
		if !parsed {
			return EveningResult{}, &ValidationError{Field: "discipline", Value: v, Hint: "integer 1-10"}
		}
		discipline = n
	}

	report := day.PMReport{
		Wake:        fields["wake"],
		Strength:    strings.ToUpper(fields["strength"]),
		Calories:    calories,
		Protein:     protein,
		Steps:       steps,
		Sleep:       sleep,
		Indulgence:  strings.ToUpper(valueOr(fields, "indulgence", "N")),
		Discipline:  discipline,
		SubmittedAt: ts,
	}

	rec, err := t.store.GetDay(date)
	if err != nil {
		return EveningResult{}, err
	}
	rec.PM = &report

	// Recompute, never accumulate.
	res := score.Compliance(rec, t.cfg.Targets)
	rec.Compliance = &res.Score

	punished := res.Score < gradeLine
	if punished {
		rec.AddPunishments(day.EveningFailPunishments()...)
	}

	if err := t.store.PutDay(rec); err != nil {
		return EveningResult{}, err
	}

	decision := "pass"
	if punished {
		decision = "fail"
	}
	t.recordAudit(audit.Entry{
		Date:        date,
		TriggerType: "pm_report",
		Decision:    decision,
		Reason:      res.Reason(),
	})
	log.Printf("[TRACK] %s pm logged: compliance %d%% (%s)", date, res.Score, res.Reason())

	return EveningResult{
		Report:      report,
		Score:       res,
		Punished:    punished,
		Punishments: rec.Punishments,
	}, nil
}

// #endregion submit-evening

// #region fire-checkpoint

// FireCheckpoint marks a checkpoint fired for the date and unions the given
// punishment labels into the queue, all in one committed write. Returns
// false without touching anything when the checkpoint already fired; this
// is the once-per-day debounce the scheduler relies on.
func (t *Tracker) FireCheckpoint(date, checkpoint string, labels []string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, err := t.store.GetDay(date)
	if err != nil {
		return false, err
	}
	if rec.HasFired(checkpoint) {
		return false, nil
	}
	rec.MarkFired(checkpoint)
	rec.AddPunishments(labels...)
	if err := t.store.PutDay(rec); err != nil {
		return false, err
	}
	return true, nil
}

// #endregion fire-checkpoint

// #region helpers

func (t *Tracker) recordAudit(entry audit.Entry) {
	if t.audit == nil {
		return
	}
	if err := t.audit.Record(entry); err != nil {
		log.Printf("[TRACK] audit write failed: %v", err)
	}
}

func valueOr(fields map[string]string, key, fallback string) string {
	if v, ok := fields[key]; ok {
		return v
	}
	return fallback
}

func parseFloatField(fields map[string]string, key, fallback string) (float64, error) {
	v, ok := fields[key]
	if !ok {
		if fallback == "" {
			return 0, &ValidationError{Field: key, Hint: "required number"}
		}
		v = fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ValidationError{Field: key, Value: v, Hint: "number"}
	}
	return f, nil
}

func parseIntField(fields map[string]string, key, fallback string) (int, error) {
	v, ok := fields[key]
	if !ok {
		if fallback == "" {
			return 0, &ValidationError{Field: key, Hint: "required integer"}
		}
		v = fallback
	}
	n, parsed := parseIntLoose(v)
	if !parsed {
		return 0, &ValidationError{Field: key, Value: v, Hint: "integer"}
	}
	return n, nil
}

// parseIntLoose accepts "12000" and "12000.0" alike, truncating toward zero.
func parseIntLoose(v string) (int, bool) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f), true
	}
	return 0, false
}

// #endregion helpers
