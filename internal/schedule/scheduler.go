// Package schedule drives the daily checkpoint state machine. Each tick
// evaluates the fixed rule table against the current local time-of-day; a
// rule fires when it is due and has not yet fired today. The fired set lives
// on the day record, so restarts neither double-fire nor drop checkpoints,
// and a late tick still fires rules whose minute has passed.
package schedule

import (
	"context"
	"log"
	"time"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/notify"
	"github.com/danwhitfield/war-coach/internal/tracker"
)

// sendTimeout bounds one notification delivery; a slow relay must not stall
// the rest of the table.
const sendTimeout = 10 * time.Second

// #region scheduler-struct

// Scheduler evaluates the rule table on each tick. All day-record mutations
// go through the tracker, preserving the single-writer guarantee.
type Scheduler struct {
	tracker  *tracker.Tracker
	notifier notify.Notifier
	audit    *audit.Log
	rules    []Rule
}

// New builds a scheduler over the given tracker and notification sink.
// auditLog may be nil to disable audit rows.
func New(tr *tracker.Tracker, notifier notify.Notifier, auditLog *audit.Log, times Times) *Scheduler {
	return &Scheduler{
		tracker:  tr,
		notifier: notifier,
		audit:    auditLog,
		rules:    Rules(times),
	}
}

// #endregion scheduler-struct

// #region firing

// Firing reports one consumed checkpoint from a tick.
type Firing struct {
	Rule        string
	Date        string
	Punishments []string // labels queued by this firing
	Notified    bool
	Err         error // delivery or persistence failure, already logged
}

// #endregion firing

// #region tick

// Tick consumes every rule that is due and not yet fired for now's date.
// Per-rule failures are isolated: a failed delivery or write never stops the
// rest of the table, and a decided firing is never retried.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []Firing {
	date := day.DateOf(now)
	minute := day.MinuteOf(now)

	rec, err := s.tracker.Day(date)
	if err != nil {
		log.Printf("[SCHED] tick %s: read day: %v", minute, err)
		return nil
	}
	targets := s.tracker.Targets()

	var firings []Firing
	for _, rule := range s.rules {
		if rule.SundayOnly && !day.IsSunday(now) {
			continue
		}
		// "HH:MM" compares lexicographically.
		if minute < rule.At {
			continue
		}
		if rec.HasFired(rule.Name) {
			continue
		}

		decision := rule.Decide(rec, targets)

		// Consume the checkpoint atomically; FireCheckpoint re-checks the
		// fired set, so a double tick in the same minute is a no-op.
		fired, err := s.tracker.FireCheckpoint(date, rule.Name, decision.Punishments)
		if err != nil {
			log.Printf("[SCHED] %s: fire %s: %v", date, rule.Name, err)
			firings = append(firings, Firing{Rule: rule.Name, Date: date, Err: err})
			continue
		}
		if !fired {
			continue
		}

		firing := Firing{Rule: rule.Name, Date: date, Punishments: decision.Punishments}

		if decision.Message != "" {
			sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
			err := s.notifier.Send(sendCtx, notify.New(rule.Name, s.tracker.ChannelID(), decision.Message, now))
			cancel()
			if err != nil {
				// Decided firings run to completion; no retry.
				log.Printf("[SCHED] %s: notify %s: %v", date, rule.Name, err)
				firing.Err = err
			} else {
				firing.Notified = true
			}
		}

		s.recordAudit(date, rule.Name, decision)
		log.Printf("[SCHED] %s: fired %s at %s (%s)", date, rule.Name, minute, decision.Reason)
		firings = append(firings, firing)
	}
	return firings
}

// #endregion tick

// #region run

// Run ticks once a minute until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// #endregion run

// #region helpers

func (s *Scheduler) recordAudit(date, rule string, decision Decision) {
	if s.audit == nil {
		return
	}
	outcome := "fired"
	if len(decision.Punishments) > 0 {
		outcome = "fail"
	}
	err := s.audit.Record(audit.Entry{
		Date:        date,
		TriggerType: rule,
		Decision:    outcome,
		Reason:      decision.Reason,
	})
	if err != nil {
		log.Printf("[SCHED] audit write failed: %v", err)
	}
}

// #endregion helpers
