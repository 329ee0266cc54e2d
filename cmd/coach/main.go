package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/config"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/notify"
	"github.com/danwhitfield/war-coach/internal/relay"
	"github.com/danwhitfield/war-coach/internal/schedule"
	"github.com/danwhitfield/war-coach/internal/store"
	"github.com/danwhitfield/war-coach/internal/tracker"
)

// #region main
func main() {
	cfgPath := flag.String("config", envOr("WARCOACH_CONFIG", "war_coach.yaml"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	auditLog, err := audit.NewLog(st.DB())
	if err != nil {
		log.Fatalf("failed to open checkpoint log: %v", err)
	}

	tr, err := tracker.New(st, auditLog)
	if err != nil {
		log.Fatalf("failed to start tracker: %v", err)
	}

	// Notifications go to the relay unless it is disabled; "log" keeps
	// everything on stdout for local runs.
	var notifier notify.Notifier = notify.LogNotifier{}
	if cfg.RelayAddr != "" && cfg.RelayAddr != "log" {
		client, err := relay.NewClient(cfg.RelayAddr)
		if err != nil {
			log.Fatalf("failed to connect to relay at %s: %v", cfg.RelayAddr, err)
		}
		defer client.Close()
		notifier = client
	}

	sched := schedule.New(tr, notifier, auditLog, cfg.Times)

	fmt.Println("War Coach ready.")
	fmt.Printf("  DB: %s | Relay: %s\n", cfg.DBPath, cfg.RelayAddr)
	fmt.Println("Type 'helpme' for commands (or 'quit' to exit):")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := sched.Run(ctx)
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	g.Go(func() error {
		commandLoop(tr)
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
}

// #endregion main

// #region command-loop

// commandLoop reads coach commands from stdin until EOF or quit. Every
// mutation routes through the tracker; the scheduler keeps ticking in the
// background.
func commandLoop(tr *tracker.Tracker) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return
		}

		cmd, rest, _ := strings.Cut(line, " ")
		if out := dispatch(tr, strings.ToLower(cmd), rest, time.Now()); out != "" {
			fmt.Println(out)
		}
	}
}

func dispatch(tr *tracker.Tracker, cmd, rest string, now time.Time) string {
	date := day.DateOf(now)

	switch cmd {
	case "helpme", "help":
		return tracker.CommandGuide

	case "here":
		id := strings.TrimSpace(rest)
		if id == "" {
			id = "console"
		}
		if err := tr.BindChannel(id); err != nil {
			return fmt.Sprintf("bind failed: %v", err)
		}
		return fmt.Sprintf("Locked in. Notifications bound to %s.", id)

	case "set":
		changes, err := tr.UpdateTargets(tracker.ParseKV(rest))
		if err != nil {
			return fmt.Sprintf("set failed: %v", err)
		}
		if len(changes) == 0 {
			return "No valid targets in that. Nothing changed."
		}
		return "Updated: " + strings.Join(changes, ", ")

	case "am":
		res, err := tr.SubmitMorning(date, tracker.ParseKV(rest), now)
		if err != nil {
			return fmt.Sprintf("rejected: %v", err)
		}
		if res.Verdict == "PASS" {
			return fmt.Sprintf("Morning logged: %.2f km, %d steps, %.0f kcal. PASS.",
				res.Report.Distance, res.Report.Steps, res.Report.Kcal)
		}
		return fmt.Sprintf("Morning logged: %.2f km, %d steps, %.0f kcal. Below standard; the deadline check will grade it.",
			res.Report.Distance, res.Report.Steps, res.Report.Kcal)

	case "pm":
		res, err := tr.SubmitEvening(date, tracker.ParseKV(rest), now)
		if err != nil {
			return fmt.Sprintf("rejected: %v", err)
		}
		verdict := fmt.Sprintf("Night audit graded: %d%% (%d/%d checks).",
			res.Score.Score, res.Score.Passed, res.Score.Total)
		if res.Punished {
			verdict += " FAIL. Queued for tomorrow: " + strings.Join(res.Punishments, "; ")
		}
		return verdict

	case "status":
		return statusReport(tr, date)

	case "punish":
		labels, err := tr.Punishments(date)
		if err != nil {
			return fmt.Sprintf("error: %v", err)
		}
		if len(labels) == 0 {
			return "Nothing queued. Keep it that way."
		}
		return "Queued for tomorrow:\n  " + strings.Join(labels, "\n  ")

	default:
		return fmt.Sprintf("Unknown command %q. Type 'helpme'.", cmd)
	}
}

func statusReport(tr *tracker.Tracker, date string) string {
	rec, err := tr.Day(date)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Status %s\n", date)
	if rec.AM != nil {
		fmt.Fprintf(&b, "  AM: %.2f km, %d steps, %.0f kcal\n", rec.AM.Distance, rec.AM.Steps, rec.AM.Kcal)
	} else {
		b.WriteString("  AM: not logged\n")
	}
	if rec.PM != nil {
		fmt.Fprintf(&b, "  PM: %d kcal, %dg protein, %d steps, %.1fh sleep\n",
			rec.PM.Calories, rec.PM.Protein, rec.PM.Steps, rec.PM.Sleep)
	} else {
		b.WriteString("  PM: not logged\n")
	}
	if rec.Compliance != nil {
		fmt.Fprintf(&b, "  Compliance: %d%%\n", *rec.Compliance)
	} else {
		b.WriteString("  Compliance: ungraded\n")
	}
	if len(rec.Punishments) > 0 {
		fmt.Fprintf(&b, "  Punishments: %s\n", strings.Join(rec.Punishments, "; "))
	}
	return strings.TrimRight(b.String(), "\n")
}

// #endregion command-loop

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
