package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danwhitfield/war-coach/internal/audit"
	"github.com/danwhitfield/war-coach/internal/day"
	"github.com/danwhitfield/war-coach/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to war_coach.db")
	last := flag.Int("last", 20, "show N most recent days")
	date := flag.String("date", "", "show single day detail (YYYY-MM-DD)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/war_coach.db [--last N] [--date YYYY-MM-DD] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *date != "" {
		err = runDetailMode(st, *date, *jsonOut)
	} else {
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	Date        string   `json:"date"`
	AM          string   `json:"am"`
	PM          string   `json:"pm"`
	Compliance  string   `json:"compliance"`
	Punishments []string `json:"punishments"`
	Fired       int      `json:"fired"`
}

func runListMode(st *store.Store, last int, jsonOut bool) error {
	recs, err := st.ListDays(last)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(os.Stderr, "no day records found")
		return nil
	}

	// Store returns newest first; reverse for chronological reading.
	rows := make([]listRow, len(recs))
	for i, rec := range recs {
		rows[len(recs)-1-i] = toListRow(rec)
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-12s  %-6s  %-6s  %-10s  %-6s  %s\n",
		"Date", "AM", "PM", "Compliance", "Fired", "Punishments")
	fmt.Printf("%-12s+-%-6s+-%-6s+-%-10s+-%-6s+-%s\n",
		"------------", "------", "------", "----------", "------", "--------------------")
	for _, r := range rows {
		punish := "-"
		if len(r.Punishments) > 0 {
			punish = strings.Join(r.Punishments, "; ")
		}
		fmt.Printf("%-12s  %-6s  %-6s  %-10s  %-6d  %s\n",
			r.Date, r.AM, r.PM, r.Compliance, r.Fired, punish)
	}
	return nil
}

func toListRow(rec day.Record) listRow {
	r := listRow{
		Date:        rec.Date,
		AM:          "-",
		PM:          "-",
		Compliance:  "-",
		Punishments: rec.Punishments,
		Fired:       len(rec.Fired),
	}
	if rec.AM != nil {
		r.AM = "yes"
	}
	if rec.PM != nil {
		r.PM = "yes"
	}
	if rec.Compliance != nil {
		r.Compliance = fmt.Sprintf("%d%%", *rec.Compliance)
	}
	return r
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Record day.Record    `json:"record"`
	Trail  []audit.Entry `json:"checkpoint_trail"`
}

func runDetailMode(st *store.Store, date string, jsonOut bool) error {
	rec, err := st.GetDay(date)
	if err != nil {
		return err
	}
	auditLog, err := audit.NewLog(st.DB())
	if err != nil {
		return err
	}
	trail, err := auditLog.ForDate(date)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(detailOutput{Record: rec, Trail: trail})
	}

	fmt.Printf("Date:        %s\n", rec.Date)
	if rec.AM != nil {
		fmt.Printf("Morning:     %.2f km, %d steps, %.0f kcal (at %s)\n",
			rec.AM.Distance, rec.AM.Steps, rec.AM.Kcal, rec.AM.SubmittedAt.Format("15:04"))
	} else {
		fmt.Println("Morning:     not logged")
	}
	if rec.PM != nil {
		fmt.Printf("Night audit: wake %s, strength %s, %d kcal, %dg protein, %d steps, %.1fh sleep, indulgence %s, discipline %d\n",
			rec.PM.Wake, rec.PM.Strength, rec.PM.Calories, rec.PM.Protein,
			rec.PM.Steps, rec.PM.Sleep, rec.PM.Indulgence, rec.PM.Discipline)
	} else {
		fmt.Println("Night audit: not logged")
	}
	if rec.Compliance != nil {
		fmt.Printf("Compliance:  %d%%\n", *rec.Compliance)
	} else {
		fmt.Println("Compliance:  ungraded")
	}
	if len(rec.Punishments) > 0 {
		fmt.Printf("Punishments: %s\n", strings.Join(rec.Punishments, "; "))
	}
	if len(rec.Fired) > 0 {
		fmt.Printf("Fired:       %s\n", strings.Join(rec.Fired, ", "))
	}

	if len(trail) > 0 {
		fmt.Println("\nCheckpoint trail:")
		for _, e := range trail {
			reason := e.Reason
			if reason == "" {
				reason = "-"
			}
			fmt.Printf("  %s  %-20s  %-8s  %s\n",
				e.CreatedAt.Format("15:04:05"), e.TriggerType, e.Decision, reason)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// #endregion output
