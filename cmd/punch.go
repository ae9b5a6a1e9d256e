package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
	"github.com/Tiliavir/trivial-time-balance/internal/validate"
)

var punchDate string

var punchCmd = &cobra.Command{
	Use:   "punch [HH:MM]",
	Short: "Record a punch (begin or end of a work block)",
	Long: `Add a punch time to the day's list. Punches pair up as begin/end; the
day counts once every block is closed. Without an argument the current time
is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPunch,
}

var totalCmd = &cobra.Command{
	Use:   "total <YYYY-MM-DD> <HH:MM>",
	Short: "Set a fixed total for a day",
	Long:  "Set the worked total of a day directly. A fixed total wins over punches.",
	Args:  cobra.ExactArgs(2),
	RunE:  runTotal,
}

func init() {
	punchCmd.Flags().StringVar(&punchDate, "date", "", "Day to punch (YYYY-MM-DD); defaults to today")
}

func runPunch(cmd *cobra.Command, args []string) error {
	now := time.Now()
	day := timecalc.Civil(now)
	if punchDate != "" {
		d, err := timecalc.ParseDate(punchDate)
		if err != nil {
			return userError(fmt.Errorf("invalid --date value: %w", err))
		}
		day = d
	}
	at := timecalc.ClockNow(now)
	if len(args) == 1 {
		at = args[0]
	}
	if !validate.Duration(at) || timemath.IsNegative(at) {
		return userError(fmt.Errorf("invalid time %q (want HH:MM)", at))
	}

	key := daykey.Entry(day)
	entry, _, err := state.entries.Get(key)
	if err != nil {
		return storageError(err)
	}
	entry.AddPunch(at)
	if err := state.entries.Set(key, entry); err != nil {
		return storageError(err)
	}

	out := cmd.OutOrStdout()
	label := timecalc.DateStr(day)
	if timecalc.SameDay(day, now) {
		label = "today"
	}
	fmt.Fprintf(out, "Punched %s on %s: %s\n", at, label, strings.Join(entry.Values, " "))
	if entry.DayTotal != "" {
		fmt.Fprintf(out, "Note: the fixed total %s still wins over punches for this day.\n", entry.DayTotal)
	}
	return nil
}

func runTotal(cmd *cobra.Command, args []string) error {
	day, err := timecalc.ParseDate(args[0])
	if err != nil {
		return userError(err)
	}
	if !validate.Duration(args[1]) || timemath.IsNegative(args[1]) {
		return userError(fmt.Errorf("invalid total %q (want HH:MM)", args[1]))
	}

	key := daykey.Entry(day)
	entry, _, err := state.entries.Get(key)
	if err != nil {
		return storageError(err)
	}
	entry.DayTotal = args[1]
	if err := state.entries.Set(key, entry); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s.\n", timecalc.DateStr(day), args[1])
	return nil
}
