package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/balance"
	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/schedule"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's punches and balances",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	today := timecalc.Civil(time.Now())

	entry, found, err := state.entries.Get(daykey.Entry(today))
	if err != nil {
		return storageError(err)
	}
	total, src, err := state.calc.DayTotal(today)
	if err != nil {
		return storageError(err)
	}

	fmt.Fprintf(out, "Today: %s", timecalc.DateStr(today))
	if !schedule.IsWorkDate(today, &state.prefs) {
		fmt.Fprint(out, mutedStyle.Render(" (day off)"))
	}
	fmt.Fprintln(out)

	switch {
	case src == balance.SourceWaiver:
		w, _, err := state.waivers.Get(daykey.Waiver(today))
		if err != nil {
			return storageError(err)
		}
		fmt.Fprintf(out, "  Waived: %s (%s)\n", w.Reason, w.Hours)
	case found && entry.DayTotal != "":
		fmt.Fprintf(out, "  Day total: %s\n", entry.DayTotal)
	case found && len(entry.Values) > 0:
		fmt.Fprintf(out, "  Punches: %s\n", strings.Join(entry.Values, " "))
		if len(entry.Values)%2 == 1 {
			fmt.Fprintf(out, "  Running since %s\n", entry.Values[len(entry.Values)-1])
		}
	default:
		fmt.Fprintln(out, "  Nothing recorded.")
	}
	fmt.Fprintf(out, "  Worked: %s\n", total)

	day, err := state.calc.DayBalance(today)
	if err != nil {
		return storageError(err)
	}
	overall, err := state.calc.UntilDay(defaultTarget(time.Now()))
	if err != nil {
		return storageError(err)
	}
	fmt.Fprintf(out, "  Day balance: %s\n", colorBalance(day))
	fmt.Fprintf(out, "Overall: %s\n", colorBalance(overall))
	return nil
}
