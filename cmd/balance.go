package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
)

var (
	balanceUntil string
	balanceAsync bool
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the overall balance",
	Long: `Show the overall balance from the first recorded day up to, but
excluding, --until. Without --until the balance runs to today, or includes
today when count-today is set in preferences.json.`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

func init() {
	balanceCmd.Flags().StringVar(&balanceUntil, "until", "", "Target day (YYYY-MM-DD), excluded from the balance")
	balanceCmd.Flags().BoolVar(&balanceAsync, "async", false, "Compute on a background goroutine")
}

// defaultTarget is the day the overall balance runs up to when none is given.
func defaultTarget(now time.Time) time.Time {
	if state.prefs.CountToday {
		return timecalc.Midnight(timecalc.Civil(now))
	}
	return timecalc.Civil(now)
}

func runBalance(cmd *cobra.Command, args []string) error {
	target := defaultTarget(time.Now())
	if balanceUntil != "" {
		d, err := timecalc.ParseDate(balanceUntil)
		if err != nil {
			return userError(fmt.Errorf("invalid --until value: %w", err))
		}
		target = d
	}

	var bal string
	if balanceAsync {
		res := <-state.calc.UntilDayAsync(cmd.Context(), target)
		if res.Err != nil {
			return storageError(res.Err)
		}
		bal = res.Balance
	} else {
		var err error
		bal, err = state.calc.UntilDay(target)
		if err != nil {
			return storageError(err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Balance until %s (excluded): %s\n", timecalc.DateStr(target), colorBalance(bal))
	return nil
}
