package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/msgraph"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncDryRun bool
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import out-of-office days from Outlook as waivers",
	Long: `Fetch all-day events shown as "out of office" and waive every working
day they cover with hours-per-day. Defaults to the current month.`,
	Args: cobra.NoArgs,
	RunE: runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (e.g. Europe/Berlin)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange resolves the flags to an inclusive range of calendar dates.
func syncRange(now time.Time) (time.Time, time.Time, error) {
	switch {
	case outlookSyncDate != "":
		d, err := timecalc.ParseDate(outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --date value: %w", err)
		}
		return d, d, nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := timecalc.ParseDate(outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --from value: %w", err)
		}
		to := timecalc.Civil(now)
		if outlookSyncTo != "" {
			if to, err = timecalc.ParseDate(outlookSyncTo); err != nil {
				return time.Time{}, time.Time{}, fmt.Errorf("invalid --to value: %w", err)
			}
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", timecalc.DateStr(to), timecalc.DateStr(from))
		}
		return from, to, nil

	default:
		today := timecalc.Civil(now)
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return first, first.AddDate(0, 1, -1), nil
	}
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncRange(time.Now())
	if err != nil {
		return userError(err)
	}

	timezone := outlookSyncTZ
	if timezone == "" {
		timezone = state.prefs.Outlook.Timezone
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook out-of-office days (%s → %s)%s...\n",
		timecalc.DateStr(from), timecalc.DateStr(to), dryTag)
	fmt.Fprintln(out)

	ctx := cmd.Context()
	auth := msgraph.NewAuthenticator(state.env.Home, state.prefs.Outlook, out, state.logger)
	client, err := auth.Client(ctx)
	if err != nil {
		return userError(fmt.Errorf("authentication failed: %w", err))
	}

	// calendarView is half-open; fetch through the end of the last day.
	events, err := client.GetCalendarView(ctx, from, to.AddDate(0, 0, 1), timezone)
	if err != nil {
		return userError(fmt.Errorf("failed to fetch calendar events: %w", err))
	}

	result, err := msgraph.SyncWaivers(events, state.waivers, msgraph.SyncOptions{
		From:     from,
		To:       to,
		DryRun:   outlookSyncDryRun,
		Timezone: timezone,
		Prefs:    state.prefs,
	}, out, state.logger)
	if err != nil {
		return storageError(err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	fmt.Fprintf(out, "  %d updated\n", result.Updated)
	if result.Errors > 0 {
		fmt.Fprintf(out, "  %d errors\n", result.Errors)
		return storageError(fmt.Errorf("%d events could not be synced", result.Errors))
	}
	return nil
}
