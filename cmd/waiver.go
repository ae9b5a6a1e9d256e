package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/validate"
)

var waiverReason string

var waiverCmd = &cobra.Command{
	Use:   "waiver",
	Short: "Manage waived days (holidays, leave)",
}

var waiverAddCmd = &cobra.Command{
	Use:   "add <YYYY-MM-DD> [HH:MM]",
	Short: "Credit a day with fixed hours; defaults to hours-per-day",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runWaiverAdd,
}

var waiverListCmd = &cobra.Command{
	Use:   "list",
	Short: "List waived days",
	Args:  cobra.NoArgs,
	RunE:  runWaiverList,
}

var waiverDeleteCmd = &cobra.Command{
	Use:   "delete <YYYY-MM-DD>",
	Short: "Remove the waiver of a day",
	Args:  cobra.ExactArgs(1),
	RunE:  runWaiverDelete,
}

func init() {
	waiverAddCmd.Flags().StringVar(&waiverReason, "reason", "Waived", "Reason shown in reports")
	waiverCmd.AddCommand(waiverAddCmd, waiverListCmd, waiverDeleteCmd)
}

func runWaiverAdd(cmd *cobra.Command, args []string) error {
	day, err := timecalc.ParseDate(args[0])
	if err != nil {
		return userError(err)
	}
	hours := state.prefs.HoursPerDay
	if len(args) == 2 {
		hours = args[1]
	}
	if !validate.Duration(hours) {
		return userError(fmt.Errorf("invalid hours %q (want HH:MM)", hours))
	}

	key := daykey.Waiver(day)
	if err := state.waivers.Set(key, model.WaivedDay{Reason: waiverReason, Hours: hours}); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Waived %s: %s (%s)\n", key, waiverReason, hours)
	return nil
}

func runWaiverList(cmd *cobra.Command, args []string) error {
	all, err := storage.All[model.WaivedDay](state.waivers)
	if err != nil {
		return storageError(err)
	}
	out := cmd.OutOrStdout()
	if len(all) == 0 {
		fmt.Fprintln(out, "No waived days.")
		return nil
	}
	keys, err := state.waivers.Keys()
	if err != nil {
		return storageError(err)
	}
	for _, k := range keys {
		w := all[k]
		fmt.Fprintf(out, "%s  %s  %s\n", k, w.Hours, w.Reason)
	}
	return nil
}

func runWaiverDelete(cmd *cobra.Command, args []string) error {
	day, err := timecalc.ParseDate(args[0])
	if err != nil {
		return userError(err)
	}
	key := daykey.Waiver(day)
	_, found, err := state.waivers.Get(key)
	if err != nil {
		return storageError(err)
	}
	if !found {
		return userError(fmt.Errorf("no waiver on %s", key))
	}
	if err := state.waivers.Delete(key); err != nil {
		return storageError(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed waiver %s.\n", key)
	return nil
}
