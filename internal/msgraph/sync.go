// Package msgraph imports Outlook out-of-office days from Microsoft Graph as
// waived days.
package msgraph

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Tiliavir/trivial-time-balance/internal/config"
	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/schedule"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
)

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Updated  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// From and To bound the calendar dates written, both inclusive.
	From     time.Time
	To       time.Time
	DryRun   bool
	Timezone string
	// Prefs supplies the work schedule and the hours credited per day.
	Prefs config.Preferences
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event does not describe a day off.
func shouldSkip(event CalendarEvent) bool {
	if event.IsCancelled {
		return true
	}
	if !event.IsAllDay {
		return true
	}
	if event.ShowAs != "oof" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// EventDays returns the calendar dates an all-day event covers. Graph ends
// all-day events at midnight of the following day, so the end is exclusive.
func EventDays(event CalendarEvent, timezone string) ([]time.Time, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return nil, fmt.Errorf("parsing end time: %w", err)
	}
	first, last := timecalc.Civil(start), timecalc.Civil(end)
	if !last.After(first) {
		return []time.Time{first}, nil
	}
	var days []time.Time
	for d := first; d.Before(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days, nil
}

// SyncWaivers turns out-of-office all-day events into waived days on the
// working days between opts.From and opts.To. Each waiver credits the
// configured hours per day and carries the event subject as reason. Progress
// is printed to out.
func SyncWaivers(events []CalendarEvent, waivers storage.Store[model.WaivedDay], opts SyncOptions, out io.Writer, logger *slog.Logger) (SyncResult, error) {
	var result SyncResult
	from, to := timecalc.Civil(opts.From), timecalc.Civil(opts.To)

	for _, event := range events {
		if shouldSkip(event) {
			logger.Debug("skipping event", slog.String("id", event.ID), slog.String("show_as", event.ShowAs))
			continue
		}

		days, err := EventDays(event, opts.Timezone)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		for _, d := range days {
			if d.Before(from) || d.After(to) || !schedule.IsWorkDate(d, &opts.Prefs) {
				continue
			}
			key := daykey.Waiver(d)
			want := model.WaivedDay{Reason: event.Subject, Hours: opts.Prefs.HoursPerDay}

			existing, found, err := waivers.Get(key)
			if err != nil {
				fmt.Fprintf(out, "  ! Error loading waiver %s: %v\n", key, err)
				result.Errors++
				continue
			}
			if found && existing == want {
				fmt.Fprintf(out, "  – Skipped:  %s %s (already exists)\n", key, event.Subject)
				result.Skipped++
				continue
			}

			if !opts.DryRun {
				if err := waivers.Set(key, want); err != nil {
					fmt.Fprintf(out, "  ! Error saving %s: %v\n", key, err)
					result.Errors++
					continue
				}
			}
			if found {
				fmt.Fprintf(out, "  ↑ Updated:  %s %s (%s)\n", key, event.Subject, want.Hours)
				result.Updated++
			} else {
				fmt.Fprintf(out, "  ✓ Imported: %s %s (%s)\n", key, event.Subject, want.Hours)
				result.Imported++
			}
		}
	}

	return result, nil
}
