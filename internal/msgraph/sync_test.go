package msgraph_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Tiliavir/trivial-time-balance/internal/config"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/msgraph"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
)

var discard = slog.New(slog.DiscardHandler)

func makeEvent(id, subject, start, end string) msgraph.CalendarEvent {
	return msgraph.CalendarEvent{
		ID:          id,
		Subject:     subject,
		IsAllDay:    true,
		IsCancelled: false,
		Sensitivity: "normal",
		ShowAs:      "oof",
		Start: struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone"`
		}{DateTime: start, TimeZone: "UTC"},
		End: struct {
			DateTime string `json:"dateTime"`
			TimeZone string `json:"timeZone"`
		}{DateTime: end, TimeZone: "UTC"},
	}
}

func syncOpts() msgraph.SyncOptions {
	return msgraph.SyncOptions{
		From:     time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Timezone: "UTC",
		Prefs:    config.DefaultPreferences(),
	}
}

func openWaivers(t *testing.T) *storage.File[model.WaivedDay] {
	t.Helper()
	w, err := storage.OpenWaivers(t.TempDir())
	if err != nil {
		t.Fatalf("OpenWaivers: %v", err)
	}
	return w
}

func TestEventDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"single day", "2026-02-27T00:00:00.0000000", "2026-02-28T00:00:00.0000000", []string{"2026-02-27"}},
		{"long weekend", "2026-02-27T00:00:00", "2026-03-03T00:00:00", []string{"2026-02-27", "2026-02-28", "2026-03-01", "2026-03-02"}},
		{"zero length", "2026-02-27T00:00:00", "2026-02-27T00:00:00", []string{"2026-02-27"}},
		{"rfc3339", "2026-02-27T00:00:00Z", "2026-02-28T00:00:00Z", []string{"2026-02-27"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := msgraph.EventDays(makeEvent("id", "Off", tt.start, tt.end), "UTC")
			if err != nil {
				t.Fatalf("EventDays: %v", err)
			}
			if len(days) != len(tt.want) {
				t.Fatalf("EventDays = %v, want %v", days, tt.want)
			}
			for i, d := range days {
				if got := d.Format("2006-01-02"); got != tt.want[i] {
					t.Errorf("day %d = %s, want %s", i, got, tt.want[i])
				}
			}
		})
	}

	if _, err := msgraph.EventDays(makeEvent("id", "Off", "yesterday", "today"), "UTC"); err == nil {
		t.Error("expected error for unparseable time")
	}
}

func TestSyncWaivers_Import(t *testing.T) {
	waivers := openWaivers(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Vacation", "2026-02-27T00:00:00", "2026-03-03T00:00:00"),
	}

	result, err := msgraph.SyncWaivers(events, waivers, syncOpts(), io.Discard, discard)
	if err != nil {
		t.Fatalf("SyncWaivers: %v", err)
	}
	// Friday and Monday; the weekend is not a working day.
	if result.Imported != 2 {
		t.Errorf("Imported = %d, want 2", result.Imported)
	}

	for _, key := range []string{"2026-02-27", "2026-03-02"} {
		w, ok, err := waivers.Get(key)
		if err != nil || !ok {
			t.Fatalf("Get(%s) = %v, %v", key, ok, err)
		}
		if w.Reason != "Vacation" || w.Hours != "08:00" {
			t.Errorf("waiver %s = %+v", key, w)
		}
	}
	if _, ok, _ := waivers.Get("2026-02-28"); ok {
		t.Error("weekend day must not be waived")
	}

	// Persisted to disk.
	reopened, err := storage.OpenFile[model.WaivedDay](waivers.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	keys, _ := reopened.Keys()
	if len(keys) != 2 {
		t.Errorf("persisted keys = %v, want 2", keys)
	}
}

func TestSyncWaivers_Idempotent(t *testing.T) {
	waivers := openWaivers(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Doctor", "2026-02-27T00:00:00", "2026-02-28T00:00:00"),
	}

	r1, err := msgraph.SyncWaivers(events, waivers, syncOpts(), io.Discard, discard)
	if err != nil {
		t.Fatalf("first SyncWaivers: %v", err)
	}
	if r1.Imported != 1 {
		t.Errorf("first sync: Imported = %d, want 1", r1.Imported)
	}

	r2, err := msgraph.SyncWaivers(events, waivers, syncOpts(), io.Discard, discard)
	if err != nil {
		t.Fatalf("second SyncWaivers: %v", err)
	}
	if r2.Imported != 0 {
		t.Errorf("second sync: Imported = %d, want 0 (idempotent)", r2.Imported)
	}
	if r2.Skipped != 1 {
		t.Errorf("second sync: Skipped = %d, want 1", r2.Skipped)
	}
}

func TestSyncWaivers_Update(t *testing.T) {
	waivers := openWaivers(t)
	event := makeEvent("ext-1", "Doctor", "2026-02-27T00:00:00", "2026-02-28T00:00:00")

	if _, err := msgraph.SyncWaivers([]msgraph.CalendarEvent{event}, waivers, syncOpts(), io.Discard, discard); err != nil {
		t.Fatalf("first SyncWaivers: %v", err)
	}

	event.Subject = "Doctor (rescheduled)"
	r2, err := msgraph.SyncWaivers([]msgraph.CalendarEvent{event}, waivers, syncOpts(), io.Discard, discard)
	if err != nil {
		t.Fatalf("second SyncWaivers: %v", err)
	}
	if r2.Updated != 1 {
		t.Errorf("Updated = %d, want 1", r2.Updated)
	}
	w, _, _ := waivers.Get("2026-02-27")
	if w.Reason != "Doctor (rescheduled)" {
		t.Errorf("Reason = %q, want updated", w.Reason)
	}
}

func TestSyncWaivers_SkipFiltered(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*msgraph.CalendarEvent)
	}{
		{"cancelled", func(e *msgraph.CalendarEvent) { e.IsCancelled = true }},
		{"timed", func(e *msgraph.CalendarEvent) { e.IsAllDay = false }},
		{"busy", func(e *msgraph.CalendarEvent) { e.ShowAs = "busy" }},
		{"free", func(e *msgraph.CalendarEvent) { e.ShowAs = "free" }},
		{"no start", func(e *msgraph.CalendarEvent) { e.Start.DateTime = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := makeEvent("c1", tt.name, "2026-02-27T00:00:00", "2026-02-28T00:00:00")
			tt.modify(&e)
			r, err := msgraph.SyncWaivers([]msgraph.CalendarEvent{e}, storage.NewMemory[model.WaivedDay](nil), syncOpts(), io.Discard, discard)
			if err != nil {
				t.Fatalf("SyncWaivers: %v", err)
			}
			if r.Imported != 0 {
				t.Errorf("expected 0 imported for %s event, got %d", tt.name, r.Imported)
			}
		})
	}
}

func TestSyncWaivers_DryRun(t *testing.T) {
	waivers := openWaivers(t)
	events := []msgraph.CalendarEvent{
		makeEvent("ext-dry", "Dry Run", "2026-02-27T00:00:00", "2026-02-28T00:00:00"),
	}
	opts := syncOpts()
	opts.DryRun = true

	result, err := msgraph.SyncWaivers(events, waivers, opts, io.Discard, discard)
	if err != nil {
		t.Fatalf("SyncWaivers dry-run: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("dry-run Imported = %d, want 1", result.Imported)
	}
	keys, _ := waivers.Keys()
	if len(keys) != 0 {
		t.Errorf("dry-run wrote %d waivers, want 0", len(keys))
	}
}

func TestSyncWaivers_RangeAndSchedule(t *testing.T) {
	waivers := openWaivers(t)
	opts := syncOpts()
	opts.From = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	opts.To = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	opts.Prefs.HoursPerDay = "07:30"
	opts.Prefs.WorkingTuesday = false

	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Trip", "2026-02-27T00:00:00", "2026-03-06T00:00:00"),
	}
	result, err := msgraph.SyncWaivers(events, waivers, opts, io.Discard, discard)
	if err != nil {
		t.Fatalf("SyncWaivers: %v", err)
	}
	// Only Monday 2 March is inside the range and a working day.
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
	w, ok, _ := waivers.Get("2026-03-02")
	if !ok || w.Hours != "07:30" {
		t.Errorf("waiver = %+v, %v; want 07:30", w, ok)
	}
}

func TestSyncWaivers_PreservesManualWaivers(t *testing.T) {
	waivers := openWaivers(t)
	if err := waivers.Set("2026-02-26", model.WaivedDay{Reason: "Holiday", Hours: "08:00"}); err != nil {
		t.Fatalf("inserting manual waiver: %v", err)
	}

	events := []msgraph.CalendarEvent{
		makeEvent("ext-1", "Vacation", "2026-02-27T00:00:00", "2026-02-28T00:00:00"),
	}
	if _, err := msgraph.SyncWaivers(events, waivers, syncOpts(), io.Discard, discard); err != nil {
		t.Fatalf("SyncWaivers: %v", err)
	}

	w, ok, _ := waivers.Get("2026-02-26")
	if !ok || w.Reason != "Holiday" {
		t.Errorf("manual waiver changed: %+v, %v", w, ok)
	}
	keys, _ := waivers.Keys()
	if len(keys) != 2 {
		t.Errorf("keys = %v, want 2", keys)
	}
}

func TestSyncWaivers_MappingError(t *testing.T) {
	events := []msgraph.CalendarEvent{
		makeEvent("bad", "Broken", "not-a-time", "2026-02-28T00:00:00"),
	}
	r, err := msgraph.SyncWaivers(events, storage.NewMemory[model.WaivedDay](nil), syncOpts(), io.Discard, discard)
	if err != nil {
		t.Fatalf("SyncWaivers: %v", err)
	}
	if r.Errors != 1 {
		t.Errorf("Errors = %d, want 1", r.Errors)
	}
}
