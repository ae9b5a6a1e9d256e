// Package transfer moves the entry and waiver stores in and out of the
// portable record format: a JSON array of model.Record with one-based,
// zero-padded YYYY-MM-DD dates for every record type.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/Tiliavir/trivial-time-balance/internal/daykey"
	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/validate"
)

// ErrRejected is returned by Import when at least one record was skipped.
var ErrRejected = errors.New("records rejected")

// Report summarises an import.
type Report struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
}

// Export returns every entry followed by every waiver as records. Keys that
// are not dates are skipped with a warning.
func Export(entries storage.Reader[model.DayEntry], waivers storage.Reader[model.WaivedDay], logger *slog.Logger) ([]model.Record, error) {
	all, err := storage.All(entries)
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	out := make([]model.Record, 0, len(all))
	for _, key := range sortedByDate(all, logger) {
		e := all[key]
		date, _ := daykey.WaiverFromEntry(key)
		r := model.Record{Type: model.RecordFlexible, Date: date, Values: e.Values}
		if r.Values == nil {
			r.Values = []string{}
		}
		if e.DayTotal != "" {
			// A fixed day exports as a single begin/end pair from midnight.
			r.Values = []string{"00:00", e.DayTotal}
		}
		out = append(out, r)
	}

	ws, err := storage.All(waivers)
	if err != nil {
		return nil, fmt.Errorf("reading waivers: %w", err)
	}
	keys := make([]string, 0, len(ws))
	for k := range ws {
		if _, err := daykey.ParseWaiver(k); err != nil {
			logger.Warn("skipping waiver with malformed key", slog.String("key", k))
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := daykey.ParseWaiver(keys[i])
		b, _ := daykey.ParseWaiver(keys[j])
		return a.Before(b)
	})
	for _, key := range keys {
		w := ws[key]
		d, _ := daykey.ParseWaiver(key)
		out = append(out, model.Record{Type: model.RecordWaived, Date: timecalc.DateStr(d), Data: w.Reason, Hours: w.Hours})
	}
	return out, nil
}

func sortedByDate(all map[string]model.DayEntry, logger *slog.Logger) []string {
	keys := make([]string, 0, len(all))
	for k := range all {
		if _, err := daykey.ParseEntry(k); err != nil {
			logger.Warn("skipping entry with malformed key", slog.String("key", k))
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := daykey.ParseEntry(keys[i])
		b, _ := daykey.ParseEntry(keys[j])
		return a.Before(b)
	})
	return keys
}

// WriteJSON writes records as a tab-indented JSON array.
func WriteJSON(w io.Writer, records []model.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(records)
}

// Import validates every element of the JSON array read from r and writes
// the valid ones to the stores. Elements that do not decode or do not
// validate are counted as failed; the returned error wraps ErrRejected when
// any failed. A document that is not a JSON array fails as a whole.
func Import(r io.Reader, entries storage.Store[model.DayEntry], waivers storage.Store[model.WaivedDay], v *validate.Validator, logger *slog.Logger) (Report, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Report{}, fmt.Errorf("decoding import file: %w", err)
	}

	rep := Report{Total: len(raw)}
	for i, msg := range raw {
		var rec model.Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			logger.Warn("rejecting record", slog.Int("index", i), slog.Any("error", err))
			rep.Failed++
			continue
		}
		if err := v.Struct(rec); err != nil {
			logger.Warn("rejecting record", slog.Int("index", i), slog.Any("error", err))
			rep.Failed++
			continue
		}
		if err := apply(rec, entries, waivers); err != nil {
			return rep, err
		}
		rep.Imported++
	}
	if rep.Failed > 0 {
		return rep, fmt.Errorf("%w: %d of %d", ErrRejected, rep.Failed, rep.Total)
	}
	return rep, nil
}

func apply(rec model.Record, entries storage.Store[model.DayEntry], waivers storage.Store[model.WaivedDay]) error {
	d, err := timecalc.ParseDate(rec.Date)
	if err != nil {
		return err
	}
	switch rec.Type {
	case model.RecordWaived:
		key := daykey.Waiver(d)
		if err := waivers.Set(key, model.WaivedDay{Reason: rec.Data, Hours: rec.Hours}); err != nil {
			return fmt.Errorf("writing waiver %s: %w", key, err)
		}
	case model.RecordFlexible:
		key := daykey.Entry(d)
		if err := entries.Set(key, model.DayEntry{Values: rec.Values}); err != nil {
			return fmt.Errorf("writing entry %s: %w", key, err)
		}
	case model.RecordRegular:
		// Only the begin/end stamps of the old fixed calendar carry over.
		_, step, _ := strings.Cut(rec.Data, "-")
		if step != "begin" && step != "end" {
			return nil
		}
		key := daykey.Entry(d)
		cur, _, err := entries.Get(key)
		if err != nil {
			return fmt.Errorf("reading entry %s: %w", key, err)
		}
		cur.AddPunch(rec.Hours)
		if err := entries.Set(key, cur); err != nil {
			return fmt.Errorf("writing entry %s: %w", key, err)
		}
	}
	return nil
}

// MigrateLegacy folds a fixed-calendar store, keyed by "<entry key>-<stage>-
// <begin|end>", into flexible punch lists. Totals and malformed keys are
// ignored. It returns the number of days written.
func MigrateLegacy(legacy map[string]string, entries storage.Store[model.DayEntry]) (int, error) {
	days := make(map[string][]string)
	for key, value := range legacy {
		parts := strings.Split(key, "-")
		if len(parts) != 5 || (parts[4] != "begin" && parts[4] != "end") {
			continue
		}
		if _, err := daykey.ParseEntry(key); err != nil {
			continue
		}
		day := strings.Join(parts[:3], "-")
		days[day] = append(days[day], value)
	}
	for day, values := range days {
		sort.Strings(values)
		if err := entries.Set(day, model.DayEntry{Values: values}); err != nil {
			return 0, fmt.Errorf("writing entry %s: %w", day, err)
		}
	}
	return len(days), nil
}
