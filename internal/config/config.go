package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tiliavir/trivial-time-balance/internal/timecalc"
	"github.com/Tiliavir/trivial-time-balance/internal/timemath"
)

// Preferences is the user configuration stored in <home>/preferences.json.
// Key names follow the desktop application's preference file so existing
// files can be copied over. The file supports single-line // comments.
type Preferences struct {
	HoursPerDay             string `json:"hours-per-day"`
	OverallBalanceStartDate string `json:"overall-balance-start-date"`
	CountToday              bool   `json:"count-today"`

	WorkingMonday    bool `json:"working-days-monday"`
	WorkingTuesday   bool `json:"working-days-tuesday"`
	WorkingWednesday bool `json:"working-days-wednesday"`
	WorkingThursday  bool `json:"working-days-thursday"`
	WorkingFriday    bool `json:"working-days-friday"`
	WorkingSaturday  bool `json:"working-days-saturday"`
	WorkingSunday    bool `json:"working-days-sunday"`

	Outlook OutlookConfig `json:"outlook"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
}

const (
	// DefaultHoursPerDay is the daily quota when none is configured.
	DefaultHoursPerDay = "08:00"
	// DefaultStartDate is the earliest day counted in the overall balance.
	DefaultStartDate = "2019-01-01"
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
)

// DefaultPreferences returns Preferences pre-filled with the built-in
// defaults: Monday to Friday, eight hours a day.
func DefaultPreferences() Preferences {
	return Preferences{
		HoursPerDay:             DefaultHoursPerDay,
		OverallBalanceStartDate: DefaultStartDate,
		CountToday:              false,
		WorkingMonday:           true,
		WorkingTuesday:          true,
		WorkingWednesday:        true,
		WorkingThursday:         true,
		WorkingFriday:           true,
		WorkingSaturday:         false,
		WorkingSunday:           false,
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
	}
}

// WorksOn reports whether wd is configured as a working day.
func (p *Preferences) WorksOn(wd time.Weekday) bool {
	return *p.weekdayFlags()[wd]
}

func (p *Preferences) weekdayFlags() [7]*bool {
	return [7]*bool{
		time.Sunday:    &p.WorkingSunday,
		time.Monday:    &p.WorkingMonday,
		time.Tuesday:   &p.WorkingTuesday,
		time.Wednesday: &p.WorkingWednesday,
		time.Thursday:  &p.WorkingThursday,
		time.Friday:    &p.WorkingFriday,
		time.Saturday:  &p.WorkingSaturday,
	}
}

// WeekdayKey returns the preference key of wd, e.g. "working-days-monday".
func WeekdayKey(wd time.Weekday) string {
	return "working-days-" + strings.ToLower(wd.String())
}

// StartDate returns OverallBalanceStartDate as a civil date.
func (p *Preferences) StartDate() (time.Time, error) {
	return timecalc.ParseDate(p.OverallBalanceStartDate)
}

// preferencesTemplate is the annotated file written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const preferencesTemplate = `// ttb preferences – <home>/preferences.json
//
// All settings are optional; missing keys fall back to the defaults shown
// below. Values of the wrong type are reset to their default on load.
{
  // Daily quota as HH:MM. Each working day without hours counts as this
  // much deficit.
  "hours-per-day": "08:00",

  // Entries dated before this day (YYYY-MM-DD) are ignored by the overall
  // balance.
  "overall-balance-start-date": "2019-01-01",

  // Include today in the default balance ("ttb balance" without --until).
  "count-today": false,

  // ── Working days ────────────────────────────────────────────────────────
  // Non-working days never contribute to the balance, even when waived.
  "working-days-monday": true,
  "working-days-tuesday": true,
  "working-days-wednesday": true,
  "working-days-thursday": true,
  "working-days-friday": true,
  "working-days-saturday": false,
  "working-days-sunday": false,

  // ── Microsoft Graph / Outlook calendar sync ──────────────────────────────
  // All-day out-of-office events are imported as waived days.
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID, e.g. "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC. Can be overridden with: ttb outlook sync --timezone <tz>
    "timezone": ""
  }
}
`

// FilePath returns the preferences file inside home.
func FilePath(home string) string {
	return filepath.Join(home, "preferences.json")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the preferences file at path, creating it with annotated
// defaults on first run. Missing keys take their default. Keys holding a value
// of the wrong type are reset to the default and the repaired preferences are
// written back; the second return value lists the repaired keys.
func Load(path string) (Preferences, []string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			return DefaultPreferences(), nil, fmt.Errorf("creating preferences file %s: %w", path, writeErr)
		}
		return DefaultPreferences(), nil, nil
	}
	if err != nil {
		return DefaultPreferences(), nil, fmt.Errorf("reading preferences file %s: %w", path, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(stripLineComments(data), &raw); err != nil {
		return DefaultPreferences(), nil, fmt.Errorf("parsing preferences file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	prefs, repaired := derive(raw)
	if len(repaired) > 0 {
		if err := Save(path, prefs); err != nil {
			return prefs, repaired, err
		}
	}
	return prefs, repaired, nil
}

// derive builds Preferences from the decoded file, falling back to defaults
// per key. It returns the keys whose stored value was unusable.
func derive(raw map[string]json.RawMessage) (Preferences, []string) {
	prefs := DefaultPreferences()
	defaults := DefaultPreferences()
	var repaired []string

	for wd, flag := range prefs.weekdayFlags() {
		key := WeekdayKey(time.Weekday(wd))
		if !decodeInto(raw, key, flag) {
			*flag = *defaults.weekdayFlags()[wd]
			repaired = append(repaired, key)
		}
	}
	if !decodeInto(raw, "count-today", &prefs.CountToday) {
		prefs.CountToday = false
		repaired = append(repaired, "count-today")
	}

	var hours string
	if _, ok := raw["hours-per-day"]; ok {
		if decodeInto(raw, "hours-per-day", &hours) && validHoursPerDay(hours) {
			prefs.HoursPerDay = hours
		} else {
			repaired = append(repaired, "hours-per-day")
		}
	}

	var start string
	if _, ok := raw["overall-balance-start-date"]; ok {
		if decodeInto(raw, "overall-balance-start-date", &start) && validDate(start) {
			prefs.OverallBalanceStartDate = start
		} else {
			repaired = append(repaired, "overall-balance-start-date")
		}
	}

	if msg, ok := raw["outlook"]; ok {
		var oc OutlookConfig
		if err := json.Unmarshal(msg, &oc); err != nil {
			repaired = append(repaired, "outlook")
		} else {
			prefs.Outlook = oc
		}
	}
	// Fill zero-value fields with built-in defaults so callers always get
	// a usable config even if the user only partially fills in the file.
	if prefs.Outlook.TenantID == "" {
		prefs.Outlook.TenantID = DefaultTenantID
	}
	if prefs.Outlook.ClientID == "" {
		prefs.Outlook.ClientID = DefaultClientID
	}

	return prefs, repaired
}

// decodeInto unmarshals raw[key] into dst. An absent key leaves dst untouched
// and counts as success.
func decodeInto(raw map[string]json.RawMessage, key string, dst any) bool {
	msg, ok := raw[key]
	if !ok {
		return true
	}
	return json.Unmarshal(msg, dst) == nil
}

func validHoursPerDay(s string) bool {
	return s != timemath.Invalid && timemath.Validate(s) && !timemath.IsNegative(s)
}

func validDate(s string) bool {
	_, err := timecalc.ParseDate(s)
	return err == nil
}

// Validate checks values that were set programmatically.
func (p *Preferences) Validate() error {
	if !validHoursPerDay(p.HoursPerDay) {
		return fmt.Errorf("hours-per-day %q must be a positive HH:MM value", p.HoursPerDay)
	}
	if !validDate(p.OverallBalanceStartDate) {
		return fmt.Errorf("overall-balance-start-date %q must be YYYY-MM-DD", p.OverallBalanceStartDate)
	}
	return nil
}

// Save validates prefs and atomically writes them as plain JSON.
func Save(path string, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling preferences: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving preferences: %w", err)
	}
	return nil
}

// writeDefault creates the home directory and writes the annotated default
// preferences template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(preferencesTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default preferences: %w", err)
	}
	return nil
}
