package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Tiliavir/trivial-time-balance/internal/model"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
)

func TestOpenEntriesNotExist(t *testing.T) {
	base := t.TempDir()
	entries, err := storage.OpenEntries(base)
	if err != nil {
		t.Fatalf("OpenEntries on missing file: %v", err)
	}
	keys, err := entries.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 0 {
		t.Errorf("Keys = %v, want none", keys)
	}
	if _, ok, _ := entries.Get("2020-6-1"); ok {
		t.Error("Get on empty store reported a value")
	}
}

func TestSetAndReopen(t *testing.T) {
	base := t.TempDir()

	entries, err := storage.OpenEntries(base)
	if err != nil {
		t.Fatal(err)
	}
	want := model.DayEntry{Values: []string{"08:00", "12:00", "13:00", "17:00"}}
	if err := entries.Set("2020-6-1", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := storage.OpenEntries(base)
	if err != nil {
		t.Fatalf("OpenEntries after save: %v", err)
	}
	got, ok, err := reopened.Get("2020-6-1")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
	if _, err := os.Stat(filepath.Join(base, storage.EntriesFile)); err != nil {
		t.Errorf("expected %s to exist: %v", storage.EntriesFile, err)
	}
}

func TestOpenCorruptBacksUp(t *testing.T) {
	// Verify that a corrupt JSON file is backed up and returns an error.
	base := t.TempDir()
	path := filepath.Join(base, storage.WaiversFile)
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := storage.OpenWaivers(base)
	if err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if !errors.Is(err, storage.ErrCorrupt) {
		t.Errorf("error = %v, want ErrCorrupt", err)
	}

	// Backup file should exist.
	if _, err2 := os.Stat(path + ".corrupt"); os.IsNotExist(err2) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	base := t.TempDir()
	waivers, err := storage.OpenWaivers(base)
	if err != nil {
		t.Fatal(err)
	}

	if err := waivers.Set("2020-07-02", model.WaivedDay{Reason: "Holiday", Hours: "08:00"}); err != nil {
		t.Fatalf("Set (insert): %v", err)
	}
	// Update the same day.
	if err := waivers.Set("2020-07-02", model.WaivedDay{Reason: "Half day", Hours: "04:00"}); err != nil {
		t.Fatalf("Set (update): %v", err)
	}

	reopened, err := storage.OpenWaivers(base)
	if err != nil {
		t.Fatal(err)
	}
	got, ok, _ := reopened.Get("2020-07-02")
	if !ok || got.Reason != "Half day" || got.Hours != "04:00" {
		t.Errorf("Get = %+v (ok=%v), want Half day/04:00", got, ok)
	}

	if err := reopened.Delete("2020-07-02"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := reopened.Delete("2020-07-03"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}
	final, err := storage.OpenWaivers(base)
	if err != nil {
		t.Fatal(err)
	}
	if keys, _ := final.Keys(); len(keys) != 0 {
		t.Errorf("Keys after delete = %v, want none", keys)
	}
}

func TestMemoryKeysSorted(t *testing.T) {
	m := storage.NewMemory(map[string]model.DayEntry{
		"2020-3-3": {DayTotal: "08:00"},
		"2020-2-1": {DayTotal: "08:00"},
		"2020-3-1": {DayTotal: "08:00"},
	})
	keys, err := m.Keys()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2020-2-1", "2020-3-1", "2020-3-3"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func TestAll(t *testing.T) {
	seed := map[string]model.WaivedDay{
		"2020-07-02": {Reason: "Holiday", Hours: "08:00"},
		"2020-07-03": {Reason: "Doctor", Hours: "02:00"},
	}
	got, err := storage.All[model.WaivedDay](storage.NewMemory(seed))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, seed) {
		t.Errorf("All = %v, want %v", got, seed)
	}
}

func TestOpenNullFileIsWritable(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, storage.EntriesFile)
	if err := os.WriteFile(path, []byte("null"), 0o600); err != nil {
		t.Fatal(err)
	}

	entries, err := storage.OpenEntries(base)
	if err != nil {
		t.Fatalf("OpenEntries on null file: %v", err)
	}
	if err := entries.Set("2020-6-1", model.DayEntry{DayTotal: "08:00"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := entries.Get("2020-6-1")
	if err != nil || !ok || got.DayTotal != "08:00" {
		t.Errorf("Get = %+v ok=%v err=%v, want day total 08:00", got, ok, err)
	}
}
