package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/balance"
	"github.com/Tiliavir/trivial-time-balance/internal/config"
	"github.com/Tiliavir/trivial-time-balance/internal/storage"
	"github.com/Tiliavir/trivial-time-balance/internal/storage/sqlite"
)

// Exit codes.
const (
	exitUser    = 1
	exitStorage = 2
)

// app is the state shared by all commands, set up once per invocation.
type app struct {
	env     config.Env
	logger  *slog.Logger
	prefs   config.Preferences
	entries storage.EntryStore
	waivers storage.WaiverStore
	calc    *balance.Calculator
	close   func() error
}

var state app

var rootCmd = &cobra.Command{
	Use:   "ttb",
	Short: "Trivial Time Balance – track your working-time balance",
	Long: `ttb records the hours you work per day and keeps a running balance
against your daily quota. Data lives in ~/.ttb/ (override with TTB_HOME) as
human-readable JSON files, or in a SQLite database with TTB_STORE=sqlite.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error    { return &exitError{code: exitUser, err: err} }
func storageError(err error) error { return &exitError{code: exitStorage, err: err} }

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := exitUser
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(punchCmd)
	rootCmd.AddCommand(totalCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(waiverCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return userError(err)
	}
	logger := config.NewLogger(env, cmd.ErrOrStderr())

	prefs, repaired, err := config.Load(config.FilePath(env.Home))
	if err != nil {
		return userError(err)
	}
	for _, key := range repaired {
		logger.Warn("preference reset to default", slog.String("key", key))
	}

	state = app{env: env, logger: logger, prefs: prefs}
	switch env.Store {
	case config.StoreSQLite:
		db, err := sqlite.Open(filepath.Join(env.Home, "ttb.db"))
		if err != nil {
			return storageError(err)
		}
		state.entries, state.waivers, state.close = sqlite.Entries(db), sqlite.Waivers(db), db.Close
	default:
		entries, err := storage.OpenEntries(env.Home)
		if err != nil {
			return storageError(err)
		}
		waivers, err := storage.OpenWaivers(env.Home)
		if err != nil {
			return storageError(err)
		}
		state.entries, state.waivers = entries, waivers
	}
	logger.Debug("stores opened", slog.String("home", env.Home), slog.String("backend", env.Store))

	state.calc = balance.New(state.entries, state.waivers, prefs, balance.WithLogger(logger))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if state.close == nil {
		return nil
	}
	err := state.close()
	state.close = nil
	return err
}
