package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/api"
)

var (
	serveAddr    string
	serveOrigins []string
	serveRate    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the balance and stores over a local JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8787", "Listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "Allowed CORS origin (repeatable)")
	serveCmd.Flags().IntVar(&serveRate, "rate", 120, "Requests per minute per client IP; 0 disables")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := api.NewHandler(state.calc, state.entries, state.waivers, state.logger)
	router := api.NewRouter(h, api.Options{
		AllowedOrigins:    serveOrigins,
		RequestsPerMinute: serveRate,
	})
	if err := api.Serve(ctx, serveAddr, router, state.logger); err != nil {
		return userError(err)
	}
	return nil
}
