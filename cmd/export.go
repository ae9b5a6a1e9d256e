package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-time-balance/internal/transfer"
	"github.com/Tiliavir/trivial-time-balance/internal/validate"
)

var (
	exportFormat string
	exportOutput string
	importLegacy bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries and waivers",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import entries and waivers from an export file",
	Long: `Import a JSON export. Invalid records are skipped and counted; the
valid ones are written. With --legacy the file is a fixed-calendar store
object ("<y>-<m0>-<d>-<stage>-begin|end": "HH:MM") folded into punch lists.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	importCmd.Flags().BoolVar(&importLegacy, "legacy", false, "Input is a legacy fixed-calendar store")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	if exportFormat != "json" && exportFormat != "csv" {
		return userError(fmt.Errorf("unknown format %q (want json or csv)", exportFormat))
	}
	records, err := transfer.Export(state.entries, state.waivers, state.logger)
	if err != nil {
		return storageError(err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, createErr := os.Create(exportOutput)
		if createErr != nil {
			return userError(createErr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = storageError(fmt.Errorf("closing %s: %w", exportOutput, cerr))
			}
		}()
		out = f
	}

	if exportFormat == "csv" {
		err = transfer.WriteCSV(out, records)
	} else {
		err = transfer.WriteJSON(out, records)
	}
	if err != nil {
		return storageError(err)
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s.\n", len(records), exportOutput)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return userError(err)
	}
	defer f.Close()
	out := cmd.OutOrStdout()

	if importLegacy {
		var legacy map[string]string
		if err := json.NewDecoder(f).Decode(&legacy); err != nil {
			return userError(fmt.Errorf("decoding legacy store: %w", err))
		}
		n, err := transfer.MigrateLegacy(legacy, state.entries)
		if err != nil {
			return storageError(err)
		}
		fmt.Fprintf(out, "Migrated %d days.\n", n)
		return nil
	}

	rep, err := transfer.Import(f, state.entries, state.waivers, validate.New(), state.logger)
	switch {
	case errors.Is(err, transfer.ErrRejected):
		fmt.Fprintf(out, "Imported %d of %d records; %d rejected.\n", rep.Imported, rep.Total, rep.Failed)
		return userError(err)
	case err != nil:
		if rep.Total == 0 {
			return userError(err)
		}
		return storageError(err)
	}
	fmt.Fprintf(out, "Imported %d records.\n", rep.Imported)
	return nil
}
