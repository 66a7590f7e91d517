package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gigster-garage/timebilling/internal/config"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	envFile string
	verbose bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "timebilling",
		Short: "Turn tracked time into invoice line items",
		Long: `timebilling converts time entries into invoice line items and computes
invoice totals.

Time is billed per entry: elapsed seconds round up to whole minutes with a
one-minute minimum, at the hourly rate divided by 60 (rounded to 4 places).

Input is JSON read from --file or stdin; output is JSON on stdout.

Examples:
  timebilling convert --rate 90 --file entries.json
  timebilling totals --tax 8.25 --discount 10 < items.json
  timebilling invoice --rate 120 --tax 20 --file entries.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if a.envFile != "" {
				files = append(files, a.envFile)
			}
			cfg, err := config.Load(files...)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level := cfg.Log.Level
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.log)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Read configuration from this file instead of .env")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newConvertCmd(a), newTotalsCmd(a), newInvoiceCmd(a))
	return root
}

// readJSON decodes path, or stdin when path is empty or "-", into v.
func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
