package main

import (
	"log/slog"

	"github.com/gigster-garage/timebilling/internal/billing"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// rateFlag resolves --rate against the configured default.
type rateFlag struct {
	value float64
}

func (r *rateFlag) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&r.value, "rate", 0, "Hourly rate (default TIMEBILLING_HOURLY_RATE)")
}

func (r *rateFlag) resolve(cmd *cobra.Command, a *app) (decimal.Decimal, error) {
	if !cmd.Flags().Changed("rate") {
		return a.cfg.Billing.HourlyRate, nil
	}
	return billing.NewHourlyRate(r.value)
}

func newConvertCmd(a *app) *cobra.Command {
	var (
		file string
		rate rateFlag
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert time entries into line items",
		Long: `Convert time entries into invoice line items.

Input is either a JSON array of time entries or an object
{"entries": [...], "existing": [...]} where existing line items only
reserve ids. Entries without usable time are listed under "skipped".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hourly, err := rate.resolve(cmd, a)
			if err != nil {
				return err
			}

			in, err := readConvertInput(cmd, file)
			if err != nil {
				return err
			}

			res := billing.Convert(in.Entries, hourly, in.Existing)
			a.log.Debug("converted time entries",
				slog.Int("entries", len(in.Entries)),
				slog.Int("line_items", len(res.LineItems)),
				slog.Int("skipped", len(res.Skipped)),
				slog.String("per_minute_rate", billing.PerMinuteRate(hourly).String()),
			)
			return writeJSON(cmd, res)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON input file (default stdin)")
	rate.register(cmd)
	return cmd
}
