package main

import (
	"fmt"

	"github.com/gigster-garage/timebilling/internal/invoice"
	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// adjustmentFlags are --tax and --discount, defaulting to configuration.
type adjustmentFlags struct {
	tax      float64
	discount float64
}

func (f *adjustmentFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.tax, "tax", 0, "Tax rate in percent (default TIMEBILLING_TAX_RATE)")
	cmd.Flags().Float64Var(&f.discount, "discount", 0, "Flat discount amount (default TIMEBILLING_DISCOUNT)")
}

func (f *adjustmentFlags) resolve(cmd *cobra.Command, a *app) (tax, discount decimal.Decimal) {
	tax, discount = a.cfg.Invoice.TaxRate, a.cfg.Invoice.Discount
	if cmd.Flags().Changed("tax") {
		tax = decimal.NewFromFloat(f.tax)
	}
	if cmd.Flags().Changed("discount") {
		discount = decimal.NewFromFloat(f.discount)
	}
	return tax, discount
}

type totalsOutput struct {
	Currency string        `json:"currency"`
	Totals   models.Totals `json:"totals"`
	Problems []string      `json:"problems,omitempty"`
}

func newTotalsCmd(a *app) *cobra.Command {
	var (
		file  string
		adj   adjustmentFlags
		check bool
	)

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Compute invoice totals from line items",
		Long: `Compute subtotal, tax and total for a JSON array of line items.

Amounts on the items are recomputed from quantity and rate. With --check,
the input is an object {"lineItems": [...], "totals": {...}} and every
claimed figure that is off by more than a cent is reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tax, discount := adj.resolve(cmd, a)

			var items []models.LineItem
			var claimed *models.Totals
			if check {
				var in struct {
					LineItems []models.LineItem `json:"lineItems"`
					Totals    models.Totals     `json:"totals"`
				}
				if err := readJSON(cmd, file, &in); err != nil {
					return err
				}
				items = in.LineItems
				claimed = &in.Totals
			} else if err := readJSON(cmd, file, &items); err != nil {
				return err
			}

			totals, err := invoice.CalculateTotals(a.log, items, tax, discount)
			if err != nil {
				return err
			}
			out := totalsOutput{Currency: a.cfg.Billing.Currency, Totals: totals}
			if claimed != nil {
				out.Problems = invoice.ValidateTotals(items, tax, discount, *claimed)
			}
			if err := writeJSON(cmd, out); err != nil {
				return err
			}
			if len(out.Problems) > 0 {
				return fmt.Errorf("%d total(s) do not match", len(out.Problems))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON input file (default stdin)")
	cmd.Flags().BoolVar(&check, "check", false, "Validate claimed totals instead of only computing them")
	adj.register(cmd)
	return cmd
}
