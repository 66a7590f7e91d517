package main

import (
	"fmt"

	"github.com/gigster-garage/timebilling/internal/billing"
	"github.com/gigster-garage/timebilling/internal/invoice"
	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/gigster-garage/timebilling/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type invoiceOutput struct {
	Currency   string                 `json:"currency"`
	Draft      models.Draft           `json:"draft"`
	Skipped    []billing.SkippedEntry `json:"skipped"`
	Totals     models.Totals          `json:"totals"`
	Paid       string                 `json:"paid"`
	BalanceDue string                 `json:"balanceDue"`
}

func newInvoiceCmd(a *app) *cobra.Command {
	var (
		file string
		rate rateFlag
		adj  adjustmentFlags
		paid float64
	)

	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Build a draft invoice from time entries",
		Long: `Build a draft invoice from time entries: the entries are billed, merged
into a fresh draft, and the draft's totals are computed with the given tax
and discount. consumedEntryIds lists the entries to mark as invoiced.

Input has the same shape as for convert; "existing" line items are placed
on the draft before the time is imported. With --paid, balanceDue is the
total less what the client has already paid, never below zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hourly, err := rate.resolve(cmd, a)
			if err != nil {
				return err
			}
			tax, discount := adj.resolve(cmd, a)
			if paid < 0 {
				return fmt.Errorf("paid amount must not be negative, got %v", paid)
			}
			paidAmount := decimal.NewFromFloat(paid)

			in, err := readConvertInput(cmd, file)
			if err != nil {
				return err
			}

			svc := invoice.NewService(memory.NewDraftStore(), a.log)

			draft, err := svc.NewDraft(ctx)
			if err != nil {
				return err
			}
			if len(in.Existing) > 0 {
				if err := svc.SetLineItems(ctx, draft.ID, in.Existing); err != nil {
					return err
				}
			}
			if err := svc.SetAdjustments(ctx, draft.ID, tax, discount); err != nil {
				return err
			}

			imported, err := svc.ImportTime(ctx, draft.ID, in.Entries, hourly)
			if err != nil {
				return err
			}
			totals, err := svc.Totals(ctx, draft.ID)
			if err != nil {
				return err
			}

			return writeJSON(cmd, invoiceOutput{
				Currency:   a.cfg.Billing.Currency,
				Draft:      imported.Draft,
				Skipped:    imported.Skipped,
				Totals:     totals,
				Paid:       paidAmount.StringFixed(2),
				BalanceDue: invoice.BalanceDue(totals.TotalAmount, paidAmount).StringFixed(2),
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON input file (default stdin)")
	rate.register(cmd)
	adj.register(cmd)
	cmd.Flags().Float64Var(&paid, "paid", 0, "Amount already paid against the invoice")
	return cmd
}
