// Package billing turns tracked time into invoice line items.
//
// Every entry is billed on its own: elapsed time is rounded up to the next
// whole minute with a one-minute floor, so a batch of short entries bills
// more than the sum of their raw durations would.
package billing

import (
	"fmt"
	"math"

	"github.com/gigster-garage/timebilling/internal/models"
	"github.com/shopspring/decimal"
)

// SkipReason says why an entry produced no line item.
type SkipReason string

const (
	SkipNoElapsedTime      SkipReason = "no_elapsed_time"
	SkipMalformedDuration  SkipReason = "malformed_duration"
	SkipMalformedTimestamp SkipReason = "malformed_timestamp"
	SkipNonPositiveSpan    SkipReason = "non_positive_span"
)

// SkippedEntry records an entry that was left out of the batch.
type SkippedEntry struct {
	EntryID string     `json:"entryId"`
	Reason  SkipReason `json:"reason"`
}

// Result is the outcome of one conversion. LineItems and ConsumedEntryIDs
// follow input order; ConsumedEntryIDs[i] produced LineItems[i].
type Result struct {
	LineItems        []models.LineItem `json:"lineItems"`
	ConsumedEntryIDs []string          `json:"consumedEntryIds"`
	Skipped          []SkippedEntry    `json:"skipped"`
}

var (
	sixty = decimal.NewFromInt(60)

	ratePlaces   int32 = 4
	amountPlaces int32 = 2
)

// PerMinuteRate is hourlyRate/60 rounded to four places. This rounded value is
// what goes on the line item and what every amount is computed from.
func PerMinuteRate(hourlyRate decimal.Decimal) decimal.Decimal {
	return hourlyRate.Div(sixty).Round(ratePlaces)
}

// inBillableRange reports whether seconds, as whole minutes, fits in int64.
func inBillableRange(seconds float64) bool {
	return seconds/60 < math.MaxInt64
}

// BilledMinutes rounds elapsed seconds up to whole minutes, never below one.
// Zero, negative, or out-of-range input bills nothing.
func BilledMinutes(seconds float64) int64 {
	if !(seconds > 0) || math.IsInf(seconds, 0) || !inBillableRange(seconds) {
		return 0
	}
	minutes := int64(math.Ceil(seconds / 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// Convert bills entries at hourlyRate. Ids of the emitted line items continue
// after the highest id in existing, so the result can be appended to it.
// Convert never fails: entries without usable time are reported in Skipped.
func Convert(entries []models.TimeEntry, hourlyRate decimal.Decimal, existing []models.LineItem) Result {
	res := Result{
		LineItems:        make([]models.LineItem, 0, len(entries)),
		ConsumedEntryIDs: make([]string, 0, len(entries)),
		Skipped:          []SkippedEntry{},
	}

	rate := PerMinuteRate(hourlyRate)
	nextID := models.NextLineItemID(existing)

	for _, e := range entries {
		// Entries without usable time are reported, never billed as zero.
		seconds, reason := ElapsedSeconds(e)
		if reason != "" {
			res.Skipped = append(res.Skipped, SkippedEntry{EntryID: e.ID, Reason: reason})
			continue
		}
		minutes := BilledMinutes(seconds)

		// Amount uses the rounded per-minute rate stored on the item.
		res.LineItems = append(res.LineItems, models.LineItem{
			ID:          nextID,
			Description: fmt.Sprintf("%s (%d min)", e.Description, minutes),
			Quantity:    minutes,
			Rate:        rate,
			Amount:      decimal.NewFromInt(minutes).Mul(rate).Round(amountPlaces),
		})
		res.ConsumedEntryIDs = append(res.ConsumedEntryIDs, e.ID)
		nextID++ // ids stay contiguous over emitted items
	}
	return res
}

// ElapsedSeconds derives how long an entry ran. A positive duration wins;
// otherwise the start/end pair is used. When neither yields time, the
// returned reason is non-empty. A duration too large to bill in whole
// minutes counts as malformed.
func ElapsedSeconds(e models.TimeEntry) (float64, SkipReason) {
	d, ok := e.Duration.Float()
	if ok && d > 0 && inBillableRange(d) {
		return d, ""
	}
	malformed := e.Duration.Present() && (!ok || !inBillableRange(d))

	if e.StartTime.Present() && e.EndTime.Present() {
		start, okStart := e.StartTime.Time()
		end, okEnd := e.EndTime.Time()
		if !okStart || !okEnd {
			return 0, SkipMalformedTimestamp
		}
		seconds := end.Sub(start).Seconds()
		if seconds <= 0 {
			return 0, SkipNonPositiveSpan
		}
		return seconds, ""
	}

	if malformed {
		return 0, SkipMalformedDuration
	}
	return 0, SkipNoElapsedTime
}
