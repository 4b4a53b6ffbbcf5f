/*
summary.go - The single rounding boundary

PURPOSE:
  Reduces ledger results, settlement quotes, and external schedule entries
  into rounded top-line figures. All intermediate arithmetic elsewhere stays
  full precision; rounding to 2 decimals happens here and only here, so no
  component double-rounds.
*/
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// =============================================================================
// LEDGER SUMMARY
// =============================================================================

// Summary is the rounded top line of a replayed ledger.
type Summary struct {
	TotalInterestAccrued decimal.Decimal
	TotalInterestPaid    decimal.Decimal
	InterestOutstanding  decimal.Decimal
	PrincipalOutstanding decimal.Decimal
}

// Summarize rounds a ledger result to display precision.
func Summarize(r *LedgerResult) Summary {
	return Summary{
		TotalInterestAccrued: r.InterestAccrued.Round(2),
		TotalInterestPaid:    r.InterestPaid.Round(2),
		InterestOutstanding:  r.InterestOutstanding().Round(2),
		PrincipalOutstanding: r.PrincipalOutstanding.Round(2),
	}
}

// =============================================================================
// SETTLEMENT SUMMARY
// =============================================================================

// SettlementSummary is the rounded settlement screen figure set.
type SettlementSummary struct {
	Mode               SettlementMode
	SettlementDate     loan.Date
	DaysElapsed        int
	PrincipalRemaining decimal.Decimal
	InterestAccrued    decimal.Decimal
	InterestPaid       decimal.Decimal
	InterestRemaining  decimal.Decimal
	ExitFee            decimal.Decimal
	SettlementAmount   decimal.Decimal
}

// SummarizeSettlement rounds a settlement quote to display precision.
func SummarizeSettlement(s *Settlement) SettlementSummary {
	return SettlementSummary{
		Mode:               s.Mode,
		SettlementDate:     s.SettlementDate,
		DaysElapsed:        s.DaysElapsed,
		PrincipalRemaining: s.PrincipalRemaining.Round(2),
		InterestAccrued:    s.InterestAccrued.Round(2),
		InterestPaid:       s.InterestPaid.Round(2),
		InterestRemaining:  s.InterestRemaining.Round(2),
		ExitFee:            s.ExitFee.Round(2),
		SettlementAmount:   s.SettlementAmount.Round(2),
	}
}

// =============================================================================
// SCHEDULE SUMMARY (statement rendering)
// =============================================================================

// ScheduleSummary reduces externally generated schedule entries for the
// statement header: how much interest the product scheduler laid out, split
// between rolled-up and serviced phases.
type ScheduleSummary struct {
	Installments     int
	TotalInterest    decimal.Decimal
	RollUpInterest   decimal.Decimal
	ServicedInterest decimal.Decimal
}

// SummarizeSchedule rounds schedule totals to display precision.
func SummarizeSchedule(entries []loan.ScheduleEntry) ScheduleSummary {
	total := decimal.Zero
	rollUp := decimal.Zero
	serviced := decimal.Zero
	for i := range entries {
		e := &entries[i]
		total = total.Add(e.InterestAmount)
		if e.IsRollUpPeriod {
			rollUp = rollUp.Add(e.InterestAmount)
		}
		if e.IsServicedPeriod {
			serviced = serviced.Add(e.InterestAmount)
		}
	}
	return ScheduleSummary{
		Installments:     len(entries),
		TotalInterest:    total.Round(2),
		RollUpInterest:   rollUp.Round(2),
		ServicedInterest: serviced.Round(2),
	}
}
