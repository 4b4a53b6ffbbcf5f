/*
Package engine implements the interest accrual and settlement calculation
core for the lending system.

PURPOSE:
  Turns a loan's static terms plus a chronological list of capital-moving
  transactions into a day-by-day interest ledger and a point-in-time
  settlement quote. Every function here is a pure computation over its
  inputs: no I/O, no caches, no module-level state. Concurrent calls for
  different loans are independent by construction.

KEY CONCEPTS:
  - StateChangeEvent: A normalized capital or rate event on the timeline
  - LedgerEntry: One row of the replayed interest ledger (tagged union)
  - AmortizationModel: Formula-based interest for a given interest type
  - Settlement: A quote for discharging the loan as of a chosen date

DAY-COUNT CONVENTION:
  Simple (non-compounding) daily interest on an ACT/365 basis, uninterrupted
  by weekends or holidays. The rolled-up model is the one deliberate
  exception: it compounds daily.

SEE ALSO:
  - timeline.go: Event normalization and ordering (this file)
  - walker.go: Ledger replay
  - amortize.go: The four amortization models
  - settlement.go: Settlement quotes
  - summary.go: The single rounding boundary
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// =============================================================================
// STATE CHANGE EVENT - Normalized timeline entry
// =============================================================================

// EventKind orders same-day events. The numeric values are the tie-break
// priority: a same-day disbursement must be reflected in principal before a
// same-day repayment reduces it, and a same-day rate change must apply
// before that repayment's interest is computed against the new rate.
type EventKind int

const (
	EventDisbursement EventKind = iota
	EventRateChange
	EventRepayment
)

func (k EventKind) String() string {
	switch k {
	case EventDisbursement:
		return "disbursement"
	case EventRateChange:
		return "rate_change"
	case EventRepayment:
		return "repayment"
	default:
		return "unknown"
	}
}

// StateChangeEvent is a single state change on the loan timeline: principal
// moving in or out, or the accrual rate stepping.
type StateChangeEvent struct {
	Date loan.Date
	Kind EventKind

	// Signed principal movement: positive for disbursements, negative for
	// the principal portion of repayments.
	PrincipalDelta decimal.Decimal

	// Cash amount of the underlying transaction.
	Amount decimal.Decimal

	// Repayments only: interest discharged in cash by this event.
	InterestApplied decimal.Decimal

	// Rate changes only.
	RateFrom decimal.Decimal
	RateTo   decimal.Decimal
}

// =============================================================================
// TIMELINE BUILDER
// =============================================================================

// BuildTimeline normalizes raw transactions (plus an optional penalty-rate
// change) into one chronologically ordered sequence of state-change events.
//
// Rules:
//   - Soft-deleted transactions never enter the timeline.
//   - Transactions dated after asOf are not yet facts on this ledger and
//     are excluded.
//   - A penalty rate change is synthesized once if penalty_rate_from falls
//     within [start_date, asOf].
//   - Equal dates order by EventKind priority; the sort is stable so equal
//     (date, kind) pairs keep input order.
//
// A nil loan yields the transaction events alone; validation of the loan
// itself belongs to BuildLedger and Walk.
func BuildTimeline(l *loan.Loan, txs []loan.Transaction, asOf loan.Date) []StateChangeEvent {
	events := make([]StateChangeEvent, 0, len(txs)+1)

	for i := range txs {
		tx := &txs[i]
		if tx.IsDeleted || tx.Date.After(asOf) {
			continue
		}
		switch tx.Type {
		case loan.TxDisbursement:
			events = append(events, StateChangeEvent{
				Date:           tx.Date,
				Kind:           EventDisbursement,
				PrincipalDelta: tx.EffectiveGross(),
				Amount:         tx.EffectiveGross(),
			})
		case loan.TxRepayment:
			events = append(events, StateChangeEvent{
				Date:            tx.Date,
				Kind:            EventRepayment,
				PrincipalDelta:  tx.PrincipalApplied.Neg(),
				InterestApplied: tx.InterestApplied,
				Amount:          tx.Amount,
			})
		}
	}

	if l != nil && l.HasPenaltyRate && !l.PenaltyRateFrom.IsZero() &&
		l.PenaltyRateFrom.AfterOrEqual(l.StartDate) && l.PenaltyRateFrom.BeforeOrEqual(asOf) {
		events = append(events, StateChangeEvent{
			Date:     l.PenaltyRateFrom,
			Kind:     EventRateChange,
			RateFrom: l.InterestRate,
			RateTo:   l.PenaltyRate,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Kind < events[j].Kind
	})

	return events
}
