/*
walker.go - Ledger replay

PURPOSE:
  Replays the event timeline exactly once, maintaining running principal and
  running rate, emitting an interest-accrual period between consecutive
  events and one ledger entry per event. The resulting entry list is the
  authoritative day-by-day statement of the loan.

STATE MACHINE:
  For each event: Idle -> Accrue(optional) -> Apply(event) -> Idle, bounded
  by lastEventDate (starts at the loan start date) and currentRate (starts
  at the contractual rate). After the final event a trailing accrual runs to
  the as-of date; that entry is "interest accrued to today".

INVARIANTS:
  - Running principal never goes negative (clamped to zero before any
    further accrual)
  - Interest accrues only while principal > 0
  - Entries are append-only closed historical facts; nothing mutates them
  - All intermediate arithmetic stays full precision; rounding happens only
    in the summary aggregator

SEE ALSO:
  - timeline.go: Event ordering the walk depends on
  - summary.go: Rounding boundary for the walk's totals
*/
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// =============================================================================
// LEDGER ENTRY - Tagged union
// =============================================================================

// LedgerEntry is one row of the replayed ledger. It is a closed sum type:
// exactly four kinds exist, and consumers should type-switch exhaustively.
type LedgerEntry interface {
	EntryDate() loan.Date

	// sealed marker
	ledgerEntry()
}

// InterestAccrual is simple daily interest accrued over [From, To).
type InterestAccrual struct {
	From loan.Date
	To   loan.Date
	Days int

	Principal decimal.Decimal // balance the interest accrued on
	Rate      decimal.Decimal // annual percent in force
	Interest  decimal.Decimal // interest for this span

	RunningInterestAccrued decimal.Decimal
	RunningInterestPaid    decimal.Decimal
}

// Disbursement is principal advanced to the borrower.
type Disbursement struct {
	Date           loan.Date
	Amount         decimal.Decimal
	PrincipalAfter decimal.Decimal
}

// Repayment is cash received, split into interest and principal portions.
type Repayment struct {
	Date             loan.Date
	Amount           decimal.Decimal
	InterestApplied  decimal.Decimal
	PrincipalApplied decimal.Decimal
	PrincipalAfter   decimal.Decimal
}

// RateChange is the accrual rate stepping, typically onto a penalty rate.
type RateChange struct {
	Date             loan.Date
	FromRate         decimal.Decimal
	ToRate           decimal.Decimal
	PrincipalBalance decimal.Decimal
}

func (e InterestAccrual) EntryDate() loan.Date { return e.From }
func (e Disbursement) EntryDate() loan.Date    { return e.Date }
func (e Repayment) EntryDate() loan.Date       { return e.Date }
func (e RateChange) EntryDate() loan.Date      { return e.Date }

func (InterestAccrual) ledgerEntry() {}
func (Disbursement) ledgerEntry()    {}
func (Repayment) ledgerEntry()       {}
func (RateChange) ledgerEntry()      {}

// =============================================================================
// WALK RESULT
// =============================================================================

// LedgerResult carries the replayed entries and the full-precision running
// totals. Round through Summarize, never here.
type LedgerResult struct {
	Entries []LedgerEntry

	InterestAccrued      decimal.Decimal
	InterestPaid         decimal.Decimal
	PrincipalOutstanding decimal.Decimal
}

// InterestOutstanding returns accrued minus paid, full precision.
func (r *LedgerResult) InterestOutstanding() decimal.Decimal {
	return r.InterestAccrued.Sub(r.InterestPaid)
}

// =============================================================================
// LEDGER WALKER
// =============================================================================

// Walk replays the events in order, accruing interest between them, and
// returns the ledger up to and including asOf.
func Walk(l *loan.Loan, events []StateChangeEvent, asOf loan.Date) (*LedgerResult, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	var (
		entries         []LedgerEntry
		principal       = decimal.Zero
		currentRate     = l.InterestRate
		lastEventDate   = l.StartDate
		interestAccrued = decimal.Zero
		interestPaid    = decimal.Zero
	)

	accrueTo := func(to loan.Date) {
		if !to.After(lastEventDate) || !principal.IsPositive() {
			return
		}
		days := loan.DaysBetween(lastEventDate, to)
		daily := principal.Mul(currentRate).Div(decimal.NewFromInt(36500))
		interest := daily.Mul(decimal.NewFromInt(int64(days)))
		interestAccrued = interestAccrued.Add(interest)
		entries = append(entries, InterestAccrual{
			From:                   lastEventDate,
			To:                     to,
			Days:                   days,
			Principal:              principal,
			Rate:                   currentRate,
			Interest:               interest,
			RunningInterestAccrued: interestAccrued,
			RunningInterestPaid:    interestPaid,
		})
	}

	for _, ev := range events {
		accrueTo(ev.Date)

		switch ev.Kind {
		case EventDisbursement:
			principal = principal.Add(ev.PrincipalDelta)
			entries = append(entries, Disbursement{
				Date:           ev.Date,
				Amount:         ev.PrincipalDelta,
				PrincipalAfter: principal,
			})

		case EventRepayment:
			applied := ev.PrincipalDelta.Neg()
			principal = principal.Sub(applied)
			if principal.IsNegative() {
				principal = decimal.Zero
			}
			interestPaid = interestPaid.Add(ev.InterestApplied)
			entries = append(entries, Repayment{
				Date:             ev.Date,
				Amount:           ev.Amount,
				InterestApplied:  ev.InterestApplied,
				PrincipalApplied: applied,
				PrincipalAfter:   principal,
			})

		case EventRateChange:
			entries = append(entries, RateChange{
				Date:             ev.Date,
				FromRate:         ev.RateFrom,
				ToRate:           ev.RateTo,
				PrincipalBalance: principal,
			})
			currentRate = ev.RateTo
		}

		lastEventDate = ev.Date
	}

	// Trailing accrual: interest earned from the last event to the as-of day.
	accrueTo(asOf)

	return &LedgerResult{
		Entries:              entries,
		InterestAccrued:      interestAccrued,
		InterestPaid:         interestPaid,
		PrincipalOutstanding: principal,
	}, nil
}

// BuildLedger is the one-call form: timeline construction plus replay.
func BuildLedger(l *loan.Loan, txs []loan.Transaction, asOf loan.Date) (*LedgerResult, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return Walk(l, BuildTimeline(l, txs, asOf), asOf)
}
