/*
Package loan defines the domain model for the lending engine.

PURPOSE:
  This package contains the immutable inputs to every calculation: the loan
  terms, the capital-moving transactions recorded against the loan, and the
  externally generated schedule entries consumed for statement rendering.

KEY CONCEPTS IN THIS FILE (types.go):
  - Loan: Static terms (principal, rate, interest type, term)
  - Transaction: A capital movement (disbursement or repayment)
  - InterestType: Which amortization model governs the loan
  - ScheduleEntry: A row produced by an external per-product scheduler

DESIGN PRINCIPLES:
  1. Immutability: Loans and transactions are values; calculations never
     mutate them
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Soft deletion: Transactions carry an IsDeleted flag and are excluded
     from calculations rather than removed, preserving the audit trail

SEE ALSO:
  - date.go: Day-granularity calendar dates
  - validate.go: Boundary validation into typed errors
  - engine: The calculation core consuming these types
*/
package loan

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INTEREST TYPE - Selects the amortization model
// =============================================================================

type InterestType string

const (
	InterestFlat         InterestType = "flat"
	InterestReducing     InterestType = "reducing"
	InterestInterestOnly InterestType = "interest_only"
	InterestRolledUp     InterestType = "rolled_up"
)

// Valid reports whether t names a known amortization model.
func (t InterestType) Valid() bool {
	switch t {
	case InterestFlat, InterestReducing, InterestInterestOnly, InterestRolledUp:
		return true
	}
	return false
}

// =============================================================================
// PERIOD UNIT - Repayment cadence
// =============================================================================

type PeriodUnit string

const (
	PeriodMonthly PeriodUnit = "monthly"
	PeriodWeekly  PeriodUnit = "weekly"
)

// Valid reports whether p names a known repayment cadence.
func (p PeriodUnit) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodWeekly:
		return true
	}
	return false
}

// LengthDays returns the average calendar length of one period, on the
// ACT/365 basis used throughout the engine.
func (p PeriodUnit) LengthDays() decimal.Decimal {
	switch p {
	case PeriodWeekly:
		return decimal.NewFromInt(7)
	default:
		// 365/12: average month on the ACT/365 basis
		return decimal.NewFromInt(365).Div(decimal.NewFromInt(12))
	}
}

// PeriodsPerYear returns how many periods fit in a year (12 or 52).
func (p PeriodUnit) PeriodsPerYear() decimal.Decimal {
	switch p {
	case PeriodWeekly:
		return decimal.NewFromInt(52)
	default:
		return decimal.NewFromInt(12)
	}
}

// =============================================================================
// LOAN - Immutable terms
// =============================================================================

// Loan holds the static terms of a loan. Every engine calculation is a pure
// function of a Loan, its transactions, and an as-of date.
type Loan struct {
	ID       string
	Borrower string

	Principal    decimal.Decimal // initial advance
	InterestRate decimal.Decimal // annual rate, percent (12 = 12%)
	InterestType InterestType
	StartDate    Date
	Duration     int // number of periods
	Period       PeriodUnit

	// Penalty rate applied from a given date (default rate stepping up
	// after arrears, for example).
	HasPenaltyRate  bool
	PenaltyRate     decimal.Decimal // annual percent
	PenaltyRateFrom Date

	// Added to the settlement figure on redemption.
	ExitFee decimal.Decimal

	// Informational only: how the roll-up phase was structured. The engine
	// consumes schedule entries for these, it never lays them out.
	RollUpLength int
	RollUpAmount decimal.Decimal
}

// TermDays returns the loan term in calendar days (duration x period length).
func (l *Loan) TermDays() decimal.Decimal {
	return decimal.NewFromInt(int64(l.Duration)).Mul(l.Period.LengthDays())
}

// PeriodRate returns the per-period interest rate as a fraction
// (annual percent / 100 / periods per year).
func (l *Loan) PeriodRate() decimal.Decimal {
	return l.InterestRate.Div(decimal.NewFromInt(100)).Div(l.Period.PeriodsPerYear())
}

// DailyRate returns the daily interest rate as a fraction (ACT/365).
func (l *Loan) DailyRate() decimal.Decimal {
	return l.InterestRate.Div(decimal.NewFromInt(36500))
}

// =============================================================================
// TRANSACTION - A capital movement against the loan
// =============================================================================

type TransactionType string

const (
	TxDisbursement TransactionType = "disbursement"
	TxRepayment    TransactionType = "repayment"
)

// Transaction records money moving on a loan. Repayments are split by the
// servicing layer into the interest and principal portions they discharge.
type Transaction struct {
	ID     string
	LoanID string
	Type   TransactionType
	Date   Date

	Amount           decimal.Decimal // cash amount received or advanced
	PrincipalApplied decimal.Decimal // repayments: portion reducing principal
	InterestApplied  decimal.Decimal // repayments: portion discharging interest
	GrossAmount      decimal.Decimal // disbursements: gross advance, defaults to Amount

	// Soft delete: excluded from every calculation, kept for audit.
	IsDeleted bool
}

// EffectiveGross returns the gross amount, falling back to Amount when the
// gross was never recorded separately.
func (t *Transaction) EffectiveGross() decimal.Decimal {
	if t.GrossAmount.IsZero() {
		return t.Amount
	}
	return t.GrossAmount
}

// =============================================================================
// SCHEDULE ENTRY - Externally generated amortization row
// =============================================================================

// ScheduleEntry is one row of a product-specific amortization schedule.
// Schedules are produced by an external scheduler per product type; the
// engine only consumes them for statement rendering.
type ScheduleEntry struct {
	InstallmentNumber         int
	DueDate                   Date
	InterestAmount            decimal.Decimal
	CalculationDays           int
	CalculationPrincipalStart decimal.Decimal
	IsRollUpPeriod            bool // interest capitalized rather than paid
	IsServicedPeriod          bool // interest paid in cash each period
}
