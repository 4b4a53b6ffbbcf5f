/*
amortize.go - Formula-based interest accrual, one model per interest type

PURPOSE:
  Reconstructs interest due from the loan terms alone, without a transaction
  history. Used for quick settlement estimates and for loans where no (or
  only a partial) repayment history exists.

MODELS:
  Flat:          Total interest pre-computed and spread evenly per day,
                 capped at the loan's total
  Reducing:      Amortizing annuity; fixed payment, balance walks down each
                 completed period
  Interest-only: Principal never reduces during the term; each period
                 accrues principal x period rate
  Rolled-up:     True daily compounding, no repayments assumed

  Each model also produces a bounded period-by-period breakdown for display.
  The authoritative scalar is TotalInterestDue.

SELECTION:
  Callers pass an explicit model map (see Models). There is no global
  registry: calculations must stay pure and re-entrant.

GUARDS:
  daysElapsed <= 0 or duration = 0 yields zero interest rather than a
  division by zero or a negative accrual.
*/
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// maxBreakdownRows bounds the display breakdown; the scalar total always
// covers the full elapsed span regardless of this cap.
const maxBreakdownRows = 120

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// =============================================================================
// MODEL CONTRACT
// =============================================================================

// Accrual is the result of a formula-based interest calculation.
type Accrual struct {
	TotalInterestDue decimal.Decimal
	Breakdown        []PeriodAccrual
}

// PeriodAccrual is one display row of the breakdown. A partial trailing
// period has Partial set and Days covering only the leftover span.
type PeriodAccrual struct {
	Period         int
	Days           decimal.Decimal
	OpeningBalance decimal.Decimal
	Interest       decimal.Decimal
	ClosingBalance decimal.Decimal
	Partial        bool
}

// AmortizationModel computes interest due from terms and elapsed time.
type AmortizationModel interface {
	// Accrue returns the interest due after daysElapsed calendar days.
	Accrue(l *loan.Loan, daysElapsed int) Accrual
}

// Models returns a fresh strategy map covering every interest type.
// Callers own the map; nothing here is shared or mutable at package level.
func Models() map[loan.InterestType]AmortizationModel {
	return map[loan.InterestType]AmortizationModel{
		loan.InterestFlat:         FlatModel{},
		loan.InterestReducing:     ReducingModel{},
		loan.InterestInterestOnly: InterestOnlyModel{},
		loan.InterestRolledUp:     RolledUpModel{},
	}
}

// =============================================================================
// FLAT - Pre-computed interest spread evenly
// =============================================================================

type FlatModel struct{}

func (FlatModel) Accrue(l *loan.Loan, daysElapsed int) Accrual {
	if daysElapsed <= 0 || l.Duration == 0 {
		return Accrual{TotalInterestDue: decimal.Zero}
	}

	termDays := l.TermDays()
	totalInterest := l.Principal.
		Mul(l.InterestRate).Div(hundred).
		Mul(termDays).Div(decimal.NewFromInt(365))

	perDay := totalInterest.Div(termDays)
	due := perDay.Mul(decimal.NewFromInt(int64(daysElapsed)))
	if due.GreaterThan(totalInterest) {
		due = totalInterest
	}

	return Accrual{
		TotalInterestDue: due,
		Breakdown: flatBreakdown(l, perDay, daysElapsed),
	}
}

func flatBreakdown(l *loan.Loan, perDay decimal.Decimal, daysElapsed int) []PeriodAccrual {
	periodDays := l.Period.LengthDays()
	var rows []PeriodAccrual
	remaining := decimal.NewFromInt(int64(daysElapsed))
	for p := 1; p <= l.Duration && remaining.IsPositive() && len(rows) < maxBreakdownRows; p++ {
		days := periodDays
		partial := false
		if remaining.LessThan(periodDays) {
			days = remaining
			partial = true
		}
		rows = append(rows, PeriodAccrual{
			Period:         p,
			Days:           days,
			OpeningBalance: l.Principal,
			Interest:       perDay.Mul(days),
			ClosingBalance: l.Principal,
			Partial:        partial,
		})
		remaining = remaining.Sub(days)
	}
	return rows
}

// =============================================================================
// REDUCING - Amortizing annuity
// =============================================================================

type ReducingModel struct{}

func (ReducingModel) Accrue(l *loan.Loan, daysElapsed int) Accrual {
	if daysElapsed <= 0 || l.Duration == 0 {
		return Accrual{TotalInterestDue: decimal.Zero}
	}
	r := l.PeriodRate()
	if r.IsZero() {
		return Accrual{TotalInterestDue: decimal.Zero}
	}

	// pmt = P * r(1+r)^n / ((1+r)^n - 1)
	n := decimal.NewFromInt(int64(l.Duration))
	growth := one.Add(r).Pow(n)
	pmt := l.Principal.Mul(r).Mul(growth).Div(growth.Sub(one))

	periodDays := l.Period.LengthDays()
	completed := completedPeriods(daysElapsed, periodDays, l.Duration)

	var rows []PeriodAccrual
	balance := l.Principal
	total := decimal.Zero
	for p := 1; p <= completed; p++ {
		interest := balance.Mul(r)
		total = total.Add(interest)
		opening := balance
		balance = balance.Sub(pmt.Sub(interest))
		if balance.IsNegative() {
			balance = decimal.Zero
		}
		if len(rows) < maxBreakdownRows {
			rows = append(rows, PeriodAccrual{
				Period:         p,
				Days:           periodDays,
				OpeningBalance: opening,
				Interest:       interest,
				ClosingBalance: balance,
			})
		}
	}

	// Partial final period: daily rate on the remaining balance.
	leftover := leftoverDays(daysElapsed, completed, periodDays)
	if leftover.IsPositive() && balance.IsPositive() {
		interest := balance.Mul(l.DailyRate()).Mul(leftover)
		total = total.Add(interest)
		if len(rows) < maxBreakdownRows {
			rows = append(rows, PeriodAccrual{
				Period:         completed + 1,
				Days:           leftover,
				OpeningBalance: balance,
				Interest:       interest,
				ClosingBalance: balance,
				Partial:        true,
			})
		}
	}

	return Accrual{TotalInterestDue: total, Breakdown: rows}
}

// =============================================================================
// INTEREST-ONLY - Principal constant for the whole term
// =============================================================================

type InterestOnlyModel struct{}

func (InterestOnlyModel) Accrue(l *loan.Loan, daysElapsed int) Accrual {
	if daysElapsed <= 0 {
		return Accrual{TotalInterestDue: decimal.Zero}
	}

	r := l.PeriodRate()
	periodDays := l.Period.LengthDays()
	completed := completedPeriods(daysElapsed, periodDays, l.Duration)

	var rows []PeriodAccrual
	total := decimal.Zero
	for p := 1; p <= completed; p++ {
		interest := l.Principal.Mul(r)
		total = total.Add(interest)
		if len(rows) < maxBreakdownRows {
			rows = append(rows, PeriodAccrual{
				Period:         p,
				Days:           periodDays,
				OpeningBalance: l.Principal,
				Interest:       interest,
				ClosingBalance: l.Principal,
			})
		}
	}

	leftover := leftoverDays(daysElapsed, completed, periodDays)
	if leftover.IsPositive() {
		interest := l.Principal.Mul(l.DailyRate()).Mul(leftover)
		total = total.Add(interest)
		if len(rows) < maxBreakdownRows {
			rows = append(rows, PeriodAccrual{
				Period:         completed + 1,
				Days:           leftover,
				OpeningBalance: l.Principal,
				Interest:       interest,
				ClosingBalance: l.Principal,
				Partial:        true,
			})
		}
	}

	return Accrual{TotalInterestDue: total, Breakdown: rows}
}

// =============================================================================
// ROLLED-UP - Daily compounding
// =============================================================================

type RolledUpModel struct{}

func (RolledUpModel) Accrue(l *loan.Loan, daysElapsed int) Accrual {
	if daysElapsed <= 0 {
		return Accrual{TotalInterestDue: decimal.Zero}
	}

	daily := l.DailyRate()
	// total = P * ((1+daily)^days - 1)
	total := l.Principal.Mul(one.Add(daily).Pow(decimal.NewFromInt(int64(daysElapsed))).Sub(one))

	// Breakdown compounds period by period for display.
	periodDays := l.Period.LengthDays()
	var rows []PeriodAccrual
	balance := l.Principal
	remaining := decimal.NewFromInt(int64(daysElapsed))
	for p := 1; remaining.IsPositive() && len(rows) < maxBreakdownRows; p++ {
		days := periodDays
		partial := false
		if remaining.LessThan(periodDays) {
			days = remaining
			partial = true
		}
		// Per-row compounding uses whole days; the display rounds anyway.
		wholeDays := days.Ceil().IntPart()
		closing := balance.Mul(one.Add(daily).Pow(decimal.NewFromInt(wholeDays)))
		rows = append(rows, PeriodAccrual{
			Period:         p,
			Days:           days,
			OpeningBalance: balance,
			Interest:       closing.Sub(balance),
			ClosingBalance: closing,
			Partial:        partial,
		})
		balance = closing
		remaining = remaining.Sub(days)
	}

	return Accrual{TotalInterestDue: total, Breakdown: rows}
}

// =============================================================================
// PERIOD HELPERS
// =============================================================================

func completedPeriods(daysElapsed int, periodDays decimal.Decimal, duration int) int {
	completed := int(decimal.NewFromInt(int64(daysElapsed)).Div(periodDays).IntPart())
	if completed > duration {
		completed = duration
	}
	return completed
}

func leftoverDays(daysElapsed, completed int, periodDays decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(daysElapsed)).Sub(periodDays.Mul(decimal.NewFromInt(int64(completed))))
}
