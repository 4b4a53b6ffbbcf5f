/*
settlement.go - Point-in-time settlement quotes

PURPOSE:
  Produces the total amount required to fully discharge a loan as of a
  chosen date. Two calculation modes coexist as distinct, intentionally
  different algorithms because they serve different audit purposes:

  Formula mode:
    Delegates to the amortization model for a quick estimate without a full
    transaction history. daysElapsed excludes the settlement day.

  Ledger-reconciled mode:
    Rebuilds explicit interest periods bounded by each principal-reducing
    repayment and sums interest across them. daysElapsed here INCLUDES the
    settlement day, one day more than formula mode. The asymmetry is
    inherited servicing behavior; callers must not unify the two
    conventions without product sign-off, and the tests assert the
    divergence explicitly.

BOTH MODES:
  principalRemaining = principal - sum(principal_applied), clamped at zero
  interestRemaining  = max(0, interestAccrued - interestPaid)
  settlementAmount   = principalRemaining + interestRemaining + exit_fee

SEE ALSO:
  - amortize.go: Models backing formula mode
  - walker.go: The full ledger path (separate from either mode here)
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// =============================================================================
// RESULT TYPES
// =============================================================================

type SettlementMode string

const (
	ModeFormula SettlementMode = "formula"
	ModeLedger  SettlementMode = "ledger"
)

// InterestPeriod is one reconciled accrual span between principal-reducing
// repayments. DailyRate is the monetary interest per day on the opening
// principal.
type InterestPeriod struct {
	StartDate        loan.Date
	EndDate          loan.Date
	Days             int
	OpeningPrincipal decimal.Decimal
	DailyRate        decimal.Decimal
	PeriodInterest   decimal.Decimal
	PrincipalPayment decimal.Decimal
	ClosingPrincipal decimal.Decimal
}

// HistoryEntry is one row of the audit replay: a capital movement with the
// running principal balance after it.
type HistoryEntry struct {
	Date             loan.Date
	Type             loan.TransactionType
	Amount           decimal.Decimal
	PrincipalBalance decimal.Decimal
}

// Settlement is a full-precision quote; round through Summarize.
type Settlement struct {
	Mode           SettlementMode
	SettlementDate loan.Date
	DaysElapsed    int

	PrincipalRemaining decimal.Decimal
	InterestAccrued    decimal.Decimal
	InterestPaid       decimal.Decimal
	InterestRemaining  decimal.Decimal
	ExitFee            decimal.Decimal
	SettlementAmount   decimal.Decimal

	InterestPeriods    []InterestPeriod
	TransactionHistory []HistoryEntry
}

// =============================================================================
// SETTLEMENT CALCULATOR
// =============================================================================

// SettlementCalculator orchestrates either the amortization models or the
// reconciled period walk. The model map is supplied by the caller; the
// calculator holds no other state.
type SettlementCalculator struct {
	models map[loan.InterestType]AmortizationModel
}

func NewSettlementCalculator(models map[loan.InterestType]AmortizationModel) *SettlementCalculator {
	return &SettlementCalculator{models: models}
}

// Quote produces a settlement in the requested mode.
func (c *SettlementCalculator) Quote(l *loan.Loan, txs []loan.Transaction, date loan.Date, mode SettlementMode) (*Settlement, error) {
	switch mode {
	case ModeLedger:
		return c.LedgerQuote(l, txs, date)
	default:
		return c.FormulaQuote(l, txs, date)
	}
}

// FormulaQuote estimates interest from the loan terms alone.
// daysElapsed excludes the settlement day itself.
func (c *SettlementCalculator) FormulaQuote(l *loan.Loan, txs []loan.Transaction, date loan.Date) (*Settlement, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	model, ok := c.models[l.InterestType]
	if !ok {
		return nil, fmt.Errorf("%w: no amortization model for %q", loan.ErrInvalidLoan, l.InterestType)
	}

	daysElapsed := loan.DaysBetween(l.StartDate, date)
	accrued := model.Accrue(l, daysElapsed).TotalInterestDue

	s := &Settlement{
		Mode:            ModeFormula,
		SettlementDate:  date,
		DaysElapsed:     daysElapsed,
		InterestAccrued: accrued,
	}
	c.finish(s, l, txs, date)
	return s, nil
}

// LedgerQuote reconciles interest against the recorded repayments.
// daysElapsed includes the settlement day itself.
func (c *SettlementCalculator) LedgerQuote(l *loan.Loan, txs []loan.Transaction, date loan.Date) (*Settlement, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	daysElapsed := loan.DaysBetween(l.StartDate, date) + 1

	// Period boundaries are the principal-reducing repayments only; a pure
	// interest payment does not close an accrual period.
	var reducing []loan.Transaction
	for i := range txs {
		tx := txs[i]
		if tx.IsDeleted || tx.Type != loan.TxRepayment || tx.Date.After(date) {
			continue
		}
		if tx.PrincipalApplied.IsPositive() {
			reducing = append(reducing, tx)
		}
	}
	sort.SliceStable(reducing, func(i, j int) bool { return reducing[i].Date.Before(reducing[j].Date) })

	var (
		periods []InterestPeriod
		accrued = decimal.Zero
		opening = l.Principal
		cursor  = l.StartDate
	)
	dailyOf := func(principal decimal.Decimal) decimal.Decimal {
		return principal.Mul(l.InterestRate).Div(decimal.NewFromInt(36500))
	}

	for _, tx := range reducing {
		days := loan.DaysBetween(cursor, tx.Date)
		daily := dailyOf(opening)
		interest := daily.Mul(decimal.NewFromInt(int64(days)))
		accrued = accrued.Add(interest)

		closing := opening.Sub(tx.PrincipalApplied)
		if closing.IsNegative() {
			closing = decimal.Zero
		}
		periods = append(periods, InterestPeriod{
			StartDate:        cursor,
			EndDate:          tx.Date,
			Days:             days,
			OpeningPrincipal: opening,
			DailyRate:        daily,
			PeriodInterest:   interest,
			PrincipalPayment: tx.PrincipalApplied,
			ClosingPrincipal: closing,
		})
		opening = closing
		cursor = tx.Date
	}

	// Trailing period includes the settlement day.
	finalDays := loan.DaysBetween(cursor, date) + 1
	if finalDays > 0 && opening.IsPositive() {
		daily := dailyOf(opening)
		interest := daily.Mul(decimal.NewFromInt(int64(finalDays)))
		accrued = accrued.Add(interest)
		periods = append(periods, InterestPeriod{
			StartDate:        cursor,
			EndDate:          date,
			Days:             finalDays,
			OpeningPrincipal: opening,
			DailyRate:        daily,
			PeriodInterest:   interest,
			PrincipalPayment: decimal.Zero,
			ClosingPrincipal: opening,
		})
	}

	s := &Settlement{
		Mode:            ModeLedger,
		SettlementDate:  date,
		DaysElapsed:     daysElapsed,
		InterestAccrued: accrued,
		InterestPeriods: periods,
	}
	c.finish(s, l, txs, date)
	return s, nil
}

// finish fills the figures common to both modes and the audit history.
func (c *SettlementCalculator) finish(s *Settlement, l *loan.Loan, txs []loan.Transaction, date loan.Date) {
	paid := decimal.Zero
	applied := decimal.Zero
	for i := range txs {
		tx := &txs[i]
		if tx.IsDeleted || tx.Type != loan.TxRepayment || tx.Date.After(date) {
			continue
		}
		paid = paid.Add(tx.InterestApplied)
		applied = applied.Add(tx.PrincipalApplied)
	}

	principalRemaining := l.Principal.Sub(applied)
	if principalRemaining.IsNegative() {
		principalRemaining = decimal.Zero
	}
	interestRemaining := s.InterestAccrued.Sub(paid)
	if interestRemaining.IsNegative() {
		interestRemaining = decimal.Zero
	}

	s.InterestPaid = paid
	s.PrincipalRemaining = principalRemaining
	s.InterestRemaining = interestRemaining
	s.ExitFee = l.ExitFee
	s.SettlementAmount = principalRemaining.Add(interestRemaining).Add(l.ExitFee)
	s.TransactionHistory = replayHistory(l, txs, date)
}

// replayHistory is the audit display: the initial advance seeded from the
// loan principal, then every capital movement with its running balance.
func replayHistory(l *loan.Loan, txs []loan.Transaction, date loan.Date) []HistoryEntry {
	kept := make([]loan.Transaction, 0, len(txs))
	for i := range txs {
		tx := txs[i]
		if tx.IsDeleted || tx.Date.After(date) {
			continue
		}
		kept = append(kept, tx)
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })

	balance := l.Principal
	history := []HistoryEntry{{
		Date:             l.StartDate,
		Type:             loan.TxDisbursement,
		Amount:           l.Principal,
		PrincipalBalance: balance,
	}}

	for i := range kept {
		tx := &kept[i]
		switch tx.Type {
		case loan.TxDisbursement:
			balance = balance.Add(tx.EffectiveGross())
			history = append(history, HistoryEntry{
				Date:             tx.Date,
				Type:             loan.TxDisbursement,
				Amount:           tx.EffectiveGross(),
				PrincipalBalance: balance,
			})
		case loan.TxRepayment:
			balance = balance.Sub(tx.PrincipalApplied)
			if balance.IsNegative() {
				balance = decimal.Zero
			}
			history = append(history, HistoryEntry{
				Date:             tx.Date,
				Type:             loan.TxRepayment,
				Amount:           tx.Amount,
				PrincipalBalance: balance,
			})
		}
	}
	return history
}
