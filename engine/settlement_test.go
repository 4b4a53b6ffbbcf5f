package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhitwam/whit-lend-sub003/engine"
	"github.com/awhitwam/whit-lend-sub003/loan"
)

func newCalculator() *engine.SettlementCalculator {
	return engine.NewSettlementCalculator(engine.Models())
}

// =============================================================================
// SCENARIO D - The two modes use divergent day counts
// =============================================================================

func TestSettlement_DayCountDivergenceBetweenModes(t *testing.T) {
	// GIVEN: start=2024-01-01, settlementDate=2024-01-10
	// THEN: formula mode counts 9 days (exclusive of the settlement day),
	//       ledger-reconciled mode counts 10 (inclusive). The divergence is
	//       deliberate inherited behavior; assert both values explicitly.

	calc := newCalculator()
	l := testLoan()
	date := d(2024, time.January, 10)

	formula, err := calc.FormulaQuote(l, nil, date)
	require.NoError(t, err)
	ledger, err := calc.LedgerQuote(l, nil, date)
	require.NoError(t, err)

	assert.Equal(t, 9, formula.DaysElapsed)
	assert.Equal(t, 10, ledger.DaysElapsed)
	assert.NotEqual(t, formula.DaysElapsed, ledger.DaysElapsed,
		"conventions must stay divergent until product signs off a unification")
}

// =============================================================================
// FORMULA MODE
// =============================================================================

func TestFormulaQuote_DelegatesToModel(t *testing.T) {
	calc := newCalculator()
	l := testLoan() // interest-only

	s, err := calc.FormulaQuote(l, nil, d(2024, time.January, 10))
	require.NoError(t, err)

	// 9 days at the daily rate on full principal: 10000 * 0.12/365 * 9
	assert.InDelta(t, 29.59, s.InterestAccrued.InexactFloat64(), 0.01)
	assert.True(t, s.PrincipalRemaining.Equal(dec("10000")))
	assert.True(t, s.SettlementAmount.Equal(s.PrincipalRemaining.Add(s.InterestRemaining)))
}

func TestFormulaQuote_UsesRepaymentsForPrincipalAndPaidInterest(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.January, 16), "5049.32", "5000", "49.32"),
	}

	s, err := calc.FormulaQuote(l, txs, d(2024, time.January, 31))
	require.NoError(t, err)

	assert.True(t, s.PrincipalRemaining.Equal(dec("5000")))
	assert.True(t, s.InterestPaid.Equal(dec("49.32")))
}

// =============================================================================
// LEDGER-RECONCILED MODE
// =============================================================================

func TestLedgerQuote_PeriodsBoundedByPrincipalReducingRepayments(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.January, 16), "5049.32", "5000", "49.32"),
	}

	s, err := calc.LedgerQuote(l, txs, d(2024, time.January, 31))
	require.NoError(t, err)

	require.Len(t, s.InterestPeriods, 2)

	first := s.InterestPeriods[0]
	assert.Equal(t, 15, first.Days)
	assert.True(t, first.OpeningPrincipal.Equal(dec("10000")))
	assert.True(t, first.ClosingPrincipal.Equal(dec("5000")))
	assert.True(t, first.PrincipalPayment.Equal(dec("5000")))

	// Final period includes the settlement day: 15 + 1 = 16 days.
	second := s.InterestPeriods[1]
	assert.Equal(t, 16, second.Days)
	assert.True(t, second.OpeningPrincipal.Equal(dec("5000")))

	// 15d at 10000 + 16d at 5000, all at 12%
	assert.InDelta(t, 49.32+26.30, s.InterestAccrued.InexactFloat64(), 0.01)
}

func TestLedgerQuote_InterestOnlyRepaymentIsNotABoundary(t *testing.T) {
	// A repayment with principal_applied = 0 discharges interest but does
	// not close an accrual period.

	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.January, 16), "100", "0", "100"),
	}

	s, err := calc.LedgerQuote(l, txs, d(2024, time.January, 31))
	require.NoError(t, err)

	require.Len(t, s.InterestPeriods, 1)
	assert.Equal(t, 31, s.InterestPeriods[0].Days)
	assert.True(t, s.InterestPaid.Equal(dec("100")))
}

func TestLedgerQuote_PeriodInterestSumsToAccrued(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.February, 1), "1100", "1000", "100"),
		repayment(d(2024, time.March, 1), "1100", "1000", "100"),
	}

	s, err := calc.LedgerQuote(l, txs, d(2024, time.April, 15))
	require.NoError(t, err)

	sum := dec("0")
	for _, p := range s.InterestPeriods {
		sum = sum.Add(p.PeriodInterest)
	}
	assert.True(t, sum.Equal(s.InterestAccrued))
}

// =============================================================================
// COMMON FIGURES
// =============================================================================

func TestSettlement_ExitFeeIncluded(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	l.ExitFee = dec("250")

	s, err := calc.LedgerQuote(l, nil, d(2024, time.January, 31))
	require.NoError(t, err)

	expected := s.PrincipalRemaining.Add(s.InterestRemaining).Add(dec("250"))
	assert.True(t, s.SettlementAmount.Equal(expected))
}

func TestSettlement_NeverNegative(t *testing.T) {
	// Over-repaid loan: principal clamps at zero, interest remaining clamps
	// at zero, and the settlement amount stays non-negative.

	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.January, 5), "20000", "15000", "5000"),
	}

	for _, mode := range []engine.SettlementMode{engine.ModeFormula, engine.ModeLedger} {
		s, err := calc.Quote(l, txs, d(2024, time.January, 31), mode)
		require.NoError(t, err)
		assert.False(t, s.SettlementAmount.IsNegative(), "mode %s", mode)
		assert.True(t, s.PrincipalRemaining.IsZero(), "mode %s", mode)
		assert.False(t, s.InterestRemaining.IsNegative(), "mode %s", mode)
	}
}

func TestSettlement_DeletedTransactionsIgnored(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	deleted := repayment(d(2024, time.January, 10), "5000", "5000", "0")
	deleted.IsDeleted = true

	s, err := calc.LedgerQuote(l, []loan.Transaction{deleted}, d(2024, time.January, 31))
	require.NoError(t, err)

	assert.True(t, s.PrincipalRemaining.Equal(dec("10000")))
	require.Len(t, s.InterestPeriods, 1)
}

// =============================================================================
// TRANSACTION HISTORY
// =============================================================================

func TestSettlement_TransactionHistory_SeededAndChronological(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	txs := []loan.Transaction{
		repayment(d(2024, time.March, 1), "1100", "1000", "100"),
		repayment(d(2024, time.February, 1), "1100", "1000", "100"),
	}

	s, err := calc.LedgerQuote(l, txs, d(2024, time.April, 1))
	require.NoError(t, err)

	require.Len(t, s.TransactionHistory, 3)

	// Seeded with the initial principal on the start date
	seed := s.TransactionHistory[0]
	assert.Equal(t, loan.TxDisbursement, seed.Type)
	assert.Equal(t, l.StartDate, seed.Date)
	assert.True(t, seed.PrincipalBalance.Equal(dec("10000")))

	// Repayments replay in date order with running balances
	assert.Equal(t, d(2024, time.February, 1), s.TransactionHistory[1].Date)
	assert.True(t, s.TransactionHistory[1].PrincipalBalance.Equal(dec("9000")))
	assert.Equal(t, d(2024, time.March, 1), s.TransactionHistory[2].Date)
	assert.True(t, s.TransactionHistory[2].PrincipalBalance.Equal(dec("8000")))
}

// =============================================================================
// GUARDS
// =============================================================================

func TestSettlement_NilLoan_FailsFast(t *testing.T) {
	calc := newCalculator()
	_, err := calc.FormulaQuote(nil, nil, d(2024, time.January, 31))
	assert.ErrorIs(t, err, loan.ErrMissingLoan)
}

func TestFormulaQuote_MissingModel_TypedError(t *testing.T) {
	// A calculator built with a partial strategy map refuses the quote with
	// a typed domain error instead of a zero result.

	calc := engine.NewSettlementCalculator(map[loan.InterestType]engine.AmortizationModel{})
	_, err := calc.FormulaQuote(testLoan(), nil, d(2024, time.January, 31))
	assert.ErrorIs(t, err, loan.ErrInvalidLoan)
}
