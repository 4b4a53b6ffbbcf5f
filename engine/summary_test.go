package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhitwam/whit-lend-sub003/engine"
	"github.com/awhitwam/whit-lend-sub003/loan"
)

func TestSummarize_RoundsOnlyAtTheBoundary(t *testing.T) {
	// The walk keeps full precision; the summary rounds each top-line
	// figure exactly once.

	l := testLoan()
	txs := []loan.Transaction{disbursement(d(2024, time.January, 1), "10000")}

	result, err := engine.BuildLedger(l, txs, d(2024, time.January, 8))
	require.NoError(t, err)

	// 7 days: 10000 * 0.12/365 * 7 = 23.0136986...
	assert.False(t, result.InterestAccrued.Equal(dec("23.01")),
		"raw total keeps full precision")

	summary := engine.Summarize(result)
	assert.True(t, summary.TotalInterestAccrued.Equal(dec("23.01")))
	assert.True(t, summary.InterestOutstanding.Equal(dec("23.01")))
	assert.True(t, summary.PrincipalOutstanding.Equal(dec("10000")))
}

func TestSummarizeSettlement_Rounds(t *testing.T) {
	calc := newCalculator()
	l := testLoan()
	l.ExitFee = dec("150")

	s, err := calc.LedgerQuote(l, nil, d(2024, time.January, 10))
	require.NoError(t, err)

	summary := engine.SummarizeSettlement(s)

	// 10 inclusive days: 10000 * 0.12/365 * 10 = 32.8767... -> 32.88
	assert.True(t, summary.InterestAccrued.Equal(dec("32.88")))
	assert.True(t, summary.InterestRemaining.Equal(dec("32.88")))
	assert.True(t, summary.SettlementAmount.Equal(dec("10182.88")))
	assert.Equal(t, 10, summary.DaysElapsed)
}

func TestSummarizeSchedule_SplitsRollUpAndServiced(t *testing.T) {
	entries := []loan.ScheduleEntry{
		{InstallmentNumber: 1, InterestAmount: dec("100.005"), IsRollUpPeriod: true},
		{InstallmentNumber: 2, InterestAmount: dec("100"), IsRollUpPeriod: true},
		{InstallmentNumber: 3, InterestAmount: dec("95.50"), IsServicedPeriod: true},
	}

	s := engine.SummarizeSchedule(entries)

	assert.Equal(t, 3, s.Installments)
	assert.True(t, s.TotalInterest.Equal(dec("295.51")))
	assert.True(t, s.RollUpInterest.Equal(dec("200.01")))
	assert.True(t, s.ServicedInterest.Equal(dec("95.50")))
}

func TestSummarizeSchedule_Empty(t *testing.T) {
	s := engine.SummarizeSchedule(nil)
	assert.Equal(t, 0, s.Installments)
	assert.True(t, s.TotalInterest.IsZero())
}
