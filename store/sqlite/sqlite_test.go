/*
sqlite_test.go - Store round-trip tests

Tests for:
- Loan persistence with exact decimal round-trips
- Transaction persistence and date ordering
- Soft deletion semantics
*/
package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhitwam/whit-lend-sub003/loan"
	"github.com/awhitwam/whit-lend-sub003/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(t *testing.T, s string) loan.Date {
	t.Helper()
	date, err := loan.ParseDate(s)
	require.NoError(t, err)
	return date
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func storedLoan(t *testing.T) *loan.Loan {
	return &loan.Loan{
		ID:           "loan-1",
		Borrower:     "Test Borrower",
		Principal:    dec("10000"),
		InterestRate: dec("12"),
		InterestType: loan.InterestInterestOnly,
		StartDate:    d(t, "2024-01-01"),
		Duration:     12,
		Period:       loan.PeriodMonthly,
		ExitFee:      dec("150"),
		RollUpAmount: decimal.Zero,
		PenaltyRate:  decimal.Zero,
	}
}

func TestCreateAndGetLoan(t *testing.T) {
	// GIVEN: A stored loan
	store := newStore(t)
	ctx := context.Background()

	l := storedLoan(t)
	require.NoError(t, store.CreateLoan(ctx, l))

	// WHEN: Loading it back
	got, err := store.GetLoan(ctx, "loan-1")
	require.NoError(t, err)

	// THEN: Every field survives, decimals exactly
	assert.Equal(t, l.ID, got.ID)
	assert.Equal(t, l.Borrower, got.Borrower)
	assert.True(t, got.Principal.Equal(dec("10000")))
	assert.True(t, got.InterestRate.Equal(dec("12")))
	assert.Equal(t, loan.InterestInterestOnly, got.InterestType)
	assert.True(t, got.StartDate.Equal(d(t, "2024-01-01")))
	assert.Equal(t, 12, got.Duration)
	assert.Equal(t, loan.PeriodMonthly, got.Period)
	assert.True(t, got.ExitFee.Equal(dec("150")))
	assert.False(t, got.HasPenaltyRate)
	assert.True(t, got.PenaltyRateFrom.IsZero())
}

func TestGetLoanPreservesPenaltyRate(t *testing.T) {
	// GIVEN: A loan stepping onto a penalty rate
	store := newStore(t)
	ctx := context.Background()

	l := storedLoan(t)
	l.ID = "loan-pen"
	l.HasPenaltyRate = true
	l.PenaltyRate = dec("18")
	l.PenaltyRateFrom = d(t, "2024-06-01")
	require.NoError(t, store.CreateLoan(ctx, l))

	// WHEN/THEN
	got, err := store.GetLoan(ctx, "loan-pen")
	require.NoError(t, err)
	assert.True(t, got.HasPenaltyRate)
	assert.True(t, got.PenaltyRate.Equal(dec("18")))
	assert.True(t, got.PenaltyRateFrom.Equal(d(t, "2024-06-01")))
}

func TestGetLoanNotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.GetLoan(context.Background(), "nope")
	assert.ErrorIs(t, err, loan.ErrLoanNotFound)
}

func TestListLoans(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := storedLoan(t)
	a.ID = "loan-a"
	b := storedLoan(t)
	b.ID = "loan-b"
	require.NoError(t, store.CreateLoan(ctx, a))
	require.NoError(t, store.CreateLoan(ctx, b))

	loans, err := store.ListLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestTransactionsOrderedByDate(t *testing.T) {
	// GIVEN: Transactions inserted out of date order
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateLoan(ctx, storedLoan(t)))

	later := &loan.Transaction{
		ID: "tx-later", LoanID: "loan-1", Type: loan.TxRepayment,
		Date:   d(t, "2024-03-01"),
		Amount: dec("500"), PrincipalApplied: dec("400"), InterestApplied: dec("100"),
		GrossAmount: decimal.Zero,
	}
	earlier := &loan.Transaction{
		ID: "tx-earlier", LoanID: "loan-1", Type: loan.TxDisbursement,
		Date:   d(t, "2024-01-01"),
		Amount: dec("10000"), PrincipalApplied: decimal.Zero, InterestApplied: decimal.Zero,
		GrossAmount: dec("10000"),
	}
	require.NoError(t, store.AddTransaction(ctx, later))
	require.NoError(t, store.AddTransaction(ctx, earlier))

	// WHEN: Listing
	txs, err := store.ListTransactions(ctx, "loan-1")
	require.NoError(t, err)

	// THEN: Date order, not insertion order
	require.Len(t, txs, 2)
	assert.Equal(t, "tx-earlier", txs[0].ID)
	assert.Equal(t, "tx-later", txs[1].ID)
	assert.True(t, txs[0].GrossAmount.Equal(dec("10000")))
	assert.True(t, txs[1].PrincipalApplied.Equal(dec("400")))
}

func TestSoftDeleteKeepsRow(t *testing.T) {
	// GIVEN: A stored repayment
	store := newStore(t)
	ctx := context.Background()
	require.NoError(t, store.CreateLoan(ctx, storedLoan(t)))

	tx := &loan.Transaction{
		ID: "tx-del", LoanID: "loan-1", Type: loan.TxRepayment,
		Date:   d(t, "2024-02-01"),
		Amount: dec("1000"), PrincipalApplied: dec("900"), InterestApplied: dec("100"),
		GrossAmount: decimal.Zero,
	}
	require.NoError(t, store.AddTransaction(ctx, tx))

	// WHEN: Soft-deleting it
	require.NoError(t, store.SoftDeleteTransaction(ctx, "tx-del"))

	// THEN: The row is still listed, flagged deleted
	txs, err := store.ListTransactions(ctx, "loan-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].IsDeleted)
	assert.True(t, txs[0].Amount.Equal(dec("1000")))
}

func TestSoftDeleteUnknownTransaction(t *testing.T) {
	store := newStore(t)

	err := store.SoftDeleteTransaction(context.Background(), "nope")
	assert.ErrorIs(t, err, loan.ErrTransactionNotFound)
}
