package loan_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

func validLoan() *loan.Loan {
	return &loan.Loan{
		ID:           "loan-1",
		Principal:    decimal.NewFromInt(10000),
		InterestRate: decimal.NewFromInt(12),
		InterestType: loan.InterestReducing,
		StartDate:    loan.NewDate(2024, time.January, 1),
		Duration:     12,
		Period:       loan.PeriodMonthly,
	}
}

func TestLoanValidate_Valid(t *testing.T) {
	assert.NoError(t, validLoan().Validate())
}

func TestLoanValidate_Nil(t *testing.T) {
	var l *loan.Loan
	assert.ErrorIs(t, l.Validate(), loan.ErrMissingLoan)
}

func TestLoanValidate_FieldErrors(t *testing.T) {
	tests := map[string]func(*loan.Loan){
		"unknown interest type": func(l *loan.Loan) { l.InterestType = "balloon" },
		"unknown period unit":   func(l *loan.Loan) { l.Period = "daily" },
		"negative principal":    func(l *loan.Loan) { l.Principal = decimal.NewFromInt(-1) },
		"negative rate":         func(l *loan.Loan) { l.InterestRate = decimal.NewFromInt(-1) },
		"zero start date":       func(l *loan.Loan) { l.StartDate = loan.Date{} },
		"negative duration":     func(l *loan.Loan) { l.Duration = -1 },
		"negative exit fee":     func(l *loan.Loan) { l.ExitFee = decimal.NewFromInt(-1) },
		"penalty without date": func(l *loan.Loan) {
			l.HasPenaltyRate = true
			l.PenaltyRate = decimal.NewFromInt(18)
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			l := validLoan()
			mutate(l)
			err := l.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, loan.ErrInvalidLoan)

			var verr *loan.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Field)
		})
	}
}

func TestLoanValidate_UnknownPeriodRejectedNotCoerced(t *testing.T) {
	// LengthDays defaults unknown units to the monthly basis, so a typo'd
	// cadence must be stopped at the boundary before it can accrue there.
	l := validLoan()
	l.Period = loan.PeriodUnit("weeklyy")

	err := l.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, loan.ErrInvalidLoan)

	var verr *loan.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "period", verr.Field)
	assert.Equal(t, "weeklyy", verr.Value)
}

func TestTransactionValidate_ZeroPortionsTolerated(t *testing.T) {
	// A repayment with no recorded split is a legitimate interest-only
	// payment shape; the engine treats missing portions as zero.
	tx := loan.Transaction{
		Type:   loan.TxRepayment,
		Date:   loan.NewDate(2024, time.February, 1),
		Amount: decimal.NewFromInt(100),
	}
	assert.NoError(t, tx.Validate())
}

func TestTransactionValidate_Rejections(t *testing.T) {
	base := loan.Transaction{
		Type:   loan.TxRepayment,
		Date:   loan.NewDate(2024, time.February, 1),
		Amount: decimal.NewFromInt(100),
	}

	tests := map[string]func(*loan.Transaction){
		"unknown type":      func(tx *loan.Transaction) { tx.Type = "chargeback" },
		"zero date":         func(tx *loan.Transaction) { tx.Date = loan.Date{} },
		"negative amount":   func(tx *loan.Transaction) { tx.Amount = decimal.NewFromInt(-5) },
		"negative interest": func(tx *loan.Transaction) { tx.InterestApplied = decimal.NewFromInt(-5) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			tx := base
			mutate(&tx)
			err := tx.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, loan.ErrInvalidTransaction)
			assert.True(t, loan.IsClientError(err))
		})
	}
}

func TestValidateAll_FirstFailureWins(t *testing.T) {
	good := loan.Transaction{
		Type:   loan.TxDisbursement,
		Date:   loan.NewDate(2024, time.January, 1),
		Amount: decimal.NewFromInt(10000),
	}
	bad := good
	bad.Type = "transfer"

	assert.NoError(t, loan.ValidateAll([]loan.Transaction{good}))
	assert.Error(t, loan.ValidateAll([]loan.Transaction{good, bad}))
}

func TestEffectiveGross_FallsBackToAmount(t *testing.T) {
	tx := loan.Transaction{
		Type:   loan.TxDisbursement,
		Date:   loan.NewDate(2024, time.January, 1),
		Amount: decimal.NewFromInt(9500),
	}
	assert.True(t, tx.EffectiveGross().Equal(decimal.NewFromInt(9500)))

	tx.GrossAmount = decimal.NewFromInt(10000)
	assert.True(t, tx.EffectiveGross().Equal(decimal.NewFromInt(10000)))
}
