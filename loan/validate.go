/*
validate.go - Boundary validation for records entering the engine

PURPOSE:
  Converts missing or malformed input into typed ValidationErrors at the
  boundary, while keeping the engine internals tolerant of zero values.
  A repayment with no principal portion is a legitimate interest-only
  payment; a repayment with an unparseable date is a caller bug.

TOLERANCE RULES:
  - Missing PrincipalApplied / InterestApplied: treated as zero (legal)
  - Missing GrossAmount: falls back to Amount (legal)
  - Zero date, negative amount, unknown type: rejected with a typed error

SEE ALSO:
  - errors.go: ValidationError and sentinels
  - api/dto.go: Wire-level parsing that feeds this
*/
package loan

// Validate checks the loan's terms. Calculations on an invalid loan are
// refused up front rather than producing a best-effort ledger.
func (l *Loan) Validate() error {
	if l == nil {
		return ErrMissingLoan
	}
	if !l.InterestType.Valid() {
		return loanFieldError("interest_type", string(l.InterestType), "unknown interest type")
	}
	if !l.Period.Valid() {
		return loanFieldError("period", string(l.Period), "unknown period unit")
	}
	if l.Principal.IsNegative() {
		return loanFieldError("principal_amount", l.Principal.String(), "must not be negative")
	}
	if l.InterestRate.IsNegative() {
		return loanFieldError("interest_rate", l.InterestRate.String(), "must not be negative")
	}
	if l.StartDate.IsZero() {
		return loanFieldError("start_date", "", "required")
	}
	if l.Duration < 0 {
		return loanFieldError("duration", "", "must not be negative")
	}
	if l.HasPenaltyRate {
		if l.PenaltyRate.IsNegative() {
			return loanFieldError("penalty_rate", l.PenaltyRate.String(), "must not be negative")
		}
		if l.PenaltyRateFrom.IsZero() {
			return loanFieldError("penalty_rate_from", "", "required when has_penalty_rate is set")
		}
	}
	if l.ExitFee.IsNegative() {
		return loanFieldError("exit_fee", l.ExitFee.String(), "must not be negative")
	}
	return nil
}

// Validate checks a transaction's shape. Zero applied portions are accepted;
// structurally broken records are not.
func (t *Transaction) Validate() error {
	switch t.Type {
	case TxDisbursement, TxRepayment:
	default:
		return txFieldError("type", string(t.Type), "unknown transaction type")
	}
	if t.Date.IsZero() {
		return txFieldError("date", "", "required")
	}
	if t.Amount.IsNegative() {
		return txFieldError("amount", t.Amount.String(), "must not be negative")
	}
	if t.PrincipalApplied.IsNegative() {
		return txFieldError("principal_applied", t.PrincipalApplied.String(), "must not be negative")
	}
	if t.InterestApplied.IsNegative() {
		return txFieldError("interest_applied", t.InterestApplied.String(), "must not be negative")
	}
	if t.GrossAmount.IsNegative() {
		return txFieldError("gross_amount", t.GrossAmount.String(), "must not be negative")
	}
	return nil
}

// ValidateAll validates a batch of transactions, returning the first failure.
func ValidateAll(txs []Transaction) error {
	for i := range txs {
		if err := txs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
