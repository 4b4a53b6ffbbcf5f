/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

DECIMAL REPRESENTATION:
  Monetary amounts and rates cross the wire as JSON strings ("10000.00"),
  never floats. Parsing goes through decimal.NewFromString so client input
  keeps exact precision, and malformed values become 400s instead of
  silently truncated numbers.

TYPES:
  Loan:        LoanDTO, CreateLoanRequest
  Transaction: TransactionDTO, CreateTransactionRequest
  Ledger:      LedgerDTO, LedgerEntryDTO
  Settlement:  SettlementDTO, InterestPeriodDTO, HistoryEntryDTO
  Statement:   StatementRequest, StatementDTO, ScheduleEntryDTO

SEE ALSO:
  - handlers.go: Uses these types
  - engine: The domain types these mirror
*/
package api

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/engine"
	"github.com/awhitwam/whit-lend-sub003/loan"
)

// =============================================================================
// LOAN TYPES
// =============================================================================

// LoanDTO represents a loan in API responses.
type LoanDTO struct {
	ID              string `json:"id"`
	Borrower        string `json:"borrower"`
	Principal       string `json:"principal"`
	InterestRate    string `json:"interest_rate"`
	InterestType    string `json:"interest_type"`
	StartDate       string `json:"start_date"`
	Duration        int    `json:"duration"`
	Period          string `json:"period"`
	HasPenaltyRate  bool   `json:"has_penalty_rate"`
	PenaltyRate     string `json:"penalty_rate,omitempty"`
	PenaltyRateFrom string `json:"penalty_rate_from,omitempty"`
	ExitFee         string `json:"exit_fee"`
	RollUpLength    int    `json:"roll_up_length,omitempty"`
	RollUpAmount    string `json:"roll_up_amount,omitempty"`
}

// CreateLoanRequest is the request to create a loan.
type CreateLoanRequest struct {
	Borrower        string `json:"borrower"`
	Principal       string `json:"principal"`
	InterestRate    string `json:"interest_rate"`
	InterestType    string `json:"interest_type"`
	StartDate       string `json:"start_date"`
	Duration        int    `json:"duration"`
	Period          string `json:"period"`
	PenaltyRate     string `json:"penalty_rate,omitempty"`
	PenaltyRateFrom string `json:"penalty_rate_from,omitempty"`
	ExitFee         string `json:"exit_fee,omitempty"`
	RollUpLength    int    `json:"roll_up_length,omitempty"`
	RollUpAmount    string `json:"roll_up_amount,omitempty"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// TransactionDTO represents a capital movement in API responses.
type TransactionDTO struct {
	ID               string `json:"id"`
	LoanID           string `json:"loan_id"`
	Type             string `json:"type"`
	Date             string `json:"date"`
	Amount           string `json:"amount"`
	PrincipalApplied string `json:"principal_applied"`
	InterestApplied  string `json:"interest_applied"`
	GrossAmount      string `json:"gross_amount,omitempty"`
	IsDeleted        bool   `json:"is_deleted,omitempty"`
}

// CreateTransactionRequest is the request to record a transaction.
type CreateTransactionRequest struct {
	Type             string `json:"type"`
	Date             string `json:"date"`
	Amount           string `json:"amount"`
	PrincipalApplied string `json:"principal_applied,omitempty"`
	InterestApplied  string `json:"interest_applied,omitempty"`
	GrossAmount      string `json:"gross_amount,omitempty"`
}

// =============================================================================
// LEDGER TYPES
// =============================================================================

// LedgerEntryDTO is one row of the replayed ledger. Kind is one of
// "accrual", "disbursement", "repayment", "rate_change"; fields not
// relevant to the kind are omitted.
type LedgerEntryDTO struct {
	Kind string `json:"kind"`
	Date string `json:"date"`

	// accrual
	To        string `json:"to,omitempty"`
	Days      int    `json:"days,omitempty"`
	Principal string `json:"principal,omitempty"`
	Rate      string `json:"rate,omitempty"`
	Interest  string `json:"interest,omitempty"`

	// disbursement / repayment
	Amount           string `json:"amount,omitempty"`
	PrincipalApplied string `json:"principal_applied,omitempty"`
	InterestApplied  string `json:"interest_applied,omitempty"`
	PrincipalAfter   string `json:"principal_after,omitempty"`

	// rate_change
	FromRate string `json:"from_rate,omitempty"`
	ToRate   string `json:"to_rate,omitempty"`
}

// LedgerDTO is the ledger plus its rounded summary. Entry amounts are
// rounded per row for display, while the summary figures round the
// full-precision running totals; summing displayed rows can therefore
// differ from the summary by a cent. The summary is authoritative.
type LedgerDTO struct {
	LoanID               string           `json:"loan_id"`
	AsOf                 string           `json:"as_of"`
	Entries              []LedgerEntryDTO `json:"entries"`
	TotalInterestAccrued string           `json:"total_interest_accrued"`
	TotalInterestPaid    string           `json:"total_interest_paid"`
	InterestOutstanding  string           `json:"interest_outstanding"`
	PrincipalOutstanding string           `json:"principal_outstanding"`
}

// =============================================================================
// SETTLEMENT TYPES
// =============================================================================

// InterestPeriodDTO is one reconciled accrual span in a ledger-mode quote.
type InterestPeriodDTO struct {
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Days             int    `json:"days"`
	OpeningPrincipal string `json:"opening_principal"`
	DailyRate        string `json:"daily_rate"`
	PeriodInterest   string `json:"period_interest"`
	PrincipalPayment string `json:"principal_payment,omitempty"`
	ClosingPrincipal string `json:"closing_principal"`
}

// HistoryEntryDTO is one row of the settlement audit replay.
type HistoryEntryDTO struct {
	Date             string `json:"date"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	PrincipalBalance string `json:"principal_balance"`
}

// SettlementDTO is the rounded settlement quote.
type SettlementDTO struct {
	LoanID             string              `json:"loan_id"`
	Mode               string              `json:"mode"`
	SettlementDate     string              `json:"settlement_date"`
	DaysElapsed        int                 `json:"days_elapsed"`
	PrincipalRemaining string              `json:"principal_remaining"`
	InterestAccrued    string              `json:"interest_accrued"`
	InterestPaid       string              `json:"interest_paid"`
	InterestRemaining  string              `json:"interest_remaining"`
	ExitFee            string              `json:"exit_fee"`
	SettlementAmount   string              `json:"settlement_amount"`
	InterestPeriods    []InterestPeriodDTO `json:"interest_periods,omitempty"`
	TransactionHistory []HistoryEntryDTO   `json:"transaction_history"`
}

// =============================================================================
// STATEMENT TYPES
// =============================================================================

// ScheduleEntryDTO is one externally generated schedule installment.
type ScheduleEntryDTO struct {
	InstallmentNumber         int    `json:"installment_number"`
	DueDate                   string `json:"due_date"`
	InterestAmount            string `json:"interest_amount"`
	CalculationDays           int    `json:"calculation_days"`
	CalculationPrincipalStart string `json:"calculation_principal_start"`
	IsRollUpPeriod            bool   `json:"is_roll_up_period,omitempty"`
	IsServicedPeriod          bool   `json:"is_serviced_period,omitempty"`
}

// StatementRequest carries the schedule to merge with the computed ledger.
type StatementRequest struct {
	AsOf     string             `json:"as_of"`
	Schedule []ScheduleEntryDTO `json:"schedule"`
}

// StatementDTO merges the schedule totals with the replayed ledger.
type StatementDTO struct {
	LoanID               string           `json:"loan_id"`
	AsOf                 string           `json:"as_of"`
	Installments         int              `json:"installments"`
	ScheduledInterest    string           `json:"scheduled_interest"`
	RollUpInterest       string           `json:"roll_up_interest"`
	ServicedInterest     string           `json:"serviced_interest"`
	AccruedInterest      string           `json:"accrued_interest"`
	InterestOutstanding  string           `json:"interest_outstanding"`
	PrincipalOutstanding string           `json:"principal_outstanding"`
	Ledger               []LedgerEntryDTO `json:"ledger"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLoanDTO(l *loan.Loan) LoanDTO {
	dto := LoanDTO{
		ID:           l.ID,
		Borrower:     l.Borrower,
		Principal:    l.Principal.String(),
		InterestRate: l.InterestRate.String(),
		InterestType: string(l.InterestType),
		StartDate:    l.StartDate.String(),
		Duration:     l.Duration,
		Period:       string(l.Period),
		ExitFee:      l.ExitFee.String(),
		RollUpLength: l.RollUpLength,
	}
	if l.HasPenaltyRate {
		dto.HasPenaltyRate = true
		dto.PenaltyRate = l.PenaltyRate.String()
		dto.PenaltyRateFrom = l.PenaltyRateFrom.String()
	}
	if !l.RollUpAmount.IsZero() {
		dto.RollUpAmount = l.RollUpAmount.String()
	}
	return dto
}

func toTransactionDTO(tx loan.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:               tx.ID,
		LoanID:           tx.LoanID,
		Type:             string(tx.Type),
		Date:             tx.Date.String(),
		Amount:           tx.Amount.String(),
		PrincipalApplied: tx.PrincipalApplied.String(),
		InterestApplied:  tx.InterestApplied.String(),
		IsDeleted:        tx.IsDeleted,
	}
	if !tx.GrossAmount.IsZero() {
		dto.GrossAmount = tx.GrossAmount.String()
	}
	return dto
}

func toLedgerEntryDTO(e engine.LedgerEntry) LedgerEntryDTO {
	switch v := e.(type) {
	case engine.InterestAccrual:
		return LedgerEntryDTO{
			Kind:      "accrual",
			Date:      v.From.String(),
			To:        v.To.String(),
			Days:      v.Days,
			Principal: v.Principal.Round(2).String(),
			Rate:      v.Rate.String(),
			Interest:  v.Interest.Round(2).String(),
		}
	case engine.Disbursement:
		return LedgerEntryDTO{
			Kind:           "disbursement",
			Date:           v.Date.String(),
			Amount:         v.Amount.Round(2).String(),
			PrincipalAfter: v.PrincipalAfter.Round(2).String(),
		}
	case engine.Repayment:
		return LedgerEntryDTO{
			Kind:             "repayment",
			Date:             v.Date.String(),
			Amount:           v.Amount.Round(2).String(),
			PrincipalApplied: v.PrincipalApplied.Round(2).String(),
			InterestApplied:  v.InterestApplied.Round(2).String(),
			PrincipalAfter:   v.PrincipalAfter.Round(2).String(),
		}
	case engine.RateChange:
		return LedgerEntryDTO{
			Kind:     "rate_change",
			Date:     v.Date.String(),
			FromRate: v.FromRate.String(),
			ToRate:   v.ToRate.String(),
		}
	default:
		return LedgerEntryDTO{Kind: "unknown", Date: e.EntryDate().String()}
	}
}

func toLedgerEntryDTOs(entries []engine.LedgerEntry) []LedgerEntryDTO {
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toLedgerEntryDTO(e)
	}
	return dtos
}

func toSettlementDTO(loanID string, s *engine.Settlement) SettlementDTO {
	sum := engine.SummarizeSettlement(s)

	periods := make([]InterestPeriodDTO, len(s.InterestPeriods))
	for i, p := range s.InterestPeriods {
		periods[i] = InterestPeriodDTO{
			StartDate:        p.StartDate.String(),
			EndDate:          p.EndDate.String(),
			Days:             p.Days,
			OpeningPrincipal: p.OpeningPrincipal.Round(2).String(),
			DailyRate:        p.DailyRate.Round(4).String(),
			PeriodInterest:   p.PeriodInterest.Round(2).String(),
			ClosingPrincipal: p.ClosingPrincipal.Round(2).String(),
		}
		if p.PrincipalPayment.IsPositive() {
			periods[i].PrincipalPayment = p.PrincipalPayment.Round(2).String()
		}
	}

	history := make([]HistoryEntryDTO, len(s.TransactionHistory))
	for i, h := range s.TransactionHistory {
		history[i] = HistoryEntryDTO{
			Date:             h.Date.String(),
			Type:             string(h.Type),
			Amount:           h.Amount.Round(2).String(),
			PrincipalBalance: h.PrincipalBalance.Round(2).String(),
		}
	}

	return SettlementDTO{
		LoanID:             loanID,
		Mode:               string(sum.Mode),
		SettlementDate:     sum.SettlementDate.String(),
		DaysElapsed:        sum.DaysElapsed,
		PrincipalRemaining: sum.PrincipalRemaining.String(),
		InterestAccrued:    sum.InterestAccrued.String(),
		InterestPaid:       sum.InterestPaid.String(),
		InterestRemaining:  sum.InterestRemaining.String(),
		ExitFee:            sum.ExitFee.String(),
		SettlementAmount:   sum.SettlementAmount.String(),
		InterestPeriods:    periods,
		TransactionHistory: history,
	}
}

// parseScheduleEntries converts wire schedule rows into domain entries.
func parseScheduleEntries(dtos []ScheduleEntryDTO) ([]loan.ScheduleEntry, error) {
	entries := make([]loan.ScheduleEntry, len(dtos))
	for i, d := range dtos {
		due, err := loan.ParseDate(d.DueDate)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: bad due_date: %w", i, err)
		}
		interest, err := decimal.NewFromString(d.InterestAmount)
		if err != nil {
			return nil, fmt.Errorf("schedule entry %d: bad interest_amount: %w", i, err)
		}
		principalStart := decimal.Zero
		if d.CalculationPrincipalStart != "" {
			principalStart, err = decimal.NewFromString(d.CalculationPrincipalStart)
			if err != nil {
				return nil, fmt.Errorf("schedule entry %d: bad calculation_principal_start: %w", i, err)
			}
		}
		entries[i] = loan.ScheduleEntry{
			InstallmentNumber:         d.InstallmentNumber,
			DueDate:                   due,
			InterestAmount:            interest,
			CalculationDays:           d.CalculationDays,
			CalculationPrincipalStart: principalStart,
			IsRollUpPeriod:            d.IsRollUpPeriod,
			IsServicedPeriod:          d.IsServicedPeriod,
		}
	}
	return entries, nil
}
