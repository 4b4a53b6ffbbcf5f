/*
handlers.go - HTTP API handlers for the loan servicing engine

PURPOSE:
  Exposes the interest calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Loans:
    GET    /api/loans                       List all loans
    POST   /api/loans                       Create loan
    GET    /api/loans/{id}                  Get loan details

  Transactions:
    POST   /api/loans/{id}/transactions     Record disbursement/repayment
    GET    /api/loans/{id}/transactions     List transactions (incl. deleted)
    DELETE /api/transactions/{id}           Soft-delete a transaction

  Calculations:
    GET    /api/loans/{id}/ledger           Replayed ledger as of a date
    GET    /api/loans/{id}/settlement       Settlement quote (formula|ledger)
    POST   /api/loans/{id}/statement        Schedule-aware statement

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (domain Validate methods)
  3. Call engine (BuildLedger, Quote, Summarize)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Loan or transaction not found
  - 500: Internal errors
  Domain sentinel errors map to status via loan.IsClientError/IsNotFound.

STATELESSNESS:
  Every calculation request loads the loan and its transactions fresh and
  replays from scratch. Nothing is cached between requests, so a
  soft-delete is reflected by the very next ledger call.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine: The pure calculation core
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/awhitwam/whit-lend-sub003/engine"
	"github.com/awhitwam/whit-lend-sub003/loan"
	"github.com/awhitwam/whit-lend-sub003/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Calculator *engine.SettlementCalculator
	Log        *logrus.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Store:      store,
		Calculator: engine.NewSettlementCalculator(engine.Models()),
		Log:        log,
	}
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// ListLoans returns all loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Store.ListLoans(r.Context())
	if err != nil {
		h.serverError(w, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = toLoanDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toLoanDTO(l))
}

// CreateLoan creates a new loan from its terms.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := loanFromRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid loan", err)
		return
	}
	if err := l.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid loan", err)
		return
	}

	l.ID = uuid.NewString()
	if err := h.Store.CreateLoan(r.Context(), l); err != nil {
		h.serverError(w, "Failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, toLoanDTO(l))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// AddTransaction records a disbursement or repayment against a loan.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := transactionFromRequest(l.ID, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		return
	}
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction", err)
		return
	}

	tx.ID = uuid.NewString()
	if err := h.Store.AddTransaction(r.Context(), tx); err != nil {
		h.serverError(w, "Failed to record transaction", err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionDTO(*tx))
}

// ListTransactions returns a loan's transactions, soft-deleted rows included.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}

	txs, err := h.Store.ListTransactions(r.Context(), l.ID)
	if err != nil {
		h.serverError(w, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = toTransactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteTransaction soft-deletes a transaction. The row is kept for audit;
// calculations simply stop seeing it.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.Store.SoftDeleteTransaction(r.Context(), id)
	if loan.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	if err != nil {
		h.serverError(w, "Failed to delete transaction", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// GetLedger replays the loan's ledger as of a date (default today) and
// returns the entries with the rounded summary.
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}

	asOf, err := dateQueryParam(r, "as_of", loan.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
		return
	}

	txs, err := h.Store.ListTransactions(r.Context(), l.ID)
	if err != nil {
		h.serverError(w, "Failed to load transactions", err)
		return
	}

	result, err := engine.BuildLedger(l, txs, asOf)
	if err != nil {
		h.calcError(w, "Failed to build ledger", err)
		return
	}
	sum := engine.Summarize(result)

	writeJSON(w, http.StatusOK, LedgerDTO{
		LoanID:               l.ID,
		AsOf:                 asOf.String(),
		Entries:              toLedgerEntryDTOs(result.Entries),
		TotalInterestAccrued: sum.TotalInterestAccrued.String(),
		TotalInterestPaid:    sum.TotalInterestPaid.String(),
		InterestOutstanding:  sum.InterestOutstanding.String(),
		PrincipalOutstanding: sum.PrincipalOutstanding.String(),
	})
}

// GetSettlement produces a settlement quote for a date, in either the
// formula mode or the ledger-reconciled mode.
func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}

	date, err := dateQueryParam(r, "date", loan.Today())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	mode := engine.SettlementMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = engine.ModeFormula
	}
	if mode != engine.ModeFormula && mode != engine.ModeLedger {
		writeError(w, http.StatusBadRequest, "Invalid mode (use formula or ledger)", nil)
		return
	}

	txs, err := h.Store.ListTransactions(r.Context(), l.ID)
	if err != nil {
		h.serverError(w, "Failed to load transactions", err)
		return
	}

	quote, err := h.Calculator.Quote(l, txs, date, mode)
	if err != nil {
		h.calcError(w, "Failed to quote settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, toSettlementDTO(l.ID, quote))
}

// PostStatement merges externally generated schedule entries with the
// replayed ledger for statement rendering. The engine never lays schedules
// out; it only consumes them here.
func (h *Handler) PostStatement(w http.ResponseWriter, r *http.Request) {
	l, ok := h.loadLoan(w, r)
	if !ok {
		return
	}

	var req StatementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	asOf := loan.Today()
	if req.AsOf != "" {
		var err error
		if asOf, err = loan.ParseDate(req.AsOf); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of date (use YYYY-MM-DD)", err)
			return
		}
	}

	schedule, err := parseScheduleEntries(req.Schedule)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid schedule", err)
		return
	}

	txs, err := h.Store.ListTransactions(r.Context(), l.ID)
	if err != nil {
		h.serverError(w, "Failed to load transactions", err)
		return
	}

	result, err := engine.BuildLedger(l, txs, asOf)
	if err != nil {
		h.calcError(w, "Failed to build ledger", err)
		return
	}
	ledgerSum := engine.Summarize(result)
	schedSum := engine.SummarizeSchedule(schedule)

	writeJSON(w, http.StatusOK, StatementDTO{
		LoanID:               l.ID,
		AsOf:                 asOf.String(),
		Installments:         schedSum.Installments,
		ScheduledInterest:    schedSum.TotalInterest.String(),
		RollUpInterest:       schedSum.RollUpInterest.String(),
		ServicedInterest:     schedSum.ServicedInterest.String(),
		AccruedInterest:      ledgerSum.TotalInterestAccrued.String(),
		InterestOutstanding:  ledgerSum.InterestOutstanding.String(),
		PrincipalOutstanding: ledgerSum.PrincipalOutstanding.String(),
		Ledger:               toLedgerEntryDTOs(result.Entries),
	})
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func loanFromRequest(req *CreateLoanRequest) (*loan.Loan, error) {
	l := &loan.Loan{
		Borrower:     req.Borrower,
		InterestType: loan.InterestType(req.InterestType),
		Duration:     req.Duration,
		Period:       loan.PeriodUnit(req.Period),
		RollUpLength: req.RollUpLength,
	}

	var err error
	if l.Principal, err = decimalField("principal", req.Principal); err != nil {
		return nil, err
	}
	if l.InterestRate, err = decimalField("interest_rate", req.InterestRate); err != nil {
		return nil, err
	}
	if l.StartDate, err = loan.ParseDate(req.StartDate); err != nil {
		return nil, err
	}
	if l.ExitFee, err = optionalDecimalField("exit_fee", req.ExitFee); err != nil {
		return nil, err
	}
	if l.RollUpAmount, err = optionalDecimalField("roll_up_amount", req.RollUpAmount); err != nil {
		return nil, err
	}
	if req.PenaltyRate != "" {
		l.HasPenaltyRate = true
		if l.PenaltyRate, err = decimalField("penalty_rate", req.PenaltyRate); err != nil {
			return nil, err
		}
		if l.PenaltyRateFrom, err = loan.ParseDate(req.PenaltyRateFrom); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func transactionFromRequest(loanID string, req *CreateTransactionRequest) (*loan.Transaction, error) {
	tx := &loan.Transaction{
		LoanID: loanID,
		Type:   loan.TransactionType(req.Type),
	}

	var err error
	if tx.Date, err = loan.ParseDate(req.Date); err != nil {
		return nil, err
	}
	if tx.Amount, err = decimalField("amount", req.Amount); err != nil {
		return nil, err
	}
	if tx.PrincipalApplied, err = optionalDecimalField("principal_applied", req.PrincipalApplied); err != nil {
		return nil, err
	}
	if tx.InterestApplied, err = optionalDecimalField("interest_applied", req.InterestApplied); err != nil {
		return nil, err
	}
	if tx.GrossAmount, err = optionalDecimalField("gross_amount", req.GrossAmount); err != nil {
		return nil, err
	}
	return tx, nil
}

func decimalField(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, &loan.ValidationError{
			Field:   name,
			Value:   value,
			Message: "not a valid decimal amount",
		}
	}
	return d, nil
}

func optionalDecimalField(name, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimalField(name, value)
}

func dateQueryParam(r *http.Request, name string, fallback loan.Date) (loan.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return loan.ParseDate(raw)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

// loadLoan resolves the {id} URL param to a loan, writing the error
// response itself when the loan is missing or the load fails.
func (h *Handler) loadLoan(w http.ResponseWriter, r *http.Request) (*loan.Loan, bool) {
	id := chi.URLParam(r, "id")

	l, err := h.Store.GetLoan(r.Context(), id)
	if loan.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Loan not found", nil)
		return nil, false
	}
	if err != nil {
		h.serverError(w, "Failed to load loan", err)
		return nil, false
	}
	return l, true
}

// calcError maps engine errors to status: domain validation problems are the
// client's, everything else is ours.
func (h *Handler) calcError(w http.ResponseWriter, message string, err error) {
	if loan.IsClientError(err) {
		writeError(w, http.StatusBadRequest, message, err)
		return
	}
	h.serverError(w, message, err)
}

func (h *Handler) serverError(w http.ResponseWriter, message string, err error) {
	h.Log.WithError(err).Error(message)
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
