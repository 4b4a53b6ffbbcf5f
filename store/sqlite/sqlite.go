/*
Package sqlite provides SQLite-backed persistence for loans and their
transactions.

PURPOSE:
  The calculation engine is a pure function of loan + transactions + as-of
  date and holds no state; this package is the collaborator that feeds it.
  The API layer loads a loan and its transaction list here, hands them to
  the engine, and returns the computed figures.

KEY TABLES:
  loans:             Static loan terms
  loan_transactions: Capital movements, soft-deletable

SOFT DELETION:
  Transactions are never removed. Deleting a mis-keyed repayment sets
  is_deleted; the engine excludes flagged rows from every calculation and
  the row stays available for audit.

DECIMAL STORAGE:
  Amounts and rates are stored as TEXT and parsed with decimal.NewFromString
  so no precision is lost through float round-trips.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block and crash recovery improves.

USAGE:
  store, err := sqlite.New("./data/loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine: The pure calculation core this store feeds
  - api: HTTP handlers wiring the two together
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/awhitwam/whit-lend-sub003/loan"
)

// Store persists loans and transactions in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database exists per connection; pin the pool to one so
	// every query sees the same schema.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		borrower TEXT NOT NULL,
		principal TEXT NOT NULL,
		interest_rate TEXT NOT NULL,
		interest_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		duration INTEGER NOT NULL,
		period TEXT NOT NULL,
		has_penalty_rate INTEGER NOT NULL DEFAULT 0,
		penalty_rate TEXT,
		penalty_rate_from TEXT,
		exit_fee TEXT NOT NULL DEFAULT '0',
		roll_up_length INTEGER NOT NULL DEFAULT 0,
		roll_up_amount TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loan_transactions (
		id TEXT PRIMARY KEY,
		loan_id TEXT NOT NULL REFERENCES loans(id),
		tx_type TEXT NOT NULL,
		tx_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		principal_applied TEXT NOT NULL DEFAULT '0',
		interest_applied TEXT NOT NULL DEFAULT '0',
		gross_amount TEXT NOT NULL DEFAULT '0',
		is_deleted INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Hot path: loading a loan's transactions in date order
	CREATE INDEX IF NOT EXISTS idx_loan_transactions_loan_date
		ON loan_transactions(loan_id, tx_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOANS
// =============================================================================

// CreateLoan persists a loan's terms.
func (s *Store) CreateLoan(ctx context.Context, l *loan.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	penaltyFrom := ""
	if !l.PenaltyRateFrom.IsZero() {
		penaltyFrom = l.PenaltyRateFrom.String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loans (id, borrower, principal, interest_rate, interest_type,
			start_date, duration, period, has_penalty_rate, penalty_rate,
			penalty_rate_from, exit_fee, roll_up_length, roll_up_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Borrower, l.Principal.String(), l.InterestRate.String(),
		string(l.InterestType), l.StartDate.String(), l.Duration, string(l.Period),
		boolToInt(l.HasPenaltyRate), l.PenaltyRate.String(), penaltyFrom,
		l.ExitFee.String(), l.RollUpLength, l.RollUpAmount.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetLoan loads a loan by ID.
func (s *Store) GetLoan(ctx context.Context, id string) (*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, borrower, principal, interest_rate, interest_type, start_date,
			duration, period, has_penalty_rate, penalty_rate, penalty_rate_from,
			exit_fee, roll_up_length, roll_up_amount
		FROM loans WHERE id = ?`, id)

	l, err := scanLoan(row)
	if err == sql.ErrNoRows {
		return nil, loan.ErrLoanNotFound
	}
	return l, err
}

// ListLoans returns all loans, newest first.
func (s *Store) ListLoans(ctx context.Context) ([]*loan.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, borrower, principal, interest_rate, interest_type, start_date,
			duration, period, has_penalty_rate, penalty_rate, penalty_rate_from,
			exit_fee, roll_up_length, roll_up_amount
		FROM loans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*loan.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// AddTransaction records a capital movement against a loan.
func (s *Store) AddTransaction(ctx context.Context, tx *loan.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loan_transactions (id, loan_id, tx_type, tx_date, amount,
			principal_applied, interest_applied, gross_amount, is_deleted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.LoanID, string(tx.Type), tx.Date.String(), tx.Amount.String(),
		tx.PrincipalApplied.String(), tx.InterestApplied.String(),
		tx.GrossAmount.String(), boolToInt(tx.IsDeleted),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListTransactions returns a loan's transactions in date order, including
// soft-deleted rows (the engine skips them; the audit display shows them).
func (s *Store) ListTransactions(ctx context.Context, loanID string) ([]loan.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, loan_id, tx_type, tx_date, amount, principal_applied,
			interest_applied, gross_amount, is_deleted
		FROM loan_transactions
		WHERE loan_id = ?
		ORDER BY tx_date, created_at`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []loan.Transaction
	for rows.Next() {
		var (
			tx                                      loan.Transaction
			txType, txDate, amount, principal       string
			interest, gross                         string
			deleted                                 int
		)
		if err := rows.Scan(&tx.ID, &tx.LoanID, &txType, &txDate, &amount,
			&principal, &interest, &gross, &deleted); err != nil {
			return nil, err
		}
		tx.Type = loan.TransactionType(txType)
		if tx.Date, err = loan.ParseDate(txDate); err != nil {
			return nil, fmt.Errorf("transaction %s: bad date: %w", tx.ID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: bad amount: %w", tx.ID, err)
		}
		if tx.PrincipalApplied, err = decimal.NewFromString(principal); err != nil {
			return nil, fmt.Errorf("transaction %s: bad principal_applied: %w", tx.ID, err)
		}
		if tx.InterestApplied, err = decimal.NewFromString(interest); err != nil {
			return nil, fmt.Errorf("transaction %s: bad interest_applied: %w", tx.ID, err)
		}
		if tx.GrossAmount, err = decimal.NewFromString(gross); err != nil {
			return nil, fmt.Errorf("transaction %s: bad gross_amount: %w", tx.ID, err)
		}
		tx.IsDeleted = deleted != 0
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SoftDeleteTransaction flags a transaction as deleted. The row is kept;
// only the flag changes.
func (s *Store) SoftDeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE loan_transactions SET is_deleted = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return loan.ErrTransactionNotFound
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*loan.Loan, error) {
	var (
		l                                     loan.Loan
		principal, rate, interestType, start  string
		period, penaltyRate, exitFee, rollUp  string
		penaltyFrom                           sql.NullString
		hasPenalty                            int
	)
	err := row.Scan(&l.ID, &l.Borrower, &principal, &rate, &interestType, &start,
		&l.Duration, &period, &hasPenalty, &penaltyRate, &penaltyFrom,
		&exitFee, &l.RollUpLength, &rollUp)
	if err != nil {
		return nil, err
	}

	l.InterestType = loan.InterestType(interestType)
	l.Period = loan.PeriodUnit(period)
	l.HasPenaltyRate = hasPenalty != 0

	if l.Principal, err = decimal.NewFromString(principal); err != nil {
		return nil, fmt.Errorf("loan %s: bad principal: %w", l.ID, err)
	}
	if l.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("loan %s: bad interest_rate: %w", l.ID, err)
	}
	if l.PenaltyRate, err = decimal.NewFromString(penaltyRate); err != nil {
		return nil, fmt.Errorf("loan %s: bad penalty_rate: %w", l.ID, err)
	}
	if l.ExitFee, err = decimal.NewFromString(exitFee); err != nil {
		return nil, fmt.Errorf("loan %s: bad exit_fee: %w", l.ID, err)
	}
	if l.RollUpAmount, err = decimal.NewFromString(rollUp); err != nil {
		return nil, fmt.Errorf("loan %s: bad roll_up_amount: %w", l.ID, err)
	}
	if l.StartDate, err = loan.ParseDate(start); err != nil {
		return nil, fmt.Errorf("loan %s: bad start_date: %w", l.ID, err)
	}
	if penaltyFrom.Valid && penaltyFrom.String != "" {
		if l.PenaltyRateFrom, err = loan.ParseDate(penaltyFrom.String); err != nil {
			return nil, fmt.Errorf("loan %s: bad penalty_rate_from: %w", l.ID, err)
		}
	}
	return &l, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
