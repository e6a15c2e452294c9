/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements billing.Repository and billing.AuditLog using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

PERSISTENCE MODEL:
  Save() writes the WHOLE account state atomically: the account row is
  upserted, the fee line and payment rows are rebuilt. That matches the
  core's contract of load-mutate-save cycles - the store never applies
  partial mutations.

KEY TABLES:
  accounts:        One row per student-term: identity, policy figures,
                   running totals and exam paid flags
  fee_lines:       Ordered assessment rows with per-line sub-ledger
  payment_records: Ordered payment events
  payment_audit:   Append-only audit of completed payments

CONCURRENCY:
  A mutex serializes read-modify-write cycles per process, which is the
  repository contract the core requires. WAL mode keeps readers from
  blocking the single writer.

USAGE:
  repo, err := sqlite.New("./data/billing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

SEE ALSO:
  - billing/store.go: Interface definitions
  - billing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/campuspay/billing-engine/billing"
)

// Store implements billing.Repository and billing.AuditLog using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
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
	CREATE TABLE IF NOT EXISTS accounts (
		student_id         TEXT NOT NULL,
		school_year        TEXT NOT NULL,
		semester           INTEGER NOT NULL,
		opening_balance    TEXT NOT NULL,
		prelim_requirement TEXT NOT NULL,
		midterm_multiplier TEXT NOT NULL,
		amount_paid        TEXT NOT NULL,
		balance            TEXT NOT NULL,
		overpayment        TEXT NOT NULL,
		prelim_paid        INTEGER NOT NULL DEFAULT 0,
		midterm_paid       INTEGER NOT NULL DEFAULT 0,
		finals_paid        INTEGER NOT NULL DEFAULT 0,
		updated_at         TEXT NOT NULL,
		PRIMARY KEY (student_id, school_year, semester)
	);

	CREATE TABLE IF NOT EXISTS fee_lines (
		student_id     TEXT NOT NULL,
		school_year    TEXT NOT NULL,
		semester       INTEGER NOT NULL,
		position       INTEGER NOT NULL,
		code           TEXT NOT NULL,
		description    TEXT NOT NULL,
		amount         TEXT NOT NULL,
		category       TEXT NOT NULL,
		posted_at      TEXT NOT NULL,
		amount_applied TEXT NOT NULL,
		in_flight      TEXT,
		PRIMARY KEY (student_id, school_year, semester, position)
	);

	CREATE TABLE IF NOT EXISTS payment_records (
		id           TEXT PRIMARY KEY,
		student_id   TEXT NOT NULL,
		school_year  TEXT NOT NULL,
		semester     INTEGER NOT NULL,
		position     INTEGER NOT NULL,
		amount       TEXT NOT NULL,
		channel_text TEXT NOT NULL,
		channel      TEXT NOT NULL,
		reference    TEXT NOT NULL,
		created_at   TEXT NOT NULL,
		status       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payment_records_account
		ON payment_records(student_id, school_year, semester, position);

	-- Append-only: audit rows are never updated or deleted.
	CREATE TABLE IF NOT EXISTS payment_audit (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		channel    TEXT NOT NULL,
		amount     TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// REPOSITORY
// =============================================================================

// Load rebuilds the account for a student-term from its stored state.
func (s *Store) Load(ctx context.Context, student billing.StudentID, term billing.TermKey) (*billing.LedgerAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var state billing.AccountState
	state.Student = student
	state.Term = term
	state.Policy.Clock = billing.DefaultStatusClock()

	var (
		opening, prelimReq, multiplier      string
		paid, balance, overpayment          string
		prelimPaid, midtermPaid, finalsPaid int
		updatedAt                           string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT opening_balance, prelim_requirement, midterm_multiplier,
		       amount_paid, balance, overpayment,
		       prelim_paid, midterm_paid, finals_paid, updated_at
		FROM accounts
		WHERE student_id = ? AND school_year = ? AND semester = ?`,
		string(student), term.SchoolYear, term.Semester,
	).Scan(&opening, &prelimReq, &multiplier,
		&paid, &balance, &overpayment,
		&prelimPaid, &midtermPaid, &finalsPaid, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, billing.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	state.Policy.OpeningBalance = billing.MustParseAmount(opening)
	state.Policy.PrelimRequirement = billing.MustParseAmount(prelimReq)
	mult, err := decimal.NewFromString(multiplier)
	if err != nil {
		return nil, fmt.Errorf("corrupt midterm multiplier %q: %w", multiplier, err)
	}
	state.Policy.MidtermMultiplier = mult
	state.AmountPaid = billing.MustParseAmount(paid)
	state.Balance = billing.MustParseAmount(balance)
	state.Overpayment = billing.MustParseAmount(overpayment)
	state.PrelimPaid = prelimPaid != 0
	state.MidtermPaid = midtermPaid != 0
	state.FinalsPaid = finalsPaid != 0

	if state.FeeLines, err = s.loadFeeLines(ctx, student, term); err != nil {
		return nil, err
	}
	if state.Payments, err = s.loadPayments(ctx, student, term); err != nil {
		return nil, err
	}
	return billing.RestoreAccount(state), nil
}

func (s *Store) loadFeeLines(ctx context.Context, student billing.StudentID, term billing.TermKey) ([]billing.FeeLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, description, amount, category, posted_at, amount_applied, in_flight
		FROM fee_lines
		WHERE student_id = ? AND school_year = ? AND semester = ?
		ORDER BY position`,
		string(student), term.SchoolYear, term.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to load fee lines: %w", err)
	}
	defer rows.Close()

	var lines []billing.FeeLine
	for rows.Next() {
		var (
			line             billing.FeeLine
			amount, applied  string
			category, posted string
			inFlight         sql.NullString
		)
		if err := rows.Scan(&line.Code, &line.Description, &amount, &category, &posted, &applied, &inFlight); err != nil {
			return nil, fmt.Errorf("failed to scan fee line: %w", err)
		}
		line.Amount = billing.MustParseAmount(amount)
		line.AmountApplied = billing.MustParseAmount(applied)
		line.Category = billing.FeeCategory(category)
		if line.PostedAt, err = time.Parse(time.RFC3339Nano, posted); err != nil {
			return nil, fmt.Errorf("corrupt fee posted_at %q: %w", posted, err)
		}
		if inFlight.Valid {
			status := billing.PaymentStatus(inFlight.String)
			line.InFlight = &status
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *Store) loadPayments(ctx context.Context, student billing.StudentID, term billing.TermKey) ([]billing.PaymentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, channel_text, channel, reference, created_at, status
		FROM payment_records
		WHERE student_id = ? AND school_year = ? AND semester = ?
		ORDER BY position`,
		string(student), term.SchoolYear, term.Semester)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	defer rows.Close()

	var payments []billing.PaymentRecord
	for rows.Next() {
		var (
			p                        billing.PaymentRecord
			amount, channel, created string
			status                   string
		)
		if err := rows.Scan(&p.ID, &amount, &p.ChannelText, &channel, &p.Reference, &created, &status); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount = billing.MustParseAmount(amount)
		p.Channel = billing.PaymentChannel(channel)
		p.Status = billing.PaymentStatus(status)
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("corrupt payment created_at %q: %w", created, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Save persists the whole account atomically, rebuilding the fee line
// and payment rows from the snapshot.
func (s *Store) Save(ctx context.Context, account *billing.LedgerAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := account.State()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", billing.ErrSaveFailed, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (
			student_id, school_year, semester,
			opening_balance, prelim_requirement, midterm_multiplier,
			amount_paid, balance, overpayment,
			prelim_paid, midterm_paid, finals_paid, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_id, school_year, semester) DO UPDATE SET
			opening_balance = excluded.opening_balance,
			prelim_requirement = excluded.prelim_requirement,
			midterm_multiplier = excluded.midterm_multiplier,
			amount_paid = excluded.amount_paid,
			balance = excluded.balance,
			overpayment = excluded.overpayment,
			prelim_paid = excluded.prelim_paid,
			midterm_paid = excluded.midterm_paid,
			finals_paid = excluded.finals_paid,
			updated_at = excluded.updated_at`,
		string(state.Student), state.Term.SchoolYear, state.Term.Semester,
		state.Policy.OpeningBalance.String(), state.Policy.PrelimRequirement.String(),
		state.Policy.MidtermMultiplier.String(),
		state.AmountPaid.String(), state.Balance.String(), state.Overpayment.String(),
		boolToInt(state.PrelimPaid), boolToInt(state.MidtermPaid), boolToInt(state.FinalsPaid),
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: account row: %v", billing.ErrSaveFailed, err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM fee_lines WHERE student_id = ? AND school_year = ? AND semester = ?`,
		string(state.Student), state.Term.SchoolYear, state.Term.Semester)
	if err != nil {
		return fmt.Errorf("%w: clear fee lines: %v", billing.ErrSaveFailed, err)
	}
	for i, f := range state.FeeLines {
		var inFlight any
		if f.InFlight != nil {
			inFlight = string(*f.InFlight)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO fee_lines (
				student_id, school_year, semester, position,
				code, description, amount, category, posted_at, amount_applied, in_flight
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(state.Student), state.Term.SchoolYear, state.Term.Semester, i,
			f.Code, f.Description, f.Amount.String(), string(f.Category),
			f.PostedAt.UTC().Format(time.RFC3339Nano), f.AmountApplied.String(), inFlight)
		if err != nil {
			return fmt.Errorf("%w: fee line %s: %v", billing.ErrSaveFailed, f.Code, err)
		}
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM payment_records WHERE student_id = ? AND school_year = ? AND semester = ?`,
		string(state.Student), state.Term.SchoolYear, state.Term.Semester)
	if err != nil {
		return fmt.Errorf("%w: clear payments: %v", billing.ErrSaveFailed, err)
	}
	for i, p := range state.Payments {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payment_records (
				id, student_id, school_year, semester, position,
				amount, channel_text, channel, reference, created_at, status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(state.Student), state.Term.SchoolYear, state.Term.Semester, i,
			p.Amount.String(), p.ChannelText, string(p.Channel), p.Reference,
			p.CreatedAt.UTC().Format(time.RFC3339Nano), string(p.Status))
		if err != nil {
			return fmt.Errorf("%w: payment %s: %v", billing.ErrSaveFailed, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", billing.ErrSaveFailed, err)
	}
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AppendPayment records a completed payment for external reporting.
// Append-only: rows are never updated or deleted.
func (s *Store) AppendPayment(ctx context.Context, entry billing.AuditEntry) error {
	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_audit (id, student_id, channel, amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, string(entry.Student), entry.Channel, entry.Amount.String(),
		createdAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
