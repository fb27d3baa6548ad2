/*
Package sqlite archives computed repayment schedules.

PURPOSE:
  The engine is purely in-memory; this store keeps an audit trail of every
  schedule a caller computed through the service. Each archived run stores
  the inputs that shaped it (window, style, conventions) plus the full
  installment table, so a past quote can be reproduced and compared.

KEY TABLES:
  runs:             One row per archived computation
  run_installments: The installment table of a run, one row per period

DECIMAL STORAGE:
  All money columns are TEXT holding exact decimal strings. REAL would
  round-trip through binary floats and corrode the cent-exact amounts the
  engine guarantees.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer, and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/schedules.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  id, err := store.SaveRun(ctx, computedSchedule)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/repayment-engine/schedule"
)

// Store archives schedule runs in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the given database path.
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
	-- Archived computations, append-only
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_day TEXT NOT NULL,
		end_day TEXT NOT NULL,
		grace_till TEXT,
		granularity TEXT NOT NULL,
		style TEXT NOT NULL,
		calc_daily BOOLEAN NOT NULL DEFAULT FALSE,
		sum_payments TEXT NOT NULL,
		sum_interest TEXT NOT NULL,
		sum_capital TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);

	-- The installment table of a run, one row per period
	CREATE TABLE IF NOT EXISTS run_installments (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		ord INTEGER NOT NULL,
		period TEXT NOT NULL,
		first_day TEXT NOT NULL,
		last_day TEXT NOT NULL,
		length INTEGER NOT NULL,
		interest TEXT NOT NULL,
		capital TEXT NOT NULL,
		whole TEXT NOT NULL,
		PRIMARY KEY (run_id, ord)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RUN ARCHIVE
// =============================================================================

// RunRecord is the header of one archived computation.
type RunRecord struct {
	ID          int64
	StartDay    string
	EndDay      string
	GraceTill   string // empty when no grace period was configured
	Granularity string
	Style       string
	CalcDaily   bool
	SumPayments string
	SumInterest string
	SumCapital  string
	CreatedAt   time.Time
}

// InstallmentRecord is one archived installment row.
type InstallmentRecord struct {
	RunID    int64
	Order    int
	Period   string
	FirstDay string
	LastDay  string
	Length   int
	Interest string
	Capital  string
	Whole    string
}

// SaveRun archives a computed schedule atomically and returns the run id.
// The caller is responsible for having run Calc first.
func (s *Store) SaveRun(ctx context.Context, sch *schedule.Schedule) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var grace sql.NullString
	if !sch.FirstRepaymentDate().IsZero() {
		grace = sql.NullString{String: sch.FirstRepaymentDate().String(), Valid: true}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(start_day, end_day, grace_till, granularity, style, calc_daily,
		 sum_payments, sum_interest, sum_capital, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sch.Start().String(),
		sch.End().String(),
		grace,
		sch.Granularity().String(),
		string(sch.Style()),
		sch.IsCalcDaily(),
		sch.SumOfPayments().String(),
		sch.Installments().SumOfInterest().String(),
		sch.Installments().SumOfCapital().String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	for _, inst := range sch.Installments().All() {
		p := inst.Period
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_installments
			(run_id, ord, period, first_day, last_day, length, interest, capital, whole)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, inst.Order, p.Label,
			p.FirstDay.String(), p.LastDay.String(), p.Length,
			inst.Interest().String(),
			inst.Capital().String(),
			inst.Whole().String(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert installment %d: %w", inst.Order, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves an archived run header, or nil when the id is unknown.
func (s *Store) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		r         RunRecord
		grace     sql.NullString
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_day, end_day, grace_till, granularity, style, calc_daily,
		       sum_payments, sum_interest, sum_capital, created_at
		FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.StartDay, &r.EndDay, &grace, &r.Granularity, &r.Style,
		&r.CalcDaily, &r.SumPayments, &r.SumInterest, &r.SumCapital, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	r.GraceTill = grace.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

// RunInstallments retrieves the installment table of a run in order.
func (s *Store) RunInstallments(ctx context.Context, runID int64) ([]InstallmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, ord, period, first_day, last_day, length, interest, capital, whole
		FROM run_installments
		WHERE run_id = ?
		ORDER BY ord ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments: %w", err)
	}
	defer rows.Close()

	var records []InstallmentRecord
	for rows.Next() {
		var rec InstallmentRecord
		if err := rows.Scan(&rec.RunID, &rec.Order, &rec.Period, &rec.FirstDay,
			&rec.LastDay, &rec.Length, &rec.Interest, &rec.Capital, &rec.Whole); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListRuns returns the most recent run headers, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_day, end_day, grace_till, granularity, style, calc_daily,
		       sum_payments, sum_interest, sum_capital, created_at
		FROM runs
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			r         RunRecord
			grace     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.StartDay, &r.EndDay, &grace, &r.Granularity,
			&r.Style, &r.CalcDaily, &r.SumPayments, &r.SumInterest, &r.SumCapital,
			&createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.GraceTill = grace.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of archived runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
