package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
	"github.com/cslopes3/library-circulation-go/shell"
)

const (
	logMsgBuildQueryFailed = "failed to build query"
	logMsgQueryFailed      = "database query execution failed"
	logMsgExecFailed       = "database execution failed"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgTxBeginFailed    = "failed to begin transaction"
	logMsgTxCommitFailed   = "failed to commit transaction"
	logMsgSQLExecuted      = "executed sql for: "
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"

	dialectPostgres = "postgres"

	tableAuthors          = "authors"
	tablePublishers       = "publishers"
	tableBooks            = "books"
	tableBookAuthors      = "book_authors"
	tableUsers            = "users"
	tableReservations     = "reservations"
	tableReservationItems = "reservation_items"
	tableSchedules        = "schedules"
	tableScheduleItems    = "schedule_items"
)

var (
	// ErrNilDatabaseConnection is returned by the constructors when the
	// supplied connection is nil.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
)

// Store bundles the database adapter and logger shared by all repository
// implementations. The per-port repositories are obtained from it.
type Store struct {
	db     adapters.DBAdapter
	logger shell.Logger
}

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
//
// Debug level: SQL statements with execution timing (development use)
// Error level: failures that cause operation errors.
func WithLogger(logger shell.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	store := &Store{db: db}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// Authors returns the authors repository.
func (s *Store) Authors() shell.Authors {
	return &authorStore{store: s}
}

// Publishers returns the publishers repository.
func (s *Store) Publishers() shell.Publishers {
	return &publisherStore{store: s}
}

// Books returns the books repository.
func (s *Store) Books() shell.Books {
	return &bookStore{store: s}
}

// Users returns the users repository.
func (s *Store) Users() shell.Users {
	return &userStore{store: s}
}

// Reservations returns the reservations repository.
func (s *Store) Reservations() shell.Reservations {
	return &reservationStore{store: s}
}

// Schedules returns the schedules repository.
func (s *Store) Schedules() shell.Schedules {
	return &scheduleStore{store: s}
}

// StockLedger returns the stock ledger.
func (s *Store) StockLedger() shell.StockLedger {
	return &stockLedger{store: s}
}

type sqlRunner interface {
	Query(ctx context.Context, query string) (adapters.DBRows, error)
	Exec(ctx context.Context, query string) (adapters.DBResult, error)
}

// exec runs a statement and returns the number of affected rows.
func (s *Store) exec(ctx context.Context, runner sqlRunner, action string, query string) (int64, error) {
	start := time.Now()

	result, err := runner.Exec(ctx, query)
	if err != nil {
		s.logError(logMsgExecFailed, err)
		return 0, mapContentionError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		s.logError(logMsgExecFailed, err)
		return 0, err
	}

	s.logDebug(logMsgSQLExecuted+action,
		logAttrQuery, query,
		logAttrDurationMS, time.Since(start).Milliseconds())

	return affected, nil
}

// query runs a select and hands the rows to scan; closing is handled here.
func (s *Store) query(ctx context.Context, runner sqlRunner, action string, query string, scan func(adapters.DBRows) error) error {
	start := time.Now()

	rows, err := runner.Query(ctx, query)
	if err != nil {
		s.logError(logMsgQueryFailed, err)
		return err
	}

	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logError(logMsgCloseRowsFailed, closeErr)
		}
	}()

	if scanErr := scan(rows); scanErr != nil {
		s.logError(logMsgScanRowFailed, scanErr)
		return scanErr
	}

	s.logDebug(logMsgSQLExecuted+action,
		logAttrQuery, query,
		logAttrDurationMS, time.Since(start).Milliseconds())

	return nil
}

// inTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (s *Store) inTx(ctx context.Context, fn func(tx adapters.DBTx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logError(logMsgTxBeginFailed, err)
		return mapContentionError(err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if fnErr := fn(tx); fnErr != nil {
		return fnErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(logMsgTxCommitFailed, commitErr)
		return mapContentionError(commitErr)
	}

	return nil
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, logAttrError, err.Error())
	}
}

// mapContentionError translates serialization failures and deadlocks into
// the retryable shell.ErrStockConflict; everything else passes through.
func mapContentionError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "could not serialize access") || strings.Contains(msg, "deadlock detected") {
		return errors.Join(shell.ErrStockConflict, err)
	}

	return err
}

// isForeignKeyViolation reports a referential integrity failure.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	return strings.Contains(msg, "SQLSTATE 23503") ||
		strings.Contains(msg, "violates foreign key constraint")
}

func dialect() goqu.DialectWrapper {
	return goqu.Dialect(dialectPostgres)
}
