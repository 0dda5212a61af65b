// Command demo runs a small end-to-end circulation scenario against a real
// PostgreSQL database: it migrates the schema, sets up a catalog, reserves
// and extends a loan, returns it and books a pickup schedule.
//
// Configuration comes from the environment:
//
//	LIBRARY_DATABASE_URL  postgres connection string (required)
//	LIBRARY_LOG_LEVEL     debug | info | warn | error (default info)
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // database/sql driver for the migration connection

	"github.com/cslopes3/library-circulation-go/config"
	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/features/command/catalog"
	"github.com/cslopes3/library-circulation-go/features/command/reservation"
	"github.com/cslopes3/library-circulation-go/features/command/schedule"
	"github.com/cslopes3/library-circulation-go/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("demo failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if migrateErr := migrateSchema(cfg); migrateErr != nil {
		return migrateErr
	}

	poolConfig, err := cfg.PGXPoolConfig()
	if err != nil {
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	store, err := postgres.NewStoreFromPGXPool(pool, postgres.WithLogger(logger))
	if err != nil {
		return err
	}

	return runScenario(ctx, store, logger)
}

func migrateSchema(cfg config.Config) error {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	return postgres.MigrateUp(db)
}

func runScenario(ctx context.Context, store *postgres.Store, logger *slogLogger) error {
	catalogService := catalog.NewService(store.Authors(), store.Publishers(), store.Books(), store.Users())

	reservationEngine := reservation.NewEngine(
		store.Users(), store.Books(), store.Reservations(),
		reservation.WithLogger(logger))

	scheduleEngine := schedule.NewEngine(store.Users(), store.Books(), store.Schedules())

	reader, err := catalogService.RegisterUser(ctx, "Ana Reader", "ana@example.com", "not-a-real-hash", core.RoleReader)
	if err != nil {
		return fmt.Errorf("registering user: %w", err)
	}

	author, err := catalogService.CreateAuthor(ctx, "Ursula K. Le Guin")
	if err != nil {
		return fmt.Errorf("creating author: %w", err)
	}

	publisher, err := catalogService.CreatePublisher(ctx, "Ace Books")
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}

	book, err := catalogService.CreateBook(ctx, "The Dispossessed", 3,
		[]core.Edition{{Number: 1, Description: "First edition", Year: 1974}},
		[]uuid.UUID{author.ID}, publisher.ID)
	if err != nil {
		return fmt.Errorf("creating book: %w", err)
	}

	logger.Info("catalog ready",
		"user_id", reader.ID.String(), "book_id", book.ID.String())

	created, err := reservationEngine.Create(ctx,
		reservation.BuildCreateCommand(reader.ID, []uuid.UUID{book.ID}))
	if err != nil {
		return fmt.Errorf("creating reservation: %w", err)
	}

	logger.Info("reservation created",
		"reservation_id", created.ID.String(),
		"due_date", created.Items[0].DueDate.Format(time.DateOnly))

	extended, err := reservationEngine.Extend(ctx,
		reservation.BuildExtendCommand(created.Items[0].ID))
	if err != nil {
		return fmt.Errorf("extending reservation item: %w", err)
	}

	logger.Info("loan extended", "new_due_date", extended.DueDate.Format(time.DateOnly))

	returned, err := reservationEngine.Return(ctx,
		reservation.BuildReturnCommand(extended.ID, time.Now()))
	if err != nil {
		return fmt.Errorf("returning reservation item: %w", err)
	}

	logger.Info("copy returned", "returned_at", returned.ReturnedAt.Format(time.DateOnly))

	pickupDate := core.AddWorkingDays(time.Now(), 2)

	booked, err := scheduleEngine.Create(ctx,
		schedule.BuildCreateCommand(reader.ID, []uuid.UUID{book.ID}, pickupDate))
	if err != nil {
		return fmt.Errorf("booking pickup schedule: %w", err)
	}

	finished, err := scheduleEngine.ChangeStatus(ctx,
		schedule.BuildChangeStatusCommand(booked.ID, core.ScheduleStatusFinished))
	if err != nil {
		return fmt.Errorf("finishing schedule: %w", err)
	}

	logger.Info("schedule completed",
		"schedule_id", finished.ID.String(),
		"pickup_date", finished.PickupDate.Format(time.DateOnly),
		"status", string(finished.Status))

	return nil
}

// slogLogger adapts slog to the logger contract of the store and engines.
type slogLogger struct {
	logger *slog.Logger
}

func newLogger(level string) *slogLogger {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		slogLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slogLevel})

	return &slogLogger{logger: slog.New(handler)}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
