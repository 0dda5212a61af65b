package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
)

// stockLedger implements shell.StockLedger. The reservation store shares
// its transaction-scoped movements, so a reservation row and its stock
// decrements always commit together; serialization failures surface as
// shell.ErrStockConflict through mapContentionError and are retried by the
// engines.
type stockLedger struct {
	store *Store
}

func (l *stockLedger) Reserve(ctx context.Context, bookIDs []uuid.UUID) error {
	return l.store.inTx(ctx, func(tx adapters.DBTx) error {
		return l.store.reserveCopiesInTx(ctx, tx, bookIDs)
	})
}

func (l *stockLedger) Release(ctx context.Context, bookID uuid.UUID, quantity int) error {
	return l.store.inTx(ctx, func(tx adapters.DBTx) error {
		return l.store.releaseCopiesInTx(ctx, tx, bookID, quantity)
	})
}

// reserveCopiesInTx removes one available copy of every given book inside
// the caller's transaction. A conditional update only succeeds while a copy
// is still available at commit time, so concurrent reservations of the last
// copy cannot both win; any failure aborts the whole transaction.
func (s *Store) reserveCopiesInTx(ctx context.Context, tx adapters.DBTx, bookIDs []uuid.UUID) error {
	for _, bookID := range bookIDs {
		query, _, buildErr := dialect().
			Update(tableBooks).
			Set(goqu.Record{
				"available_copies": goqu.L("available_copies - 1"),
				"updated_at":       goqu.L("now()"),
			}).
			Where(goqu.And(
				goqu.C("id").Eq(bookID.String()),
				goqu.C("available_copies").Gte(1),
			)).
			ToSQL()
		if buildErr != nil {
			s.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		affected, execErr := s.exec(ctx, tx, "reserve book copy", query)
		if execErr != nil {
			return execErr
		}

		if affected == 0 {
			exists, checkErr := s.bookExistsInTx(ctx, tx, bookID)
			if checkErr != nil {
				return checkErr
			}

			if !exists {
				return core.ErrBookNotFound
			}

			return core.ErrStockUnavailable
		}
	}

	return nil
}

// releaseCopiesInTx puts quantity copies of a book back into the available
// count inside the caller's transaction, bounded by the number of copies
// currently checked out.
func (s *Store) releaseCopiesInTx(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID, quantity int) error {
	selectQuery, _, buildErr := dialect().
		From(tableBooks).
		Select("total_copies", "available_copies").
		Where(goqu.C("id").Eq(bookID.String())).
		ForUpdate(exp.Wait).
		ToSQL()
	if buildErr != nil {
		s.logError(logMsgBuildQueryFailed, buildErr)
		return buildErr
	}

	var (
		book  core.Book
		found bool
	)

	queryErr := s.query(ctx, tx, "lock book stock", selectQuery, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		found = true

		return rows.Scan(&book.TotalCopies, &book.AvailableCopies)
	})
	if queryErr != nil {
		return queryErr
	}

	if !found {
		return core.ErrBookNotFound
	}

	released, releaseErr := core.ReleaseCopies(book, quantity)
	if releaseErr != nil {
		return releaseErr
	}

	updateQuery, _, buildErr := dialect().
		Update(tableBooks).
		Set(goqu.Record{
			"available_copies": released.AvailableCopies,
			"updated_at":       goqu.L("now()"),
		}).
		Where(goqu.C("id").Eq(bookID.String())).
		ToSQL()
	if buildErr != nil {
		s.logError(logMsgBuildQueryFailed, buildErr)
		return buildErr
	}

	_, execErr := s.exec(ctx, tx, "release book copies", updateQuery)

	return execErr
}

func (s *Store) bookExistsInTx(ctx context.Context, tx adapters.DBTx, bookID uuid.UUID) (bool, error) {
	query, _, err := dialect().
		From(tableBooks).
		Select(goqu.L("1")).
		Where(goqu.C("id").Eq(bookID.String())).
		ToSQL()
	if err != nil {
		s.logError(logMsgBuildQueryFailed, err)
		return false, err
	}

	var exists bool

	queryErr := s.query(ctx, tx, "check book exists", query, func(rows adapters.DBRows) error {
		exists = rows.Next()
		return nil
	})
	if queryErr != nil {
		return false, queryErr
	}

	return exists, nil
}
