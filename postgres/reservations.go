package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
)

type reservationStore struct {
	store *Store
}

func (r *reservationStore) Create(ctx context.Context, reservation core.Reservation) error {
	return r.store.inTx(ctx, func(tx adapters.DBTx) error {
		headQuery, _, buildErr := dialect().
			Insert(tableReservations).
			Rows(goqu.Record{
				"id":         reservation.ID.String(),
				"user_id":    reservation.UserID.String(),
				"created_at": tsValue(reservation.CreatedAt),
				"updated_at": tsValue(reservation.UpdatedAt),
			}).
			ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if _, execErr := r.store.exec(ctx, tx, "create reservation", headQuery); execErr != nil {
			return execErr
		}

		if len(reservation.Items) == 0 {
			return nil
		}

		records := make([]any, 0, len(reservation.Items))
		for position, item := range reservation.Items {
			records = append(records, goqu.Record{
				"id":             item.ID.String(),
				"reservation_id": reservation.ID.String(),
				"book_id":        item.BookID.String(),
				"book_name":      item.BookName,
				"due_date":       tsValue(item.DueDate),
				"returned_at":    tsOrNull(item.ReturnedAt),
				"extended":       item.Extended,
				"position":       position,
				"created_at":     tsValue(item.CreatedAt),
				"updated_at":     tsValue(item.UpdatedAt),
			})
		}

		itemsQuery, _, buildErr := dialect().Insert(tableReservationItems).Rows(records...).ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if _, execErr := r.store.exec(ctx, tx, "create reservation items", itemsQuery); execErr != nil {
			return execErr
		}

		bookIDs := make([]uuid.UUID, 0, len(reservation.Items))
		for _, item := range reservation.Items {
			bookIDs = append(bookIDs, item.BookID)
		}

		return r.store.reserveCopiesInTx(ctx, tx, bookIDs)
	})
}

func (r *reservationStore) FindByID(ctx context.Context, id uuid.UUID) (core.Reservation, bool, error) {
	reservations, err := r.findWhere(ctx, goqu.C("id").Eq(id.String()), "find reservation")
	if err != nil {
		return core.Reservation{}, false, err
	}

	if len(reservations) == 0 {
		return core.Reservation{}, false, nil
	}

	return reservations[0], true, nil
}

func (r *reservationStore) FindByUserID(ctx context.Context, userID uuid.UUID) ([]core.Reservation, error) {
	return r.findWhere(ctx, goqu.C("user_id").Eq(userID.String()), "find reservations by user")
}

func (r *reservationStore) findWhere(ctx context.Context, condition goqu.Expression, action string) ([]core.Reservation, error) {
	query, _, err := dialect().
		From(tableReservations).
		Select("id", "user_id", "created_at", "updated_at").
		Where(condition).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return nil, err
	}

	var reservations []core.Reservation

	queryErr := r.store.query(ctx, r.store.db, action, query, func(rows adapters.DBRows) error {
		for rows.Next() {
			var (
				rawID     string
				rawUserID string
				createdAt time.Time
				updatedAt time.Time
			)

			if scanErr := rows.Scan(&rawID, &rawUserID, &createdAt, &updatedAt); scanErr != nil {
				return scanErr
			}

			id, parseErr := parseUUID(rawID)
			if parseErr != nil {
				return parseErr
			}

			userID, parseErr := parseUUID(rawUserID)
			if parseErr != nil {
				return parseErr
			}

			reservations = append(reservations, core.Reservation{
				Identity: core.Identity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
				UserID:   userID,
			})
		}

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	if loadErr := r.loadItems(ctx, reservations); loadErr != nil {
		return nil, loadErr
	}

	return reservations, nil
}

// loadItems fetches the items of all given reservations in one query and
// attaches them in request order.
func (r *reservationStore) loadItems(ctx context.Context, reservations []core.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(reservations))
	indexByID := make(map[uuid.UUID]int, len(reservations))
	for idx, reservation := range reservations {
		ids = append(ids, reservation.ID)
		indexByID[reservation.ID] = idx
	}

	query, _, err := dialect().
		From(tableReservationItems).
		Select("id", "reservation_id", "book_id", "book_name", "due_date", "returned_at", "extended", "created_at", "updated_at").
		Where(goqu.C("reservation_id").In(uuidValues(ids))).
		Order(goqu.C("reservation_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	return r.store.query(ctx, r.store.db, "load reservation items", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			var rawReservationID string

			item, scanErr := scanReservationItem(rows, &rawReservationID)
			if scanErr != nil {
				return scanErr
			}

			reservationID, parseErr := parseUUID(rawReservationID)
			if parseErr != nil {
				return parseErr
			}

			idx := indexByID[reservationID]
			reservations[idx].Items = append(reservations[idx].Items, item)
		}

		return nil
	})
}

func (r *reservationStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, _, err := dialect().
		Delete(tableReservations).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "delete reservation", query)

	return execErr
}

func (r *reservationStore) ChangeReservationInfoByID(ctx context.Context, itemID uuid.UUID, newDueDate time.Time, extended bool) error {
	query, _, err := dialect().
		Update(tableReservationItems).
		Set(goqu.Record{
			"due_date":   tsValue(newDueDate),
			"extended":   extended,
			"updated_at": goqu.L("now()"),
		}).
		Where(goqu.C("id").Eq(itemID.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	affected, execErr := r.store.exec(ctx, r.store.db, "change reservation info", query)
	if execErr != nil {
		return execErr
	}

	if affected == 0 {
		return core.ErrReservationItemNotFound
	}

	return nil
}

// ReturnByItemID sets the return date and releases the item's copy in one
// transaction, so a failure on either side rolls back both.
func (r *reservationStore) ReturnByItemID(ctx context.Context, itemID uuid.UUID, returnedAt time.Time) error {
	return r.store.inTx(ctx, func(tx adapters.DBTx) error {
		bookID, found, lookupErr := r.lockItemBookIDInTx(ctx, tx, itemID)
		if lookupErr != nil {
			return lookupErr
		}
		if !found {
			return core.ErrReservationItemNotFound
		}

		query, _, buildErr := dialect().
			Update(tableReservationItems).
			Set(goqu.Record{
				"returned_at": tsValue(returnedAt),
				"updated_at":  tsValue(returnedAt),
			}).
			Where(goqu.C("id").Eq(itemID.String())).
			ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if _, execErr := r.store.exec(ctx, tx, "return reservation item", query); execErr != nil {
			return execErr
		}

		return r.store.releaseCopiesInTx(ctx, tx, bookID, 1)
	})
}

func (r *reservationStore) lockItemBookIDInTx(ctx context.Context, tx adapters.DBTx, itemID uuid.UUID) (uuid.UUID, bool, error) {
	query, _, err := dialect().
		From(tableReservationItems).
		Select("book_id").
		Where(goqu.C("id").Eq(itemID.String())).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return uuid.Nil, false, err
	}

	var (
		bookID uuid.UUID
		found  bool
	)

	queryErr := r.store.query(ctx, tx, "lock reservation item", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		var rawBookID string

		if scanErr := rows.Scan(&rawBookID); scanErr != nil {
			return scanErr
		}

		parsed, parseErr := parseUUID(rawBookID)
		if parseErr != nil {
			return parseErr
		}

		bookID = parsed
		found = true

		return nil
	})
	if queryErr != nil {
		return uuid.Nil, false, queryErr
	}

	return bookID, found, nil
}

func (r *reservationStore) FindItemByID(ctx context.Context, itemID uuid.UUID) (core.ReservationItem, bool, error) {
	query, _, err := dialect().
		From(tableReservationItems).
		Select("id", "reservation_id", "book_id", "book_name", "due_date", "returned_at", "extended", "created_at", "updated_at").
		Where(goqu.C("id").Eq(itemID.String())).
		Limit(1).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return core.ReservationItem{}, false, err
	}

	var (
		item  core.ReservationItem
		found bool
	)

	queryErr := r.store.query(ctx, r.store.db, "find reservation item", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		var rawReservationID string

		scanned, scanErr := scanReservationItem(rows, &rawReservationID)
		if scanErr != nil {
			return scanErr
		}

		item = scanned
		found = true

		return nil
	})
	if queryErr != nil {
		return core.ReservationItem{}, false, queryErr
	}

	return item, found, nil
}

func scanReservationItem(rows adapters.DBRows, rawReservationID *string) (core.ReservationItem, error) {
	var (
		rawID      string
		rawBookID  string
		returnedAt sql.NullTime
		item       core.ReservationItem
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := rows.Scan(
		&rawID, rawReservationID, &rawBookID, &item.BookName,
		&item.DueDate, &returnedAt, &item.Extended, &createdAt, &updatedAt)
	if err != nil {
		return core.ReservationItem{}, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return core.ReservationItem{}, err
	}

	bookID, err := parseUUID(rawBookID)
	if err != nil {
		return core.ReservationItem{}, err
	}

	item.ID = id
	item.BookID = bookID
	item.CreatedAt = createdAt
	item.UpdatedAt = updatedAt

	if returnedAt.Valid {
		item.ReturnedAt = returnedAt.Time
	}

	return item, nil
}
