package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
)

type scheduleStore struct {
	store *Store
}

func (r *scheduleStore) Create(ctx context.Context, schedule core.Schedule) error {
	return r.store.inTx(ctx, func(tx adapters.DBTx) error {
		headQuery, _, buildErr := dialect().
			Insert(tableSchedules).
			Rows(goqu.Record{
				"id":          schedule.ID.String(),
				"user_id":     schedule.UserID.String(),
				"status":      string(schedule.Status),
				"pickup_date": tsValue(schedule.PickupDate),
				"created_at":  tsValue(schedule.CreatedAt),
				"updated_at":  tsValue(schedule.UpdatedAt),
			}).
			ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if _, execErr := r.store.exec(ctx, tx, "create schedule", headQuery); execErr != nil {
			return execErr
		}

		if len(schedule.Items) == 0 {
			return nil
		}

		records := make([]any, 0, len(schedule.Items))
		for position, item := range schedule.Items {
			records = append(records, goqu.Record{
				"id":          item.ID.String(),
				"schedule_id": schedule.ID.String(),
				"book_id":     item.BookID.String(),
				"book_name":   item.BookName,
				"position":    position,
				"created_at":  tsValue(item.CreatedAt),
				"updated_at":  tsValue(item.UpdatedAt),
			})
		}

		itemsQuery, _, buildErr := dialect().Insert(tableScheduleItems).Rows(records...).ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		_, execErr := r.store.exec(ctx, tx, "create schedule items", itemsQuery)

		return execErr
	})
}

func (r *scheduleStore) FindByID(ctx context.Context, id uuid.UUID) (core.Schedule, bool, error) {
	schedules, err := r.findWhere(ctx, goqu.C("id").Eq(id.String()), "find schedule")
	if err != nil {
		return core.Schedule{}, false, err
	}

	if len(schedules) == 0 {
		return core.Schedule{}, false, nil
	}

	return schedules[0], true, nil
}

func (r *scheduleStore) FindByUserIDAndLastDays(ctx context.Context, userID uuid.UUID, since time.Time) ([]core.Schedule, error) {
	condition := goqu.And(
		goqu.C("user_id").Eq(userID.String()),
		goqu.C("created_at").Gte(tsValue(since)),
	)

	return r.findWhere(ctx, condition, "find recent schedules by user")
}

func (r *scheduleStore) findWhere(ctx context.Context, condition goqu.Expression, action string) ([]core.Schedule, error) {
	query, _, err := dialect().
		From(tableSchedules).
		Select("id", "user_id", "status", "pickup_date", "created_at", "updated_at").
		Where(condition).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return nil, err
	}

	var schedules []core.Schedule

	queryErr := r.store.query(ctx, r.store.db, action, query, func(rows adapters.DBRows) error {
		for rows.Next() {
			var (
				rawID      string
				rawUserID  string
				status     string
				pickupDate time.Time
				createdAt  time.Time
				updatedAt  time.Time
			)

			if scanErr := rows.Scan(&rawID, &rawUserID, &status, &pickupDate, &createdAt, &updatedAt); scanErr != nil {
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

			schedules = append(schedules, core.Schedule{
				Identity:   core.Identity{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt},
				UserID:     userID,
				Status:     core.ScheduleStatus(status),
				PickupDate: pickupDate,
			})
		}

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	if loadErr := r.loadItems(ctx, schedules); loadErr != nil {
		return nil, loadErr
	}

	return schedules, nil
}

func (r *scheduleStore) loadItems(ctx context.Context, schedules []core.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(schedules))
	indexByID := make(map[uuid.UUID]int, len(schedules))
	for idx, schedule := range schedules {
		ids = append(ids, schedule.ID)
		indexByID[schedule.ID] = idx
	}

	query, _, err := dialect().
		From(tableScheduleItems).
		Select("id", "schedule_id", "book_id", "book_name", "created_at", "updated_at").
		Where(goqu.C("schedule_id").In(uuidValues(ids))).
		Order(goqu.C("schedule_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	return r.store.query(ctx, r.store.db, "load schedule items", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			var (
				rawID         string
				rawScheduleID string
				rawBookID     string
				item          core.ScheduleItem
				createdAt     time.Time
				updatedAt     time.Time
			)

			if scanErr := rows.Scan(&rawID, &rawScheduleID, &rawBookID, &item.BookName, &createdAt, &updatedAt); scanErr != nil {
				return scanErr
			}

			id, parseErr := parseUUID(rawID)
			if parseErr != nil {
				return parseErr
			}

			scheduleID, parseErr := parseUUID(rawScheduleID)
			if parseErr != nil {
				return parseErr
			}

			bookID, parseErr := parseUUID(rawBookID)
			if parseErr != nil {
				return parseErr
			}

			item.ID = id
			item.BookID = bookID
			item.CreatedAt = createdAt
			item.UpdatedAt = updatedAt

			idx := indexByID[scheduleID]
			schedules[idx].Items = append(schedules[idx].Items, item)
		}

		return nil
	})
}

func (r *scheduleStore) ChangeStatus(ctx context.Context, id uuid.UUID, status core.ScheduleStatus) error {
	query, _, err := dialect().
		Update(tableSchedules).
		Set(goqu.Record{
			"status":     string(status),
			"updated_at": goqu.L("now()"),
		}).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	affected, execErr := r.store.exec(ctx, r.store.db, "change schedule status", query)
	if execErr != nil {
		return execErr
	}

	if affected == 0 {
		return core.ErrScheduleNotFound
	}

	return nil
}
