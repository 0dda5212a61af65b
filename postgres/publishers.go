package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
	"github.com/cslopes3/library-circulation-go/shell"
)

type publisherStore struct {
	store *Store
}

func (r *publisherStore) FindByID(ctx context.Context, id uuid.UUID) (core.Publisher, bool, error) {
	return r.findOne(ctx, goqu.C("id").Eq(id.String()))
}

func (r *publisherStore) FindByName(ctx context.Context, name string) (core.Publisher, bool, error) {
	return r.findOne(ctx, goqu.C("name").Eq(name))
}

func (r *publisherStore) findOne(ctx context.Context, condition goqu.Expression) (core.Publisher, bool, error) {
	query, _, err := dialect().
		From(tablePublishers).
		Select("id", "name", "created_at", "updated_at").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return core.Publisher{}, false, err
	}

	var (
		publisher core.Publisher
		found     bool
	)

	queryErr := r.store.query(ctx, r.store.db, "find publisher", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		scanned, scanErr := scanPublisher(rows)
		if scanErr != nil {
			return scanErr
		}

		publisher = scanned
		found = true

		return nil
	})
	if queryErr != nil {
		return core.Publisher{}, false, queryErr
	}

	return publisher, found, nil
}

func (r *publisherStore) FindMany(ctx context.Context, page shell.Page) ([]core.Publisher, error) {
	ds := dialect().
		From(tablePublishers).
		Select("id", "name", "created_at", "updated_at").
		Order(goqu.C("name").Asc())

	query, _, err := applyPage(ds, page.Size, page.Offset()).ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return nil, err
	}

	var publishers []core.Publisher

	queryErr := r.store.query(ctx, r.store.db, "list publishers", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			publisher, scanErr := scanPublisher(rows)
			if scanErr != nil {
				return scanErr
			}

			publishers = append(publishers, publisher)
		}

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	return publishers, nil
}

func (r *publisherStore) Create(ctx context.Context, publisher core.Publisher) error {
	query, _, err := dialect().
		Insert(tablePublishers).
		Rows(goqu.Record{
			"id":         publisher.ID.String(),
			"name":       publisher.Name,
			"created_at": tsValue(publisher.CreatedAt),
			"updated_at": tsValue(publisher.UpdatedAt),
		}).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "create publisher", query)

	return execErr
}

func (r *publisherStore) Update(ctx context.Context, publisher core.Publisher) error {
	query, _, err := dialect().
		Update(tablePublishers).
		Set(goqu.Record{
			"name":       publisher.Name,
			"updated_at": tsValue(publisher.UpdatedAt),
		}).
		Where(goqu.C("id").Eq(publisher.ID.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	affected, execErr := r.store.exec(ctx, r.store.db, "update publisher", query)
	if execErr != nil {
		return execErr
	}

	if affected == 0 {
		return core.ErrPublisherNotFound
	}

	return nil
}

func (r *publisherStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, _, err := dialect().
		Delete(tablePublishers).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "delete publisher", query)

	return execErr
}

func scanPublisher(rows adapters.DBRows) (core.Publisher, error) {
	var (
		rawID     string
		publisher core.Publisher
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&rawID, &publisher.Name, &createdAt, &updatedAt); err != nil {
		return core.Publisher{}, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return core.Publisher{}, err
	}

	publisher.ID = id
	publisher.CreatedAt = createdAt
	publisher.UpdatedAt = updatedAt

	return publisher, nil
}
