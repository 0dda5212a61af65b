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

type authorStore struct {
	store *Store
}

func (r *authorStore) FindByID(ctx context.Context, id uuid.UUID) (core.Author, bool, error) {
	return r.findOne(ctx, goqu.C("id").Eq(id.String()))
}

func (r *authorStore) FindByName(ctx context.Context, name string) (core.Author, bool, error) {
	return r.findOne(ctx, goqu.C("name").Eq(name))
}

func (r *authorStore) findOne(ctx context.Context, condition goqu.Expression) (core.Author, bool, error) {
	query, _, err := dialect().
		From(tableAuthors).
		Select("id", "name", "created_at", "updated_at").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return core.Author{}, false, err
	}

	var (
		author core.Author
		found  bool
	)

	queryErr := r.store.query(ctx, r.store.db, "find author", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		scanned, scanErr := scanAuthor(rows)
		if scanErr != nil {
			return scanErr
		}

		author = scanned
		found = true

		return nil
	})
	if queryErr != nil {
		return core.Author{}, false, queryErr
	}

	return author, found, nil
}

func (r *authorStore) FindMany(ctx context.Context, page shell.Page) ([]core.Author, error) {
	ds := dialect().
		From(tableAuthors).
		Select("id", "name", "created_at", "updated_at").
		Order(goqu.C("name").Asc())

	query, _, err := applyPage(ds, page.Size, page.Offset()).ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return nil, err
	}

	var authors []core.Author

	queryErr := r.store.query(ctx, r.store.db, "list authors", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			author, scanErr := scanAuthor(rows)
			if scanErr != nil {
				return scanErr
			}

			authors = append(authors, author)
		}

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	return authors, nil
}

func (r *authorStore) Create(ctx context.Context, author core.Author) error {
	query, _, err := dialect().
		Insert(tableAuthors).
		Rows(goqu.Record{
			"id":         author.ID.String(),
			"name":       author.Name,
			"created_at": tsValue(author.CreatedAt),
			"updated_at": tsValue(author.UpdatedAt),
		}).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "create author", query)

	return execErr
}

func (r *authorStore) Update(ctx context.Context, author core.Author) error {
	query, _, err := dialect().
		Update(tableAuthors).
		Set(goqu.Record{
			"name":       author.Name,
			"updated_at": tsValue(author.UpdatedAt),
		}).
		Where(goqu.C("id").Eq(author.ID.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	affected, execErr := r.store.exec(ctx, r.store.db, "update author", query)
	if execErr != nil {
		return execErr
	}

	if affected == 0 {
		return core.ErrAuthorNotFound
	}

	return nil
}

func (r *authorStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, _, err := dialect().
		Delete(tableAuthors).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "delete author", query)

	return execErr
}

func scanAuthor(rows adapters.DBRows) (core.Author, error) {
	var (
		rawID     string
		author    core.Author
		createdAt time.Time
		updatedAt time.Time
	)

	if err := rows.Scan(&rawID, &author.Name, &createdAt, &updatedAt); err != nil {
		return core.Author{}, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return core.Author{}, err
	}

	author.ID = id
	author.CreatedAt = createdAt
	author.UpdatedAt = updatedAt

	return author, nil
}
