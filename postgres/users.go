package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
)

type userStore struct {
	store *Store
}

func (r *userStore) FindByID(ctx context.Context, id uuid.UUID) (core.User, bool, error) {
	return r.findOne(ctx, goqu.C("id").Eq(id.String()))
}

func (r *userStore) FindByEmail(ctx context.Context, email string) (core.User, bool, error) {
	return r.findOne(ctx, goqu.C("email").Eq(email))
}

func (r *userStore) findOne(ctx context.Context, condition goqu.Expression) (core.User, bool, error) {
	query, _, err := dialect().
		From(tableUsers).
		Select("id", "name", "email", "password_hash", "role", "created_at", "updated_at").
		Where(condition).
		Limit(1).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return core.User{}, false, err
	}

	var (
		user  core.User
		found bool
	)

	queryErr := r.store.query(ctx, r.store.db, "find user", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		var (
			rawID     string
			role      string
			createdAt time.Time
			updatedAt time.Time
		)

		if scanErr := rows.Scan(&rawID, &user.Name, &user.Email, &user.PasswordHash, &role, &createdAt, &updatedAt); scanErr != nil {
			return scanErr
		}

		id, parseErr := parseUUID(rawID)
		if parseErr != nil {
			return parseErr
		}

		user.ID = id
		user.Role = core.Role(role)
		user.CreatedAt = createdAt
		user.UpdatedAt = updatedAt
		found = true

		return nil
	})
	if queryErr != nil {
		return core.User{}, false, queryErr
	}

	return user, found, nil
}

func (r *userStore) Create(ctx context.Context, user core.User) error {
	query, _, err := dialect().
		Insert(tableUsers).
		Rows(goqu.Record{
			"id":            user.ID.String(),
			"name":          user.Name,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
			"role":          string(user.Role),
			"created_at":    tsValue(user.CreatedAt),
			"updated_at":    tsValue(user.UpdatedAt),
		}).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, r.store.db, "create user", query)

	return execErr
}
