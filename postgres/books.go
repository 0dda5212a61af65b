package postgres

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/postgres/internal/adapters"
	"github.com/cslopes3/library-circulation-go/shell"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type bookStore struct {
	store *Store
}

func (r *bookStore) FindByID(ctx context.Context, id uuid.UUID) (core.Book, bool, error) {
	return r.findOne(ctx, goqu.C("id").Eq(id.String()))
}

func (r *bookStore) FindByName(ctx context.Context, name string) (core.Book, bool, error) {
	return r.findOne(ctx, goqu.C("name").Eq(name))
}

func (r *bookStore) findOne(ctx context.Context, condition goqu.Expression) (core.Book, bool, error) {
	query, _, err := bookSelect().Where(condition).Limit(1).ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return core.Book{}, false, err
	}

	var (
		book  core.Book
		found bool
	)

	queryErr := r.store.query(ctx, r.store.db, "find book", query, func(rows adapters.DBRows) error {
		if !rows.Next() {
			return nil
		}

		scanned, scanErr := scanBook(rows)
		if scanErr != nil {
			return scanErr
		}

		book = scanned
		found = true

		return nil
	})
	if queryErr != nil {
		return core.Book{}, false, queryErr
	}

	if !found {
		return core.Book{}, false, nil
	}

	if loadErr := r.loadAuthorIDs(ctx, []core.Book{book}, func(idx int, authorIDs []uuid.UUID) {
		book.AuthorIDs = authorIDs
	}); loadErr != nil {
		return core.Book{}, false, loadErr
	}

	return book, true, nil
}

func (r *bookStore) FindMany(ctx context.Context, page shell.Page) ([]core.Book, error) {
	ds := bookSelect().Order(goqu.C("name").Asc())

	query, _, err := applyPage(ds, page.Size, page.Offset()).ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return nil, err
	}

	var books []core.Book

	queryErr := r.store.query(ctx, r.store.db, "list books", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			book, scanErr := scanBook(rows)
			if scanErr != nil {
				return scanErr
			}

			books = append(books, book)
		}

		return nil
	})
	if queryErr != nil {
		return nil, queryErr
	}

	if loadErr := r.loadAuthorIDs(ctx, books, func(idx int, authorIDs []uuid.UUID) {
		books[idx].AuthorIDs = authorIDs
	}); loadErr != nil {
		return nil, loadErr
	}

	return books, nil
}

func (r *bookStore) Create(ctx context.Context, book core.Book) error {
	return r.store.inTx(ctx, func(tx adapters.DBTx) error {
		insertQuery, buildErr := r.buildInsert(book)
		if buildErr != nil {
			return buildErr
		}

		if _, execErr := r.store.exec(ctx, tx, "create book", insertQuery); execErr != nil {
			return execErr
		}

		return r.insertAuthorLinks(ctx, tx, book)
	})
}

func (r *bookStore) Update(ctx context.Context, book core.Book) error {
	return r.store.inTx(ctx, func(tx adapters.DBTx) error {
		editions, marshalErr := json.Marshal(book.Editions)
		if marshalErr != nil {
			return marshalErr
		}

		updateQuery, _, buildErr := dialect().
			Update(tableBooks).
			Set(goqu.Record{
				"name":             book.Name,
				"total_copies":     book.TotalCopies,
				"available_copies": book.AvailableCopies,
				"editions":         goqu.L("?::jsonb", string(editions)),
				"publisher_id":     book.PublisherID.String(),
				"updated_at":       tsValue(book.UpdatedAt),
			}).
			Where(goqu.C("id").Eq(book.ID.String())).
			ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		affected, execErr := r.store.exec(ctx, tx, "update book", updateQuery)
		if execErr != nil {
			return execErr
		}

		if affected == 0 {
			return core.ErrBookNotFound
		}

		deleteQuery, _, buildErr := dialect().
			Delete(tableBookAuthors).
			Where(goqu.C("book_id").Eq(book.ID.String())).
			ToSQL()
		if buildErr != nil {
			r.store.logError(logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if _, execErr = r.store.exec(ctx, tx, "unlink book authors", deleteQuery); execErr != nil {
			return execErr
		}

		return r.insertAuthorLinks(ctx, tx, book)
	})
}

// Delete removes a book; the author links go with it through the cascading
// foreign key. Reservation and schedule items keep their plain references,
// so a title with circulation history cannot be deleted and fails with
// core.ErrBookInCirculation.
func (r *bookStore) Delete(ctx context.Context, id uuid.UUID) error {
	query, _, err := dialect().
		Delete(tableBooks).
		Where(goqu.C("id").Eq(id.String())).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	if _, execErr := r.store.exec(ctx, r.store.db, "delete book", query); execErr != nil {
		if isForeignKeyViolation(execErr) {
			return core.ErrBookInCirculation
		}

		return execErr
	}

	return nil
}

func (r *bookStore) buildInsert(book core.Book) (string, error) {
	editions, err := json.Marshal(book.Editions)
	if err != nil {
		return "", err
	}

	query, _, buildErr := dialect().
		Insert(tableBooks).
		Rows(goqu.Record{
			"id":               book.ID.String(),
			"name":             book.Name,
			"total_copies":     book.TotalCopies,
			"available_copies": book.AvailableCopies,
			"editions":         goqu.L("?::jsonb", string(editions)),
			"publisher_id":     book.PublisherID.String(),
			"created_at":       tsValue(book.CreatedAt),
			"updated_at":       tsValue(book.UpdatedAt),
		}).
		ToSQL()
	if buildErr != nil {
		r.store.logError(logMsgBuildQueryFailed, buildErr)
		return "", buildErr
	}

	return query, nil
}

func (r *bookStore) insertAuthorLinks(ctx context.Context, tx adapters.DBTx, book core.Book) error {
	if len(book.AuthorIDs) == 0 {
		return nil
	}

	records := make([]any, 0, len(book.AuthorIDs))
	for position, authorID := range book.AuthorIDs {
		records = append(records, goqu.Record{
			"book_id":   book.ID.String(),
			"author_id": authorID.String(),
			"position":  position,
		})
	}

	query, _, err := dialect().Insert(tableBookAuthors).Rows(records...).ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	_, execErr := r.store.exec(ctx, tx, "link book authors", query)

	return execErr
}

// loadAuthorIDs fetches the author links of all given books in one query
// and hands each book its ordered id list via assign.
func (r *bookStore) loadAuthorIDs(ctx context.Context, books []core.Book, assign func(idx int, authorIDs []uuid.UUID)) error {
	if len(books) == 0 {
		return nil
	}

	bookIDs := make([]uuid.UUID, 0, len(books))
	indexByID := make(map[uuid.UUID]int, len(books))
	for idx, book := range books {
		bookIDs = append(bookIDs, book.ID)
		indexByID[book.ID] = idx
	}

	query, _, err := dialect().
		From(tableBookAuthors).
		Select("book_id", "author_id").
		Where(goqu.C("book_id").In(uuidValues(bookIDs))).
		Order(goqu.C("book_id").Asc(), goqu.C("position").Asc()).
		ToSQL()
	if err != nil {
		r.store.logError(logMsgBuildQueryFailed, err)
		return err
	}

	authorsByBook := make(map[uuid.UUID][]uuid.UUID, len(books))

	queryErr := r.store.query(ctx, r.store.db, "load book authors", query, func(rows adapters.DBRows) error {
		for rows.Next() {
			var rawBookID, rawAuthorID string

			if scanErr := rows.Scan(&rawBookID, &rawAuthorID); scanErr != nil {
				return scanErr
			}

			bookID, parseErr := parseUUID(rawBookID)
			if parseErr != nil {
				return parseErr
			}

			authorID, parseErr := parseUUID(rawAuthorID)
			if parseErr != nil {
				return parseErr
			}

			authorsByBook[bookID] = append(authorsByBook[bookID], authorID)
		}

		return nil
	})
	if queryErr != nil {
		return queryErr
	}

	for bookID, authorIDs := range authorsByBook {
		assign(indexByID[bookID], authorIDs)
	}

	return nil
}

func bookSelect() *goqu.SelectDataset {
	return dialect().
		From(tableBooks).
		Select("id", "name", "total_copies", "available_copies", "editions", "publisher_id", "created_at", "updated_at")
}

func scanBook(rows adapters.DBRows) (core.Book, error) {
	var (
		rawID          string
		rawPublisherID string
		rawEditions    []byte
		book           core.Book
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := rows.Scan(
		&rawID, &book.Name, &book.TotalCopies, &book.AvailableCopies,
		&rawEditions, &rawPublisherID, &createdAt, &updatedAt)
	if err != nil {
		return core.Book{}, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return core.Book{}, err
	}

	publisherID, err := parseUUID(rawPublisherID)
	if err != nil {
		return core.Book{}, err
	}

	if len(rawEditions) > 0 {
		if unmarshalErr := json.Unmarshal(rawEditions, &book.Editions); unmarshalErr != nil {
			return core.Book{}, unmarshalErr
		}
	}

	book.ID = id
	book.PublisherID = publisherID
	book.CreatedAt = createdAt
	book.UpdatedAt = updatedAt

	return book, nil
}
