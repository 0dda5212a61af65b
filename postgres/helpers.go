package postgres

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
)

const timestampLayout = "2006-01-02 15:04:05.999999-07:00"

// tsValue renders a timestamp as an explicitly cast literal so every driver
// stores the same microsecond-precision UTC value.
func tsValue(t time.Time) exp.LiteralExpression {
	return goqu.L("?::timestamptz", t.UTC().Format(timestampLayout))
}

// tsOrNull renders a nullable timestamp; the zero time maps to NULL.
func tsOrNull(t time.Time) exp.LiteralExpression {
	if t.IsZero() {
		return goqu.L("NULL")
	}

	return tsValue(t)
}

func uuidValues(ids []uuid.UUID) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}

	return values
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed uuid in storage: %w", err)
	}

	return id, nil
}

func applyPage(ds *goqu.SelectDataset, size int, offset int) *goqu.SelectDataset {
	if size <= 0 {
		return ds
	}

	return ds.Limit(uint(size)).Offset(uint(offset)) //nolint:gosec
}
