package core_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cslopes3/library-circulation-go/core"
)

func givenBook(t *testing.T, name string, total int, available int) core.Book {
	t.Helper()

	book := core.BuildBook(uuid.New(), name, total, nil, []uuid.UUID{uuid.New()}, uuid.New(), time.Now())
	book.AvailableCopies = available

	return book
}

func assertStockInvariant(t *testing.T, book core.Book) {
	t.Helper()

	assert.GreaterOrEqual(t, book.AvailableCopies, 0)
	assert.LessOrEqual(t, book.AvailableCopies, book.TotalCopies)
}

func Test_ReserveCopies_DecrementsAvailable(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 5)

	reserved, err := core.ReserveCopies(book, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, reserved.AvailableCopies)
	assert.Equal(t, 5, reserved.TotalCopies)
	assertStockInvariant(t, reserved)
}

func Test_ReserveCopies_FailsWhenNotEnoughAvailable(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 1)

	reserved, err := core.ReserveCopies(book, 2)

	assert.ErrorIs(t, err, core.ErrStockUnavailable)
	assert.Equal(t, 1, reserved.AvailableCopies, "failed reserve must not mutate stock")
	assertStockInvariant(t, reserved)
}

func Test_ReleaseCopies_IncrementsAvailable(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 3)

	released, err := core.ReleaseCopies(book, 2)

	require.NoError(t, err)
	assert.Equal(t, 5, released.AvailableCopies)
	assertStockInvariant(t, released)
}

func Test_ReleaseCopies_FailsWhenExceedingCheckedOut(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 4)

	released, err := core.ReleaseCopies(book, 2)

	var invalidOp core.InvalidStockOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.Equal(t, 2, invalidOp.Quantity)
	assert.Equal(t, 1, invalidOp.Limit)
	assert.Equal(t, 4, released.AvailableCopies, "failed release must not mutate stock")
}

func Test_AdjustTotalCopies_Grow(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 2)

	adjusted, err := core.AdjustTotalCopies(book, 8)

	require.NoError(t, err)
	assert.Equal(t, 8, adjusted.TotalCopies)
	assert.Equal(t, 5, adjusted.AvailableCopies)
	assertStockInvariant(t, adjusted)
}

func Test_AdjustTotalCopies_Shrink(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 4)

	adjusted, err := core.AdjustTotalCopies(book, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, adjusted.TotalCopies)
	assert.Equal(t, 1, adjusted.AvailableCopies)
	assertStockInvariant(t, adjusted)
}

func Test_AdjustTotalCopies_ShrinkFailsWhenRemovingCheckedOutCopies(t *testing.T) {
	book := givenBook(t, "Clean Architecture", 5, 2)

	_, err := core.AdjustTotalCopies(book, 1)

	var invalidOp core.InvalidStockOperationError
	require.ErrorAs(t, err, &invalidOp)
	assert.Equal(t, 4, invalidOp.Quantity)
	assert.Equal(t, 2, invalidOp.Limit)
}
