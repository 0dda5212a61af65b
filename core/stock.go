package core

// Pure stock ledger transitions. Storage implementations must enforce the
// same bounds; these functions are the reference semantics and back the
// in-memory ledger.

// ReserveCopies removes quantity copies from the available count. Fails
// with ErrStockUnavailable when fewer copies are available.
func ReserveCopies(book Book, quantity int) (Book, error) {
	if quantity > book.AvailableCopies {
		return book, ErrStockUnavailable
	}

	book.AvailableCopies -= quantity

	return book, nil
}

// ReleaseCopies puts quantity copies back into the available count. Fails
// with InvalidStockOperationError when more copies would be released than
// are currently checked out, which is the same bound as available
// exceeding total.
func ReleaseCopies(book Book, quantity int) (Book, error) {
	if quantity > book.CheckedOutCopies() {
		return book, InvalidStockOperationError{
			Quantity: quantity,
			Limit:    book.CheckedOutCopies(),
		}
	}

	book.AvailableCopies += quantity

	return book, nil
}

// AdjustTotalCopies changes a book's total copy count, keeping the
// available count in step. Shrinking fails with InvalidStockOperationError
// when more copies would be removed than are currently available, since
// checked-out copies cannot be taken out of circulation.
func AdjustTotalCopies(book Book, newTotal int) (Book, error) {
	if newTotal < book.TotalCopies {
		removed := book.TotalCopies - newTotal

		if removed > book.AvailableCopies {
			return book, InvalidStockOperationError{
				Quantity: removed,
				Limit:    book.AvailableCopies,
			}
		}

		book.AvailableCopies -= removed
	} else {
		book.AvailableCopies += newTotal - book.TotalCopies
	}

	book.TotalCopies = newTotal

	return book, nil
}
