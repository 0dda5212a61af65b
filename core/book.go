package core

import (
	"time"

	"github.com/google/uuid"
)

// Edition describes one published edition of a book.
type Edition struct {
	Number      int
	Description string
	Year        int
}

// Book represents a title in the catalog together with its copy counts.
// Invariant: 0 <= AvailableCopies <= TotalCopies.
type Book struct {
	Identity
	Name            string
	TotalCopies     int
	AvailableCopies int
	Editions        []Edition
	AuthorIDs       []uuid.UUID
	PublisherID     uuid.UUID
}

// BuildBook creates a new Book with all copies available.
func BuildBook(
	id uuid.UUID,
	name string,
	totalCopies int,
	editions []Edition,
	authorIDs []uuid.UUID,
	publisherID uuid.UUID,
	at time.Time,
) Book {

	return Book{
		Identity:        BuildIdentity(id, at),
		Name:            name,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		Editions:        editions,
		AuthorIDs:       authorIDs,
		PublisherID:     publisherID,
	}
}

// HasAvailableCopy reports whether at least one copy can be reserved.
func (b Book) HasAvailableCopy() bool {
	return b.AvailableCopies >= 1
}

// CheckedOutCopies returns the number of copies currently out with readers.
func (b Book) CheckedOutCopies() int {
	return b.TotalCopies - b.AvailableCopies
}

// Author represents a book author. Persistence-only entity, never touched by the engines.
type Author struct {
	Identity
	Name string
}

// BuildAuthor creates a new Author.
func BuildAuthor(id uuid.UUID, name string, at time.Time) Author {
	return Author{
		Identity: BuildIdentity(id, at),
		Name:     name,
	}
}

// Publisher represents a book publisher. Persistence-only entity, never touched by the engines.
type Publisher struct {
	Identity
	Name string
}

// BuildPublisher creates a new Publisher.
func BuildPublisher(id uuid.UUID, name string, at time.Time) Publisher {
	return Publisher{
		Identity: BuildIdentity(id, at),
		Name:     name,
	}
}
