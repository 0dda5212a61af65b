package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cslopes3/library-circulation-go/core"
	"github.com/cslopes3/library-circulation-go/shell"
)

// ReservationStore is an in-memory shell.Reservations implementation. It
// composes a stock ledger so that creating a reservation and returning an
// item move copy counts together with the stored rows.
type ReservationStore struct {
	mu           sync.RWMutex
	ledger       shell.StockLedger
	reservations map[uuid.UUID]core.Reservation
	itemIndex    map[uuid.UUID]uuid.UUID // item id -> reservation id
}

// NewReservationStore creates an empty ReservationStore over the given ledger.
func NewReservationStore(ledger shell.StockLedger) *ReservationStore {
	return &ReservationStore{
		ledger:       ledger,
		reservations: make(map[uuid.UUID]core.Reservation),
		itemIndex:    make(map[uuid.UUID]uuid.UUID),
	}
}

// FindByID returns the reservation with the given id.
func (s *ReservationStore) FindByID(_ context.Context, id uuid.UUID) (core.Reservation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, found := s.reservations[id]

	return reservation, found, nil
}

// FindByUserID returns all reservations of a user.
func (s *ReservationStore) FindByUserID(_ context.Context, userID uuid.UUID) ([]core.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []core.Reservation

	for _, reservation := range s.reservations {
		if reservation.UserID == userID {
			result = append(result, reservation)
		}
	}

	return result, nil
}

// Create stores a new reservation with all its items after removing one
// available copy per item. When the ledger rejects the decrement nothing
// is stored.
func (s *ReservationStore) Create(ctx context.Context, reservation core.Reservation) error {
	bookIDs := make([]uuid.UUID, 0, len(reservation.Items))
	for _, item := range reservation.Items {
		bookIDs = append(bookIDs, item.BookID)
	}

	if err := s.ledger.Reserve(ctx, bookIDs); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reservations[reservation.ID] = reservation

	for _, item := range reservation.Items {
		s.itemIndex[item.ID] = reservation.ID
	}

	return nil
}

// Delete removes a reservation and its items.
func (s *ReservationStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, found := s.reservations[id]
	if !found {
		return nil
	}

	for _, item := range reservation.Items {
		delete(s.itemIndex, item.ID)
	}

	delete(s.reservations, id)

	return nil
}

// ChangeReservationInfoByID updates due date and extension flag of one item.
func (s *ReservationStore) ChangeReservationInfoByID(
	_ context.Context,
	itemID uuid.UUID,
	newDueDate time.Time,
	extended bool,
) error {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateItem(itemID, func(item *core.ReservationItem) {
		item.DueDate = newDueDate
		item.Extended = extended
	})
}

// ReturnByItemID sets the return date of one item and releases its copy
// back into the available count. A failed release leaves the item untouched.
func (s *ReservationStore) ReturnByItemID(ctx context.Context, itemID uuid.UUID, returnedAt time.Time) error {
	item, found, err := s.FindItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if !found {
		return core.ErrReservationItemNotFound
	}

	if releaseErr := s.ledger.Release(ctx, item.BookID, 1); releaseErr != nil {
		return releaseErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateItem(itemID, func(item *core.ReservationItem) {
		item.ReturnedAt = returnedAt
	})
}

// FindItemByID returns the reservation item with the given id.
func (s *ReservationStore) FindItemByID(_ context.Context, itemID uuid.UUID) (core.ReservationItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservationID, found := s.itemIndex[itemID]
	if !found {
		return core.ReservationItem{}, false, nil
	}

	for _, item := range s.reservations[reservationID].Items {
		if item.ID == itemID {
			return item, true, nil
		}
	}

	return core.ReservationItem{}, false, nil
}

func (s *ReservationStore) updateItem(itemID uuid.UUID, apply func(*core.ReservationItem)) error {
	reservationID, found := s.itemIndex[itemID]
	if !found {
		return core.ErrReservationItemNotFound
	}

	reservation := s.reservations[reservationID]

	for i := range reservation.Items {
		if reservation.Items[i].ID == itemID {
			apply(&reservation.Items[i])
			s.reservations[reservationID] = reservation

			return nil
		}
	}

	return core.ErrReservationItemNotFound
}

// ScheduleStore is an in-memory shell.Schedules implementation.
type ScheduleStore struct {
	mu        sync.RWMutex
	schedules map[uuid.UUID]core.Schedule
}

// NewScheduleStore creates an empty ScheduleStore.
func NewScheduleStore() *ScheduleStore {
	return &ScheduleStore{schedules: make(map[uuid.UUID]core.Schedule)}
}

// Create stores a new schedule with all its items.
func (s *ScheduleStore) Create(_ context.Context, schedule core.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedules[schedule.ID] = schedule

	return nil
}

// FindByID returns the schedule with the given id.
func (s *ScheduleStore) FindByID(_ context.Context, id uuid.UUID) (core.Schedule, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schedule, found := s.schedules[id]

	return schedule, found, nil
}

// FindByUserIDAndLastDays returns the user's schedules created at or after since.
func (s *ScheduleStore) FindByUserIDAndLastDays(
	_ context.Context,
	userID uuid.UUID,
	since time.Time,
) ([]core.Schedule, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []core.Schedule

	for _, schedule := range s.schedules {
		if schedule.UserID == userID && !schedule.CreatedAt.Before(since) {
			result = append(result, schedule)
		}
	}

	return result, nil
}

// ChangeStatus updates the status of a schedule.
func (s *ScheduleStore) ChangeStatus(_ context.Context, id uuid.UUID, status core.ScheduleStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	schedule, found := s.schedules[id]
	if !found {
		return core.ErrScheduleNotFound
	}

	schedule.Status = status
	s.schedules[id] = schedule

	return nil
}
