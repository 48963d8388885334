package repository

import (
	"context"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/models"
	"github.com/Jeomhps/projet-IAC/reservations-api/internal/store"
)

// ReservationStore keeps reservations. Updates are read-modify-write without
// a surrounding transaction.
type ReservationStore struct {
	reservations *store.Repository[models.Reservation, *models.Reservation]
}

func NewReservationStore(engine store.Engine, ids store.IDGenerator) *ReservationStore {
	return &ReservationStore{reservations: store.NewRepository[models.Reservation](engine, reservationsCollection, ids)}
}

// Create stores r under a fresh id, ignoring any id r already carries.
func (s *ReservationStore) Create(ctx context.Context, r models.Reservation) (string, error) {
	r.ID = ""
	return s.reservations.Insert(ctx, r)
}

func (s *ReservationStore) Get(ctx context.Context, id string) (models.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

func (s *ReservationStore) List(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.List(ctx)
}

// Update sets one field. It returns store.ErrNotFound for unknown ids and
// models.ErrUnknownField for fields outside models.ReservationFields.
func (s *ReservationStore) Update(ctx context.Context, id, field, value string) error {
	if !models.IsReservationField(field) {
		return models.ErrUnknownField
	}
	r, err := s.reservations.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := r.Set(field, value); err != nil {
		return err
	}
	return s.reservations.Save(ctx, r)
}

// Delete is idempotent.
func (s *ReservationStore) Delete(ctx context.Context, id string) error {
	return s.reservations.Delete(ctx, id)
}
