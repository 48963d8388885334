package models

import (
	"errors"
	"time"
)

// ErrUnknownField is returned when a reservation update names a field that
// is not one of ReservationFields.
var ErrUnknownField = errors.New("unknown reservation field")

// Account is a registered user. Password holds the bcrypt hash once stored.
type Account struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Password string `json:"password"`
}

func (a *Account) GetID() string   { return a.ID }
func (a *Account) SetID(id string) { a.ID = id }

// SessionToken is an issued login token. A token is valid while its record exists
// and, when ExpiresAt is set, until that instant.
type SessionToken struct {
	ID        string     `json:"id"`
	UserName  string     `json:"userName"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (s *SessionToken) GetID() string   { return s.ID }
func (s *SessionToken) SetID(id string) { s.ID = id }

// Expired reports whether the token has an expiry at or before now.
func (s *SessionToken) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

type Reservation struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	User      string `json:"user"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (r *Reservation) GetID() string   { return r.ID }
func (r *Reservation) SetID(id string) { r.ID = id }

// ReservationFields lists the client-supplied reservation fields in canonical order.
// All of them are mandatory at creation and each one is updatable.
var ReservationFields = []string{"room", "user", "startDate", "endDate"}

// IsReservationField reports whether name is one of ReservationFields.
func IsReservationField(name string) bool {
	for _, f := range ReservationFields {
		if f == name {
			return true
		}
	}
	return false
}

// Set assigns value to the named field.
func (r *Reservation) Set(field, value string) error {
	switch field {
	case "room":
		r.Room = value
	case "user":
		r.User = value
	case "startDate":
		r.StartDate = value
	case "endDate":
		r.EndDate = value
	default:
		return ErrUnknownField
	}
	return nil
}
