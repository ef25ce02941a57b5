package model

import "time"

// Reservation statuses.  CHECKED_IN is terminal.
const (
	StatusPending   = "PENDING"
	StatusCheckedIn = "CHECKED_IN"
)

// Reservation records one booking against a place or an event.
// HostOwnerID is copied from the listing when the reservation is created
// and is what check-in authorization is scoped by.
type Reservation struct {
	ID              string     `json:"id"`
	RelatedType     TargetType `json:"related_type"`
	RelatedID       string     `json:"related_id"`
	UserID          string     `json:"user_id"`
	HostOwnerID     string     `json:"host_owner_id"`
	FullName        string     `json:"full_name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	PeopleCount     int        `json:"people_count"`
	Note            string     `json:"note"`
	ReservationCode string     `json:"reservation_code"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
