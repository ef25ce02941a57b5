// Package queue defines the reservation events exchanged over RabbitMQ and
// the consumer that records them.
package queue

import (
	"time"

	"github.com/outy-app/outy/internal/model"
)

// ExchangeName is the durable topic exchange reservation events go to.
const ExchangeName = "outy.reservations"

// Routing keys.
const (
	KeyReservationCreated   = "reservation.created"
	KeyReservationCheckedIn = "reservation.checked_in"
)

// ReservationEvent carries enough of a reservation for downstream consumers
// to log or notify without querying the primary database.
type ReservationEvent struct {
	ReservationID string `json:"reservation_id"`
	Code          string `json:"code"`
	RelatedType   string `json:"related_type"`
	RelatedID     string `json:"related_id"`
	UserID        string `json:"user_id"`
	HostOwnerID   string `json:"host_owner_id"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PeopleCount   int    `json:"people_count"`
	OccurredAt    string `json:"occurred_at"`
}

// NewReservationEvent snapshots res at the given instant.
func NewReservationEvent(res model.Reservation, at time.Time) ReservationEvent {
	return ReservationEvent{
		ReservationID: res.ID,
		Code:          res.ReservationCode,
		RelatedType:   string(res.RelatedType),
		RelatedID:     res.RelatedID,
		UserID:        res.UserID,
		HostOwnerID:   res.HostOwnerID,
		Status:        res.Status,
		Date:          res.Date,
		Time:          res.Time,
		PeopleCount:   res.PeopleCount,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}
