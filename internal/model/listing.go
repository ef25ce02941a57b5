package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TargetType discriminates the two kinds of listing that reviews, media and
// reservations can point at.
type TargetType string

const (
	TargetPlace TargetType = "place"
	TargetEvent TargetType = "event"
)

// ParseTargetType accepts "place" or "event" in any case.
func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(strings.ToLower(strings.TrimSpace(s))) {
	case TargetPlace:
		return TargetPlace, nil
	case TargetEvent:
		return TargetEvent, nil
	}
	return "", fmt.Errorf("invalid related type %q", s)
}

// ListingRef is a typed (kind, id) reference to a place or an event.
type ListingRef struct {
	Type TargetType
	ID   string
}

// ReservationMode decides whether and how a listing takes reservations.
type ReservationMode string

const (
	ModeNone  ReservationMode = "NONE"
	ModeOuty  ReservationMode = "OUTY"
	ModeLink  ReservationMode = "LINK"
	ModePhone ReservationMode = "PHONE"
)

// ParseReservationMode upper-cases s; empty input means NONE.
func ParseReservationMode(s string) (ReservationMode, error) {
	m := ReservationMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "":
		return ModeNone, nil
	case ModeNone, ModeOuty, ModeLink, ModePhone:
		return m, nil
	}
	return "", fmt.Errorf("invalid reservation mode %q", s)
}

// AcceptsReservations is false only for NONE.
func (m ReservationMode) AcceptsReservations() bool { return m != ModeNone && m != "" }

// Place is a venue listing.
type Place struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	City            string          `json:"city"`
	VibeTags        []string        `json:"vibe_tags"`
	Description     string          `json:"description"`
	Address         string          `json:"address"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	Phone           string          `json:"phone"`
	Whatsapp        string          `json:"whatsapp"`
	Rules           string          `json:"rules"`
	MenuPDFURL      string          `json:"menu_pdf_url"`
	ReservationMode ReservationMode `json:"reservation_mode"`
	ReservationLink string          `json:"reservation_link"`
	CreatedAt       time.Time       `json:"created_at"`
	Rating          float64         `json:"rating"`
	DistanceHint    *float64        `json:"distance_hint,omitempty"`
}

// Event is a dated listing, optionally hosted at a place.
type Event struct {
	ID              string          `json:"id"`
	OwnerID         string          `json:"owner_id"`
	PlaceID         *string         `json:"place_id"`
	Name            string          `json:"name"`
	City            string          `json:"city"`
	VibeTags        []string        `json:"vibe_tags"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	Description     string          `json:"description"`
	Address         string          `json:"address"`
	Latitude        *float64        `json:"latitude"`
	Longitude       *float64        `json:"longitude"`
	Rules           string          `json:"rules"`
	TicketLink      string          `json:"ticket_link"`
	ReservationMode ReservationMode `json:"reservation_mode"`
	ReservationLink string          `json:"reservation_link"`
	CreatedAt       time.Time       `json:"created_at"`
	Rating          float64         `json:"rating"`
}

// ListingFilter narrows a catalog listing.  Empty fields are left out of
// the predicate.
type ListingFilter struct {
	City     string
	Category string
	Vibe     string
	// NearLat and NearLng, when both set, add a distance hint to places
	// that have coordinates.
	NearLat *float64
	NearLng *float64
}

// DistanceFrom is the straight-line distance in raw degrees between the
// place and the given point, or nil when the place has no coordinates.
func (p Place) DistanceFrom(lat, lng float64) *float64 {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	dLat := *p.Latitude - lat
	dLng := *p.Longitude - lng
	d := math.Sqrt(dLat*dLat + dLng*dLng)
	return &d
}

// PlaceDetail is a place together with its media and reviews.
type PlaceDetail struct {
	Place
	Media   []Media  `json:"media"`
	Reviews []Review `json:"reviews"`
}

// EventDetail is an event together with its media and reviews.
type EventDetail struct {
	Event
	Media   []Media  `json:"media"`
	Reviews []Review `json:"reviews"`
}

// Target is the subset of a listing needed to authorize and route
// reservations, reviews and media.
type Target struct {
	Ref             ListingRef
	OwnerID         string
	ReservationMode ReservationMode
	ReservationLink string
}
