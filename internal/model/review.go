package model

import "time"

// Review is one user's rating of one listing.  Reply is written by the
// business owning the listing.
type Review struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	RelatedType TargetType `json:"related_type"`
	RelatedID   string     `json:"related_id"`
	Rating      int        `json:"rating"`
	Comment     string     `json:"comment"`
	Reply       *string    `json:"reply"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Media is an image or document URL attached to a listing.
type Media struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	RelatedType TargetType `json:"related_type"`
	RelatedID   string     `json:"related_id"`
	Type        string     `json:"type"`
	URL         string     `json:"url"`
	CreatedAt   time.Time  `json:"created_at"`
}
