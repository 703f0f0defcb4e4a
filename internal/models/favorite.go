package models

import "time"

type Favorite struct {
	ID        int `json:"id"`
	UserID    int `json:"user_id"`
	ListingID int `json:"listing_id"`

	// Joined listing card fields for list views.
	Title         string    `json:"title,omitempty"`
	Price         float64   `json:"price,omitempty"`
	DistanceMiles float64   `json:"distance_miles,omitempty"`
	ImagePath     *string   `json:"image_path,omitempty"`
	Archived      bool      `json:"archived,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}
