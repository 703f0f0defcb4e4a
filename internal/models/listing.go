package models

import (
	"time"
)

type Listing struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	BedCount      int     `json:"bed_count"`
	BathCount     int     `json:"bath_count"`
	Price         float64 `json:"price"`
	PriceNotes    string  `json:"price_notes,omitempty"`
	Address       string  `json:"address"`
	LocationNotes string  `json:"location_notes,omitempty"`
	DistanceMiles float64 `json:"distance_miles"`
	UserID        int     `json:"user_id"`
	User          struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Email       string `json:"email,omitempty"`
		Phone       string `json:"phone"`
		Affiliation string `json:"affiliation"`
	} `json:"user"`
	ImagePaths    []string       `json:"image_paths"`
	ImageURLs     []string       `json:"image_urls,omitempty"`
	Captions      map[string]string `json:"captions,omitempty"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	DurationNotes string         `json:"duration_notes,omitempty"`
	Phone         string         `json:"phone"`
	Archived      bool           `json:"archived"`
	Liked         bool           `json:"liked,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

type ListingFilterRequest struct {
	PriceFrom  float64    `json:"price_from"`
	PriceTo    float64    `json:"price_to"`
	MinBeds    int        `json:"min_beds"`
	MinBaths   int        `json:"min_baths"`
	StartAfter *time.Time `json:"start_after,omitempty"`
	EndBefore  *time.Time `json:"end_before,omitempty"`
	MaxMiles   float64    `json:"max_miles"`
	SortOption int        `json:"sort"` // 1 - newest, 2 - price desc, 3 - price asc, 4 - distance asc
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

type ListingListResponse struct {
	Listings []Listing `json:"listings"`
	MinPrice float64   `json:"min_price"`
	MaxPrice float64   `json:"max_price"`
}

// PhotoCaption maps one stored photo key to its caption, owned by the user
// who uploaded the photo.
type PhotoCaption struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	ImagePath string `json:"image_path"`
	Caption   string `json:"caption"`
}
