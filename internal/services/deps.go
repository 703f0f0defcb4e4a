package services

import (
	"context"

	"bunkmate/internal/geo"
	"bunkmate/internal/models"
)

// Narrow views of the external collaborators the submission flow touches,
// so tests can stand in fakes for storage, geo APIs and the database.

// PhotoStorage is the object-storage surface used for listing photos.
type PhotoStorage interface {
	Upload(key string, data []byte) (string, error)
	Remove(keys []string) error
}

// Geocoder resolves an address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (geo.Point, error)
}

// Router computes a driving distance in meters (plus duration in seconds).
type Router interface {
	DrivingDistance(ctx context.Context, from, to geo.Point) (float64, float64, error)
}

// ListingWriter is the listing-row surface the orchestrator needs.
type ListingWriter interface {
	CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
	GetListingByID(ctx context.Context, id int, userID int) (models.Listing, error)
	UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error)
}

// CaptionWriter is the photo-caption surface the orchestrator needs.
type CaptionWriter interface {
	InsertCaptions(ctx context.Context, userID int, captions map[string]string) error
	DeleteByPaths(ctx context.Context, userID int, paths []string) error
	GetByPaths(ctx context.Context, userID int, paths []string) (map[string]string, error)
}
