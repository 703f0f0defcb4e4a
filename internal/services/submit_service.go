package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"bunkmate/internal/geo"
	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
)

// Rice University main campus, the fixed reference point for listing
// distances.
var campusPoint = geo.Point{Lat: 29.7174, Lon: -95.4018}

// SubmitService turns a fully valid draft into a persisted listing. Three
// independent resources are touched (object storage, listing/caption rows,
// the geocoding+routing pair); none give cross-call atomicity, so failures
// after the uploads are compensated by best-effort deletes.
type SubmitService struct {
	Drafts   repositories.DraftStore
	Listings ListingWriter
	Captions CaptionWriter
	Storage  PhotoStorage
	Geocoder Geocoder
	Router   Router
}

type uploadResult struct {
	key string
	ok  bool
}

// uploadPhotos pushes every raw blob to storage concurrently. The returned
// key list is aligned to the input order, not completion order; captions
// are attributed by index, so reordering here would silently mislabel
// photos.
func (s *SubmitService) uploadPhotos(ctx context.Context, userID int, raw [][]byte) ([]string, []string, error) {
	results := make([]uploadResult, len(raw))
	var wg sync.WaitGroup

	for i, blob := range raw {
		wg.Add(1)
		go func(i int, blob []byte) {
			defer wg.Done()
			key := fmt.Sprintf("listings/%d/%s.jpg", userID, uuid.NewString())
			if _, err := s.Storage.Upload(key, blob); err != nil {
				log.Printf("photo upload failed for slot %d: %v", i, err)
				results[i] = uploadResult{}
				return
			}
			results[i] = uploadResult{key: key, ok: true}
		}(i, blob)
	}
	wg.Wait()

	keys := make([]string, 0, len(raw))
	uploaded := make([]string, 0, len(raw))
	succeeded := 0
	for _, res := range results {
		if res.ok {
			succeeded++
			uploaded = append(uploaded, res.key)
		}
		keys = append(keys, res.key)
	}
	if succeeded != len(raw) {
		// Abort before any row is written. Successful uploads are left
		// behind here; downstream failures clean them, this one does not.
		return nil, uploaded, models.ErrPhotoUploadFailed
	}
	return keys, uploaded, nil
}

// measureDistance geocodes the address and asks the router for the driving
// distance from campus, in miles rounded to one decimal.
func (s *SubmitService) measureDistance(ctx context.Context, address string) (float64, error) {
	point, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrGeocodeFailed, err)
	}
	meters, _, err := s.Router.DrivingDistance(ctx, campusPoint, point)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrRouteFailed, err)
	}
	return math.Round(meters*geo.MetersToMiles*10) / 10, nil
}

// compensate deletes the uploaded photo keys and any caption rows keyed to
// them. Best-effort: its own failures are logged, never escalated; the
// original error is what the caller propagates.
func (s *SubmitService) compensate(userID int, uploadedKeys []string) {
	if len(uploadedKeys) == 0 {
		return
	}
	if err := s.Storage.Remove(uploadedKeys); err != nil {
		log.Printf("compensation: failed to remove %d uploaded photos: %v", len(uploadedKeys), err)
	}
	if err := s.Captions.DeleteByPaths(context.Background(), userID, uploadedKeys); err != nil {
		log.Printf("compensation: failed to remove caption rows: %v", err)
	}
}

// CreateFromDraft runs the create path: upload photos, geocode and measure,
// revalidate, persist the listing and its captions, then clear the draft.
// On any aborted path the draft is left intact so the user can retry.
func (s *SubmitService) CreateFromDraft(ctx context.Context, userID int) (models.Listing, error) {
	draft, err := s.Drafts.Read(ctx, userID)
	if err != nil {
		return models.Listing{}, err
	}

	keys, uploaded, err := s.uploadPhotos(ctx, userID, draft.RawPhotos)
	if err != nil {
		return models.Listing{}, err
	}

	distance, err := s.measureDistance(ctx, draft.Address.Label)
	if err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	if verrs := ValidateDraft(draft, false); verrs != nil {
		return models.Listing{}, verrs
	}

	listing, err := draftToListing(draft, userID, distance, keys)
	if err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	created, err := s.Listings.CreateListing(ctx, listing)
	if err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	captions := make(map[string]string)
	for slot, caption := range draft.PhotoLabels {
		if caption == "" || slot < 0 || slot >= len(keys) {
			continue
		}
		captions[keys[slot]] = caption
	}
	if err := s.Captions.InsertCaptions(ctx, userID, captions); err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	if err := s.Drafts.Reset(ctx, userID); err != nil {
		log.Printf("failed to reset draft for user %d after submit: %v", userID, err)
	}
	return created, nil
}

// UpdateFromDraft runs the edit path. Distance is not recomputed on save,
// even when the address changed. Captions for retained and removed photos
// are deleted up front and reinserted from the current labels; removed
// photos leave storage only after the row update succeeds.
func (s *SubmitService) UpdateFromDraft(ctx context.Context, userID int) (models.Listing, error) {
	draft, err := s.Drafts.Read(ctx, userID)
	if err != nil {
		return models.Listing{}, err
	}
	if draft.EditListingID == 0 {
		return models.Listing{}, repositories.ErrListingNotFound
	}

	existing, err := s.Listings.GetListingByID(ctx, draft.EditListingID, userID)
	if err != nil {
		return models.Listing{}, err
	}
	if existing.UserID != userID {
		return models.Listing{}, models.ErrNotListingOwner
	}

	newKeys, uploaded, err := s.uploadPhotos(ctx, userID, draft.RawPhotos)
	if err != nil {
		return models.Listing{}, err
	}

	if verrs := ValidateDraft(draft, true); verrs != nil {
		return models.Listing{}, verrs
	}

	removed := make(map[string]bool, len(draft.RemovedPaths))
	for _, p := range draft.RemovedPaths {
		removed[p] = true
	}
	retained := make([]string, 0, len(draft.ImagePaths))
	for _, p := range draft.ImagePaths {
		if !removed[p] {
			retained = append(retained, p)
		}
	}
	finalKeys := append(append([]string{}, retained...), newKeys...)

	listing, err := draftToListing(draft, userID, existing.DistanceMiles, finalKeys)
	if err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}
	listing.ID = existing.ID
	listing.CreatedAt = existing.CreatedAt

	// Replace caption rows for every photo the draft knows about, retained
	// or removed, before reinserting the current labels.
	if err := s.Captions.DeleteByPaths(ctx, userID, draft.ImagePaths); err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	captions := make(map[string]string)
	for slot, caption := range draft.PhotoLabels {
		if caption == "" {
			continue
		}
		if slot >= models.EditSlotOffset {
			idx := slot - models.EditSlotOffset
			if idx < len(draft.ImagePaths) && !removed[draft.ImagePaths[idx]] {
				captions[draft.ImagePaths[idx]] = caption
			}
			continue
		}
		if slot >= 0 && slot < len(newKeys) {
			captions[newKeys[slot]] = caption
		}
	}

	updated, err := s.Listings.UpdateListing(ctx, listing)
	if err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	if err := s.Captions.InsertCaptions(ctx, userID, captions); err != nil {
		s.compensate(userID, uploaded)
		return models.Listing{}, err
	}

	// Row update is durable; removed photos can leave storage now.
	if len(draft.RemovedPaths) > 0 {
		if err := s.Storage.Remove(draft.RemovedPaths); err != nil {
			log.Printf("failed to remove %d replaced photos: %v", len(draft.RemovedPaths), err)
		}
	}

	if err := s.Drafts.Reset(ctx, userID); err != nil {
		log.Printf("failed to reset draft for user %d after edit save: %v", userID, err)
	}
	return updated, nil
}

func draftToListing(draft models.ListingDraft, userID int, distance float64, keys []string) (models.Listing, error) {
	start, err := time.Parse(time.RFC3339, draft.StartDate)
	if err != nil {
		return models.Listing{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(time.RFC3339, draft.EndDate)
	if err != nil {
		return models.Listing{}, fmt.Errorf("invalid end date: %w", err)
	}
	return models.Listing{
		Title:         draft.Title,
		Description:   draft.Description,
		BedCount:      draft.BedCount,
		BathCount:     draft.BathCount,
		Price:         draft.Price,
		PriceNotes:    draft.PriceNotes,
		Address:       draft.Address.Label,
		LocationNotes: draft.LocationNotes,
		DistanceMiles: distance,
		StartDate:     start,
		EndDate:       end,
		DurationNotes: draft.DurationNotes,
		ImagePaths:    keys,
		Phone:         draft.Phone,
		UserID:        userID,
		CreatedAt:     time.Now(),
	}, nil
}
