package services

import (
	"context"
	"time"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
)

// DraftService exposes the wizard's draft operations. It holds no state of
// its own; the store owns the draft for the session.
type DraftService struct {
	Drafts   repositories.DraftStore
	Listings ListingWriter
	Captions CaptionWriter
}

func (s *DraftService) GetDraft(ctx context.Context, userID int) (models.ListingDraft, error) {
	return s.Drafts.Read(ctx, userID)
}

func (s *DraftService) UpdateDraft(ctx context.Context, userID int, patch models.DraftUpdate) (models.ListingDraft, error) {
	return s.Drafts.Update(ctx, userID, patch)
}

func (s *DraftService) ResetDraft(ctx context.Context, userID int) error {
	return s.Drafts.Reset(ctx, userID)
}

// Sections recomputes the per-section completion states for the current
// draft. Edit mode relaxes the photo floor.
func (s *DraftService) Sections(ctx context.Context, userID int) (models.SectionStates, error) {
	draft, err := s.Drafts.Read(ctx, userID)
	if err != nil {
		return models.SectionStates{}, err
	}
	return DraftSections(draft, draft.EditListingID != 0), nil
}

// LoadForEdit replaces the user's draft with the persisted listing's fields.
// Captions for existing photos are remapped into slots shifted by
// models.EditSlotOffset so newly added photos can use slots 0..N-1 without
// collision.
func (s *DraftService) LoadForEdit(ctx context.Context, userID, listingID int) (models.ListingDraft, error) {
	listing, err := s.Listings.GetListingByID(ctx, listingID, userID)
	if err != nil {
		return models.ListingDraft{}, err
	}
	if listing.UserID != userID {
		return models.ListingDraft{}, models.ErrNotListingOwner
	}

	captions, err := s.Captions.GetByPaths(ctx, userID, listing.ImagePaths)
	if err != nil {
		return models.ListingDraft{}, err
	}

	draft := models.DefaultDraft()
	draft.Title = listing.Title
	draft.Description = listing.Description
	draft.BedCount = listing.BedCount
	draft.BathCount = listing.BathCount
	draft.Price = listing.Price
	draft.PriceNotes = listing.PriceNotes
	draft.Address = models.DraftAddress{Label: listing.Address}
	draft.LocationNotes = listing.LocationNotes
	draft.StartDate = listing.StartDate.Format(time.RFC3339)
	draft.EndDate = listing.EndDate.Format(time.RFC3339)
	draft.DurationNotes = listing.DurationNotes
	draft.ImagePaths = append([]string{}, listing.ImagePaths...)
	draft.Phone = listing.Phone
	if listing.User.Affiliation != "" {
		draft.Affiliation = listing.User.Affiliation
	}
	draft.EditListingID = listing.ID

	for i, path := range listing.ImagePaths {
		if caption, ok := captions[path]; ok && caption != "" {
			draft.PhotoLabels[i+models.EditSlotOffset] = caption
		}
	}

	if err := s.Drafts.Replace(ctx, userID, draft); err != nil {
		return models.ListingDraft{}, err
	}
	return draft, nil
}
