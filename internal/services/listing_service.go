package services

import (
	"context"
	"log"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
)

type ListingService struct {
	ListingRepo *repositories.ListingRepository
	CaptionRepo *repositories.CaptionRepository
	Storage     PhotoStorage
	PublicURL   func(key string) string
}

func (s *ListingService) GetListingByID(ctx context.Context, id int, userID int) (models.Listing, error) {
	listing, err := s.ListingRepo.GetListingByID(ctx, id, userID)
	if err != nil {
		return models.Listing{}, err
	}
	captions, err := s.CaptionRepo.GetByPaths(ctx, listing.UserID, listing.ImagePaths)
	if err != nil {
		log.Printf("failed to load captions for listing %d: %v", id, err)
	} else {
		listing.Captions = captions
	}
	s.attachURLs(&listing)
	return listing, nil
}

func (s *ListingService) GetFilteredListings(ctx context.Context, filter models.ListingFilterRequest, userID int) (models.ListingListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	listings, minPrice, maxPrice, err := s.ListingRepo.GetListingsWithFilters(ctx, userID, filter)
	if err != nil {
		return models.ListingListResponse{}, err
	}
	for i := range listings {
		s.attachURLs(&listings[i])
	}

	return models.ListingListResponse{
		Listings: listings,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}, nil
}

func (s *ListingService) GetListingsByUserID(ctx context.Context, userID int) ([]models.Listing, error) {
	listings, err := s.ListingRepo.GetListingsByUserID(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		s.attachURLs(&listings[i])
	}
	return listings, nil
}

func (s *ListingService) ArchiveListing(ctx context.Context, userID, id int, archived bool) error {
	if err := s.requireOwner(ctx, userID, id); err != nil {
		return err
	}
	return s.ListingRepo.SetArchived(ctx, id, archived)
}

// DeleteListing hard-deletes the row, its caption rows and its photos. The
// row goes first so a storage failure cannot leave a listing referencing
// deleted photos.
func (s *ListingService) DeleteListing(ctx context.Context, userID, id int) error {
	listing, err := s.ListingRepo.GetListingByID(ctx, id, 0)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return models.ErrNotListingOwner
	}
	if err := s.ListingRepo.DeleteListing(ctx, id); err != nil {
		return err
	}
	if err := s.CaptionRepo.DeleteByPaths(ctx, userID, listing.ImagePaths); err != nil {
		log.Printf("failed to delete caption rows for listing %d: %v", id, err)
	}
	if err := s.Storage.Remove(listing.ImagePaths); err != nil {
		log.Printf("failed to delete photos for listing %d: %v", id, err)
	}
	return nil
}

func (s *ListingService) requireOwner(ctx context.Context, userID, id int) error {
	listing, err := s.ListingRepo.GetListingByID(ctx, id, 0)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return models.ErrNotListingOwner
	}
	return nil
}

func (s *ListingService) attachURLs(listing *models.Listing) {
	if s.PublicURL == nil {
		return
	}
	listing.ImageURLs = make([]string, 0, len(listing.ImagePaths))
	for _, key := range listing.ImagePaths {
		listing.ImageURLs = append(listing.ImageURLs, s.PublicURL(key))
	}
}
