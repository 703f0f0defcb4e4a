package services

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/messaging"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
)

type FavoriteService struct {
	FavoriteRepo *repositories.FavoriteRepository
	ListingRepo  *repositories.ListingRepository
	UserRepo     *repositories.UserRepository
	FCM          *messaging.Client
}

func (s *FavoriteService) AddToFavorites(ctx context.Context, fav models.Favorite) error {
	if err := s.FavoriteRepo.AddToFavorites(ctx, fav); err != nil {
		return err
	}
	// Owner notification is best-effort; a push failure never fails the
	// favorite itself.
	go s.notifyOwner(fav)
	return nil
}

func (s *FavoriteService) RemoveFromFavorites(ctx context.Context, userID, listingID int) error {
	return s.FavoriteRepo.RemoveFromFavorites(ctx, userID, listingID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, listingID int) (bool, error) {
	return s.FavoriteRepo.IsFavorite(ctx, userID, listingID)
}

func (s *FavoriteService) GetFavoritesByUser(ctx context.Context, userID int) ([]models.Favorite, error) {
	return s.FavoriteRepo.GetFavoritesByUser(ctx, userID)
}

func (s *FavoriteService) notifyOwner(fav models.Favorite) {
	if s.FCM == nil {
		return
	}
	ctx := context.Background()

	listing, err := s.ListingRepo.GetListingByID(ctx, fav.ListingID, 0)
	if err != nil {
		log.Printf("favorite notification: listing %d lookup failed: %v", fav.ListingID, err)
		return
	}
	if listing.UserID == fav.UserID {
		return
	}

	tokens, err := s.UserRepo.GetFCMTokensByUser(ctx, listing.UserID)
	if err != nil {
		log.Printf("favorite notification: token lookup failed: %v", err)
		return
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: "Someone saved your listing",
				Body:  fmt.Sprintf("%q was added to a student's favorites", listing.Title),
			},
			Data: map[string]string{
				"listing_id": fmt.Sprintf("%d", listing.ID),
			},
		}
		if _, err := s.FCM.Send(ctx, message); err != nil {
			log.Printf("favorite notification: send failed: %v", err)
		}
	}
}
