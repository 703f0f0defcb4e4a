package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"bunkmate/internal/models"
)

type FavoriteRepository struct {
	DB *sql.DB
}

func (r *FavoriteRepository) AddToFavorites(ctx context.Context, fav models.Favorite) error {
	query := `INSERT INTO favorites (user_id, listing_id) VALUES (?, ?)`
	_, err := r.DB.ExecContext(ctx, query, fav.UserID, fav.ListingID)
	return err
}

func (r *FavoriteRepository) RemoveFromFavorites(ctx context.Context, userID, listingID int) error {
	query := `DELETE FROM favorites WHERE user_id = ? AND listing_id = ?`
	_, err := r.DB.ExecContext(ctx, query, userID, listingID)
	return err
}

func (r *FavoriteRepository) IsFavorite(ctx context.Context, userID, listingID int) (bool, error) {
	query := `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND listing_id = ?`
	var count int
	err := r.DB.QueryRowContext(ctx, query, userID, listingID).Scan(&count)
	return count > 0, err
}

func (r *FavoriteRepository) GetFavoritesByUser(ctx context.Context, userID int) ([]models.Favorite, error) {
	query := `SELECT f.id, f.user_id, f.listing_id, l.title, l.price, l.distance_miles, l.archived, l.created_at, l.image_paths
                 FROM favorites f
                 JOIN listings l ON f.listing_id = l.id
                 WHERE f.user_id = ?`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favs []models.Favorite
	for rows.Next() {
		var fav models.Favorite
		var imagesJSON sql.NullString
		err := rows.Scan(&fav.ID, &fav.UserID, &fav.ListingID, &fav.Title, &fav.Price, &fav.DistanceMiles, &fav.Archived, &fav.CreatedAt, &imagesJSON)
		if err != nil {
			return nil, err
		}

		imgPath, err := extractFirstImagePath(imagesJSON)
		if err != nil {
			log.Printf("failed to decode listing images for favorite %d: %v", fav.ID, err)
		}
		fav.ImagePath = imgPath
		favs = append(favs, fav)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("favorites rows error: %w", err)
	}
	return favs, nil
}

// extractFirstImagePath pulls the first key out of a JSON image_paths column
// for card thumbnails.
func extractFirstImagePath(imagesJSON sql.NullString) (*string, error) {
	if !imagesJSON.Valid || imagesJSON.String == "" {
		return nil, nil
	}
	var paths []string
	if err := json.Unmarshal([]byte(imagesJSON.String), &paths); err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}
	return &paths[0], nil
}
