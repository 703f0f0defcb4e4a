package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bunkmate/internal/models"
)

var (
	ErrListingNotFound = errors.New("listing not found")
)

type ListingRepository struct {
	DB *sql.DB
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `
    INSERT INTO listings (title, description, bed_count, bath_count, price, price_notes, address, location_notes, distance_miles, start_date, end_date, duration_notes, image_paths, phone, user_id, archived, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	imagesJSON, err := json.Marshal(listing.ImagePaths)
	if err != nil {
		return models.Listing{}, err
	}

	result, err := r.DB.ExecContext(ctx, query,
		listing.Title,
		listing.Description,
		listing.BedCount,
		listing.BathCount,
		listing.Price,
		listing.PriceNotes,
		listing.Address,
		listing.LocationNotes,
		listing.DistanceMiles,
		listing.StartDate,
		listing.EndDate,
		listing.DurationNotes,
		string(imagesJSON),
		listing.Phone,
		listing.UserID,
		listing.Archived,
		listing.CreatedAt,
	)
	if err != nil {
		return models.Listing{}, err
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return models.Listing{}, err
	}
	listing.ID = int(lastID)
	return listing, nil
}

func (r *ListingRepository) GetListingByID(ctx context.Context, id int, userID int) (models.Listing, error) {
	query := `
        SELECT l.id, l.title, l.description, l.bed_count, l.bath_count, l.price, l.price_notes, l.address, l.location_notes, l.distance_miles,
               l.start_date, l.end_date, l.duration_notes, l.image_paths, l.phone, l.user_id, l.archived,
               u.id, u.name, u.phone, u.affiliation,
               CASE WHEN f.id IS NOT NULL THEN '1' ELSE '0' END AS liked,
               l.created_at, l.updated_at
        FROM listings l
        JOIN users u ON l.user_id = u.id
        LEFT JOIN favorites f ON f.listing_id = l.id AND f.user_id = ?
        WHERE l.id = ?
    `

	var s models.Listing
	var imagesJSON []byte
	var likedStr string

	err := r.DB.QueryRowContext(ctx, query, userID, id).Scan(
		&s.ID, &s.Title, &s.Description, &s.BedCount, &s.BathCount, &s.Price, &s.PriceNotes, &s.Address, &s.LocationNotes, &s.DistanceMiles,
		&s.StartDate, &s.EndDate, &s.DurationNotes, &imagesJSON, &s.Phone, &s.UserID, &s.Archived,
		&s.User.ID, &s.User.Name, &s.User.Phone, &s.User.Affiliation,
		&likedStr,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &s.ImagePaths); err != nil {
			return models.Listing{}, fmt.Errorf("failed to decode image paths json: %w", err)
		}
	}
	s.Liked = likedStr == "1"
	return s, nil
}

func (r *ListingRepository) UpdateListing(ctx context.Context, listing models.Listing) (models.Listing, error) {
	query := `
UPDATE listings
SET title = ?, description = ?, bed_count = ?, bath_count = ?, price = ?, price_notes = ?, address = ?, location_notes = ?,
    start_date = ?, end_date = ?, duration_notes = ?, image_paths = ?, phone = ?, updated_at = ?
WHERE id = ?
`
	imagesJSON, err := json.Marshal(listing.ImagePaths)
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to marshal image paths: %w", err)
	}
	updatedAt := time.Now()
	listing.UpdatedAt = &updatedAt

	result, err := r.DB.ExecContext(ctx, query,
		listing.Title, listing.Description, listing.BedCount, listing.BathCount, listing.Price, listing.PriceNotes,
		listing.Address, listing.LocationNotes, listing.StartDate, listing.EndDate, listing.DurationNotes,
		imagesJSON, listing.Phone, listing.UpdatedAt, listing.ID,
	)
	if err != nil {
		return models.Listing{}, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return models.Listing{}, err
	}
	if rowsAffected == 0 {
		return models.Listing{}, ErrListingNotFound
	}
	return r.GetListingByID(ctx, listing.ID, 0)
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id int) error {
	query := `DELETE FROM listings WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) SetArchived(ctx context.Context, id int, archived bool) error {
	query := `UPDATE listings SET archived = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, archived, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) GetListingsWithFilters(ctx context.Context, userID int, filter models.ListingFilterRequest) ([]models.Listing, float64, float64, error) {
	var (
		listings   []models.Listing
		params     []interface{}
		conditions []string
	)

	baseQuery := `
        SELECT l.id, l.title, l.description, l.bed_count, l.bath_count, l.price, l.address, l.distance_miles,
               l.start_date, l.end_date, l.image_paths, l.user_id,
               CASE WHEN f.id IS NOT NULL THEN '1' ELSE '0' END AS liked,
               l.created_at
        FROM listings l
        LEFT JOIN favorites f ON f.listing_id = l.id AND f.user_id = ?
    `
	params = append(params, userID)

	conditions = append(conditions, "l.archived = FALSE")
	if filter.PriceFrom > 0 {
		conditions = append(conditions, "l.price >= ?")
		params = append(params, filter.PriceFrom)
	}
	if filter.PriceTo > 0 {
		conditions = append(conditions, "l.price <= ?")
		params = append(params, filter.PriceTo)
	}
	if filter.MinBeds > 0 {
		conditions = append(conditions, "l.bed_count >= ?")
		params = append(params, filter.MinBeds)
	}
	if filter.MinBaths > 0 {
		conditions = append(conditions, "l.bath_count >= ?")
		params = append(params, filter.MinBaths)
	}
	if filter.StartAfter != nil {
		conditions = append(conditions, "l.start_date >= ?")
		params = append(params, *filter.StartAfter)
	}
	if filter.EndBefore != nil {
		conditions = append(conditions, "l.end_date <= ?")
		params = append(params, *filter.EndBefore)
	}
	if filter.MaxMiles > 0 {
		conditions = append(conditions, "l.distance_miles <= ?")
		params = append(params, filter.MaxMiles)
	}

	query := baseQuery + " WHERE " + strings.Join(conditions, " AND ")

	switch filter.SortOption {
	case 2:
		query += " ORDER BY l.price DESC"
	case 3:
		query += " ORDER BY l.price ASC"
	case 4:
		query += " ORDER BY l.distance_miles ASC"
	default:
		query += " ORDER BY l.created_at DESC"
	}

	query += " LIMIT ? OFFSET ?"
	offset := (filter.Page - 1) * filter.Limit
	params = append(params, filter.Limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Listing
		var imagesJSON []byte
		var likedStr string
		err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.BedCount, &s.BathCount, &s.Price, &s.Address, &s.DistanceMiles,
			&s.StartDate, &s.EndDate, &imagesJSON, &s.UserID, &likedStr, &s.CreatedAt)
		if err != nil {
			return nil, 0, 0, err
		}
		if len(imagesJSON) > 0 {
			if err := json.Unmarshal(imagesJSON, &s.ImagePaths); err != nil {
				return nil, 0, 0, fmt.Errorf("failed to decode image paths json: %w", err)
			}
		}
		s.Liked = likedStr == "1"
		listings = append(listings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	var minPrice, maxPrice sql.NullFloat64
	err = r.DB.QueryRowContext(ctx, `SELECT MIN(price), MAX(price) FROM listings WHERE archived = FALSE`).Scan(&minPrice, &maxPrice)
	if err != nil {
		return nil, 0, 0, err
	}

	return listings, minPrice.Float64, maxPrice.Float64, nil
}

func (r *ListingRepository) GetListingsByUserID(ctx context.Context, userID int, includeArchived bool) ([]models.Listing, error) {
	query := `
        SELECT id, title, description, bed_count, bath_count, price, address, distance_miles,
               start_date, end_date, image_paths, user_id, archived, created_at
        FROM listings
        WHERE user_id = ?
    `
	if !includeArchived {
		query += " AND archived = FALSE"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var s models.Listing
		var imagesJSON []byte
		err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.BedCount, &s.BathCount, &s.Price, &s.Address, &s.DistanceMiles,
			&s.StartDate, &s.EndDate, &imagesJSON, &s.UserID, &s.Archived, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		if len(imagesJSON) > 0 {
			if err := json.Unmarshal(imagesJSON, &s.ImagePaths); err != nil {
				return nil, fmt.Errorf("failed to decode image paths json: %w", err)
			}
		}
		listings = append(listings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listings rows error: %w", err)
	}
	return listings, nil
}
