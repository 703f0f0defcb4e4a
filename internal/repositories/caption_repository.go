package repositories

import (
	"context"
	"database/sql"
	"strings"

	"bunkmate/internal/models"
)

type CaptionRepository struct {
	DB *sql.DB
}

func (r *CaptionRepository) InsertCaptions(ctx context.Context, userID int, captions map[string]string) error {
	if len(captions) == 0 {
		return nil
	}
	query := `INSERT INTO photo_captions (user_id, image_path, caption) VALUES (?, ?, ?)`
	for path, caption := range captions {
		if caption == "" {
			continue
		}
		if _, err := r.DB.ExecContext(ctx, query, userID, path, caption); err != nil {
			return err
		}
	}
	return nil
}

func (r *CaptionRepository) DeleteByPaths(ctx context.Context, userID int, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(paths)), ",")
	query := `DELETE FROM photo_captions WHERE user_id = ? AND image_path IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(paths)+1)
	args = append(args, userID)
	for _, p := range paths {
		args = append(args, p)
	}
	_, err := r.DB.ExecContext(ctx, query, args...)
	return err
}

func (r *CaptionRepository) GetByPaths(ctx context.Context, userID int, paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(paths)), ",")
	query := `SELECT image_path, caption FROM photo_captions WHERE user_id = ? AND image_path IN (` + placeholders + `)`

	args := make([]interface{}, 0, len(paths)+1)
	args = append(args, userID)
	for _, p := range paths {
		args = append(args, p)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	captions := make(map[string]string)
	for rows.Next() {
		var c models.PhotoCaption
		if err := rows.Scan(&c.ImagePath, &c.Caption); err != nil {
			return nil, err
		}
		captions[c.ImagePath] = c.Caption
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return captions, nil
}
