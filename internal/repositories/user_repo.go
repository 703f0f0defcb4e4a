package repositories

import (
	"context"
	"database/sql"
	"time"

	"bunkmate/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO users (name, email, phone, password, affiliation, role, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.DB.ExecContext(ctx, query, user.Name, user.Email, user.Phone, user.Password, user.Affiliation, user.Role, time.Now())
	if err != nil {
		return models.User{}, err
	}
	lastID, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(lastID)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	query := `SELECT id, name, email, phone, affiliation, role, created_at, updated_at FROM users WHERE id = ?`
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Affiliation, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetUserByEmail returns a zero user (not an error) when no row matches, so
// sign-up duplicate checks can test Email == "".
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `SELECT id, name, email, phone, password, affiliation, role FROM users WHERE email = ?`
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password, &u.Affiliation, &u.Role)
	if err == sql.ErrNoRows {
		return models.User{}, nil
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	query := `SELECT id, name, email, phone, password, affiliation, role FROM users WHERE phone = ?`
	var u models.User
	err := r.DB.QueryRowContext(ctx, query, phone).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Password, &u.Affiliation, &u.Role)
	if err == sql.ErrNoRows {
		return models.User{}, nil
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user models.User) error {
	query := `UPDATE users SET name = ?, phone = ?, affiliation = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, query, user.Name, user.Phone, user.Affiliation, time.Now(), user.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SaveSession(ctx context.Context, session models.Session) error {
	query := `INSERT INTO sessions (user_id, role, refresh_token, expires_at)
              VALUES (?, ?, ?, ?)
              ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)`
	_, err := r.DB.ExecContext(ctx, query, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	query := `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`
	var s models.Session
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(&s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return models.Session{}, nil
	}
	if err != nil {
		return models.Session{}, err
	}
	return s, nil
}

func (r *UserRepository) SaveFCMToken(ctx context.Context, token models.FCMToken) error {
	query := `INSERT INTO fcm_tokens (user_id, token) VALUES (?, ?)
              ON DUPLICATE KEY UPDATE token = VALUES(token)`
	_, err := r.DB.ExecContext(ctx, query, token.UserID, token.Token)
	return err
}

func (r *UserRepository) GetFCMTokensByUser(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM fcm_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
