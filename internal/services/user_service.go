package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"bunkmate/internal/models"
	"bunkmate/internal/repositories"
	"bunkmate/utils"
)

const tokenTTL = 120 * time.Minute

type UserService struct {
	UserRepo     *repositories.UserRepository
	TokenManager *utils.Manager
	SigningKey   string
}

func (s *UserService) SignUp(ctx context.Context, user models.User) (models.User, error) {
	existingByEmail, err := s.UserRepo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return models.User{}, err
	}
	if existingByEmail.Email != "" {
		return models.User{}, models.ErrDuplicateEmail
	}

	existingByPhone, err := s.UserRepo.GetUserByPhone(ctx, user.Phone)
	if err != nil {
		return models.User{}, err
	}
	if existingByPhone.Phone != "" {
		return models.User{}, models.ErrDuplicatePhone
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user.Password = string(hashedPassword)
	if user.Role == "" {
		user.Role = "user"
	}

	created, err := s.UserRepo.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	created.Password = ""
	return created, nil
}

func (s *UserService) SignIn(ctx context.Context, email, password string) (models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return models.Tokens{}, err
	}
	if user.Email == "" {
		log.Printf("User not found: %s", email)
		return models.Tokens{}, errors.New("user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("Invalid password for user: %s", email)
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		UserID: uint(user.ID),
		Role:   user.Role,
	})

	accessToken, err := token.SignedString([]byte(s.SigningKey))
	if err != nil {
		log.Printf("Error signing token: %v", err)
		return models.Tokens{}, err
	}

	refreshToken, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	session := models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(30 * 24 * time.Hour),
	}
	if err := s.UserRepo.SaveSession(ctx, session); err != nil {
		log.Printf("Error creating session: %v", err)
		return models.Tokens{}, err
	}

	return models.Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshTokens exchanges a live refresh token for a new token pair. The old
// session row is overwritten, so a stolen token stops working after one use.
func (s *UserService) RefreshTokens(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.UserRepo.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if session.UserID == 0 || time.Now().After(session.ExpiresAt) {
		return models.Tokens{}, models.ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
		UserID: uint(session.UserID),
		Role:   session.Role,
	})

	accessToken, err := token.SignedString([]byte(s.SigningKey))
	if err != nil {
		return models.Tokens{}, err
	}

	newRefresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}

	session.RefreshToken = newRefresh
	session.ExpiresAt = time.Now().Add(30 * 24 * time.Hour)
	if err := s.UserRepo.SaveSession(ctx, session); err != nil {
		return models.Tokens{}, err
	}

	return models.Tokens{AccessToken: accessToken, RefreshToken: newRefresh}, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (models.User, error) {
	return s.UserRepo.GetUserByID(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, user models.User) error {
	return s.UserRepo.UpdateUser(ctx, user)
}

func (s *UserService) RegisterFCMToken(ctx context.Context, token models.FCMToken) error {
	return s.UserRepo.SaveFCMToken(ctx, token)
}
