package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gasdepot/config"
	"gasdepot/internal/auth"
	"gasdepot/internal/domain"
	"gasdepot/internal/models"
	"gasdepot/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCreds = errors.New("invalid email or password")

type AuthService struct {
	cfg       *config.JWTConfig
	adminRepo *repository.AdminRepository
}

func NewAuthService(cfg *config.JWTConfig, adminRepo *repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

// Login checks an admin's password and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Admin, string, time.Time, error) {
	a, err := s.adminRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, "", time.Time{}, ErrInvalidCreds
		}
		return nil, "", time.Time{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCreds
	}
	token, expires, err := auth.GenerateAccessToken(s.cfg, a.ID, a.Email, domain.RoleAdmin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return a, token, expires, nil
}
