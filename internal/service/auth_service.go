package service

import (
	"strings"

	"hotspot/config"
	"hotspot/internal/auth"
	"hotspot/internal/domain"
)

// AuthService signs in the single configured administrator.
type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

func (s *AuthService) Login(email, password string) (string, error) {
	admin := s.cfg.Admin
	if admin.Email == "" || !strings.EqualFold(strings.TrimSpace(email), admin.Email) {
		return "", auth.ErrInvalidCreds
	}
	if err := auth.CheckPassword(admin.PasswordHash, password); err != nil {
		return "", err
	}
	return auth.GenerateAccessToken(&s.cfg.JWT, admin.Email, admin.Email, domain.RoleAdmin)
}
