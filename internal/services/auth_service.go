// internal/services/auth_service.go
package services

import (
	"errors"

	"github.com/skytunes/skytunes-backend/internal/config"
	"github.com/skytunes/skytunes-backend/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues operator tokens for the admin dashboard. Credentials
// come from configuration; there is no user table, listeners and artists
// are identified by wallet only.
type AuthService struct {
	config *config.Config
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	if s.config.Admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if req.Username != s.config.Admin.Username {
		return nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(s.config.Admin.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(req.Username, "admin", s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     token,
		ExpiresIn: s.config.JWT.AccessTokenTTL * 3600,
	}, nil
}
