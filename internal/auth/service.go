package auth

import (
	"context"
	"errors"
	"time"

	"github.com/soulscribe/soulscribe/internal/config"
	"github.com/soulscribe/soulscribe/internal/identity"
)

// Service issues and refreshes bearer tokens for authenticated users.
type Service struct {
	cfg    config.Config
	idRepo identity.Repository
}

// NewService builds the token service.
func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{cfg: cfg, idRepo: idRepo}
}

// TokenPair bundles an access/refresh token set.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues a token pair for an already-authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, accessExp, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(accessExp).Seconds()),
	}, nil
}

func (s *Service) sign(user identity.User, secret string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := map[string]any{
		"sub":   user.ID,
		"email": user.Email,
		"ver":   user.TokenVersion,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := SignHS256(claims, []byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Refresh verifies the refresh token and returns a new access token if valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := ParseAndVerifyHS256(refreshToken, []byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", 0, errors.New("invalid refresh token")
	}
	if exp, ok := claims["exp"].(float64); !ok || time.Now().Unix() >= int64(exp) {
		return "", 0, errors.New("refresh token expired")
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)
	ver := int(verFloat)

	user, err := s.idRepo.FindByID(ctx, sub)
	if err != nil {
		return "", 0, errors.New("user not found")
	}
	if user.TokenVersion != ver {
		return "", 0, errors.New("token version invalidated")
	}

	signed, _, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return signed, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.idRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return s.idRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
}
