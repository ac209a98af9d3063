package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"concertly/internal/shared/config"
	"concertly/pkg/logger"
)

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	VerifyGoogleToken(ctx context.Context, token string) (*GoogleVerificationResponse, error)
	EnsureDefaultAdmin(ctx context.Context, username, password string) error
}

type service struct {
	repo Repository
	cfg  *config.Config
	log  *logger.Logger
}

func NewService(repo Repository, cfg *config.Config, log *logger.Logger) Service {
	return &service{repo: repo, cfg: cfg, log: log}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.JWT.ExpiresIn)
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"type":     "access",
		"iat":      time.Now().Unix(),
		"exp":      expiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Role:      user.Role,
	}, nil
}

// VerifyGoogleToken is demo-grade: it accepts any plausible-looking token.
// A production deployment would call Google's tokeninfo endpoint with the
// configured client ID.
func (s *service) VerifyGoogleToken(ctx context.Context, token string) (*GoogleVerificationResponse, error) {
	if len(token) <= 10 {
		return nil, ErrInvalidGoogleToken
	}
	return &GoogleVerificationResponse{Verified: true}, nil
}

// EnsureDefaultAdmin creates the admin account if it does not exist yet.
func (s *service) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Create(ctx, &AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
	})
}
