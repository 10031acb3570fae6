package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shebloom/shebloom/internal/config"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTokenInvalid indicates a token that failed verification or whose
	// version was invalidated by a logout.
	ErrTokenInvalid = errors.New("token invalid")
)

// Service manages account lifecycle and token issuance.
type Service struct {
	cfg  config.Config
	repo Repository
}

// NewService creates a new account service.
func NewService(cfg config.Config, repo Repository) *Service {
	return &Service{cfg: cfg, repo: repo}
}

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates an account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, creds Credentials) (Account, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, errors.New("a valid email is required")
	}
	if len(creds.Password) < 8 {
		return Account{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}

	acc := Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(creds.Name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, acc); err != nil {
		return Account{}, err
	}
	return acc, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *Service) Login(ctx context.Context, creds Credentials) (Account, TokenPair, error) {
	acc, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(creds.Email)))
	if err != nil {
		return Account{}, TokenPair{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(creds.Password)); err != nil {
		return Account{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(acc)
	if err != nil {
		return Account{}, TokenPair{}, err
	}
	if err := s.repo.TouchLastLogin(ctx, acc.ID); err != nil {
		return Account{}, TokenPair{}, err
	}
	return acc, pair, nil
}

// Refresh verifies the refresh token and returns a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	sub, ver, err := s.Verify(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, ErrTokenInvalid
	}

	acc, err := s.repo.FindByID(ctx, sub)
	if err != nil || acc.TokenVersion != ver {
		return "", 0, ErrTokenInvalid
	}

	access, err := s.sign(acc, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Logout increments token version so previously issued tokens become invalid.
func (s *Service) Logout(ctx context.Context, accountID string) error {
	acc, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	return s.repo.UpdateTokenVersion(ctx, acc.ID, acc.TokenVersion+1)
}

// Verify parses a token with the given secret and returns subject and token
// version.
func (s *Service) Verify(tokenStr, secret string) (string, int, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", 0, ErrTokenInvalid
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	verFloat, _ := claims["ver"].(float64)
	if sub == "" {
		return "", 0, ErrTokenInvalid
	}
	return sub, int(verFloat), nil
}

func (s *Service) issueTokens(acc Account) (TokenPair, error) {
	access, err := s.sign(acc, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(acc, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) sign(acc Account, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.ID,
		"email": acc.Email,
		"ver":   acc.TokenVersion,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
