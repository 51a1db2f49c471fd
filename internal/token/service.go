package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shopzone/ecommerce-api/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Identity is what a verified bearer token resolves to.
type Identity struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// Service mints and verifies HS256 access tokens. Each token carries a
// jti claim so signout can put it on the revocation list without keeping
// server-side session state.
type Service struct {
	Secret     []byte
	TTL        time.Duration
	Revocation RevocationList
}

func (s *Service) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(s.TTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.Secret)
}

func (s *Service) Verify(ctx context.Context, raw string) (*Identity, error) {
	t, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.Secret, nil
	})
	if err != nil || !t.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, okSub := claims["sub"].(float64)
	jti, okJti := claims["jti"].(string)
	exp, okExp := claims["exp"].(float64)
	if !okSub || !okJti || !okExp {
		return nil, ErrInvalidToken
	}

	revoked, err := s.Revocation.IsRevoked(ctx, jti)
	if err != nil {
		return nil, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return &Identity{
		UserID:    uint(sub),
		TokenID:   jti,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// Invalidate revokes a token for the remainder of its lifetime. The TTL on
// the revocation entry matches the token expiry, so the list never holds
// entries for tokens that could no longer verify anyway.
func (s *Service) Invalidate(ctx context.Context, raw string) error {
	id, err := s.Verify(ctx, raw)
	if err != nil {
		return err
	}
	ttl := time.Until(id.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.Revocation.Revoke(ctx, id.TokenID, ttl)
}
