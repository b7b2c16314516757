package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"journeylens/internal/model"
)

// StreamTicketTTL bounds how long a WebSocket ticket can be redeemed.
const StreamTicketTTL = time.Minute

// AuthService checks the static API bearer token and issues short-lived
// stream tickets so the token itself never travels in a URL.
type AuthService struct {
	token []byte
	now   func() time.Time
}

func NewAuthService(token string) *AuthService {
	return &AuthService{
		token: []byte(token),
		now:   time.Now,
	}
}

// CheckToken compares a presented bearer token with the configured one.
func (s *AuthService) CheckToken(token string) error {
	if token == "" {
		return ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(token), s.token) != 1 {
		return ErrInvalidToken
	}
	return nil
}

// IssueStreamTicket signs a ticket for the live feed. accountID 0 means all
// accounts.
func (s *AuthService) IssueStreamTicket(accountID int64) (*model.StreamTicket, error) {
	now := s.now()
	expires := now.Add(StreamTicketTTL)
	claims := &model.StreamClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.token)
	if err != nil {
		return nil, fmt.Errorf("sign stream ticket: %w", err)
	}
	return &model.StreamTicket{
		Ticket:    signed,
		AccountID: accountID,
		ExpiresAt: expires.UTC(),
	}, nil
}

// ValidateStreamTicket verifies a ticket and returns its claims.
func (s *AuthService) ValidateStreamTicket(ticket string) (*model.StreamClaims, error) {
	if ticket == "" {
		return nil, ErrMissingToken
	}
	claims := &model.StreamClaims{}
	_, err := jwt.ParseWithClaims(ticket, claims,
		func(*jwt.Token) (any, error) { return s.token, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}
