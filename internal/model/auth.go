package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// StreamClaims are JWT claims for a live-feed ticket
type StreamClaims struct {
	AccountID int64 `json:"accountId"` // 0 = every account
	jwt.RegisteredClaims
}

// StreamTicket is returned by POST /ws/ticket
type StreamTicket struct {
	Ticket    string    `json:"ticket"`
	AccountID int64     `json:"account_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
