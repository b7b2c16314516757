package service

import "errors"

var (
	ErrMissingToken      = errors.New("missing authorization token")
	ErrInvalidToken      = errors.New("invalid authorization token")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInvalidAccount    = errors.New("invalid account_id")
	ErrInvalidInsight    = errors.New("invalid insight_id")
	ErrDuplicateFeedback = errors.New("feedback already submitted for this insight")
	ErrEmptyContent      = errors.New("content must not be empty")
)
