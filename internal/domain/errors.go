package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("not configured")
	ErrInvalidQuery  = errors.New("invalid query")
	ErrUpstream      = errors.New("upstream unavailable")
)
