package repository

import "errors"

// Sentinel kinds for standings errors.
var (
	ErrNotFound     = errors.New("not found in standings")
	ErrInvalidLimit = errors.New("invalid standings limit")
)
