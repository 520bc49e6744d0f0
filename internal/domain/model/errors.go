package model

import "errors"

// Sentinel errors for model parsing.
var (
	ErrInvalidValue = errors.New("invalid value")
)
