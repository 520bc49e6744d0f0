package service

import (
	"errors"

	"github.com/okian/fest/internal/adapters/docstore"
	"github.com/okian/fest/internal/adapters/repository"
)

// Sentinel errors returned by Service operations. The HTTP layer maps them
// to status codes.
var (
	ErrNotFound           = docstore.ErrNotFound
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEvent     = errors.New("an event with this name already exists")
	ErrConfirmRequired    = errors.New("this placing is already awarded for the event")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrUploadUnavailable  = errors.New("image upload is not configured")
	ErrInvalidLimit       = repository.ErrInvalidLimit
)
