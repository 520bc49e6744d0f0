package docstore

import "errors"

// Sentinel errors for document store operations.
var (
	ErrNotFound   = errors.New("docstore: document not found")
	ErrInvalidKey = errors.New("docstore: invalid collection or id")
	ErrNotObject  = errors.New("docstore: document must encode to a JSON object")
	ErrClosed     = errors.New("docstore: store closed")
	ErrDriver     = errors.New("docstore: unknown driver")
)
