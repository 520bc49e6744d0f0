package api

import "errors"

// Sentinel kinds for API errors. Auth failures carry the exact text clients
// show to users.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrRateLimited  = errors.New("too many attempts, try again later")
	ErrMaintenance  = errors.New("site is under maintenance")
	ErrInProgress   = errors.New("a request with this idempotency key is still running")
	ErrTooLarge     = errors.New("request body too large")
	ErrInternal     = errors.New("internal error")
)

// MsgUnreachable is shown by clients when the server cannot be reached.
const MsgUnreachable = "unable to reach the server, check your connection"

// Error records the operation that failed, an optional sentinel kind and the
// underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Wrap attaches op to err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind builds an error of kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}
