package account

import (
	"errors"
	"fmt"

	"authgate/cmd/identity"
)

// Error kinds. Check with errors.Is.
var (
	ErrDuplicateUsername  = errors.New("duplicate username")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedInput     = errors.New("malformed input")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrInternal           = errors.New("internal error")
)

// OpError is the error type returned by every Service operation.
// Msg is safe to show to end users; Err is not.
type OpError struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e *OpError) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the sentinel kind carried by err, or ErrInternal.
func KindOf(err error) error {
	for _, k := range []error{
		ErrDuplicateUsername,
		ErrInvalidCredentials,
		ErrMalformedInput,
		ErrStoreUnavailable,
		ErrInternal,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// Code is the stable machine-readable name of err's kind.
func Code(err error) string {
	switch KindOf(err) {
	case ErrDuplicateUsername:
		return "duplicate_username"
	case ErrInvalidCredentials:
		return "invalid_credentials"
	case ErrMalformedInput:
		return "malformed_input"
	case ErrStoreUnavailable:
		return "store_unavailable"
	default:
		return "internal_error"
	}
}

func opErr(op string, kind error, msg string, err error) *OpError {
	return &OpError{Op: op, Kind: kind, Msg: msg, Err: err}
}

func malformed(op, format string, args ...any) *OpError {
	return opErr(op, ErrMalformedInput, fmt.Sprintf(format, args...), nil)
}

// fromStore maps identity failures onto workflow kinds. Only a username
// conflict is a duplicate; any other conflict or unclassified failure is
// internal.
func fromStore(op string, err error) *OpError {
	switch {
	case identity.IsConflict(err):
		var ce identity.ConflictError
		if errors.As(err, &ce) && ce.Field == "username" {
			return opErr(op, ErrDuplicateUsername, "username already exists", err)
		}
		return opErr(op, ErrInternal, "", err)
	case identity.IsNotFound(err):
		return opErr(op, ErrInvalidCredentials, "", err)
	case identity.IsInvalidInput(err):
		return opErr(op, ErrMalformedInput, "", err)
	case identity.IsUnavailable(err):
		return opErr(op, ErrStoreUnavailable, "", err)
	default:
		return opErr(op, ErrInternal, "", err)
	}
}
