// Package requestid carries the per-request correlation id.
package requestid

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the request/response header that carries the id.
const Header = "X-Request-ID"

type ctxKey struct{}

// New returns a fresh random id.
func New() string { return uuid.NewString() }

// With stores id on ctx.
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the id stored on ctx, or "".
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Sanitize accepts a client-supplied id only if it is short and printable.
// Anything else is replaced by a fresh id.
func Sanitize(in string) string {
	in = strings.TrimSpace(in)
	if in == "" || len(in) > 128 {
		return New()
	}
	for _, r := range in {
		if r < 0x21 || r > 0x7e {
			return New()
		}
	}
	return in
}
