package authapi

import (
	"errors"
	"net/http"
	"strings"

	"authgate/cmd/internal/auth/account"
)

// parseForm reads an urlencoded or multipart body bounded by maxBytes.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	const op = "authapi.parseForm"

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	var err error
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return &account.OpError{Op: op, Kind: account.ErrMalformedInput, Msg: "invalid form body", Err: err}
	}
	return nil
}

// formValue returns the body field only; query parameters never carry credentials.
func formValue(r *http.Request, key string) string {
	if r.PostForm == nil {
		return ""
	}
	return r.PostForm.Get(key)
}

// allowMethod answers 405 with an Allow header when r.Method is not listed.
func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	if wantsJSON(r) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return false
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	return false
}

// statusFor maps an outcome to its HTTP status.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	switch account.KindOf(err) {
	case account.ErrDuplicateUsername:
		return http.StatusConflict
	case account.ErrInvalidCredentials:
		return http.StatusUnauthorized
	case account.ErrMalformedInput:
		return http.StatusBadRequest
	case account.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return "request_too_large"
	}
	return account.Code(err)
}
