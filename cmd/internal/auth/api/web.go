package authapi

//go:generate templ generate -f message.templ

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"authgate/cmd/internal/auth/account"
)

// surface describes how one form endpoint presents its failures.
type surface struct {
	op       string
	href     string
	linkText string
	// detail shows the validation message for malformed input.
	detail   bool
	messages map[error]string
}

var (
	registerSurface = surface{
		op:       "register",
		href:     "cadastro.html",
		linkText: "Try again",
		detail:   true,
		messages: map[error]string{
			account.ErrDuplicateUsername: "Error: username already exists!",
			account.ErrStoreUnavailable:  "Error registering: the service is temporarily unavailable.",
			account.ErrInternal:          "Error registering.",
		},
	}
	loginSurface = surface{
		op:       "login",
		href:     "login.html",
		linkText: "Back",
		messages: map[error]string{
			account.ErrInvalidCredentials: loginFailedMessage,
			account.ErrMalformedInput:     loginFailedMessage,
			account.ErrStoreUnavailable:   "Login is temporarily unavailable.",
			account.ErrInternal:           "Login failed.",
		},
	}
	changePasswordSurface = surface{
		op:       "change_password",
		href:     "editar_senha.html",
		linkText: "Back",
		detail:   true,
		messages: map[error]string{
			account.ErrInvalidCredentials: "Current password is incorrect.",
			account.ErrStoreUnavailable:   "Password change is temporarily unavailable.",
			account.ErrInternal:           "Password change failed.",
		},
	}
	deleteAccountSurface = surface{
		op:       "delete_account",
		href:     "excluir.html",
		linkText: "Back",
		detail:   true,
		messages: map[error]string{
			account.ErrInvalidCredentials: "Incorrect password.",
			account.ErrStoreUnavailable:   "Account deletion is temporarily unavailable.",
			account.ErrInternal:           "Account deletion failed.",
		},
	}
)

const loginFailedMessage = "Incorrect username or password."

func (s surface) message(err error) string {
	kind := account.KindOf(err)
	if kind == account.ErrMalformedInput && s.detail {
		var oe *account.OpError
		if errors.As(err, &oe) && oe.Msg != "" {
			return "Error: " + oe.Msg + "."
		}
		return "Error: missing or invalid fields."
	}
	if m, ok := s.messages[kind]; ok {
		return m
	}
	return s.messages[account.ErrInternal]
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.log.Error("http.render.fail", "err", err, "path", r.URL.Path)
	}
}
