package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"authgate/cmd/identity"
	"authgate/cmd/internal/auth/account"
	"authgate/cmd/internal/auth/session"
)

// Accounts is the workflow the handler drives. *account.Service implements it.
type Accounts interface {
	Register(ctx context.Context, in account.RegisterInput) (identity.Credential, error)
	Login(ctx context.Context, username, password string) (account.LoginResult, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	DeleteAccount(ctx context.Context, username, password string) error
}

// Handler wires the form endpoints to the account workflow.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	accounts Accounts
	sessCfg  session.Config
	ops      *prometheus.CounterVec
}

// HandlerOption configures optional auth handler dependencies.
type HandlerOption func(*Handler)

// WithMetrics counts operations by outcome on reg.
func WithMetrics(reg prometheus.Registerer) HandlerOption {
	return func(h *Handler) {
		if h == nil || reg == nil {
			return
		}
		h.ops = newOperationsCounter(reg)
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, accounts Accounts, sessCfg session.Config, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if accounts == nil {
		return nil, errors.New("auth: nil account service")
	}
	if log == nil {
		log = slog.Default()
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		sessCfg:  sessCfg,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/cadastro", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/editar_senha", h.handleChangePassword)
	mux.HandleFunc("/excluir", h.handleDeleteAccount)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := parseForm(w, r, h.cfg.maxBodyBytes()); err != nil {
		h.fail(w, r, registerSurface, "", err)
		return
	}

	in := account.RegisterInput{
		DisplayName: formValue(r, "nome"),
		Username:    formValue(r, "username"),
		Password:    formValue(r, "password"),
	}
	c, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, registerSurface, in.Username, err)
		return
	}
	h.succeed(r, registerSurface, c.Username)

	loginPage := h.loginPage()
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, registerResponse{User: toUserResponse(c), Redirect: loginPage})
		return
	}
	http.Redirect(w, r, loginPage, http.StatusFound)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := parseForm(w, r, h.cfg.maxBodyBytes()); err != nil {
		h.fail(w, r, loginSurface, "", err)
		return
	}

	username := formValue(r, "username")
	res, err := h.accounts.Login(r.Context(), username, formValue(r, "password"))
	if err != nil {
		h.fail(w, r, loginSurface, username, err)
		return
	}
	h.succeed(r, loginSurface, res.Credential.Username)

	h.sessCfg.SetCookie(w, res.Session)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, loginResponse{
			User:      toUserResponse(res.Credential),
			ExpiresAt: res.Session.ExpiresAt,
			Redirect:  h.sessCfg.RedirectURL,
		})
		return
	}
	http.Redirect(w, r, h.sessCfg.RedirectURL, http.StatusFound)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	h.sessCfg.ClearCookie(w)
	h.count("logout", "success")
	h.audit(r.Context(), r, "auth.logout", "", "success")

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "logged_out", Redirect: h.loginPage()})
		return
	}
	http.Redirect(w, r, h.loginPage(), http.StatusFound)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := parseForm(w, r, h.cfg.maxBodyBytes()); err != nil {
		h.fail(w, r, changePasswordSurface, "", err)
		return
	}

	username := formValue(r, "username")
	err := h.accounts.ChangePassword(r.Context(), username, formValue(r, "old_password"), formValue(r, "new_password"))
	if err != nil {
		h.fail(w, r, changePasswordSurface, username, err)
		return
	}
	h.succeed(r, changePasswordSurface, username)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "password_changed", Redirect: "login.html"})
		return
	}
	h.writeHTML(w, r, http.StatusOK, messageFragment("Password changed successfully!", "login.html", "Log in"))
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if err := parseForm(w, r, h.cfg.maxBodyBytes()); err != nil {
		h.fail(w, r, deleteAccountSurface, "", err)
		return
	}

	username := formValue(r, "username")
	if err := h.accounts.DeleteAccount(r.Context(), username, formValue(r, "password")); err != nil {
		h.fail(w, r, deleteAccountSurface, username, err)
		return
	}
	h.succeed(r, deleteAccountSurface, username)

	h.sessCfg.ClearCookie(w)
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "deleted", Redirect: "cadastro.html"})
		return
	}
	h.writeHTML(w, r, http.StatusOK, messageFragment("Account deleted.", "cadastro.html", "New registration"))
}

// ---- outcome plumbing ----

func (h *Handler) succeed(r *http.Request, s surface, username string) {
	h.count(s.op, "success")
	h.audit(r.Context(), r, "auth."+s.op, username, "success")
}

// fail renders err in the representation the client asked for.
// Server-side kinds are logged with their cause; client kinds only audited.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, s surface, username string, err error) {
	status := statusFor(err)
	code := errorCode(err)

	h.count(s.op, code)
	h.audit(r.Context(), r, "auth."+s.op, username, code)
	if status >= http.StatusInternalServerError {
		h.log.Error("auth."+s.op+".fail", "err", err, "code", code)
	}

	msg := s.message(err)
	if status == http.StatusRequestEntityTooLarge {
		msg = "Error: request too large."
	}
	if wantsJSON(r) {
		writeError(w, status, code, msg)
		return
	}
	h.writeHTML(w, r, status, messageFragment(msg, s.href, s.linkText))
}

func (h *Handler) loginPage() string {
	if p := strings.TrimSpace(h.sessCfg.LoginPage); p != "" {
		return p
	}
	return "/login.html"
}
