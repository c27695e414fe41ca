package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"authgate/cmd/identity"
	"authgate/cmd/internal/auth/session"
	"authgate/cmd/security/password"
)

// Hasher is the subset of *password.Hasher used by Service.
type Hasher interface {
	Validate(password string) error
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encodedHash, password string) (bool, error)
}

// TokenIssuer is the subset of *session.Issuer used by Service.
type TokenIssuer interface {
	Issue(sub session.Subject, now time.Time) (session.Issued, error)
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	DisplayName string
	Username    string
	Password    string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Credential identity.Credential
	Session    session.Issued
}

// Service runs the credential workflows against an injected Store.
type Service struct {
	store  identity.Store
	hasher Hasher
	issuer TokenIssuer
	now    func() time.Time
	tracer trace.Tracer

	// dummyHash is verified when a login names an unknown user, so both
	// failure paths cost one hash verification.
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTracer records a span per workflow call on tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

const dummyPassword = "authgate-timing-equalizer-password"

// NewService wires a Service. It computes the timing dummy hash up front.
func NewService(ctx context.Context, store identity.Store, hasher Hasher, issuer TokenIssuer, opts ...Option) (*Service, error) {
	if store == nil || hasher == nil || issuer == nil {
		return nil, errors.New("account: nil dependency")
	}
	s := &Service{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		now:    time.Now,
		tracer: noop.NewTracerProvider().Tracer("authgate/account"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	// A policy that rejects the dummy only disables the equalizer.
	if h, err := hasher.Hash(ctx, dummyPassword); err == nil {
		s.dummyHash = h
	} else if !password.IsPolicyViolation(err) {
		return nil, err
	}
	return s, nil
}

// Register creates a Credential. The pre-check gives a friendly duplicate
// error; the store's unique constraint catches the race.
func (s *Service) Register(ctx context.Context, in RegisterInput) (identity.Credential, error) {
	ctx, finish := s.startSpan(ctx, "account.Register")
	c, err := s.register(ctx, in)
	finish(err)
	return c, err
}

func (s *Service) register(ctx context.Context, in RegisterInput) (identity.Credential, error) {
	const op = "account.Register"

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return identity.Credential{}, malformed(op, "username is required")
	}
	if in.Password == "" {
		return identity.Credential{}, malformed(op, "password is required")
	}
	if err := s.hasher.Validate(in.Password); err != nil {
		return identity.Credential{}, opErr(op, ErrMalformedInput, policyMessage(err), err)
	}

	_, err := s.store.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return identity.Credential{}, opErr(op, ErrDuplicateUsername, "username already exists", nil)
	case !identity.IsNotFound(err):
		return identity.Credential{}, fromStore(op, err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return identity.Credential{}, hashFailure(op, err)
	}

	c, err := s.store.Create(ctx, identity.CreateCredentialInput{
		DisplayName:  in.DisplayName,
		Username:     username,
		PasswordHash: hash,
		Now:          s.now(),
	})
	if err != nil {
		return identity.Credential{}, fromStore(op, err)
	}
	return c, nil
}

// Login checks credentials and issues a session token. An unknown user and a
// wrong password produce the same error.
func (s *Service) Login(ctx context.Context, username, pw string) (LoginResult, error) {
	ctx, finish := s.startSpan(ctx, "account.Login")
	res, err := s.login(ctx, username, pw)
	finish(err)
	return res, err
}

func (s *Service) login(ctx context.Context, username, pw string) (LoginResult, error) {
	const op = "account.Login"

	if strings.TrimSpace(username) == "" || pw == "" {
		return LoginResult{}, malformed(op, "username and password are required")
	}

	c, err := s.authenticate(ctx, op, username, pw)
	if err != nil {
		return LoginResult{}, err
	}

	issued, err := s.issuer.Issue(session.Subject{
		ID:          c.ID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
	}, s.now())
	if err != nil {
		return LoginResult{}, opErr(op, ErrInternal, "", err)
	}
	return LoginResult{Credential: c, Session: issued}, nil
}

// ChangePassword replaces the stored hash after verifying oldPassword.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	ctx, finish := s.startSpan(ctx, "account.ChangePassword")
	err := s.changePassword(ctx, username, oldPassword, newPassword)
	finish(err)
	return err
}

func (s *Service) changePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	const op = "account.ChangePassword"

	if strings.TrimSpace(username) == "" || oldPassword == "" || newPassword == "" {
		return malformed(op, "username, current password and new password are required")
	}
	if err := s.hasher.Validate(newPassword); err != nil {
		return opErr(op, ErrMalformedInput, policyMessage(err), err)
	}

	c, err := s.authenticate(ctx, op, username, oldPassword)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return hashFailure(op, err)
	}
	if err := s.store.UpdatePasswordHash(ctx, c.ID, hash, s.now()); err != nil {
		return fromStore(op, err)
	}
	return nil
}

// DeleteAccount removes the Credential after verifying pw. An unknown user is
// ErrInvalidCredentials; a row removed concurrently after verification counts
// as success.
func (s *Service) DeleteAccount(ctx context.Context, username, pw string) error {
	ctx, finish := s.startSpan(ctx, "account.DeleteAccount")
	err := s.deleteAccount(ctx, username, pw)
	finish(err)
	return err
}

func (s *Service) deleteAccount(ctx context.Context, username, pw string) error {
	const op = "account.DeleteAccount"

	if strings.TrimSpace(username) == "" || pw == "" {
		return malformed(op, "username and password are required")
	}

	c, err := s.authenticate(ctx, op, username, pw)
	if err != nil {
		return err
	}

	if err := s.store.DeleteByUsername(ctx, c.Username); err != nil {
		if identity.IsNotFound(err) {
			return nil
		}
		return fromStore(op, err)
	}
	return nil
}

// startSpan opens a span for op. The returned func ends it and tags failures
// with their error code; usernames and passwords are never attached.
func (s *Service) startSpan(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, op)
	return ctx, func(err error) {
		if err != nil {
			code := Code(err)
			span.SetAttributes(attribute.String("account.error_code", code))
			span.SetStatus(codes.Error, code)
		}
		span.End()
	}
}

// authenticate loads the credential and verifies pw against it.
func (s *Service) authenticate(ctx context.Context, op, username, pw string) (identity.Credential, error) {
	c, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if identity.IsNotFound(err) {
			s.equalize(ctx, pw)
			return identity.Credential{}, opErr(op, ErrInvalidCredentials, "", nil)
		}
		return identity.Credential{}, fromStore(op, err)
	}

	ok, err := s.hasher.Verify(ctx, c.PasswordHash, pw)
	if err != nil {
		if errors.Is(err, password.ErrInvalidHash) {
			// A corrupt stored hash fails closed like a wrong password.
			return identity.Credential{}, opErr(op, ErrInvalidCredentials, "", err)
		}
		return identity.Credential{}, hashFailure(op, err)
	}
	if !ok {
		return identity.Credential{}, opErr(op, ErrInvalidCredentials, "", nil)
	}
	return c, nil
}

func (s *Service) equalize(ctx context.Context, pw string) {
	if s.dummyHash == "" {
		return
	}
	_, _ = s.hasher.Verify(ctx, s.dummyHash, pw)
}

// hashFailure classifies a Hasher error. Context errors mean the caller gave
// up while waiting for a hashing slot.
func hashFailure(op string, err error) *OpError {
	if password.IsPolicyViolation(err) {
		return opErr(op, ErrMalformedInput, policyMessage(err), err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return opErr(op, ErrStoreUnavailable, "request canceled", err)
	}
	return opErr(op, ErrInternal, "", err)
}

func policyMessage(err error) string {
	switch {
	case errors.Is(err, password.ErrPasswordTooShort):
		return "password is too short"
	case errors.Is(err, password.ErrPasswordTooLong):
		return "password is too long"
	case errors.Is(err, password.ErrWeakPassword):
		return "password is too weak"
	default:
		return "password does not meet the policy"
	}
}
