package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"authgate/cmd/security/token"
)

// Claims is the token payload. The custom claim names are read by downstream
// services and must not change.
type Claims struct {
	UserID      string `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"nome"`
	jwt.RegisteredClaims
}

// Subject identifies whom a token is issued for.
type Subject struct {
	ID          string
	Username    string
	DisplayName string
}

// Issued is the result of issuing a session token.
type Issued struct {
	Token     string
	ExpiresAt time.Time
}

// Issuer signs session tokens.
type Issuer struct {
	issuer string
	ttl    time.Duration
	signer *token.Signer
}

// NewIssuer builds an Issuer from cfg. It fails with ErrConfig on a bad secret or TTL.
func NewIssuer(cfg Config) (*Issuer, error) {
	if cfg.TTL <= 0 {
		return nil, ErrConfig
	}
	signer, err := token.NewSigner(cfg.Secret)
	if err != nil {
		return nil, ErrConfig
	}
	return &Issuer{issuer: cfg.Issuer, ttl: cfg.TTL, signer: signer}, nil
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for sub valid from now until now+TTL.
func (i *Issuer) Issue(sub Subject, now time.Time) (Issued, error) {
	if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.Username) == "" {
		return Issued{}, ErrInvalidSubject
	}
	if now.IsZero() {
		now = time.Now()
	}
	// JWT NumericDate has second precision.
	now = now.UTC().Truncate(time.Second)
	exp := now.Add(i.ttl)

	claims := Claims{
		UserID:      sub.ID,
		Username:    sub.Username,
		DisplayName: sub.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   sub.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Token: signed, ExpiresAt: exp}, nil
}
