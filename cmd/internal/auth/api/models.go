package authapi

import (
	"time"

	"authgate/cmd/identity"
)

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"nome"`
	CreatedAt   time.Time `json:"created_at"`
}

type registerResponse struct {
	User     userResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
	Redirect  string       `json:"redirect"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Redirect string `json:"redirect,omitempty"`
}

func toUserResponse(c identity.Credential) userResponse {
	return userResponse{
		ID:          c.ID,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		CreatedAt:   c.CreatedAt,
	}
}
