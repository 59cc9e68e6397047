package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Request bodies, in the backend's field naming.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by /login and /register.
type AuthResponse struct {
	User      BackendUser `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type,omitempty"`

	// Some deployments name the refresh token in camelCase.
	RefreshToken      string `json:"refresh_token,omitempty"`
	RefreshTokenCamel string `json:"refreshToken,omitempty"`
}

// Refresh returns whichever refresh token field the backend populated.
func (r *AuthResponse) Refresh() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.RefreshTokenCamel
}

type refreshResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// BackendUser is the user record as the backend sends it. Timestamps may
// arrive in snake_case or camelCase; services.NormalizeUser reconciles them.
type BackendUser struct {
	ID        FlexibleID `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`

	EmailVerifiedAt      *string `json:"email_verified_at,omitempty"`
	EmailVerifiedAtCamel *string `json:"emailVerifiedAt,omitempty"`
	CreatedAt            string  `json:"created_at,omitempty"`
	CreatedAtCamel       string  `json:"createdAt,omitempty"`
	UpdatedAt            string  `json:"updated_at,omitempty"`
	UpdatedAtCamel       string  `json:"updatedAt,omitempty"`
}

// FlexibleID accepts a JSON string or number and keeps it as a string.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// errorEnvelope is the backend's error body.
type errorEnvelope struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}
