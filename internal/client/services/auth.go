// Package services contains application services for the client.
// This file defines the authentication service: login, registration and the
// password-reset flow, with client-side validation in front of every call and
// backend shapes normalized into models before they leave the package.
package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mobapp/internal/client/client"
	"github.com/dmitrijs2005/mobapp/internal/client/models"
	"github.com/dmitrijs2005/mobapp/internal/client/validation"
)

// AuthService defines the authentication operations the session store and
// the CLI use.
//
// Contract:
//   - Login / Register: validate the form, call the backend, return the
//     normalized user and tokens.
//   - RequestPasswordReset / ResetPassword: validate, call the backend, return
//     the backend's message.
//   - Logout: best-effort backend logout.
//   - Profile: the current user as the backend sees it.
//
// Validation failures are returned as validation.Errors and never reach the
// network. Backend and transport failures are *client.ApiError.
type AuthService interface {
	Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResult, error)
	Register(ctx context.Context, creds models.RegisterCredentials) (*models.AuthResult, error)
	RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error)
	ResetPassword(ctx context.Context, req models.PasswordResetConfirm) (string, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (*models.User, error)
}

type authService struct {
	client client.Client
}

// NewAuthService constructs an AuthService bound to the given API client.
func NewAuthService(c client.Client) AuthService {
	return &authService{client: c}
}

// Login validates creds and authenticates. RememberMe is not forwarded.
func (a *authService) Login(ctx context.Context, creds models.LoginCredentials) (*models.AuthResult, error) {
	if err := validation.Login(creds); err != nil {
		return nil, err
	}

	resp, err := a.client.Login(ctx, client.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, err
	}
	return authResult(resp)
}

// Register validates creds and creates the account. The backend takes a single
// name field, so first and last name are joined with a space.
func (a *authService) Register(ctx context.Context, creds models.RegisterCredentials) (*models.AuthResult, error) {
	if err := validation.Registration(creds); err != nil {
		return nil, err
	}

	resp, err := a.client.Register(ctx, client.RegisterRequest{
		Name:                 creds.FirstName + " " + creds.LastName,
		Email:                creds.Email,
		Password:             creds.Password,
		PasswordConfirmation: creds.PasswordConfirmation,
	})
	if err != nil {
		return nil, err
	}
	return authResult(resp)
}

func (a *authService) RequestPasswordReset(ctx context.Context, req models.PasswordResetRequest) (string, error) {
	if err := validation.PasswordResetRequest(req); err != nil {
		return "", err
	}

	resp, err := a.client.ForgotPassword(ctx, client.ForgotPasswordRequest{Email: req.Email})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *authService) ResetPassword(ctx context.Context, req models.PasswordResetConfirm) (string, error) {
	if err := validation.PasswordReset(req); err != nil {
		return "", err
	}

	resp, err := a.client.ResetPassword(ctx, client.ResetPasswordRequest{
		Token:                req.Token,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (a *authService) Logout(ctx context.Context) error {
	_, err := a.client.Logout(ctx)
	return err
}

func (a *authService) Profile(ctx context.Context) (*models.User, error) {
	u, err := a.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	user := NormalizeUser(*u)
	return &user, nil
}

func authResult(resp *client.AuthResponse) (*models.AuthResult, error) {
	if resp.Token == "" {
		return nil, &client.ApiError{
			Message:     client.MsgBadResponse,
			StatusCode:  http.StatusOK,
			FieldErrors: map[string][]string{},
			Kind:        client.KindBackend,
			Err:         errors.New("auth response without token"),
		}
	}
	return &models.AuthResult{
		User:         NormalizeUser(resp.User),
		AccessToken:  resp.Token,
		RefreshToken: resp.Refresh(),
	}, nil
}
