package client

import (
	"context"
	"net/http"
)

func (c *HTTPClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.Request(ctx, http.MethodPost, "/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Request(ctx, http.MethodPost, "/forgot-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Request(ctx, http.MethodPost, "/reset-password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Logout(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := c.Request(ctx, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser fetches the authenticated user (GET /user).
func (c *HTTPClient) CurrentUser(ctx context.Context) (*BackendUser, error) {
	var resp BackendUser
	if err := c.Request(ctx, http.MethodGet, "/user", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

var _ Client = (*HTTPClient)(nil)
