package client

import "context"

// Client is the backend API the auth layer talks to.
type Client interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
	Logout(ctx context.Context) (*MessageResponse, error)
	CurrentUser(ctx context.Context) (*BackendUser, error)
}

// Hooks let the owner of the session react to token changes made by the
// gateway itself. Both are optional and are called synchronously from the
// request that triggered them.
type Hooks struct {
	// OnTokensRefreshed runs after a successful refresh has been persisted.
	// refreshToken is empty when the backend did not rotate it.
	OnTokensRefreshed func(ctx context.Context, accessToken, refreshToken string)

	// OnSessionExpired runs after the auth keys have been removed because a
	// 401 could not be recovered from.
	OnSessionExpired func(ctx context.Context)
}
