// Package client is the gateway through which every backend call flows.
//
// # Overview
//
// The package provides:
//  1. The API contract the auth layer depends on (see the Client interface):
//     Login, Register, ForgotPassword, ResetPassword, Logout and CurrentUser.
//  2. A concrete JSON-over-HTTP implementation (see HTTPClient) that reads the
//     access token from the persisted store on every request, applies a
//     fixed request timeout and maps every failure to *ApiError.
//  3. Session recovery: a 401 on a request that carried a bearer token is
//     retried at most once after a token refresh. When no refresh token is
//     stored, or the refresh or the retry fails, the auth keys are removed,
//     Hooks.OnSessionExpired fires and the caller gets an ApiError of kind
//     KindSessionExpired.
//
// # Error Handling
//
// All errors returned by HTTPClient are *ApiError and can be matched with
// errors.As. A few conditions are also reachable with errors.Is:
// ErrUnavailable (no response), ErrUnauthorized (HTTP 401) and
// common.ErrSessionExpired.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. Concurrent 401s share a single
// refresh call.
package client
