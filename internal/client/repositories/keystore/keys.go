package keystore

const (
	KeyAuthToken    = "@mobapp/auth_token"
	KeyRefreshToken = "@mobapp/refresh_token"
	KeyUserData     = "@mobapp/user_data"
	KeyErrorLogs    = "@mobapp/error_logs"
	KeySealSalt     = "@mobapp/seal_salt"
)

// AuthKeys lists every key that belongs to an authenticated session.
var AuthKeys = []string{KeyAuthToken, KeyRefreshToken, KeyUserData}
