package models

// LoginCredentials is the login form.
//
// RememberMe is accepted for parity with the form but has no effect.
type LoginCredentials struct {
	Email      string `validate:"required,email_address"`
	Password   string `validate:"required"`
	RememberMe bool
}

// RegisterCredentials is the registration form.
type RegisterCredentials struct {
	FirstName            string `validate:"required,person_name"`
	LastName             string `validate:"required,person_name"`
	Email                string `validate:"required,email_address"`
	Password             string `validate:"required,strong_password"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
	AcceptTerms          bool   `validate:"required"`
}

// PasswordResetRequest asks the backend to mail a reset link.
type PasswordResetRequest struct {
	Email string `validate:"required,email_address"`
}

// PasswordResetConfirm completes a reset with the token from the mail.
type PasswordResetConfirm struct {
	Token                string `validate:"required"`
	Email                string `validate:"required,email_address"`
	Password             string `validate:"required,strong_password"`
	PasswordConfirmation string `validate:"required,eqfield=Password"`
}

// AuthResult is what a successful login or registration yields.
// RefreshToken is empty when the backend does not issue one.
type AuthResult struct {
	User         User
	AccessToken  string
	RefreshToken string
}
