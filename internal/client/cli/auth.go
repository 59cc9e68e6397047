package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mobapp/internal/client/models"
	"github.com/dmitrijs2005/mobapp/internal/common"
)

// getSimpleText, getPassword and getConfirmation are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getPassword     = GetPassword
	getConfirmation = GetConfirmation
)

// Login prompts for email, password and the remember-me choice and signs in
// through the session store. Failures are printed with the message the
// session recorded; the error is returned as well.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	remember, err := getConfirmation(a.reader, "Remember me?", a.out)
	if err != nil {
		return err
	}

	err = a.session.Login(ctx, models.LoginCredentials{
		Email:      email,
		Password:   string(password),
		RememberMe: remember,
	})
	if err != nil {
		a.report("Login failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.current().User.FullName())
	return nil
}

// Register prompts for the registration form and creates the account. On
// success the user is signed in straight away.
func (a *App) Register(ctx context.Context) error {
	var creds models.RegisterCredentials
	var err error

	if creds.FirstName, err = getSimpleText(a.reader, "Enter first name", a.out); err != nil {
		return err
	}
	if creds.LastName, err = getSimpleText(a.reader, "Enter last name", a.out); err != nil {
		return err
	}
	if creds.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	if creds.AcceptTerms, err = getConfirmation(a.reader, "Accept the terms and conditions?", a.out); err != nil {
		return err
	}

	creds.Password = string(password)
	creds.PasswordConfirmation = string(confirmation)

	if err := a.session.Register(ctx, creds); err != nil {
		a.report("Registration failed", err)
		return err
	}

	fmt.Fprintf(a.out, "Account created. A verification link was sent to %s.\n", creds.Email)
	return nil
}

// ForgotPassword asks the backend to mail a password reset link.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	msg, err := a.auth.RequestPasswordReset(ctx, models.PasswordResetRequest{Email: email})
	if err != nil {
		a.report("Password reset request failed", err)
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

// ResetPassword completes a reset with the token from the mailed link.
func (a *App) ResetPassword(ctx context.Context) error {
	var req models.PasswordResetConfirm
	var err error

	if req.Token, err = getSimpleText(a.reader, "Enter reset token", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return err
	}

	password, err := getPassword(a.reader, "Enter new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword(a.reader, "Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	req.Password = string(password)
	req.PasswordConfirmation = string(confirmation)

	msg, err := a.auth.ResetPassword(ctx, req)
	if err != nil {
		a.report("Password reset failed", err)
		return err
	}

	fmt.Fprintln(a.out, msg)
	return nil
}

// Logout signs out locally. Backend failures are logged by the session
// store and never keep the user signed in.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
