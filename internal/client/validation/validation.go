// Package validation checks credential forms before anything is sent to the
// backend. Checks are synchronous and report one message per offending
// field; a form that fails validation never reaches the network layer.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/mobapp/internal/client/models"
	"github.com/go-playground/validator/v10"
)

const (
	PasswordMinLength = 8
	NameMinLength     = 2
	NameMaxLength     = 50
)

const (
	MsgEmail          = "Please enter a valid email address"
	MsgPassword       = "Password must be at least 8 characters with uppercase, lowercase, and number"
	MsgName           = "Name must contain only letters and spaces"
	MsgPasswordsMatch = "Passwords do not match"
	MsgAcceptTerms    = "You must accept the terms and conditions"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
var namePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)

// Errors maps a form field (lowerCamel, e.g. "passwordConfirmation") to the
// message shown next to it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// First returns the message of the alphabetically first field, which is
// enough for single-line displays.
func (e Errors) First() string {
	first := ""
	for f := range e {
		if first == "" || f < first {
			first = f
		}
	}
	return e[first]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return lowerFirst(fld.Name)
	})

	must(v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	}))
	must(v.RegisterValidation("strong_password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String())
	}))
	must(v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return ValidateName(fl.Field().String())
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// ValidateEmail reports whether s looks like an email address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword reports whether s is at least 8 characters drawn from
// letters, digits and @$!%*?&, with at least one lower-case letter, one
// upper-case letter and one digit.
func ValidatePassword(s string) bool {
	if len(s) < PasswordMinLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune("@$!%*?&", r):
		default:
			return false
		}
	}
	return lower && upper && digit
}

// ValidateName reports whether s is 2–50 letters or spaces.
func ValidateName(s string) bool {
	n := len([]rune(s))
	return n >= NameMinLength && n <= NameMaxLength && namePattern.MatchString(s)
}

// Login validates the login form.
func Login(c models.LoginCredentials) error {
	return check(c)
}

// Registration validates the registration form.
func Registration(c models.RegisterCredentials) error {
	return check(c)
}

// PasswordResetRequest validates the forgot-password form.
func PasswordResetRequest(r models.PasswordResetRequest) error {
	return check(r)
}

// PasswordReset validates the reset-password form.
func PasswordReset(r models.PasswordResetConfirm) error {
	return check(r)
}

func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.Bool {
			return MsgAcceptTerms
		}
		return fmt.Sprintf("%s is required", humanize(fe.StructField()))
	case "email_address":
		return MsgEmail
	case "strong_password":
		return MsgPassword
	case "person_name":
		if n := len([]rune(fe.Value().(string))); n < NameMinLength || n > NameMaxLength {
			return fmt.Sprintf("Name must be between %d and %d characters", NameMinLength, NameMaxLength)
		}
		return MsgName
	case "eqfield":
		return MsgPasswordsMatch
	default:
		return fmt.Sprintf("%s is invalid", humanize(fe.StructField()))
	}
}

// humanize turns "PasswordConfirmation" into "Password confirmation".
func humanize(name string) string {
	var b strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteRune(' ')
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
