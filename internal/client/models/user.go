// Package models defines the client's canonical shapes: the local User
// record, credential forms, and the result of a successful authentication.
// Backend representations never leave the services package.
package models

import (
	"strings"
	"time"
)

// User is the local, canonical user record. It is what the session holds and
// what gets serialized under the user-data storage key.
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// FullName joins first and last name the way the backend stores it.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Initials returns the upper-cased first letters of first and last name.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range []string{u.FirstName, u.LastName} {
		for _, r := range part {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}

// SplitName splits a backend full name on its first space: the first token
// is the first name and everything after it is the last name.
//
//	"Jane Doe"         -> "Jane", "Doe"
//	"Madonna"          -> "Madonna", ""
//	"Mary Jane Watson" -> "Mary", "Jane Watson"
func SplitName(full string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(full), " ")
	return first, last
}
