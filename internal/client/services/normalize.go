package services

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/client"
	"github.com/dmitrijs2005/mobapp/internal/client/models"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// NormalizeUser converts the backend user into the local record. It is the
// only place that knows about the backend's naming: the single "name" field
// is split on its first space, and snake_case timestamps win over camelCase
// ones when both are present. Unparseable timestamps become zero.
func NormalizeUser(u client.BackendUser) models.User {
	first, last := u.FirstName, u.LastName
	if u.Name != "" || (first == "" && last == "") {
		first, last = models.SplitName(u.Name)
	}

	out := models.User{
		ID:        string(u.ID),
		Email:     u.Email,
		FirstName: first,
		LastName:  last,
		CreatedAt: parseTimestamp(pick(u.CreatedAt, u.CreatedAtCamel)),
		UpdatedAt: parseTimestamp(pick(u.UpdatedAt, u.UpdatedAtCamel)),
	}

	if v := pickPtr(u.EmailVerifiedAt, u.EmailVerifiedAtCamel); v != "" {
		if ts := parseTimestamp(v); !ts.IsZero() {
			out.EmailVerifiedAt = &ts
		}
	}
	return out
}

func pick(snake, camel string) string {
	if snake != "" {
		return snake
	}
	return camel
}

func pickPtr(snake, camel *string) string {
	switch {
	case snake != nil && *snake != "":
		return *snake
	case camel != nil:
		return *camel
	default:
		return ""
	}
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
