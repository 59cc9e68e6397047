package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/client"
	"github.com/dmitrijs2005/mobapp/internal/client/models"
	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/client/session"
	"github.com/dmitrijs2005/mobapp/internal/client/tokens"
	"github.com/dmitrijs2005/mobapp/internal/client/validation"
)

// now is a test seam for the token expiry display.
var now = time.Now

// WhoAmI prints the user held by the session without calling the backend.
func (a *App) WhoAmI(_ context.Context) error {
	s := a.current()
	if s.User == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	a.printUser(*s.User)
	return nil
}

// Profile fetches the current user from the backend. An expired session is
// reported and leaves the CLI on the auth screen.
func (a *App) Profile(ctx context.Context) error {
	u, err := a.auth.Profile(ctx)
	if err != nil {
		a.report("Could not load profile", err)
		return err
	}
	a.printUser(*u)
	return nil
}

// Status prints the session state, the lifetime left on the access token and
// the keys held by the store.
func (a *App) Status(ctx context.Context) error {
	s := a.current()

	fmt.Fprintf(a.out, "Environment: %s\n", a.config.Environment)
	fmt.Fprintf(a.out, "API:         %s\n", a.config.APIBaseURL)
	fmt.Fprintf(a.out, "Store:       %s\n", a.config.StoreBackend)
	fmt.Fprintf(a.out, "Session:     %s (%s)\n", s.State, session.Presentation(s))
	if s.IsAuthenticated {
		fmt.Fprintf(a.out, "Access:      %s\n", tokens.Describe(s.AccessToken, now()))
		if s.RefreshToken != "" {
			fmt.Fprintln(a.out, "Refresh:     available")
		} else {
			fmt.Fprintln(a.out, "Refresh:     none")
		}
	}
	if s.LastError != "" {
		fmt.Fprintf(a.out, "Last error:  %s\n", s.LastError)
	}
	if l, ok := a.kv.(keystore.Lister); ok {
		keys, err := l.Keys(ctx)
		if err != nil {
			a.log.Warn(ctx, "error listing stored keys", "error", err)
		} else {
			fmt.Fprintf(a.out, "Stored keys: %s\n", strings.Join(keys, ", "))
		}
	}
	return nil
}

func (a *App) printUser(u models.User) {
	fmt.Fprintf(a.out, "Name:     %s (%s)\n", u.FullName(), u.Initials())
	fmt.Fprintf(a.out, "Email:    %s\n", u.Email)
	fmt.Fprintf(a.out, "ID:       %s\n", u.ID)
	if u.EmailVerifiedAt != nil {
		fmt.Fprintf(a.out, "Verified: %s\n", u.EmailVerifiedAt.Format(time.DateTime))
	} else {
		fmt.Fprintln(a.out, "Verified: no")
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Joined:   %s\n", u.CreatedAt.Format(time.DateOnly))
	}
}

// report prints a failure with every field message when the backend or the
// form check returned them.
func (a *App) report(what string, err error) {
	fmt.Fprintf(a.out, "%s: %s\n", what, session.ErrorMessage(err))

	var fields map[string]string
	var verrs validation.Errors
	var apiErr *client.ApiError
	switch {
	case errors.As(err, &verrs):
		fields = verrs
	case errors.As(err, &apiErr):
		fields = make(map[string]string, len(apiErr.FieldErrors))
		for k, msgs := range apiErr.FieldErrors {
			if len(msgs) > 0 {
				fields[k] = msgs[0]
			}
		}
	}
	if len(fields) < 2 {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(a.out, "  %s: %s\n", k, fields[k])
	}
}
