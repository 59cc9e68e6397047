package session

import "github.com/dmitrijs2005/mobapp/internal/client/models"

type State int

const (
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Session is a snapshot of the authentication state.
//
// User and AccessToken are set exactly when IsAuthenticated is true.
// RefreshToken may be empty even then.
type Session struct {
	State           State
	User            *models.User
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
