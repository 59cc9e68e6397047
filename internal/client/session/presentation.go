package session

// Mode is the root screen to present.
type Mode int

const (
	ModeLoading Mode = iota
	ModeMain
	ModeAuth
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeMain:
		return "main"
	case ModeAuth:
		return "auth"
	default:
		return "invalid"
	}
}

// Presentation picks the root screen for s. It has no state of its own, so
// it must be called again on every Session change.
func Presentation(s Session) Mode {
	switch {
	case s.IsLoading:
		return ModeLoading
	case s.IsAuthenticated:
		return ModeMain
	default:
		return ModeAuth
	}
}
