package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/dmitrijs2005/mobapp/internal/client/client"
	"github.com/dmitrijs2005/mobapp/internal/client/models"
	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/client/services"
	"github.com/dmitrijs2005/mobapp/internal/client/validation"
	"github.com/dmitrijs2005/mobapp/internal/logging"
)

const msgUnknownError = "An unexpected error occurred"

type Store struct {
	auth services.AuthService
	kv   keystore.Store
	log  logging.Logger

	mu       sync.Mutex
	s        Session
	inflight int
	subs     map[int]chan Session
	nextSub  int

	// commitMu orders completions: whoever takes it last writes storage
	// and Session last.
	commitMu sync.Mutex
}

// NewStore returns a store in the Unknown state with IsLoading set.
func NewStore(auth services.AuthService, kv keystore.Store, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		auth: auth,
		kv:   kv,
		log:  log.With("component", "session"),
		s:    Session{State: StateUnknown, IsLoading: true},
		subs: map[int]chan Session{},
	}
}

// Hooks returns the gateway hooks that keep this store in step with token
// refreshes and expiries performed by the gateway.
func (st *Store) Hooks() client.Hooks {
	return client.Hooks{
		OnTokensRefreshed: st.TokensRefreshed,
		OnSessionExpired:  st.SessionExpired,
	}
}

// Session returns a snapshot of the current state.
func (st *Store) Session() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s.clone()
}

// Subscribe returns a channel that receives the current Session immediately
// and then after every change. Slow readers only ever see the latest value.
// Call the returned func to unsubscribe; it closes the channel.
func (st *Store) Subscribe() (<-chan Session, func()) {
	st.mu.Lock()
	defer st.mu.Unlock()

	id := st.nextSub
	st.nextSub++
	ch := make(chan Session, 1)
	ch <- st.s.clone()
	st.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			st.mu.Lock()
			defer st.mu.Unlock()
			delete(st.subs, id)
			close(ch)
		})
	}
}

// publishLocked pushes the current state to subscribers. Caller holds st.mu.
func (st *Store) publishLocked() {
	snap := st.s
	for _, ch := range st.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap.clone()
	}
}

// begin marks an operation as started: IsLoading on, LastError cleared.
func (st *Store) begin() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.inflight++
	st.s.IsLoading = true
	st.s.LastError = ""
	st.publishLocked()
}

// finish applies the outcome of an operation and drops IsLoading when it
// was the last one in flight.
func (st *Store) finish(apply func(s *Session)) {
	st.mu.Lock()
	defer st.mu.Unlock()
	apply(&st.s)
	st.inflight--
	st.s.IsLoading = st.inflight > 0
	st.publishLocked()
}

func setAuthenticated(s *Session, user models.User, access, refresh string) {
	s.State = StateAuthenticated
	s.User = &user
	s.AccessToken = access
	s.RefreshToken = refresh
	s.IsAuthenticated = true
	s.LastError = ""
}

func setUnauthenticated(s *Session, lastError string) {
	s.State = StateUnauthenticated
	s.User = nil
	s.AccessToken = ""
	s.RefreshToken = ""
	s.IsAuthenticated = false
	s.LastError = lastError
}

// CheckStoredSession restores a session from the persisted keys. It never
// touches the network and can be called any number of times.
func (st *Store) CheckStoredSession(ctx context.Context) {
	st.begin()

	st.commitMu.Lock()
	defer st.commitMu.Unlock()

	token := st.read(ctx, keystore.KeyAuthToken)
	rawUser := st.read(ctx, keystore.KeyUserData)
	refresh := st.read(ctx, keystore.KeyRefreshToken)

	var user models.User
	ok := token != "" && rawUser != ""
	if ok {
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			st.log.Warn(ctx, "stored user record is unreadable", "error", err)
			ok = false
		}
	}

	st.finish(func(s *Session) {
		if ok {
			setAuthenticated(s, user, token, refresh)
			return
		}
		setUnauthenticated(s, "")
	})

	if ok {
		st.log.Info(ctx, "session restored", "user_id", user.ID)
	}
}

// Login authenticates with creds. On failure the error is also stored in
// LastError. RememberMe has no effect.
func (st *Store) Login(ctx context.Context, creds models.LoginCredentials) error {
	st.begin()
	res, err := st.auth.Login(ctx, creds)
	return st.complete(ctx, "login", res, err)
}

// Register creates an account and signs straight into it.
func (st *Store) Register(ctx context.Context, creds models.RegisterCredentials) error {
	st.begin()
	res, err := st.auth.Register(ctx, creds)
	return st.complete(ctx, "register", res, err)
}

func (st *Store) complete(ctx context.Context, op string, res *models.AuthResult, err error) error {
	st.commitMu.Lock()
	defer st.commitMu.Unlock()

	if err != nil {
		msg := ErrorMessage(err)
		st.log.Warn(ctx, op+" failed", "error", err)
		st.finish(func(s *Session) { setUnauthenticated(s, msg) })
		return err
	}

	st.persist(ctx, res)
	st.finish(func(s *Session) {
		setAuthenticated(s, res.User, res.AccessToken, res.RefreshToken)
	})
	st.log.Info(ctx, op+" succeeded", "user_id", res.User.ID)
	return nil
}

// Logout ends the session. The backend call is best effort; the local
// session and all auth keys are cleared regardless.
func (st *Store) Logout(ctx context.Context) {
	st.begin()

	if err := st.auth.Logout(ctx); err != nil {
		st.log.Warn(ctx, "backend logout failed", "error", err)
	}

	st.commitMu.Lock()
	defer st.commitMu.Unlock()

	st.clearKeys(ctx)
	st.finish(func(s *Session) { setUnauthenticated(s, "") })
	st.log.Info(ctx, "logged out")
}

// TokensRefreshed records tokens the gateway obtained on its own. It is a
// no-op unless a session is established.
func (st *Store) TokensRefreshed(ctx context.Context, accessToken, refreshToken string) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.s.IsAuthenticated {
		return
	}
	st.s.AccessToken = accessToken
	if refreshToken != "" {
		st.s.RefreshToken = refreshToken
	}
	st.publishLocked()
	st.log.Debug(ctx, "session tokens refreshed")
}

// SessionExpired performs a full local logout after the gateway gave up on
// a 401. LastError is left empty so the user simply lands on the auth flow.
func (st *Store) SessionExpired(ctx context.Context) {
	st.commitMu.Lock()
	defer st.commitMu.Unlock()

	st.clearKeys(ctx)

	st.mu.Lock()
	defer st.mu.Unlock()
	setUnauthenticated(&st.s, "")
	st.publishLocked()
	st.log.Warn(ctx, "session expired")
}

func (st *Store) persist(ctx context.Context, res *models.AuthResult) {
	if err := st.kv.Set(ctx, keystore.KeyAuthToken, res.AccessToken); err != nil {
		st.log.Error(ctx, "failed to persist access token", "error", err)
	}

	if res.RefreshToken != "" {
		if err := st.kv.Set(ctx, keystore.KeyRefreshToken, res.RefreshToken); err != nil {
			st.log.Error(ctx, "failed to persist refresh token", "error", err)
		}
	} else if err := st.kv.Remove(ctx, keystore.KeyRefreshToken); err != nil {
		st.log.Error(ctx, "failed to remove stale refresh token", "error", err)
	}

	raw, err := json.Marshal(res.User)
	if err != nil {
		st.log.Error(ctx, "failed to encode user record", "error", err)
		return
	}
	if err := st.kv.Set(ctx, keystore.KeyUserData, string(raw)); err != nil {
		st.log.Error(ctx, "failed to persist user record", "error", err)
	}
}

func (st *Store) clearKeys(ctx context.Context) {
	if err := st.kv.Remove(ctx, keystore.AuthKeys...); err != nil {
		st.log.Error(ctx, "failed to clear auth keys", "error", err)
	}
}

// read returns the stored value or "" when absent or unreadable.
func (st *Store) read(ctx context.Context, key string) string {
	v, ok, err := st.kv.Get(ctx, key)
	if err != nil {
		st.log.Error(ctx, "failed to read stored key", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

// ErrorMessage turns an operation error into the text shown to the user.
func ErrorMessage(err error) string {
	var apiErr *client.ApiError
	var verrs validation.Errors
	switch {
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	case errors.As(err, &verrs):
		return verrs.First()
	case err != nil && err.Error() != "":
		return err.Error()
	default:
		return msgUnknownError
	}
}
