// Package fakebackend is an in-process stand-in for the REST backend, used
// by tests across the client packages. It speaks the same JSON shapes as the
// real API, issues HS256 JWT access tokens and rotating opaque refresh
// tokens, and records how often each route was hit.
package fakebackend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgEmailTaken         = "The email has already been taken."
	MsgUnauthenticated    = "Unauthenticated."
	MsgResetLinkSent      = "We have emailed your password reset link."
	MsgPasswordReset      = "Your password has been reset."
	MsgLoggedOut          = "Logged out successfully"
)

// User is a backend account.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

type Backend struct {
	server *httptest.Server
	secret []byte

	mu            sync.Mutex
	users         map[string]*User // by email
	nextID        int
	active        map[string]bool   // access token jti
	refreshTokens map[string]string // token -> email
	resetTokens   map[string]string // token -> email
	calls         map[string]int
	delays        map[string]time.Duration // by email, applied to /login

	accessTTL      time.Duration
	issueRefresh   bool
	numericIDs     bool
	camelCaseUsers bool
	failAll        int
}

// Start runs a new backend on a local listener. Call Close when done.
func Start() *Backend {
	b := &Backend{
		secret:        []byte(uuid.NewString()),
		users:         map[string]*User{},
		active:        map[string]bool{},
		refreshTokens: map[string]string{},
		resetTokens:   map[string]string{},
		calls:         map[string]int{},
		delays:        map[string]time.Duration{},
		accessTTL:     time.Hour,
		issueRefresh:  true,
		nextID:        1,
	}
	b.server = httptest.NewServer(b.router())
	return b
}

func (b *Backend) URL() string { return b.server.URL }

func (b *Backend) Client() *http.Client { return b.server.Client() }

func (b *Backend) Close() { b.server.Close() }

func (b *Backend) router() http.Handler {
	r := mux.NewRouter()
	r.Use(b.count)
	r.Use(b.failAllMiddleware)
	r.HandleFunc("/login", b.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/register", b.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", b.handleForgot).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", b.handleReset).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", b.handleRefresh).Methods(http.MethodPost)
	r.Handle("/auth/logout", b.authenticated(b.handleLogout)).Methods(http.MethodPost)
	r.Handle("/user", b.authenticated(b.handleUser)).Methods(http.MethodGet)
	return r
}

// SetIssueRefresh controls whether login, register and refresh hand out a
// refresh token. On by default.
func (b *Backend) SetIssueRefresh(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.issueRefresh = on
}

// SetNumericIDs makes new users get sequential numeric ids, sent as JSON
// numbers.
func (b *Backend) SetNumericIDs(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.numericIDs = on
}

// SetCamelCaseUsers switches user timestamps to camelCase keys.
func (b *Backend) SetCamelCaseUsers(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.camelCaseUsers = on
}

// SetAccessTTL sets the lifetime of newly issued access tokens.
func (b *Backend) SetAccessTTL(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accessTTL = d
}

// SetFailAll makes every route answer with status. Zero turns it off.
func (b *Backend) SetFailAll(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAll = status
}

// AddUser creates an account directly and returns it.
func (b *Backend) AddUser(name, email, password string) User {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.addUserLocked(name, email, password)
}

func (b *Backend) addUserLocked(name, email, password string) *User {
	id := uuid.NewString()
	if b.numericIDs {
		id = strconv.Itoa(b.nextID)
		b.nextID++
	}
	u := &User{ID: id, Name: name, Email: email, Password: password, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	b.users[email] = u
	return u
}

// Calls reports how many requests hit "METHOD /path".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// RevokeAccessTokens makes every access token issued so far answer 401.
func (b *Backend) RevokeAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = map[string]bool{}
}

// RevokeRefreshTokens forgets all refresh tokens, so refresh fails.
func (b *Backend) RevokeRefreshTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens = map[string]string{}
}

// ResetTokenFor returns the last reset token mailed to email.
func (b *Backend) ResetTokenFor(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for tok, e := range b.resetTokens {
		if e == email {
			return tok
		}
	}
	return ""
}

// SetLoginDelay holds /login responses for email for d.
func (b *Backend) SetLoginDelay(email string, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delays[email] = d
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) failAllMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status := b.failAll
		b.mu.Unlock()
		if status != 0 {
			writeError(w, status, http.StatusText(status), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticated(h func(http.ResponseWriter, *http.Request, *User)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, MsgUnauthenticated, nil)
			return
		}
		u, err := b.verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, MsgUnauthenticated, nil)
			return
		}
		h(w, r, u)
	})
}

// issueAccessLocked signs a new access token for u. Caller holds b.mu.
func (b *Backend) issueAccessLocked(u *User) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   u.Email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(b.accessTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	b.active[claims.ID] = true
	return signed
}

func (b *Backend) verify(raw string) (*User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active[claims.ID] {
		return nil, errors.New("revoked")
	}
	u, ok := b.users[claims.Subject]
	if !ok {
		return nil, errors.New("unknown subject")
	}
	return u, nil
}

// tokensForLocked builds the auth payload for u. Caller holds b.mu.
func (b *Backend) tokensForLocked(u *User) map[string]any {
	out := map[string]any{
		"user":       b.userJSONLocked(u),
		"token":      b.issueAccessLocked(u),
		"token_type": "Bearer",
	}
	if b.issueRefresh {
		rt := uuid.NewString()
		b.refreshTokens[rt] = u.Email
		out["refresh_token"] = rt
	}
	return out
}

func (b *Backend) userJSONLocked(u *User) map[string]any {
	var id any = u.ID
	if n, err := strconv.Atoi(u.ID); err == nil && b.numericIDs {
		id = n
	}
	ts := u.CreatedAt.Format(time.RFC3339)
	if b.camelCaseUsers {
		return map[string]any{"id": id, "name": u.Name, "email": u.Email, "createdAt": ts, "updatedAt": ts}
	}
	return map[string]any{"id": id, "name": u.Name, "email": u.Email, "email_verified_at": nil, "created_at": ts, "updated_at": ts}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	b.mu.Lock()
	u, ok := b.users[req.Email]
	match := ok && u.Password == req.Password
	delay := b.delays[req.Email]
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	if !match {
		writeError(w, http.StatusUnprocessableEntity, MsgInvalidCredentials,
			map[string][]string{"email": {"These credentials do not match our records."}})
		return
	}

	b.mu.Lock()
	out := b.tokensForLocked(u)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.Password != req.PasswordConfirmation {
		writeError(w, http.StatusUnprocessableEntity, "The password field confirmation does not match.",
			map[string][]string{"password": {"The password field confirmation does not match."}})
		return
	}

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, MsgEmailTaken, map[string][]string{"email": {MsgEmailTaken}})
		return
	}
	u := b.addUserLocked(req.Name, req.Email, req.Password)
	out := b.tokensForLocked(u)
	b.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

func (b *Backend) handleForgot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	b.mu.Lock()
	_, ok := b.users[req.Email]
	if ok {
		b.resetTokens[uuid.NewString()] = req.Email
	}
	b.mu.Unlock()

	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "We can't find a user with that email address.",
			map[string][]string{"email": {"We can't find a user with that email address."}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": MsgResetLinkSent})
}

func (b *Backend) handleReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token                string `json:"token"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.resetTokens[req.Token] != req.Email || req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "This password reset token is invalid.",
			map[string][]string{"email": {"This password reset token is invalid."}})
		return
	}
	delete(b.resetTokens, req.Token)
	b.users[req.Email].Password = req.Password
	writeJSON(w, http.StatusOK, map[string]string{"message": MsgPasswordReset})
}

func (b *Backend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	b.mu.Lock()
	email, ok := b.refreshTokens[req.RefreshToken]
	delete(b.refreshTokens, req.RefreshToken)
	u := b.users[email]
	if !ok || u == nil {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, MsgUnauthenticated, nil)
		return
	}
	out := b.tokensForLocked(u)
	b.mu.Unlock()

	delete(out, "user")
	delete(out, "token_type")
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) handleLogout(w http.ResponseWriter, r *http.Request, u *User) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
		b.mu.Lock()
		delete(b.active, claims.ID)
		b.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": MsgLoggedOut})
}

func (b *Backend) handleUser(w http.ResponseWriter, _ *http.Request, u *User) {
	b.mu.Lock()
	out := b.userJSONLocked(u)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err), nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, fields map[string][]string) {
	body := map[string]any{"message": msg}
	if fields != nil {
		body["errors"] = fields
	}
	writeJSON(w, status, body)
}
