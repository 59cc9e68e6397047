package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/common"
	"github.com/dmitrijs2005/mobapp/internal/logging"
	"golang.org/x/sync/singleflight"
)

const DefaultTimeout = 10 * time.Second

// call is one logical request. body is already encoded; nil means no body.
type call struct {
	method string
	path   string
	body   []byte
}

// reply is what the base transport hands back. bearer reports whether the
// request carried an access token, which is what makes a 401 recoverable.
type reply struct {
	status  int
	payload []byte
	bearer  bool
}

// sendFunc performs a call. retried is true for the one retry that follows
// a successful token refresh.
type sendFunc func(ctx context.Context, c call, retried bool) (reply, error)

// HTTPClient implements Client over JSON/HTTP.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	store   keystore.Store
	log     logging.Logger

	hooksMu sync.RWMutex
	hooks   Hooks

	refreshGroup singleflight.Group

	send sendFunc
}

type Option func(*HTTPClient)

// WithTimeout sets the per-request timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. an
// httptest.Server client. Its Timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

func WithHooks(h Hooks) Option {
	return func(c *HTTPClient) {
		c.hooks = h
	}
}

// NewHTTPClient returns a client for the API rooted at baseURL
// (e.g. "https://api.example.com/api"). Tokens are read from and written to
// store.
func NewHTTPClient(baseURL string, store keystore.Store, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		store:   store,
		log:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	c.send = c.withSessionRecovery(c.do)
	return c
}

// SetHooks replaces the hooks. The session store registers itself here once
// it exists, which is after the client has been built.
func (c *HTTPClient) SetHooks(h Hooks) {
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.hooks = h
}

func (c *HTTPClient) currentHooks() Hooks {
	c.hooksMu.RLock()
	defer c.hooksMu.RUnlock()
	return c.hooks
}

// Request sends body (JSON-encoded unless nil) to path and decodes the
// response into out (skipped when out is nil or the body is empty).
func (c *HTTPClient) Request(ctx context.Context, method, path string, body, out any) error {
	cl := call{method: method, path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return newRequestError(fmt.Errorf("encode body: %w", err))
		}
		cl.body = b
	}

	rep, err := c.send(ctx, cl, false)
	if err != nil {
		return err
	}
	return decode(rep, out)
}

func decode(rep reply, out any) error {
	if out == nil || len(bytes.TrimSpace(rep.payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(rep.payload, out); err != nil {
		return &ApiError{
			Message:     MsgBadResponse,
			StatusCode:  rep.status,
			FieldErrors: map[string][]string{},
			Kind:        KindBackend,
			Err:         fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}

// do is the base transport: one HTTP round trip, no recovery.
func (c *HTTPClient) do(ctx context.Context, cl call, _ bool) (reply, error) {
	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return reply{}, newRequestError(err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rep := reply{}
	if token := c.accessToken(ctx); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+token)
		rep.bearer = true
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn(ctx, "request failed", "method", cl.method, "path", cl.path, "error", err)
		return rep, transportError(err)
	}
	defer resp.Body.Close()

	rep.status = resp.StatusCode
	rep.payload, err = io.ReadAll(resp.Body)
	if err != nil {
		return rep, transportError(err)
	}

	c.log.Debug(ctx, "request done", "method", cl.method, "path", cl.path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rep, backendError(resp.StatusCode, rep.payload)
	}
	return rep, nil
}

// accessToken reads the token fresh from the store. A read failure counts
// as "no token".
func (c *HTTPClient) accessToken(ctx context.Context) string {
	token, ok, err := c.store.Get(ctx, keystore.KeyAuthToken)
	if err != nil {
		c.log.Error(ctx, "failed to read access token", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

func transportError(err error) *ApiError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newTransportError(MsgTimeout, err)
	}
	return newTransportError(MsgNetwork, err)
}

func backendError(status int, payload []byte) *ApiError {
	apiErr := &ApiError{
		StatusCode:  status,
		FieldErrors: map[string][]string{},
		Kind:        KindBackend,
	}

	var env errorEnvelope
	if err := json.Unmarshal(payload, &env); err == nil {
		apiErr.Message = env.Message
		for field, msgs := range env.Errors {
			apiErr.FieldErrors[field] = msgs
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request failed with status code %d", status)
	}
	return apiErr
}
