package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/common"
)

// withSessionRecovery decorates next with the 401 policy: a request that
// carried a bearer token and got 401 is retried once after a refresh. A
// failed refresh, a missing refresh token or a second 401 ends the session.
func (c *HTTPClient) withSessionRecovery(next sendFunc) sendFunc {
	var send sendFunc
	send = func(ctx context.Context, cl call, retried bool) (reply, error) {
		rep, err := next(ctx, cl, retried)
		if err == nil || !rep.bearer || !isUnauthorized(err) {
			return rep, err
		}

		if retried {
			c.log.Warn(ctx, "request rejected after token refresh", "path", cl.path)
			return reply{}, c.expireSession(ctx, err)
		}

		if rerr := c.refreshTokens(ctx); rerr != nil {
			c.log.Warn(ctx, "token refresh failed", "path", cl.path, "error", rerr)
			return reply{}, c.expireSession(ctx, rerr)
		}

		return send(ctx, cl, true)
	}
	return send
}

// refreshTokens exchanges the stored refresh token for a new access token and
// persists the result. Concurrent callers share one backend call, so it runs
// detached from the caller's cancellation and is bounded by the request
// timeout instead.
func (c *HTTPClient) refreshTokens(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout())
		defer cancel()
		return nil, c.doRefresh(rctx)
	})
	return err
}

func (c *HTTPClient) refreshTimeout() time.Duration {
	if c.http.Timeout > 0 {
		return c.http.Timeout
	}
	return DefaultTimeout
}

func (c *HTTPClient) doRefresh(ctx context.Context) error {
	refreshToken, ok, err := c.store.Get(ctx, keystore.KeyRefreshToken)
	if err != nil {
		c.log.Error(ctx, "failed to read refresh token", "error", err)
		ok = false
	}
	if !ok || refreshToken == "" {
		return common.ErrNoRefreshToken
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	// Sent through the base transport: a 401 here must not recurse.
	rep, err := c.do(ctx, call{method: http.MethodPost, path: "/auth/refresh", body: body}, true)
	if err != nil {
		return err
	}

	var resp refreshResponse
	if err := decode(rep, &resp); err != nil {
		return err
	}
	if resp.Token == "" {
		return fmt.Errorf("refresh response: %w", common.ErrInvalidToken)
	}

	if err := c.store.Set(ctx, keystore.KeyAuthToken, resp.Token); err != nil {
		c.log.Error(ctx, "failed to persist refreshed access token", "error", err)
	}
	if resp.RefreshToken != "" {
		if err := c.store.Set(ctx, keystore.KeyRefreshToken, resp.RefreshToken); err != nil {
			c.log.Error(ctx, "failed to persist refreshed refresh token", "error", err)
		}
	}

	c.log.Info(ctx, "access token refreshed")

	if h := c.currentHooks().OnTokensRefreshed; h != nil {
		h(ctx, resp.Token, resp.RefreshToken)
	}
	return nil
}

// expireSession clears the persisted auth keys, notifies the session owner
// and returns the error the caller should see.
func (c *HTTPClient) expireSession(ctx context.Context, cause error) error {
	if err := c.store.Remove(ctx, keystore.AuthKeys...); err != nil {
		c.log.Error(ctx, "failed to clear auth keys", "error", err)
	}

	if h := c.currentHooks().OnSessionExpired; h != nil {
		h(ctx)
	}
	return newSessionExpiredError(cause)
}
