package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mobapp/internal/client/client"
	"github.com/dmitrijs2005/mobapp/internal/client/config"
	"github.com/dmitrijs2005/mobapp/internal/client/errlog"
	"github.com/dmitrijs2005/mobapp/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/mobapp/internal/client/services"
	"github.com/dmitrijs2005/mobapp/internal/client/session"
	"github.com/dmitrijs2005/mobapp/internal/common"
	"github.com/dmitrijs2005/mobapp/internal/filex"
	"github.com/dmitrijs2005/mobapp/internal/logging"
)

type App struct {
	config  *config.Config
	session *session.Store
	auth    services.AuthService
	kv      keystore.Store
	errlog  *errlog.Tracker
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	updates     <-chan session.Session
	unsubscribe func()
	last        session.Session

	closers []func() error
}

// NewApp opens the configured key/value store and wires the gateway client,
// auth service and session store on top of it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	base := logging.New(os.Stderr, c.LogFormat, c.EffectiveLogLevel())

	kv, closers, err := openStore(ctx, c)
	if err != nil {
		base.Error(ctx, "error opening store", "backend", c.StoreBackend, "error", err)
		return nil, err
	}

	return newApp(ctx, c, kv, base, os.Stdin, os.Stdout, closers...), nil
}

func newApp(ctx context.Context, c *config.Config, kv keystore.Store, base logging.Logger, in io.Reader, out io.Writer, closers ...func() error) *App {
	tracker := errlog.New(base, kv, c.Environment)
	tracker.Load(ctx)

	gw := client.NewHTTPClient(c.APIBaseURL, kv,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(tracker),
	)
	auth := services.NewAuthService(gw)
	st := session.NewStore(auth, kv, tracker)
	gw.SetHooks(st.Hooks())

	updates, unsubscribe := st.Subscribe()

	return &App{
		config:      c,
		session:     st,
		auth:        auth,
		kv:          kv,
		errlog:      tracker,
		log:         tracker.With("component", "cli"),
		reader:      bufio.NewReader(in),
		out:         out,
		updates:     updates,
		unsubscribe: unsubscribe,
		last:        st.Session(),
		closers:     closers,
	}
}

// openStore builds the store selected by c.StoreBackend, sealed when a
// passphrase is configured. The returned funcs release backend resources.
func openStore(ctx context.Context, c *config.Config) (keystore.Store, []func() error, error) {
	var (
		kv      keystore.Store
		closers []func() error
	)

	switch c.StoreBackend {
	case config.StoreSQLite:
		if _, err := filex.EnsureParentDir(c.SQLiteDSN); err != nil {
			return nil, nil, err
		}
		s, db, err := keystore.OpenSQLite(ctx, c.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		kv, closers = s, append(closers, db.Close)
	case config.StoreMemory:
		kv = keystore.NewMemoryStore()
	case config.StoreRedis:
		s, err := keystore.NewRedisStore(c.RedisURL, c.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		kv, closers = s, append(closers, s.Close)
	default:
		return nil, nil, fmt.Errorf("%w: %q", common.ErrUnknownStoreBackend, c.StoreBackend)
	}

	if c.StorePassphrase == "" {
		return kv, closers, nil
	}

	pass := []byte(c.StorePassphrase)
	defer common.WipeByteArray(pass)

	sealed, err := keystore.NewSealedStore(ctx, kv, pass)
	if err != nil {
		_ = closeAll(closers)
		return nil, nil, err
	}
	return sealed, closers, nil
}

func closeAll(closers []func() error) error {
	var first error
	for _, c := range closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Run restores the stored session and serves the REPL until the user exits
// or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	fmt.Fprintln(a.out, "mobapp - type 'help' for available commands")
	a.session.CheckStoredSession(ctx)
	if s := a.current(); s.IsAuthenticated {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", s.User.FullName())
	}

	runREPL(ctx, a, a.status, a.reader)
}

// Close stops the session subscription and releases the store.
func (a *App) Close(ctx context.Context) {
	a.unsubscribe()
	if err := closeAll(a.closers); err != nil {
		a.log.Warn(ctx, "error closing store", "error", err)
	}
}

// current returns the latest session published to the app's subscription.
func (a *App) current() session.Session {
	for {
		select {
		case s, ok := <-a.updates:
			if !ok {
				return a.last
			}
			a.last = s
		default:
			return a.last
		}
	}
}

func (a *App) mode() session.Mode {
	return session.Presentation(a.current())
}

// status is the prompt label: the signed-in email, or the mode name.
func (a *App) status() string {
	s := a.current()
	if session.Presentation(s) == session.ModeMain && s.User != nil {
		return s.User.Email
	}
	return session.Presentation(s).String()
}
