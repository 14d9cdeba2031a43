// Package gateway drives the login, signup and privileged bootstrap flows
// against the identity service and commits the resulting session.
package gateway

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"galaxy-airline/internal/domain/auth"
	xerrors "galaxy-airline/internal/pkg/errors"
	"galaxy-airline/internal/sessionstore"

	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgMissingFields = "Please fill in all fields"
	MsgLoginFailed   = "Login failed"
	MsgSignupFailed  = "Signup failed"
	MsgNetworkError  = "Network error - please check your connection"
	MsgBusy          = "A request is already in progress"
	MsgSuperseded    = "Session changed while the request was in flight"
	MsgReauth        = "Admin demo account created - please sign in again"
)

const defaultTimeout = 15 * time.Second

// IdentityService is the remote side of every auth action.
type IdentityService interface {
	SubmitLogin(ctx context.Context, email, password string) (*auth.AuthResponse, error)
	SubmitSignup(ctx context.Context, email, password, name string) (*auth.AuthResponse, error)
}

type action int

const (
	actionLogin action = iota
	actionSignup
	actionBootstrap
	numActions
)

func (a action) String() string {
	switch a {
	case actionLogin:
		return "login"
	case actionSignup:
		return "signup"
	case actionBootstrap:
		return "bootstrap"
	}
	return "unknown"
}

type Gateway struct {
	svc     IdentityService
	store   *sessionstore.Store
	admin   BootstrapConfig
	timeout time.Duration
	logger  *zap.Logger

	inflight [numActions]atomic.Bool

	// commitMu serialises session writes; generation counts committed changes.
	commitMu   sync.Mutex
	generation uint64

	wg sync.WaitGroup
}

type Option func(*Gateway)

// WithTimeout bounds each remote round trip.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func New(svc IdentityService, store *sessionstore.Store, admin BootstrapConfig, opts ...Option) *Gateway {
	g := &Gateway{
		svc:     svc,
		store:   store,
		admin:   admin,
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login authenticates an existing account and commits the session.
func (g *Gateway) Login(ctx context.Context, email, password string) (auth.Identity, error) {
	email, password = strings.TrimSpace(email), strings.TrimSpace(password)
	if email == "" || password == "" {
		return auth.Identity{}, validationError()
	}

	return run(ctx, g, actionLogin, func(ctx context.Context, gen uint64) (auth.Identity, error) {
		resp, err := g.submitLogin(ctx, email, password)
		if err != nil {
			return auth.Identity{}, g.remoteFailure(actionLogin, email, err)
		}
		if !resp.Authenticated() {
			return auth.Identity{}, g.rejection(actionLogin, email, resp, MsgLoginFailed)
		}
		if err := g.commit(ctx, gen, *resp.User, resp.AccessToken); err != nil {
			return auth.Identity{}, err
		}
		g.logger.Info("login succeeded",
			zap.String("email", email),
			zap.String("role", string(resp.User.Role)),
		)
		return *resp.User, nil
	})
}

// Signup creates an account and commits the session the service returns.
func (g *Gateway) Signup(ctx context.Context, email, password, name string) (auth.Identity, error) {
	email, password, name = strings.TrimSpace(email), strings.TrimSpace(password), strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return auth.Identity{}, validationError()
	}

	return run(ctx, g, actionSignup, func(ctx context.Context, gen uint64) (auth.Identity, error) {
		resp, err := g.submitSignup(ctx, email, password, name)
		if err != nil {
			return auth.Identity{}, g.remoteFailure(actionSignup, email, err)
		}
		if !resp.Authenticated() {
			return auth.Identity{}, g.rejection(actionSignup, email, resp, MsgSignupFailed)
		}
		if err := g.commit(ctx, gen, *resp.User, resp.AccessToken); err != nil {
			return auth.Identity{}, err
		}
		g.logger.Info("signup succeeded", zap.String("email", email))
		return *resp.User, nil
	})
}

// Logout clears the stored session. Commits from operations that started
// before the logout are dropped.
func (g *Gateway) Logout(ctx context.Context) error {
	g.commitMu.Lock()
	defer g.commitMu.Unlock()

	if err := g.store.Clear(ctx); err != nil {
		return err
	}
	g.generation++
	g.logger.Info("logged out")
	return nil
}

// Busy reports whether any auth action is currently submitting.
func (g *Gateway) Busy() bool {
	for i := range g.inflight {
		if g.inflight[i].Load() {
			return true
		}
	}
	return false
}

// Wait blocks until all in-flight work has finished, including work whose
// caller has already gone away.
func (g *Gateway) Wait() {
	g.wg.Wait()
}

type result[T any] struct {
	val T
	err error
}

// run executes fn for action a in its own goroutine. The caller's context
// only bounds how long the caller waits: fn runs on a detached context so
// its session commit still happens if the caller goes away.
func run[T any](ctx context.Context, g *Gateway, a action, fn func(context.Context, uint64) (T, error)) (T, error) {
	var zero T
	if !g.inflight[a].CompareAndSwap(false, true) {
		g.logger.Debug("rejected re-entrant request", zap.Stringer("action", a))
		return zero, xerrors.NewAuthError(xerrors.ErrBusy, MsgBusy, nil)
	}

	gen := g.currentGeneration()
	done := make(chan result[T], 1)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.inflight[a].Store(false)

		v, err := fn(context.WithoutCancel(ctx), gen)
		done <- result[T]{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		g.logger.Debug("caller stopped waiting", zap.Stringer("action", a), zap.Error(ctx.Err()))
		return zero, ctx.Err()
	}
}

func (g *Gateway) currentGeneration() uint64 {
	g.commitMu.Lock()
	defer g.commitMu.Unlock()
	return g.generation
}

// commit saves the session unless a newer change was committed after the
// operation identified by gen started.
func (g *Gateway) commit(ctx context.Context, gen uint64, identity auth.Identity, token string) error {
	g.commitMu.Lock()
	defer g.commitMu.Unlock()

	if g.generation != gen {
		g.logger.Warn("dropping stale session commit",
			zap.String("identity_id", identity.ID),
			zap.Uint64("started_at", gen),
			zap.Uint64("current", g.generation),
		)
		return xerrors.NewAuthError(xerrors.ErrSuperseded, MsgSuperseded, nil)
	}
	if err := g.store.Save(ctx, identity, token); err != nil {
		return err
	}
	g.generation++
	return nil
}

func (g *Gateway) submitLogin(ctx context.Context, email, password string) (*auth.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.svc.SubmitLogin(ctx, email, password)
}

func (g *Gateway) submitSignup(ctx context.Context, email, password, name string) (*auth.AuthResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.svc.SubmitSignup(ctx, email, password, name)
}

func (g *Gateway) remoteFailure(a action, email string, err error) error {
	g.logger.Warn("identity service unreachable",
		zap.Stringer("action", a),
		zap.String("email", email),
		zap.Error(err),
	)
	return xerrors.NewAuthError(xerrors.ErrTransport, MsgNetworkError, err)
}

func (g *Gateway) rejection(a action, email string, resp *auth.AuthResponse, fallback string) error {
	msg := fallback
	if resp != nil && resp.Message != "" {
		msg = resp.Message
	}
	g.logger.Info("identity service rejected request",
		zap.Stringer("action", a),
		zap.String("email", email),
		zap.String("message", msg),
	)
	return xerrors.NewAuthError(xerrors.ErrRejected, msg, nil)
}

func validationError() error {
	return xerrors.NewAuthError(xerrors.ErrValidation, MsgMissingFields, nil)
}

// Message returns the single user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ae *xerrors.AuthError
	if errors.As(err, &ae) {
		return ae.Error()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return MsgNetworkError
	}
	return err.Error()
}
