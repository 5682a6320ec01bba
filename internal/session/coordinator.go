// Copyright (c) 2026 Uptown Gym. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/uptowngym/internal/backend"
	"github.com/taibuivan/uptowngym/internal/kv"
	"github.com/taibuivan/uptowngym/internal/platform/sec"
)

// # Configuration

// Options configure a [Coordinator].
type Options struct {
	// Backend is the backing service. Required.
	Backend backend.Client

	// Store holds the advisory cache. Defaults to an in-memory store.
	Store kv.Store

	// Allowlist is the known-admin allowlist. An empty allowlist falls back
	// to [sec.DefaultAdminEmails].
	Allowlist sec.Allowlist

	// RedirectTo is sent with password reset requests.
	RedirectTo string

	// Notifier surfaces user-visible messages. Defaults to a [LogNotifier].
	Notifier Notifier

	// OnTransition observes every login and logout transition change.
	OnTransition func(Transition)

	Logger *slog.Logger
}

// # Coordinator

// Coordinator owns the auth state of one application instance.
// All methods are safe for concurrent use.
type Coordinator struct {
	backend      backend.Client
	cache        *Cache
	resolver     *RoleResolver
	allowlist    sec.Allowlist
	notifier     Notifier
	onTransition func(Transition)
	redirectTo   string
	logger       *slog.Logger
	now          func() time.Time

	baseCtx   context.Context
	cancelAll context.CancelFunc
	startOnce sync.Once
	closeOnce sync.Once
	tasks     sync.WaitGroup

	mu             sync.Mutex
	state          State
	bootstrapping  bool
	task           *syncTask
	transition     *Transition
	transitionSeq  uint64
	subscription   backend.Subscription
	subscribers    map[int]func(State)
	nextSubscriber int
	closed         bool
}

// New constructs an uninitialized [Coordinator]. Call [Coordinator.Start] once.
func New(options Options) *Coordinator {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := options.Store
	if store == nil {
		store = kv.NewMemoryStore()
	}

	allowlist := options.Allowlist
	if len(allowlist.Emails()) == 0 {
		allowlist = sec.NewAllowlist(sec.DefaultAdminEmails...)
	}

	notifier := options.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	cache := NewCache(store)
	baseCtx, cancelAll := context.WithCancel(context.Background())

	return &Coordinator{
		backend:      options.Backend,
		cache:        cache,
		resolver:     NewRoleResolver(options.Backend.Profiles(), cache, allowlist, logger),
		allowlist:    allowlist,
		notifier:     notifier,
		onTransition: options.OnTransition,
		redirectTo:   options.RedirectTo,
		logger:       logger,
		now:          time.Now,
		baseCtx:      baseCtx,
		cancelAll:    cancelAll,
		subscribers:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Resolver exposes the role resolver used by the coordinator.
func (c *Coordinator) Resolver() *RoleResolver {
	return c.resolver
}

// Cache exposes the advisory cache.
func (c *Coordinator) Cache() *Cache {
	return c.cache
}

// Transition returns the most recent login or logout transition.
func (c *Coordinator) Transition() (Transition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.transition == nil {
		return Transition{}, false
	}
	return *c.transition, true
}

// Subscribe calls fn with every new state until the returned func is called.
// Snapshots from different goroutines may arrive out of order; compare
// [State.Generation] to keep the newest.
func (c *Coordinator) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextSubscriber++
	id := c.nextSubscriber
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

// Wait blocks until background profile work has finished.
func (c *Coordinator) Wait() {
	c.tasks.Wait()
}

// Close releases the auth subscription and cancels background work.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		subscription := c.subscription
		c.subscription = nil
		if c.task != nil {
			c.task.cancel()
			c.task = nil
		}
		c.subscribers = make(map[int]func(State))
		c.mu.Unlock()

		if subscription != nil {
			subscription.Unsubscribe()
		}
		c.cancelAll()
		c.tasks.Wait()
	})
}

// # State Helpers

// commitLocked installs next with a new generation and returns a copy for publishing.
func (c *Coordinator) commitLocked(next State) State {
	next.Generation = c.state.Generation + 1
	c.state = next
	return next.clone()
}

// publish delivers snapshot to subscribers. Must be called without c.mu held.
func (c *Coordinator) publish(snapshot State) {
	c.mu.Lock()
	targets := make([]func(State), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		targets = append(targets, fn)
	}
	c.mu.Unlock()

	for _, fn := range targets {
		fn(snapshot.clone())
	}
}

// saveAuthStateLocked writes the coarse auth state to the cache.
func (c *Coordinator) saveAuthStateLocked(ctx context.Context, state State) {
	if !state.IsAuthenticated || state.User == nil {
		return
	}

	err := c.cache.SaveAuthState(ctx, AuthSnapshot{
		IsAuthenticated: true,
		IsAdmin:         state.IsAdmin,
		UserID:          state.User.ID,
		Email:           state.User.Email,
		LastUpdated:     c.now().UTC(),
	})
	if err != nil {
		c.logger.Warn("auth_state_cache_write_failed", slog.Any("error", err))
	}
}

// clearCacheLocked removes both cache entries.
func (c *Coordinator) clearCacheLocked(ctx context.Context) {
	if err := c.cache.Clear(ctx); err != nil {
		c.logger.Warn("auth_cache_clear_failed", slog.Any("error", err))
	}
}

// goTracked runs fn in a goroutine counted by [Coordinator.Wait].
// It reports false when the coordinator is closed.
func (c *Coordinator) goTracked(fn func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.tasks.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.tasks.Done()
		fn()
	}()
	return true
}

// # Transitions

// beginTransitionLocked opens a pending transition that snapshots the current state.
func (c *Coordinator) beginTransitionLocked(kind TransitionKind) Transition {
	c.transitionSeq++
	transition := &Transition{
		Seq:       c.transitionSeq,
		Kind:      kind,
		Phase:     TransitionPending,
		Previous:  c.state.clone(),
		StartedAt: c.now(),
	}
	c.transition = transition
	return *transition
}

// settleTransitionLocked moves transition seq out of pending. It reports
// false when seq is no longer the current transition or already settled.
func (c *Coordinator) settleTransitionLocked(seq uint64, phase TransitionPhase, err error) (Transition, bool) {
	if c.transition == nil || c.transition.Seq != seq || c.transition.Settled() {
		return Transition{}, false
	}
	c.transition.Phase = phase
	c.transition.Err = err
	c.transition.SettledAt = c.now()
	return *c.transition, true
}

func (c *Coordinator) emitTransition(transition Transition) {
	if c.onTransition != nil {
		c.onTransition(transition)
	}
}

// # Identity Helpers

// optimisticUserLocked builds the user shown before the profile is read:
// allowlist first, then the cached snapshot, else a plain member.
func (c *Coordinator) optimisticUserLocked(ctx context.Context, user backend.User) *AuthUser {
	authUser := &AuthUser{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.UserMetadata.FullName,
		Role:     sec.RoleMember,
	}

	if resolution, _ := c.resolver.Peek(ctx, user.ID, user.Email); resolution != nil {
		authUser.Role = resolution.Role
		authUser.IsAdmin = resolution.IsAdmin
		authUser.IsStaff = resolution.IsStaff
		if resolution.FullName != "" {
			authUser.FullName = resolution.FullName
		}
	}
	return authUser
}

// minimalUser is the fallback identity when the profile cannot be read.
func (c *Coordinator) minimalUser(id, email, fullName string) *AuthUser {
	isAdmin := c.allowlist.Contains(email)
	return &AuthUser{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     c.allowlist.DefaultRole(email),
		IsAdmin:  isAdmin,
		IsStaff:  isAdmin,
	}
}
