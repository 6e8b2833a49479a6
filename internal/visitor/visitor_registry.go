// Package visitor owns the per-browser stores. A visitor is identified by a
// cookie and gets one auth session store and one cart store, both backed by
// records scoped to that visitor.
package visitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Keerthudarshu/petandco/internal/auth"
	"github.com/Keerthudarshu/petandco/internal/cart"
	"github.com/Keerthudarshu/petandco/internal/metrics"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"go.uber.org/zap"
)

// RemoteAPI is the slice of the commerce backend a visitor's stores call.
type RemoteAPI interface {
	auth.Authenticator
	cart.RemoteCart
}

// CartObserver receives every cart event of every live visitor. userID is
// empty for anonymous visitors.
type CartObserver func(visitorID, userID string, ev cart.Event)

type Visitor struct {
	ID      string
	Session *auth.Store
	Cart    *cart.Store

	lastSeen atomic.Int64
	authSub  *auth.Subscription
	cartSub  *cart.Subscription
}

func (v *Visitor) touch(now time.Time) {
	v.lastSeen.Store(now.UnixNano())
}

func (v *Visitor) idleSince() time.Time {
	return time.Unix(0, v.lastSeen.Load())
}

// entry lets concurrent first requests of one visitor share a single load.
type entry struct {
	ready chan struct{}
	v     *Visitor
}

type Registry struct {
	api      RemoteAPI
	kv       storage.KV
	verifier auth.TokenVerifier
	observer CartObserver
	idleTTL  time.Duration
	retry    time.Duration
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Storefront

	mu       sync.Mutex
	visitors map[string]*entry
	byUser   map[string]map[string]struct{}
}

type Option func(*Registry)

func WithVerifier(v auth.TokenVerifier) Option {
	return func(r *Registry) { r.verifier = v }
}

func WithCartObserver(fn CartObserver) Option {
	return func(r *Registry) { r.observer = fn }
}

// WithIdleTTL evicts visitors not seen for ttl. Zero keeps them forever.
func WithIdleTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.idleTTL = ttl }
}

func WithRetryInterval(d time.Duration) Option {
	return func(r *Registry) { r.retry = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMetrics(m *metrics.Storefront) Option {
	return func(r *Registry) { r.metrics = m }
}

func NewRegistry(api RemoteAPI, kv storage.KV, opts ...Option) *Registry {
	r := &Registry{
		api:      api,
		kv:       kv,
		idleTTL:  30 * time.Minute,
		retry:    15 * time.Second,
		now:      time.Now,
		logger:   zap.L(),
		visitors: make(map[string]*entry),
		byUser:   make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Get returns the live visitor for id, restoring it from storage on first
// use.
func (r *Registry) Get(ctx context.Context, id string) (*Visitor, error) {
	if id == "" {
		return nil, errors.New("visitor: empty id")
	}

	r.mu.Lock()
	e, ok := r.visitors[id]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		r.visitors[id] = e
	}
	r.mu.Unlock()

	if ok {
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		e.v.touch(r.now())
		return e.v, nil
	}

	e.v = r.load(ctx, id)
	close(e.ready)
	r.metrics.SetActiveVisitors(r.Len())
	return e.v, nil
}

func (r *Registry) load(ctx context.Context, id string) *Visitor {
	log := r.logger.With(zap.String("visitor_id", id))
	kv := storage.Scoped(r.kv, "visitor", id)

	v := &Visitor{ID: id}
	v.touch(r.now())
	v.Session = auth.NewStore(r.api, kv,
		auth.WithVerifier(r.verifier),
		auth.WithLogger(log),
		auth.WithMetrics(r.metrics),
	)
	v.Cart = cart.New(
		cart.WithRemote(r.api, v.Session),
		cart.WithStorage(kv),
		cart.WithLogger(log),
		cart.WithMetrics(r.metrics),
	)

	v.authSub = v.Session.Subscribe(func(ev auth.Event) {
		switch ev.Kind {
		case auth.EventSignedIn:
			r.index(ev.Session.UserID, id)
		case auth.EventSignedOut:
			r.unindex(ev.Session.UserID, id)
		}
	})
	if r.observer != nil {
		v.cartSub = v.Cart.Subscribe(func(ev cart.Event) {
			var userID string
			if sess, ok := v.Session.Current(); ok {
				userID = sess.UserID
			}
			r.observer(id, userID, ev)
		})
	}

	v.Session.Restore(ctx)
	if err := v.Cart.Load(ctx); err != nil {
		log.Warn("load cart snapshot failed", zap.Error(err))
	}
	if v.Session.Authenticated() {
		if err := v.Cart.Attach(ctx); err != nil {
			// Stays pending; the retry loop picks it up.
			log.Warn("attach restored session cart failed", zap.Error(err))
		}
	}
	return v
}

func (r *Registry) index(userID, visitorID string) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[visitorID] = struct{}{}
}

func (r *Registry) unindex(userID, visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unindexLocked(userID, visitorID)
}

func (r *Registry) unindexLocked(userID, visitorID string) {
	set, ok := r.byUser[userID]
	if !ok {
		return
	}
	delete(set, visitorID)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
}

type Stats struct {
	Visitors      int `json:"activeVisitors"`
	SignedInUsers int `json:"signedInUsers"`
	PendingSync   int `json:"pendingSync"`
	CartItems     int `json:"cartItems"`
}

// Stats summarizes the live visitors.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	users := len(r.byUser)
	r.mu.Unlock()

	st := Stats{SignedInUsers: users}
	for _, v := range r.ready() {
		st.Visitors++
		st.PendingSync += v.Cart.PendingSync()
		st.CartItems += v.Cart.CartItemCount()
	}
	return st
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

func (e *entry) loaded() (*Visitor, bool) {
	select {
	case <-e.ready:
		return e.v, true
	default:
		return nil, false
	}
}

// ready lists the visitors whose load has finished.
func (r *Registry) ready() []*Visitor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Visitor, 0, len(r.visitors))
	for _, e := range r.visitors {
		if v, ok := e.loaded(); ok {
			out = append(out, v)
		}
	}
	return out
}

// ClearUserCarts empties the cart of every live visitor signed in as
// userID and reports how many were cleared.
func (r *Registry) ClearUserCarts(userID string) int {
	r.mu.Lock()
	targets := make([]*Visitor, 0, len(r.byUser[userID]))
	for visitorID := range r.byUser[userID] {
		if e, ok := r.visitors[visitorID]; ok {
			if v, loaded := e.loaded(); loaded {
				targets = append(targets, v)
			}
		}
	}
	r.mu.Unlock()

	for _, v := range targets {
		v.Cart.ClearCart()
	}
	return len(targets)
}

// Run retries pending cart sync and evicts idle visitors until ctx ends.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	r.logger.Info("visitor maintenance started", zap.Duration("interval", r.retry))
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.RetryPending(ctx)
			r.EvictIdle()
		}
	}
}

// RetryPending flushes every visitor cart that still has remote work.
func (r *Registry) RetryPending(ctx context.Context) {
	for _, v := range r.ready() {
		if v.Cart.PendingSync() == 0 {
			continue
		}
		if err := v.Cart.Flush(ctx); err != nil {
			r.logger.Debug("cart sync retry failed", zap.String("visitor_id", v.ID), zap.Error(err))
		}
	}
}

// EvictIdle drops visitors idle longer than the idle TTL. Visitors with
// unsent cart writes are kept until the writes land.
func (r *Registry) EvictIdle() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	evicted := make([]*Visitor, 0)
	for id, e := range r.visitors {
		v, ok := e.loaded()
		if !ok || v.idleSince().After(cutoff) || v.Cart.PendingSync() > 0 {
			continue
		}
		delete(r.visitors, id)
		if sess, ok := v.Session.Current(); ok {
			r.unindexLocked(sess.UserID, id)
		}
		evicted = append(evicted, v)
	}
	n := len(r.visitors)
	r.mu.Unlock()

	for _, v := range evicted {
		r.release(v)
	}
	if len(evicted) > 0 {
		r.logger.Debug("evicted idle visitors", zap.Int("count", len(evicted)))
	}
	r.metrics.SetActiveVisitors(n)
	return len(evicted)
}

func (r *Registry) release(v *Visitor) {
	v.authSub.Unsubscribe()
	v.cartSub.Unsubscribe()
	v.Cart.Close()
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	all := make([]*Visitor, 0, len(r.visitors))
	for _, e := range r.visitors {
		if v, ok := e.loaded(); ok {
			all = append(all, v)
		}
	}
	r.visitors = make(map[string]*entry)
	r.byUser = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, v := range all {
		r.release(v)
	}
	r.metrics.SetActiveVisitors(0)
}
