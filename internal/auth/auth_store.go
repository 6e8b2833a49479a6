package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	autherrors "github.com/Keerthudarshu/petandco/internal/auth/errors"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	"github.com/Keerthudarshu/petandco/internal/metrics"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	KeyIdentity = "auth_identity"
	KeySession  = "auth_session"
)

//go:generate mockgen -source=auth_store.go -destination=../mock/auth/auth_store_mock.go -package=mock
type Authenticator interface {
	Login(ctx context.Context, req commerceapi.LoginRequest) (commerceapi.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

type Event struct {
	Kind    EventKind
	Session Session
}

type Subscription struct {
	store *Store
	id    uint64
	once  sync.Once
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.store.unsubscribe(s.id) })
}

type subscriber struct {
	id uint64
	fn func(Event)
}

type Option func(*Store)

// WithVerifier makes the store check the token signature and role claim,
// both on restore and on every IsAdmin call.
func WithVerifier(v TokenVerifier) Option {
	return func(s *Store) { s.verifier = v }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("auth.store")
		}
	}
}

func WithMetrics(m *metrics.Storefront) Option {
	return func(s *Store) { s.metrics = m }
}

// Store tracks one visitor's signed-in identity.
type Store struct {
	mu      sync.RWMutex
	current *Session
	subs    []subscriber
	nextSub uint64

	auth     Authenticator
	kv       storage.KV
	verifier TokenVerifier
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Storefront
}

func NewStore(a Authenticator, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		auth:     a,
		kv:       kv,
		validate: validator.New(),
		logger:   zap.L().Named("auth.store"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SignIn authenticates against the commerce backend and persists the
// session. On any failure nothing changes, in memory or in storage.
func (s *Store) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := s.validate.Struct(creds); err != nil {
		return Session{}, autherrors.ErrAuthenticationFailed.Wrap(err)
	}

	res, err := s.auth.Login(ctx, commerceapi.LoginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		if commerceapi.IsClientError(err) {
			return Session{}, autherrors.ErrAuthenticationFailed.Wrap(err)
		}
		s.logger.Error("login call failed", zap.Error(err))
		return Session{}, autherrors.ErrAuthUnavailable.Wrap(err)
	}

	role, _ := ParseRole(res.Role)
	sess := Session{
		UserID: res.UserID.String(),
		Name:   strings.TrimSpace(res.Name),
		Email:  strings.TrimSpace(res.Email),
		Role:   role,
		Token:  res.Token,
	}
	if !sess.complete() {
		return Session{}, autherrors.ErrAuthenticationFailed.Wrap(errors.New("incomplete session returned by backend"))
	}
	if err := s.verify(sess); err != nil {
		return Session{}, autherrors.ErrAuthenticationFailed.Wrap(err)
	}

	if err := s.write(ctx, sess); err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	prev := s.current
	s.current = &sess
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if prev != nil && prev.UserID != sess.UserID {
		s.logger.Info("session replaced", zap.String("user_id", prev.UserID))
		notify(subs, Event{Kind: EventSignedOut, Session: *prev})
	}
	s.logger.Info("signed in", zap.String("user_id", sess.UserID), zap.String("role", string(sess.Role)))
	notify(subs, Event{Kind: EventSignedIn, Session: sess})
	return sess, nil
}

func (s *Store) write(ctx context.Context, sess Session) error {
	sessRaw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	identRaw, err := json.Marshal(sess.Identity())
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	if err := s.kv.Set(ctx, KeySession, string(sessRaw)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	if err := s.kv.Set(ctx, KeyIdentity, string(identRaw)); err != nil {
		_ = s.kv.Delete(ctx, KeySession)
		return fmt.Errorf("persist identity: %w", err)
	}
	return nil
}

// SignOut clears the session. The backend logout is best effort and the
// call is a no-op when already signed out.
func (s *Store) SignOut(ctx context.Context) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if prev != nil {
		if err := s.auth.Logout(ctx, prev.Token); err != nil {
			s.logger.Warn("remote logout failed", zap.String("user_id", prev.UserID), zap.Error(err))
		}
	}
	if err := s.kv.Delete(ctx, KeySession, KeyIdentity); err != nil {
		s.logger.Warn("delete session records failed", zap.Error(err))
	}

	if prev != nil {
		s.logger.Info("signed out", zap.String("user_id", prev.UserID))
		notify(subs, Event{Kind: EventSignedOut, Session: *prev})
	}
}

// Restore loads the persisted session. Malformed, incomplete or
// inconsistent records are purged and leave the store signed out. Storage
// outages also leave it signed out but keep the records for the next try.
func (s *Store) Restore(ctx context.Context) {
	sess, err := s.readPersisted(ctx)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		return
	case errors.Is(err, autherrors.ErrCorruptPersistedState):
		s.logger.Warn("purging corrupt session records", zap.Error(err))
		s.metrics.IncPurge(KeySession)
		if delErr := s.kv.Delete(ctx, KeySession, KeyIdentity); delErr != nil {
			s.logger.Error("purge session records failed", zap.Error(delErr))
		}
		s.clear()
		return
	default:
		s.logger.Error("read session records failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.current = &sess
	subs := s.subscribersLocked()
	s.mu.Unlock()
	notify(subs, Event{Kind: EventSignedIn, Session: sess})
}

func (s *Store) clear() {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	subs := s.subscribersLocked()
	s.mu.Unlock()
	if prev != nil {
		notify(subs, Event{Kind: EventSignedOut, Session: *prev})
	}
}

func (s *Store) readPersisted(ctx context.Context) (Session, error) {
	raw, err := s.kv.Get(ctx, KeySession)
	if errors.Is(err, storage.ErrNotFound) {
		// An identity without a session is a leftover from a partial write.
		if _, identErr := s.kv.Get(ctx, KeyIdentity); identErr == nil {
			return Session{}, autherrors.ErrCorruptPersistedState.Wrap(errors.New("identity without session"))
		}
		return Session{}, storage.ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, autherrors.ErrCorruptPersistedState.Wrap(err)
	}
	role, ok := ParseRole(string(sess.Role))
	if !ok {
		return Session{}, autherrors.ErrCorruptPersistedState.Wrap(fmt.Errorf("unknown role %q", sess.Role))
	}
	sess.Role = role
	if !sess.complete() {
		return Session{}, autherrors.ErrCorruptPersistedState.Wrap(errors.New("incomplete session"))
	}

	identRaw, err := s.kv.Get(ctx, KeyIdentity)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		if raw, mErr := json.Marshal(sess.Identity()); mErr == nil {
			_ = s.kv.Set(ctx, KeyIdentity, string(raw))
		}
	case err != nil:
		return Session{}, err
	default:
		var ident Identity
		if err := json.Unmarshal([]byte(identRaw), &ident); err != nil {
			return Session{}, autherrors.ErrCorruptPersistedState.Wrap(err)
		}
		identRole, _ := ParseRole(string(ident.Role))
		if ident.UserID != sess.UserID || identRole != sess.Role {
			return Session{}, autherrors.ErrCorruptPersistedState.Wrap(errors.New("identity does not match session"))
		}
	}

	if err := s.verify(sess); err != nil {
		return Session{}, autherrors.ErrCorruptPersistedState.Wrap(err)
	}
	return sess, nil
}

// verify checks the token against the session when a verifier is set.
func (s *Store) verify(sess Session) error {
	if s.verifier == nil {
		return nil
	}
	claims, err := s.verifier.Verify(sess.Token)
	if err != nil {
		return err
	}
	if claims.Role != sess.Role {
		return fmt.Errorf("token role %q does not match session role %q", claims.Role, sess.Role)
	}
	if claims.Subject != "" && claims.Subject != sess.UserID {
		return errors.New("token subject does not match session user")
	}
	return nil
}

func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", false
	}
	return s.current.Token, true
}

func (s *Store) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// IsAdmin is true only for a session whose role is admin. With a verifier
// configured the token is re-checked on every call, so an edited record or
// an expired token never grants admin access.
func (s *Store) IsAdmin() bool {
	sess, ok := s.Current()
	if !ok || sess.Role != RoleAdmin {
		return false
	}
	if err := s.verify(sess); err != nil {
		s.logger.Warn("admin token rejected", zap.String("user_id", sess.UserID), zap.Error(err))
		return false
	}
	return true
}

func (s *Store) Subscribe(fn func(Event)) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: s.nextSub, fn: fn})
	return &Subscription{store: s, id: s.nextSub}
}

func (s *Store) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

func (s *Store) subscribersLocked() []func(Event) {
	out := make([]func(Event), 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub.fn)
	}
	return out
}

func notify(subs []func(Event), ev Event) {
	for _, fn := range subs {
		fn(ev)
	}
}
