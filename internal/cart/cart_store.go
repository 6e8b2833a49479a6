package cart

import (
	"context"
	"strings"
	"sync"

	carterrors "github.com/Keerthudarshu/petandco/internal/cart/errors"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	"github.com/Keerthudarshu/petandco/internal/metrics"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

//go:generate mockgen -source=cart_store.go -destination=../mock/cart/cart_store_mock.go -package=mock
type RemoteCart interface {
	GetCart(ctx context.Context, token string) (commerceapi.Cart, error)
	PutCartItem(ctx context.Context, token string, item commerceapi.CartItem) error
	DeleteCartItem(ctx context.Context, token, lineID string) error
	ClearCart(ctx context.Context, token string) error
}

// TokenSource yields the bearer token of the signed-in user, if any.
type TokenSource interface {
	Token() (string, bool)
}

type EventKind string

const (
	EventMutated    EventKind = "mutated"
	EventCleared    EventKind = "cleared"
	EventSynced     EventKind = "synced"
	EventSyncFailed EventKind = "sync_failed"
	// EventDetached empties the local cart on sign-out. The remote cart is
	// kept, so it is not a clear.
	EventDetached EventKind = "detached"
)

type Event struct {
	Kind     EventKind
	Snapshot Snapshot
	Err      error
}

type subscriber struct {
	id uint64
	fn func(Event)
}

type Subscription struct {
	store *Store
	id    uint64
	once  sync.Once
}

// Unsubscribe stops notifications. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.store.unsubscribe(s.id) })
}

type pendingOp struct {
	version uint64
	seq     uint64
}

type Option func(*Store)

func WithRemote(remote RemoteCart, tokens TokenSource) Option {
	return func(s *Store) {
		s.remote = remote
		s.tokens = tokens
	}
}

func WithStorage(kv storage.KV) Option {
	return func(s *Store) { s.kv = kv }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l.Named("cart.store")
		}
	}
}

func WithMetrics(m *metrics.Storefront) Option {
	return func(s *Store) { s.metrics = m }
}

// Store owns one visitor's cart lines and wishlist. Mutations apply
// synchronously; remote writes run on a per-store drain serialized by
// drainMu.
type Store struct {
	mu         sync.Mutex
	lines      []CartLine
	wishlist   []WishlistItem
	version    uint64
	attached   bool
	needsMerge bool
	pending    map[string]pendingOp
	clearAt    uint64
	seq        uint64
	draining   bool
	lastErr    error
	subs       []subscriber
	nextSub    uint64

	drainMu sync.Mutex

	persistMu        sync.Mutex
	persistedVersion uint64

	remote   RemoteCart
	tokens   TokenSource
	kv       storage.KV
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *metrics.Storefront

	ctx    context.Context
	cancel context.CancelFunc
}

func New(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		pending:  make(map[string]pendingOp),
		validate: validator.New(),
		logger:   zap.L().Named("cart.store"),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Close stops background synchronization. Local state stays readable.
func (s *Store) Close() {
	s.cancel()
}

// change is what a committed mutation hands to the work done outside mu.
type change struct {
	event    Event
	subs     []func(Event)
	attached bool
}

// commitLocked bumps the version and stamps pending remote work for ids.
// Caller holds mu.
func (s *Store) commitLocked(kind EventKind, ids ...string) change {
	s.version++
	if s.attached {
		for _, id := range ids {
			s.seq++
			s.pending[id] = pendingOp{version: s.version, seq: s.seq}
		}
	}
	return change{
		event:    Event{Kind: kind, Snapshot: s.snapshotLocked()},
		subs:     s.subscribersLocked(),
		attached: s.attached,
	}
}

func (s *Store) apply(ch change) {
	s.persist(ch.event.Snapshot, ch.attached)
	s.notify(ch)
	if ch.attached {
		s.schedule()
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.lines {
		if s.lines[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) wishlistIndexLocked(id string) int {
	for i := range s.wishlist {
		if s.wishlist[i].ID == id {
			return i
		}
	}
	return -1
}

// AddToCart merges quantity into the line for item, creating it if needed.
func (s *Store) AddToCart(item Item, quantity int) (CartLine, error) {
	if quantity < 1 {
		return CartLine{}, carterrors.ErrInvalidQuantity
	}
	if err := s.validate.Struct(item); err != nil {
		return CartLine{}, carterrors.MapValidationError(err)
	}
	if item.UnitPrice.IsNegative() {
		return CartLine{}, carterrors.ErrInvalidLine
	}
	line := item.toLine()
	if line.ID == "" || strings.ContainsAny(line.ID, " \t\r\n") {
		return CartLine{}, carterrors.ErrInvalidLine
	}

	s.mu.Lock()
	idx := s.indexLocked(line.ID)
	if idx >= 0 {
		existing := &s.lines[idx]
		stock := existing.StockQuantity
		if line.StockQuantity != nil {
			stock = line.StockQuantity
		}
		next := capQuantity(existing.Quantity+quantity, stock)
		if next <= existing.Quantity {
			// No room left; never shrink a line on add.
			s.mu.Unlock()
			return CartLine{}, carterrors.ErrOutOfStock
		}
		existing.StockQuantity = copyInt(stock)
		existing.Quantity = next
		out := cloneLine(*existing)
		ch := s.commitLocked(EventMutated, out.ID)
		s.mu.Unlock()

		s.metrics.IncMutation("add")
		s.apply(ch)
		return out, nil
	}

	line.Quantity = capQuantity(quantity, line.StockQuantity)
	if line.Quantity < 1 {
		s.mu.Unlock()
		return CartLine{}, carterrors.ErrOutOfStock
	}
	s.lines = append(s.lines, line)
	out := cloneLine(line)
	ch := s.commitLocked(EventMutated, out.ID)
	s.mu.Unlock()

	s.metrics.IncMutation("add")
	s.apply(ch)
	return out, nil
}

// UpdateQuantity sets a line's quantity. Zero removes the line.
func (s *Store) UpdateQuantity(lineID string, quantity int) error {
	if quantity < 0 {
		return carterrors.ErrInvalidQuantity
	}
	if quantity == 0 {
		s.RemoveFromCart(lineID)
		return nil
	}

	s.mu.Lock()
	idx := s.indexLocked(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return carterrors.ErrLineNotFound
	}
	next := capQuantity(quantity, s.lines[idx].StockQuantity)
	if next == s.lines[idx].Quantity {
		s.mu.Unlock()
		return nil
	}
	if next < 1 {
		s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	} else {
		s.lines[idx].Quantity = next
	}
	ch := s.commitLocked(EventMutated, lineID)
	s.mu.Unlock()

	s.metrics.IncMutation("update")
	s.apply(ch)
	return nil
}

// RemoveFromCart drops the line. Absent lines are ignored.
func (s *Store) RemoveFromCart(lineID string) {
	s.mu.Lock()
	idx := s.indexLocked(lineID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	ch := s.commitLocked(EventMutated, lineID)
	s.mu.Unlock()

	s.metrics.IncMutation("remove")
	s.apply(ch)
}

// ClearCart empties the cart locally; the remote clear is retried until
// acknowledged or the session is detached.
func (s *Store) ClearCart() {
	s.mu.Lock()
	s.lines = nil
	if s.attached {
		s.pending = make(map[string]pendingOp)
		// A merge still owed from sign-in would adopt the remote lines
		// this clear removes.
		s.needsMerge = false
	}
	ch := s.commitLocked(EventCleared)
	if s.attached {
		s.clearAt = s.version
	}
	s.mu.Unlock()

	s.metrics.IncMutation("clear")
	s.apply(ch)
}

func (s *Store) AddToWishlist(item WishlistItem) error {
	item, err := normalizeWishlistItem(item)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.wishlistIndexLocked(item.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	s.wishlist = append(s.wishlist, item)
	ch := s.commitLocked(EventMutated)
	s.mu.Unlock()

	s.finishWishlist("wishlist_add", ch)
	return nil
}

func (s *Store) RemoveFromWishlist(id string) {
	s.mu.Lock()
	idx := s.wishlistIndexLocked(strings.TrimSpace(id))
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.wishlist = append(s.wishlist[:idx], s.wishlist[idx+1:]...)
	ch := s.commitLocked(EventMutated)
	s.mu.Unlock()

	s.finishWishlist("wishlist_remove", ch)
}

func (s *Store) IsInWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistIndexLocked(strings.TrimSpace(id)) >= 0
}

// ToggleWishlist adds item when absent and removes it when present. It
// reports whether the item is in the wishlist afterwards.
func (s *Store) ToggleWishlist(item WishlistItem) (bool, error) {
	item, err := normalizeWishlistItem(item)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	op, in := "wishlist_add", true
	if idx := s.wishlistIndexLocked(item.ID); idx >= 0 {
		s.wishlist = append(s.wishlist[:idx], s.wishlist[idx+1:]...)
		op, in = "wishlist_remove", false
	} else {
		s.wishlist = append(s.wishlist, item)
	}
	ch := s.commitLocked(EventMutated)
	s.mu.Unlock()

	s.finishWishlist(op, ch)
	return in, nil
}

// finishWishlist persists and notifies. Wishlist changes never touch the
// remote cart.
func (s *Store) finishWishlist(op string, ch change) {
	s.metrics.IncMutation(op)
	s.persist(ch.event.Snapshot, ch.attached)
	s.notify(ch)
}

func normalizeWishlistItem(item WishlistItem) (WishlistItem, error) {
	item.ID = strings.TrimSpace(item.ID)
	if item.ID == "" {
		return WishlistItem{}, carterrors.ErrInvalidWishlistItem
	}
	if item.OriginalPrice.LessThan(item.Price) {
		item.OriginalPrice = item.Price
	}
	return cloneWishlistItem(item), nil
}

func (s *Store) CartItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countLines(s.lines)
}

func (s *Store) CartSubtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotalLines(s.lines)
}

func (s *Store) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyLines(s.lines)
}

func (s *Store) Wishlist() []WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyWishlist(s.wishlist)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// PendingSync reports how many remote writes are waiting, counting a
// pending clear as one.
func (s *Store) PendingSync() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if s.clearAt != 0 {
		n++
	}
	if s.needsMerge {
		n++
	}
	return n
}

// LastSyncError is the error of the most recent failed drain, cleared by
// the next successful one.
func (s *Store) LastSyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:    copyLines(s.lines),
		Wishlist: copyWishlist(s.wishlist),
		Count:    countLines(s.lines),
		Subtotal: subtotalLines(s.lines),
		Version:  s.version,
	}
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

// notify runs outside mu so subscribers may call back into the store.
func (s *Store) notify(ch change) {
	for _, fn := range ch.subs {
		fn(ch.event)
	}
}

func countLines(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotalLines(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

func copyLines(lines []CartLine) []CartLine {
	out := make([]CartLine, len(lines))
	for i, l := range lines {
		out[i] = cloneLine(l)
	}
	return out
}

func copyWishlist(items []WishlistItem) []WishlistItem {
	out := make([]WishlistItem, len(items))
	for i, w := range items {
		out[i] = cloneWishlistItem(w)
	}
	return out
}
