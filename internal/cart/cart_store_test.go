package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Keerthudarshu/petandco/internal/cart"
	carterrors "github.com/Keerthudarshu/petandco/internal/cart/errors"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"
	mock "github.com/Keerthudarshu/petandco/internal/mock/cart"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ==================== FAKES ====================

type staticTokens struct{ token string }

func (s staticTokens) Token() (string, bool) { return s.token, s.token != "" }

type fakeRemote struct {
	mu      sync.Mutex
	items   map[string]commerceapi.CartItem
	calls   []string
	fail    bool
	putHook func(commerceapi.CartItem)
	getHook func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{items: make(map[string]commerceapi.CartItem)}
}

var errRemoteDown = errors.New("remote down")

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail {
		return errRemoteDown
	}
	return nil
}

func (f *fakeRemote) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeRemote) GetCart(_ context.Context, _ string) (commerceapi.Cart, error) {
	if f.getHook != nil {
		f.getHook()
	}
	if err := f.record("get"); err != nil {
		return commerceapi.Cart{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out commerceapi.Cart
	for _, it := range f.items {
		out.Items = append(out.Items, it)
	}
	return out, nil
}

func (f *fakeRemote) PutCartItem(_ context.Context, _ string, item commerceapi.CartItem) error {
	if f.putHook != nil {
		f.putHook(item)
	}
	if err := f.record("put:" + item.ID); err != nil {
		return err
	}
	f.mu.Lock()
	f.items[item.ID] = item
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) DeleteCartItem(_ context.Context, _ string, lineID string) error {
	if err := f.record("delete:" + lineID); err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.items, lineID)
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) ClearCart(_ context.Context, _ string) error {
	if err := f.record("clear"); err != nil {
		return err
	}
	f.mu.Lock()
	f.items = make(map[string]commerceapi.CartItem)
	f.mu.Unlock()
	return nil
}

func (f *fakeRemote) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Quantity
}

func (f *fakeRemote) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeRemote) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// ==================== HELPERS ====================

func newStore(t *testing.T, opts ...cart.Option) *cart.Store {
	t.Helper()
	s := cart.New(opts...)
	t.Cleanup(s.Close)
	return s
}

func item(id string, price int64) cart.Item {
	return cart.Item{ID: id, Name: "item " + id, UnitPrice: decimal.NewFromInt(price)}
}

func intPtr(v int) *int { return &v }

type eventLog struct {
	mu    sync.Mutex
	kinds []cart.EventKind
}

func (l *eventLog) record(ev cart.Event) {
	l.mu.Lock()
	l.kinds = append(l.kinds, ev.Kind)
	l.mu.Unlock()
}

func (l *eventLog) has(kind cart.EventKind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range l.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ==================== LOCAL MUTATIONS ====================

func TestStore_AddToCart(t *testing.T) {
	t.Run("same_id_merges_quantities", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddToCart(item("p1-default", 100), 2)
		require.NoError(t, err)
		line, err := s.AddToCart(item("p1-default", 100), 3)
		require.NoError(t, err)

		assert.Equal(t, 5, line.Quantity)
		assert.Len(t, s.Lines(), 1)
		assert.Equal(t, 5, s.CartItemCount())
	})

	t.Run("line_id_derived_from_product_and_variant", func(t *testing.T) {
		s := newStore(t)

		line, err := s.AddToCart(cart.Item{ProductID: "p1", UnitPrice: decimal.NewFromInt(10)}, 1)
		require.NoError(t, err)
		assert.Equal(t, "p1-default", line.ID)
		assert.Equal(t, cart.DefaultVariant, line.Variant)

		line, err = s.AddToCart(cart.Item{ProductID: "p1", Variant: "Large Size", UnitPrice: decimal.NewFromInt(10)}, 1)
		require.NoError(t, err)
		assert.Equal(t, "p1-large-size", line.ID)
		assert.Len(t, s.Lines(), 2)
	})

	t.Run("original_price_defaults_to_unit_price", func(t *testing.T) {
		s := newStore(t)

		line, err := s.AddToCart(item("p1-default", 80), 1)
		require.NoError(t, err)
		assert.True(t, line.OriginalPrice.Equal(decimal.NewFromInt(80)))
	})

	t.Run("invalid_quantity", func(t *testing.T) {
		s := newStore(t)

		for _, q := range []int{0, -1} {
			_, err := s.AddToCart(item("p1-default", 100), q)
			assert.ErrorIs(t, err, carterrors.ErrInvalidQuantity)
		}
		assert.Empty(t, s.Lines())
	})

	t.Run("missing_id", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddToCart(cart.Item{Name: "nameless", UnitPrice: decimal.NewFromInt(1)}, 1)
		assert.ErrorIs(t, err, carterrors.ErrInvalidLine)
	})

	t.Run("negative_price", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AddToCart(item("p1-default", -5), 1)
		assert.ErrorIs(t, err, carterrors.ErrInvalidLine)
	})

	t.Run("capped_at_known_stock", func(t *testing.T) {
		s := newStore(t)
		it := item("p1-default", 10)
		it.StockQuantity = intPtr(4)

		_, err := s.AddToCart(it, 3)
		require.NoError(t, err)
		line, err := s.AddToCart(it, 3)
		require.NoError(t, err)

		assert.Equal(t, 4, line.Quantity)
	})

	t.Run("full_line_reports_out_of_stock", func(t *testing.T) {
		s := newStore(t)
		it := item("p1-default", 10)
		it.StockQuantity = intPtr(4)
		_, err := s.AddToCart(it, 4)
		require.NoError(t, err)
		version := s.Snapshot().Version

		_, err = s.AddToCart(it, 1)
		assert.ErrorIs(t, err, carterrors.ErrOutOfStock)
		assert.Equal(t, 4, s.CartItemCount())
		assert.Equal(t, version, s.Snapshot().Version)
	})

	t.Run("lower_stock_never_shrinks_line", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AddToCart(item("p1-default", 10), 5)
		require.NoError(t, err)

		it := item("p1-default", 10)
		it.StockQuantity = intPtr(2)
		_, err = s.AddToCart(it, 1)

		assert.ErrorIs(t, err, carterrors.ErrOutOfStock)
		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Quantity)
		assert.Nil(t, lines[0].StockQuantity)
	})

	t.Run("out_of_stock", func(t *testing.T) {
		s := newStore(t)
		it := item("p1-default", 10)
		it.StockQuantity = intPtr(0)

		_, err := s.AddToCart(it, 1)
		assert.ErrorIs(t, err, carterrors.ErrOutOfStock)
		assert.Empty(t, s.Lines())
	})
}

func TestStore_UpdateQuantity(t *testing.T) {
	t.Run("zero_removes_line", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.AddToCart(item("p1-default", 100), 2)
		_, _ = s.AddToCart(item("p1-default", 100), 3)

		require.NoError(t, s.UpdateQuantity("p1-default", 0))

		assert.Empty(t, s.Lines())
		assert.Equal(t, 0, s.CartItemCount())
	})

	t.Run("zero_matches_remove", func(t *testing.T) {
		a, b := newStore(t), newStore(t)
		for _, s := range []*cart.Store{a, b} {
			_, _ = s.AddToCart(item("p1-default", 100), 2)
			_, _ = s.AddToCart(item("p2-default", 50), 1)
		}

		require.NoError(t, a.UpdateQuantity("p1-default", 0))
		b.RemoveFromCart("p1-default")

		assert.Equal(t, a.Lines(), b.Lines())
	})

	t.Run("negative_is_rejected_without_change", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.AddToCart(item("p1-default", 100), 2)
		before := s.Snapshot()

		err := s.UpdateQuantity("p1-default", -1)

		assert.ErrorIs(t, err, carterrors.ErrInvalidQuantity)
		assert.Equal(t, before, s.Snapshot())
	})

	t.Run("unknown_line", func(t *testing.T) {
		s := newStore(t)

		err := s.UpdateQuantity("nope", 2)
		assert.ErrorIs(t, err, carterrors.ErrLineNotFound)
	})

	t.Run("sets_quantity_capped_at_stock", func(t *testing.T) {
		s := newStore(t)
		it := item("p1-default", 10)
		it.StockQuantity = intPtr(6)
		_, _ = s.AddToCart(it, 1)

		require.NoError(t, s.UpdateQuantity("p1-default", 9))
		assert.Equal(t, 6, s.Lines()[0].Quantity)
	})
}

func TestStore_RemoveFromCart(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.AddToCart(item("p1-default", 100), 1)

		s.RemoveFromCart("p1-default")
		after := s.Snapshot()
		s.RemoveFromCart("p1-default")

		assert.Empty(t, s.Lines())
		assert.Equal(t, after, s.Snapshot())
	})
}

func TestStore_Aggregates(t *testing.T) {
	t.Run("count_tracks_any_interleaving", func(t *testing.T) {
		s := newStore(t)

		_, _ = s.AddToCart(item("a", 10), 2)
		_, _ = s.AddToCart(item("b", 5), 4)
		_ = s.UpdateQuantity("a", 7)
		s.RemoveFromCart("b")
		_, _ = s.AddToCart(item("c", 1), 1)
		_ = s.UpdateQuantity("c", 0)
		_, _ = s.AddToCart(item("b", 5), 3)

		sum := 0
		for _, l := range s.Lines() {
			sum += l.Quantity
		}
		assert.Equal(t, sum, s.CartItemCount())
		assert.Equal(t, 10, s.CartItemCount())
	})

	t.Run("subtotal_is_price_times_quantity", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.AddToCart(cart.Item{ID: "a", UnitPrice: decimal.RequireFromString("19.99")}, 3)
		_, _ = s.AddToCart(cart.Item{ID: "b", UnitPrice: decimal.RequireFromString("0.01")}, 1)

		assert.Equal(t, "59.98", s.CartSubtotal().StringFixed(2))
	})

	t.Run("concurrent_adds_keep_count_consistent", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.AddToCart(item("p1-default", 1), 1)
			}()
		}
		wg.Wait()

		assert.Equal(t, 50, s.CartItemCount())
		assert.Len(t, s.Lines(), 1)
	})
}

func TestStore_Wishlist(t *testing.T) {
	t.Run("add_check_remove", func(t *testing.T) {
		s := newStore(t)

		require.NoError(t, s.AddToWishlist(cart.WishlistItem{ID: "42", Price: decimal.NewFromInt(199)}))
		assert.True(t, s.IsInWishlist("42"))

		s.RemoveFromWishlist("42")
		assert.False(t, s.IsInWishlist("42"))
	})

	t.Run("add_then_remove_restores_previous_state", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.AddToWishlist(cart.WishlistItem{ID: "1", Price: decimal.NewFromInt(5)}))
		before := s.Wishlist()

		require.NoError(t, s.AddToWishlist(cart.WishlistItem{ID: "2", Price: decimal.NewFromInt(9)}))
		s.RemoveFromWishlist("2")

		assert.Equal(t, before, s.Wishlist())
	})

	t.Run("add_is_idempotent", func(t *testing.T) {
		s := newStore(t)
		w := cart.WishlistItem{ID: "7", Price: decimal.NewFromInt(1)}

		require.NoError(t, s.AddToWishlist(w))
		require.NoError(t, s.AddToWishlist(w))

		assert.Len(t, s.Wishlist(), 1)
	})

	t.Run("toggle", func(t *testing.T) {
		s := newStore(t)
		w := cart.WishlistItem{ID: "7", Price: decimal.NewFromInt(1)}

		in, err := s.ToggleWishlist(w)
		require.NoError(t, err)
		assert.True(t, in)

		in, err = s.ToggleWishlist(w)
		require.NoError(t, err)
		assert.False(t, in)
		assert.Empty(t, s.Wishlist())
	})

	t.Run("missing_id", func(t *testing.T) {
		s := newStore(t)

		err := s.AddToWishlist(cart.WishlistItem{Name: "x"})
		assert.ErrorIs(t, err, carterrors.ErrInvalidWishlistItem)
	})

	t.Run("availability_defaults", func(t *testing.T) {
		assert.True(t, cart.WishlistItem{ID: "1"}.Available())

		no := false
		assert.False(t, cart.WishlistItem{ID: "1", InStock: &no}.Available())
		assert.False(t, cart.WishlistItem{ID: "1", StockQuantity: intPtr(0)}.Available())
	})
}

func TestStore_Subscribe(t *testing.T) {
	t.Run("notifies_until_unsubscribed", func(t *testing.T) {
		s := newStore(t)
		var got []cart.Event
		sub := s.Subscribe(func(ev cart.Event) { got = append(got, ev) })

		_, _ = s.AddToCart(item("p1-default", 10), 2)
		s.ClearCart()
		sub.Unsubscribe()
		sub.Unsubscribe()
		_, _ = s.AddToCart(item("p1-default", 10), 1)

		require.Len(t, got, 2)
		assert.Equal(t, cart.EventMutated, got[0].Kind)
		assert.Equal(t, 2, got[0].Snapshot.Count)
		assert.Equal(t, cart.EventCleared, got[1].Kind)
		assert.Equal(t, 0, got[1].Snapshot.Count)
	})

	t.Run("snapshot_is_a_copy", func(t *testing.T) {
		s := newStore(t)
		_, _ = s.AddToCart(item("p1-default", 10), 2)

		lines := s.Lines()
		lines[0].Quantity = 99

		assert.Equal(t, 2, s.Lines()[0].Quantity)
	})
}

// ==================== PERSISTENCE ====================

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous_cart_survives_reload", func(t *testing.T) {
		kv := storage.NewMemory()
		s := newStore(t, cart.WithStorage(kv))
		_, _ = s.AddToCart(item("p1-default", 10), 2)
		require.NoError(t, s.AddToWishlist(cart.WishlistItem{ID: "9", Price: decimal.NewFromInt(3)}))

		reloaded := newStore(t, cart.WithStorage(kv))
		require.NoError(t, reloaded.Load(ctx))

		assert.Equal(t, 2, reloaded.CartItemCount())
		assert.True(t, reloaded.IsInWishlist("9"))
	})

	t.Run("malformed_snapshot_is_purged", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(ctx, cart.KeySnapshot, "{not json"))

		s := newStore(t, cart.WithStorage(kv))
		require.NoError(t, s.Load(ctx))

		assert.Empty(t, s.Lines())
		_, err := kv.Get(ctx, cart.KeySnapshot)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("zero_quantity_line_is_rejected", func(t *testing.T) {
		kv := storage.NewMemory()
		require.NoError(t, kv.Set(ctx, cart.KeySnapshot, `{"lines":[{"id":"p1-default","quantity":0,"unitPrice":"1"}],"wishlist":[]}`))

		s := newStore(t, cart.WithStorage(kv))
		require.NoError(t, s.Load(ctx))

		assert.Empty(t, s.Lines())
		_, err := kv.Get(ctx, cart.KeySnapshot)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("missing_snapshot_is_empty", func(t *testing.T) {
		s := newStore(t, cart.WithStorage(storage.NewMemory()))
		require.NoError(t, s.Load(ctx))
		assert.Empty(t, s.Lines())
	})
}

// ==================== REMOTE SYNC ====================

func TestStore_Attach(t *testing.T) {
	ctx := context.Background()

	t.Run("merges_anonymous_cart_into_remote", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		remote := mock.NewMockRemoteCart(ctrl)

		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		_, err := s.AddToCart(cart.Item{ID: "p1-default", ProductID: "p1", UnitPrice: decimal.NewFromInt(100)}, 3)
		require.NoError(t, err)

		remote.EXPECT().
			GetCart(gomock.Any(), "tok").
			Return(commerceapi.Cart{Items: []commerceapi.CartItem{
				{ID: "p1-default", ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
				{ID: "p2-default", ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
			}}, nil)
		remote.EXPECT().
			PutCartItem(gomock.Any(), "tok", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, it commerceapi.CartItem) error {
				assert.Equal(t, "p1-default", it.ID)
				assert.Equal(t, 5, it.Quantity)
				return nil
			})

		require.NoError(t, s.Attach(ctx))

		assert.True(t, s.Attached())
		assert.Equal(t, 6, s.CartItemCount())
		assert.Equal(t, 0, s.PendingSync())
	})

	t.Run("snapshot_drops_lines_once_attached", func(t *testing.T) {
		kv := storage.NewMemory()
		s := newStore(t, cart.WithStorage(kv), cart.WithRemote(newFakeRemote(), staticTokens{token: "tok"}))
		_, _ = s.AddToCart(item("p1-default", 10), 1)

		require.NoError(t, s.Attach(ctx))

		raw, err := kv.Get(ctx, cart.KeySnapshot)
		require.NoError(t, err)
		assert.JSONEq(t, `{"lines":[],"wishlist":[]}`, raw)
	})

	t.Run("no_session_no_remote_calls", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{}))
		_, _ = s.AddToCart(item("p1-default", 10), 1)

		require.NoError(t, s.Flush(ctx))
		assert.Equal(t, 0, remote.callCount())
	})
}

func TestStore_SyncFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("local_state_kept_and_retried", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		events := &eventLog{}
		s.Subscribe(events.record)
		require.NoError(t, s.Attach(ctx))

		remote.setFail(true)
		line, err := s.AddToCart(item("p1-default", 10), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, line.Quantity)

		err = s.Flush(ctx)
		assert.ErrorIs(t, err, carterrors.ErrSyncFailed)
		assert.Equal(t, 2, s.CartItemCount())
		assert.Equal(t, 1, s.PendingSync())
		assert.True(t, events.has(cart.EventSyncFailed))
		assert.Error(t, s.LastSyncError())

		remote.setFail(false)
		require.NoError(t, s.Flush(ctx))
		assert.Equal(t, 2, remote.quantity("p1-default"))
		assert.Equal(t, 0, s.PendingSync())
		assert.NoError(t, s.LastSyncError())
		assert.True(t, events.has(cart.EventSynced))
	})

	t.Run("clear_retried_until_acknowledged", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		_, _ = s.AddToCart(item("p1-default", 10), 2)
		require.NoError(t, s.Attach(ctx))
		require.Equal(t, 1, remote.size())

		remote.setFail(true)
		s.ClearCart()
		assert.Empty(t, s.Lines())
		assert.Error(t, s.Flush(ctx))
		assert.Error(t, s.Flush(ctx))
		assert.Equal(t, 1, remote.size())

		remote.setFail(false)
		require.NoError(t, s.Flush(ctx))
		assert.Equal(t, 0, remote.size())
		assert.Equal(t, 0, s.PendingSync())
	})

	t.Run("clear_cancels_owed_sign_in_merge", func(t *testing.T) {
		remote := newFakeRemote()
		remote.items["r1-default"] = commerceapi.CartItem{ID: "r1-default", ProductID: "r1", Quantity: 2, UnitPrice: decimal.NewFromInt(3)}
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		_, _ = s.AddToCart(item("p1-default", 10), 1)

		remote.setFail(true)
		assert.Error(t, s.Attach(ctx))
		s.ClearCart()

		remote.setFail(false)
		require.NoError(t, s.Flush(ctx))

		assert.Empty(t, s.Lines())
		assert.Equal(t, 0, s.CartItemCount())
		assert.Equal(t, 0, remote.size())
		assert.Equal(t, 0, s.PendingSync())
	})

	t.Run("detach_drops_pending_work", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		require.NoError(t, s.Attach(ctx))

		remote.setFail(true)
		_, _ = s.AddToCart(item("p1-default", 10), 2)
		_ = s.Flush(ctx)

		events := &eventLog{}
		s.Subscribe(events.record)
		s.Detach()
		assert.True(t, events.has(cart.EventDetached))
		assert.False(t, events.has(cart.EventCleared))
		assert.False(t, s.Attached())
		assert.Empty(t, s.Lines())
		assert.Equal(t, 0, s.PendingSync())
		require.NoError(t, s.Flush(ctx))

		calls := remote.callCount()
		remote.setFail(false)
		require.NoError(t, s.Flush(ctx))
		assert.Equal(t, calls, remote.callCount())
	})

	t.Run("removal_sent_as_delete", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		require.NoError(t, s.Attach(ctx))

		_, _ = s.AddToCart(item("p1-default", 10), 2)
		require.NoError(t, s.Flush(ctx))
		s.RemoveFromCart("p1-default")
		require.NoError(t, s.Flush(ctx))

		assert.Equal(t, 0, remote.size())
	})
}

func TestStore_VersionStamps(t *testing.T) {
	ctx := context.Background()

	t.Run("late_ack_does_not_clobber_newer_quantity", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		_, _ = s.AddToCart(item("p1-default", 10), 1)
		require.NoError(t, s.Attach(ctx))

		entered := make(chan struct{})
		release := make(chan struct{})
		var once sync.Once
		remote.putHook = func(commerceapi.CartItem) {
			once.Do(func() {
				close(entered)
				<-release
			})
		}

		require.NoError(t, s.UpdateQuantity("p1-default", 2))
		<-entered
		require.NoError(t, s.UpdateQuantity("p1-default", 5))
		close(release)

		require.NoError(t, s.Flush(ctx))
		assert.Equal(t, 5, remote.quantity("p1-default"))
		assert.Equal(t, 0, s.PendingSync())
	})

	t.Run("stale_reconcile_read_is_discarded", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		require.NoError(t, s.Attach(ctx))
		remote.items["p9-default"] = commerceapi.CartItem{ID: "p9-default", ProductID: "p9", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}

		entered := make(chan struct{})
		release := make(chan struct{})
		remote.getHook = func() {
			close(entered)
			<-release
		}

		done := make(chan error, 1)
		go func() { done <- s.Reconcile(ctx) }()
		<-entered
		_, _ = s.AddToCart(item("p1-default", 10), 1)
		close(release)

		require.NoError(t, <-done)
		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, "p1-default", lines[0].ID)
	})

	t.Run("reconcile_adopts_remote_when_idle", func(t *testing.T) {
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		require.NoError(t, s.Attach(ctx))
		remote.items["p9-default"] = commerceapi.CartItem{ID: "p9-default", ProductID: "p9", Quantity: 4, UnitPrice: decimal.NewFromInt(1)}

		require.NoError(t, s.Reconcile(ctx))

		assert.Equal(t, 4, s.CartItemCount())
	})
}
