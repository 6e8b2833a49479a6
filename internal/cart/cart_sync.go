package cart

import (
	"context"
	"time"

	carterrors "github.com/Keerthudarshu/petandco/internal/cart/errors"
	"github.com/Keerthudarshu/petandco/internal/commerceapi"

	"go.uber.org/zap"
)

type stepKind int

const (
	stepMerge stepKind = iota
	stepClear
	stepPut
	stepDelete
)

func (k stepKind) String() string {
	switch k {
	case stepMerge:
		return "merge"
	case stepClear:
		return "clear"
	case stepPut:
		return "put"
	default:
		return "delete"
	}
}

type syncStep struct {
	kind    stepKind
	token   string
	lineID  string
	item    commerceapi.CartItem
	version uint64
}

func (s *Store) hasWorkLocked() bool {
	return s.needsMerge || s.clearAt != 0 || len(s.pending) > 0
}

// schedule starts a background drain unless one is already running.
func (s *Store) schedule() {
	s.mu.Lock()
	if s.draining || s.remote == nil || !s.attached || !s.hasWorkLocked() {
		s.mu.Unlock()
		return
	}
	s.draining = true
	s.mu.Unlock()

	go s.backgroundDrain()
}

func (s *Store) backgroundDrain() {
	err := s.drain(s.ctx)

	s.mu.Lock()
	s.draining = false
	again := err == nil && s.ctx.Err() == nil && s.attached && s.hasWorkLocked()
	s.mu.Unlock()

	if again {
		s.schedule()
	}
}

// Flush synchronously sends all pending remote work. It returns a wrapped
// ErrSyncFailed when work remains.
func (s *Store) Flush(ctx context.Context) error {
	return s.drain(ctx)
}

func (s *Store) drain(ctx context.Context) error {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	progressed := false
	for {
		if err := ctx.Err(); err != nil {
			return carterrors.ErrSyncFailed.Wrap(err)
		}

		step, ok := s.nextStep()
		if !ok {
			break
		}

		start := time.Now()
		err := s.send(ctx, step)
		s.metrics.ObserveSync(step.kind.String(), time.Since(start), err)
		if err != nil {
			s.syncFailed(step, err)
			return carterrors.ErrSyncFailed.Wrap(err)
		}
		progressed = true
	}

	if progressed {
		s.mu.Lock()
		s.lastErr = nil
		ev := Event{Kind: EventSynced, Snapshot: s.snapshotLocked()}
		subs := s.subscribersLocked()
		s.mu.Unlock()
		s.notify(change{event: ev, subs: subs})
	}
	return nil
}

// nextStep picks the next remote write: the sign-in merge first, then a
// pending clear, then line writes in the order they were stamped.
func (s *Store) nextStep() (syncStep, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.remote == nil || !s.attached || s.tokens == nil {
		return syncStep{}, false
	}
	token, ok := s.tokens.Token()
	if !ok {
		return syncStep{}, false
	}

	switch {
	case s.needsMerge:
		return syncStep{kind: stepMerge, token: token, version: s.version}, true
	case s.clearAt != 0:
		return syncStep{kind: stepClear, token: token, version: s.clearAt}, true
	}

	var (
		pickID string
		pick   pendingOp
		found  bool
	)
	for id, op := range s.pending {
		if !found || op.seq < pick.seq {
			pickID, pick, found = id, op, true
		}
	}
	if !found {
		return syncStep{}, false
	}

	step := syncStep{kind: stepDelete, token: token, lineID: pickID, version: pick.version}
	if idx := s.indexLocked(pickID); idx >= 0 {
		step.kind = stepPut
		step.item = toRemote(s.lines[idx])
	}
	return step, true
}

func (s *Store) send(ctx context.Context, step syncStep) error {
	switch step.kind {
	case stepMerge:
		remote, err := s.remote.GetCart(ctx, step.token)
		if err != nil {
			return err
		}
		s.merge(remote)
		return nil
	case stepClear:
		if err := s.remote.ClearCart(ctx, step.token); err != nil {
			return err
		}
		s.mu.Lock()
		if s.clearAt == step.version {
			s.clearAt = 0
		}
		s.mu.Unlock()
		return nil
	case stepPut:
		if err := s.remote.PutCartItem(ctx, step.token, step.item); err != nil {
			return err
		}
	default:
		if err := s.remote.DeleteCartItem(ctx, step.token, step.lineID); err != nil {
			return err
		}
	}
	s.ackLine(step.lineID, step.version)
	return nil
}

// ackLine clears the pending entry only if nothing newer was stamped while
// the write was in flight.
func (s *Store) ackLine(id string, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op, ok := s.pending[id]; ok && op.version == version {
		delete(s.pending, id)
	}
}

func (s *Store) syncFailed(step syncStep, err error) {
	s.logger.Warn("cart sync failed",
		zap.String("op", step.kind.String()),
		zap.String("line_id", step.lineID),
		zap.Error(err),
	)

	s.mu.Lock()
	s.lastErr = err
	ev := Event{Kind: EventSyncFailed, Snapshot: s.snapshotLocked(), Err: carterrors.ErrSyncFailed.Wrap(err)}
	subs := s.subscribersLocked()
	s.mu.Unlock()
	s.notify(change{event: ev, subs: subs})
}

// merge folds the remote cart into local state after sign-in. Lines present
// on both sides have their quantities summed and are written back; lines
// only on the remote side are adopted as is.
func (s *Store) merge(remote commerceapi.Cart) {
	s.mu.Lock()
	if !s.attached || !s.needsMerge {
		s.mu.Unlock()
		return
	}
	s.needsMerge = false

	var touched []string
	adopted := false
	for _, item := range remote.Items {
		line, ok := fromRemote(item)
		if !ok {
			continue
		}
		if idx := s.indexLocked(line.ID); idx >= 0 {
			local := &s.lines[idx]
			stock := local.StockQuantity
			if stock == nil {
				stock = line.StockQuantity
			}
			local.Quantity = capQuantity(local.Quantity+line.Quantity, stock)
			touched = append(touched, line.ID)
			continue
		}
		if _, removedLocally := s.pending[line.ID]; removedLocally {
			continue
		}
		s.lines = append(s.lines, line)
		adopted = true
	}

	if len(touched) == 0 && !adopted {
		s.mu.Unlock()
		return
	}
	ch := s.commitLocked(EventMutated, touched...)
	s.mu.Unlock()

	s.persist(ch.event.Snapshot, ch.attached)
	s.notify(ch)
}

// Attach binds the cart to the signed-in session: every local line is
// queued for the remote cart and the remote cart is merged in. The merge
// and writes run synchronously so the caller sees the merged cart; failures
// stay pending and are retried.
func (s *Store) Attach(ctx context.Context) error {
	s.mu.Lock()
	if s.attached || s.remote == nil {
		s.mu.Unlock()
		return nil
	}
	s.attached = true
	s.needsMerge = true
	ids := make([]string, 0, len(s.lines))
	for _, l := range s.lines {
		ids = append(ids, l.ID)
	}
	ch := s.commitLocked(EventMutated, ids...)
	s.mu.Unlock()

	// Lines now belong to the remote cart; the local snapshot keeps only
	// the wishlist.
	s.persist(ch.event.Snapshot, true)
	return s.Flush(ctx)
}

// Detach is called on sign-out. Pending remote work is dropped and the
// in-memory cart is emptied; the remote cart stays with the account.
func (s *Store) Detach() {
	s.mu.Lock()
	if !s.attached {
		s.mu.Unlock()
		return
	}
	s.attached = false
	s.needsMerge = false
	s.clearAt = 0
	s.pending = make(map[string]pendingOp)
	s.lastErr = nil
	s.lines = nil
	ch := s.commitLocked(EventDetached)
	s.mu.Unlock()

	s.persist(ch.event.Snapshot, false)
	s.notify(ch)
}

// Attached reports whether the cart syncs with a remote cart.
func (s *Store) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// Reconcile replaces local lines with the remote cart. The read is
// discarded when the store changed while it was in flight or when local
// writes are still pending, since local state is newer in both cases.
func (s *Store) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	if !s.attached || s.remote == nil || s.tokens == nil || s.hasWorkLocked() {
		s.mu.Unlock()
		return nil
	}
	before := s.version
	s.mu.Unlock()

	token, ok := s.tokens.Token()
	if !ok {
		return nil
	}

	start := time.Now()
	remote, err := s.remote.GetCart(ctx, token)
	s.metrics.ObserveSync("fetch", time.Since(start), err)
	if err != nil {
		return carterrors.ErrSyncFailed.Wrap(err)
	}

	s.mu.Lock()
	if s.version != before || !s.attached || s.hasWorkLocked() {
		s.mu.Unlock()
		s.logger.Debug("discarding stale remote cart read")
		return nil
	}
	lines := make([]CartLine, 0, len(remote.Items))
	for _, item := range remote.Items {
		if line, ok := fromRemote(item); ok {
			lines = append(lines, line)
		}
	}
	s.lines = lines
	ch := s.commitLocked(EventSynced)
	s.mu.Unlock()

	s.persist(ch.event.Snapshot, true)
	s.notify(ch)
	return nil
}

func toRemote(l CartLine) commerceapi.CartItem {
	return commerceapi.CartItem{
		ID:            l.ID,
		ProductID:     l.ProductID,
		Name:          l.Name,
		Variant:       l.Variant,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		OriginalPrice: l.OriginalPrice,
		Image:         l.Image,
		Category:      l.Category,
		Brand:         l.Brand,
		StockQuantity: copyInt(l.StockQuantity),
	}
}

func fromRemote(it commerceapi.CartItem) (CartLine, bool) {
	if it.Quantity < 1 || it.UnitPrice.IsNegative() {
		return CartLine{}, false
	}
	line := Item{
		ID:            it.ID,
		ProductID:     it.ProductID,
		Name:          it.Name,
		UnitPrice:     it.UnitPrice,
		OriginalPrice: &it.OriginalPrice,
		Variant:       it.Variant,
		Image:         it.Image,
		Category:      it.Category,
		Brand:         it.Brand,
		StockQuantity: it.StockQuantity,
	}.toLine()
	if line.ID == "" {
		return CartLine{}, false
	}
	line.Quantity = it.Quantity
	return line, true
}
