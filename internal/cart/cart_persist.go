package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	carterrors "github.com/Keerthudarshu/petandco/internal/cart/errors"
	"github.com/Keerthudarshu/petandco/internal/storage"

	"go.uber.org/zap"
)

// KeySnapshot is the durable key of the anonymous cart and wishlist.
const KeySnapshot = "cart_snapshot"

type persistedSnapshot struct {
	Lines    []CartLine     `json:"lines"`
	Wishlist []WishlistItem `json:"wishlist"`
}

// persist writes the snapshot unless a newer one already landed. While a
// session is attached the remote cart owns the lines, so only the wishlist
// is kept locally.
func (s *Store) persist(snap Snapshot, attached bool) {
	if s.kv == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if snap.Version <= s.persistedVersion {
		return
	}

	rec := persistedSnapshot{Lines: snap.Lines, Wishlist: snap.Wishlist}
	if attached {
		rec.Lines = []CartLine{}
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("marshal cart snapshot", zap.Error(err))
		return
	}
	if err := s.kv.Set(s.ctx, KeySnapshot, string(payload)); err != nil {
		s.logger.Warn("persist cart snapshot failed", zap.Error(err))
		return
	}
	s.persistedVersion = snap.Version
}

// Load restores the persisted snapshot into an empty store. A malformed
// record is deleted and the store starts empty.
func (s *Store) Load(ctx context.Context) error {
	if s.kv == nil {
		return nil
	}

	raw, err := s.kv.Get(ctx, KeySnapshot)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart snapshot: %w", err)
	}

	rec, err := decodeSnapshot(raw)
	if err != nil {
		s.logger.Warn("purging malformed cart snapshot",
			zap.Error(carterrors.ErrCorruptSnapshot.Wrap(err)))
		s.metrics.IncPurge(KeySnapshot)
		if delErr := s.kv.Delete(ctx, KeySnapshot); delErr != nil {
			return fmt.Errorf("purge cart snapshot: %w", delErr)
		}
		return nil
	}

	s.mu.Lock()
	s.lines = rec.Lines
	s.wishlist = rec.Wishlist
	s.mu.Unlock()
	return nil
}

func decodeSnapshot(raw string) (persistedSnapshot, error) {
	var rec persistedSnapshot
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return persistedSnapshot{}, err
	}

	seen := make(map[string]struct{}, len(rec.Lines))
	for _, l := range rec.Lines {
		switch {
		case l.ID == "":
			return persistedSnapshot{}, errors.New("line without id")
		case l.Quantity < 1:
			return persistedSnapshot{}, fmt.Errorf("line %q has quantity %d", l.ID, l.Quantity)
		case l.UnitPrice.IsNegative():
			return persistedSnapshot{}, fmt.Errorf("line %q has negative price", l.ID)
		}
		if _, dup := seen[l.ID]; dup {
			return persistedSnapshot{}, fmt.Errorf("duplicate line %q", l.ID)
		}
		seen[l.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(rec.Wishlist))
	for _, w := range rec.Wishlist {
		if w.ID == "" {
			return persistedSnapshot{}, errors.New("wishlist item without id")
		}
		if _, dup := seen[w.ID]; dup {
			return persistedSnapshot{}, fmt.Errorf("duplicate wishlist item %q", w.ID)
		}
		seen[w.ID] = struct{}{}
	}

	if rec.Lines == nil {
		rec.Lines = []CartLine{}
	}
	if rec.Wishlist == nil {
		rec.Wishlist = []WishlistItem{}
	}
	return rec, nil
}
