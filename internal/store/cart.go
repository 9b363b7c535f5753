package store

import (
	"context"
	"slices"
	"sync"

	"github.com/skintellect/storefront/internal/kv"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// Storage keys of the persisted cart slices.
const (
	KeyCartItems = "cart-items"
	KeyWishlist  = "wishlist"
	KeySaved     = "saved-for-later"
)

// CartStore owns the cart lines, the wishlist and the saved-for-later list of one shopper.
// Every mutation is written through to the repository; persistence failures are logged and
// never returned, so in-memory state is always authoritative.
type CartStore struct {
	mu       sync.RWMutex
	repo     kv.Repository
	items    []model.CartItem
	wishlist []string
	saved    []string
}

// NewCartStore loads the three slices from repo. A nil repo, a missing key or an
// undecodable value each yield an empty slice.
func NewCartStore(ctx context.Context, repo kv.Repository) *CartStore {
	s := &CartStore{repo: repo}
	s.items = sanitizeItems(load(ctx, repo, KeyCartItems, []model.CartItem{}))
	s.wishlist = dedupe(load(ctx, repo, KeyWishlist, []string{}))
	s.saved = dedupe(load(ctx, repo, KeySaved, []string{}))
	return s
}

func load[T any](ctx context.Context, repo kv.Repository, key string, def T) T {
	v, err := kv.LoadOr(ctx, repo, key, def)
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("discarding unreadable cart state")
	}
	return v
}

// AddToCart adds quantity units of id, merging into an existing line.
// A quantity below 1 is ignored.
func (s *CartStore) AddToCart(ctx context.Context, id string, quantity int) {
	if quantity < 1 {
		logx.Debug().Str("product_id", id).Int("quantity", quantity).Msg("ignoring non-positive add to cart")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(id, quantity)
	s.persistLocked(ctx, KeyCartItems)
}

// AddOne adds a single unit of id.
func (s *CartStore) AddOne(ctx context.Context, id string) {
	s.AddToCart(ctx, id, 1)
}

func (s *CartStore) addLocked(id string, quantity int) {
	if i := s.indexLocked(id); i >= 0 {
		s.items[i].Quantity += quantity
		return
	}
	s.items = append(s.items, model.CartItem{ProductID: id, Quantity: quantity})
}

// RemoveFromCart drops the line for id if present.
func (s *CartStore) RemoveFromCart(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
	s.persistLocked(ctx, KeyCartItems)
}

func (s *CartStore) removeLocked(id string) {
	s.items = slices.DeleteFunc(s.items, func(it model.CartItem) bool { return it.ProductID == id })
}

// UpdateQuantity replaces the quantity of an existing line; quantity <= 0 removes it.
// Updating a product that is not in the cart does nothing.
func (s *CartStore) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quantity <= 0 {
		s.removeLocked(id)
	} else if i := s.indexLocked(id); i >= 0 {
		s.items[i].Quantity = quantity
	}
	s.persistLocked(ctx, KeyCartItems)
}

// ClearCart empties the cart.
func (s *CartStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = []model.CartItem{}
	s.persistLocked(ctx, KeyCartItems)
}

// ToggleWishlist flips the wishlist membership of id and reports the new state.
func (s *CartStore) ToggleWishlist(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var on bool
	s.wishlist, on = toggle(s.wishlist, id)
	s.persistLocked(ctx, KeyWishlist)
	return on
}

// ToggleSaveForLater flips the saved-for-later membership of id and reports the new state.
func (s *CartStore) ToggleSaveForLater(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var on bool
	s.saved, on = toggle(s.saved, id)
	s.persistLocked(ctx, KeySaved)
	return on
}

// MoveToCart removes id from the wishlist and the saved list and adds one unit to the
// cart as a single transition.
func (s *CartStore) MoveToCart(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wishlist = slices.DeleteFunc(s.wishlist, func(v string) bool { return v == id })
	s.saved = slices.DeleteFunc(s.saved, func(v string) bool { return v == id })
	s.addLocked(id, 1)
	s.persistLocked(ctx, KeyWishlist, KeySaved, KeyCartItems)
}

func (s *CartStore) IsInCart(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id) >= 0
}

func (s *CartStore) IsWishlisted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.wishlist, id)
}

func (s *CartStore) IsSaved(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.saved, id)
}

// Quantity returns the quantity of id, 0 when absent.
func (s *CartStore) Quantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// CartCount is the total number of units, not the number of lines.
func (s *CartStore) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *CartStore) Items() []model.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *CartStore) Wishlist() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.wishlist)
}

func (s *CartStore) Saved() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.saved)
}

func (s *CartStore) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(it model.CartItem) bool { return it.ProductID == id })
}

func (s *CartStore) persistLocked(ctx context.Context, keys ...string) {
	if s.repo == nil {
		return
	}
	for _, key := range keys {
		var value any
		switch key {
		case KeyCartItems:
			value = s.items
		case KeyWishlist:
			value = s.wishlist
		case KeySaved:
			value = s.saved
		}
		if err := s.repo.Save(ctx, key, value); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("cart state not persisted")
		}
	}
}

func toggle(set []string, id string) ([]string, bool) {
	if slices.Contains(set, id) {
		return slices.DeleteFunc(set, func(v string) bool { return v == id }), false
	}
	return append(set, id), true
}

// sanitizeItems restores the line invariants on loaded data: one line per product and
// quantities of at least 1.
func sanitizeItems(items []model.CartItem) []model.CartItem {
	out := make([]model.CartItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := slices.IndexFunc(out, func(o model.CartItem) bool { return o.ProductID == it.ProductID }); i >= 0 {
			out[i].Quantity += it.Quantity
			continue
		}
		out = append(out, it)
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
