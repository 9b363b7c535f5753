package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/singleflight"

	"github.com/skintellect/storefront/internal/kv"
	logx "github.com/skintellect/storefront/pkg/logger"
)

const sessionKeyPrefix = "session:"

// ErrEmptySessionID is returned when a session is requested without an id.
var ErrEmptySessionID = errors.New("session id is required")

// Session bundles the stores of one shopper.
type Session struct {
	ID         string
	Cart       *CartStore
	Comparison *ComparisonStore
	Toasts     *ToastQueue
}

type RegistryOptions struct {
	// MaxSessions bounds the number of sessions cached in memory. Evicted sessions reload
	// their persisted cart state on the next request and start with empty comparison state.
	// A session evicted while a comparison or audit is running is parked until it is next
	// requested, so its in-flight guards keep holding.
	MaxSessions int
	RunTimeout  time.Duration
}

// persistedKeys are the repository keys written by a session's CartStore.
var persistedKeys = []string{KeyCartItems, KeyWishlist, KeySaved}

// Registry creates and caches per-session stores. It is built once at startup and handed
// to whatever needs shopper state.
type Registry struct {
	sessions *lru.Cache
	opening  singleflight.Group
	repo     kv.Repository
	gateway  Gateway
	opts     RegistryOptions

	mu     sync.Mutex
	parked map[string]*Session
}

func NewRegistry(repo kv.Repository, gateway Gateway, opts RegistryOptions) (*Registry, error) {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1024
	}
	r := &Registry{
		repo:    repo,
		gateway: gateway,
		opts:    opts,
		parked:  make(map[string]*Session),
	}
	cache, err := lru.NewWithEvict(opts.MaxSessions, r.evicted)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	r.sessions = cache
	return r, nil
}

// Session returns the stores of id, loading persisted cart state on first use. Cached
// sessions never wait on another session's load; concurrent first requests for the same
// id share one load.
func (r *Registry) Session(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}
	if v, ok := r.sessions.Get(id); ok {
		return v.(*Session), nil
	}

	// The load is shared, so one caller going away must not leave everyone with an empty cart.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := r.opening.Do(id, func() (any, error) {
		if v, ok := r.sessions.Get(id); ok {
			return v, nil
		}
		s := r.unpark(id)
		if s == nil {
			s = r.open(loadCtx, id)
		}
		r.sessions.Add(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) open(ctx context.Context, id string) *Session {
	s := &Session{
		ID:         id,
		Cart:       NewCartStore(ctx, r.sessionRepo(id)),
		Comparison: NewComparisonStore(r.gateway, r.opts.RunTimeout),
		Toasts:     NewToastQueue(),
	}
	logx.Debug().Str("session_id", id).Msg("session opened")
	return s
}

func (r *Registry) sessionRepo(id string) kv.Repository {
	if r.repo == nil {
		return nil
	}
	return kv.WithPrefix(r.repo, sessionKeyPrefix+id)
}

// evicted runs under the cache lock and must not call back into r.sessions.
func (r *Registry) evicted(key, value any) {
	s, ok := value.(*Session)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.parked {
		if !p.Comparison.Busy() {
			delete(r.parked, id)
		}
	}
	if s.Comparison.Busy() {
		r.parked[s.ID] = s
		logx.Debug().Str("session_id", s.ID).Msg("parked busy session")
		return
	}
	logx.Debug().Str("session_id", s.ID).Int("max_sessions", r.opts.MaxSessions).Msg("evicted least recently used session")
}

func (r *Registry) unpark(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.parked[id]
	if !ok {
		return nil
	}
	delete(r.parked, id)
	return s
}

// Drop forgets id and deletes its persisted cart state. Work still running for the session
// finishes against the detached stores.
func (r *Registry) Drop(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptySessionID
	}
	r.sessions.Remove(id)
	r.unpark(id)

	repo := r.sessionRepo(id)
	if repo == nil {
		return nil
	}
	var errs []error
	for _, key := range persistedKeys {
		if err := repo.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	logx.Debug().Str("session_id", id).Msg("session dropped")
	return nil
}

// Len is the number of sessions held in memory, parked ones included.
func (r *Registry) Len() int {
	n := r.sessions.Len()
	r.mu.Lock()
	defer r.mu.Unlock()
	return n + len(r.parked)
}
