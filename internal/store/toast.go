package store

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
)

// DefaultDuration is how long a toast of kind k stays visible when no duration is given.
func (k ToastKind) DefaultDuration() time.Duration {
	switch k {
	case ToastError:
		return 5 * time.Second
	case ToastWarning:
		return 4 * time.Second
	default:
		return 3 * time.Second
	}
}

func (k ToastKind) valid() bool {
	switch k {
	case ToastInfo, ToastSuccess, ToastError, ToastWarning:
		return true
	}
	return false
}

type Toast struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Kind      ToastKind  `json:"type"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (t Toast) expired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// ToastQueue holds the notifications shown to a shopper. Toasts expire on their own;
// expired entries are dropped whenever the queue is read.
type ToastQueue struct {
	mu     sync.Mutex
	now    func() time.Time
	toasts []Toast
}

func NewToastQueue() *ToastQueue {
	return &ToastQueue{now: time.Now}
}

// NewToastQueueWithClock is NewToastQueue with an injected clock.
func NewToastQueueWithClock(now func() time.Time) *ToastQueue {
	return &ToastQueue{now: now}
}

// Show queues a toast with the default duration of its kind.
func (q *ToastQueue) Show(message string, kind ToastKind) Toast {
	if !kind.valid() {
		kind = ToastInfo
	}
	return q.ShowFor(message, kind, kind.DefaultDuration())
}

// ShowFor queues a toast visible for d. A non-positive d never expires.
func (q *ToastQueue) ShowFor(message string, kind ToastKind, d time.Duration) Toast {
	if !kind.valid() {
		kind = ToastInfo
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	t := Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
	}
	if d > 0 {
		exp := now.Add(d)
		t.ExpiresAt = &exp
	}
	q.toasts = append(q.toasts, t)
	return t
}

// Remove dismisses the toast with the given id.
func (q *ToastQueue) Remove(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.toasts = slices.DeleteFunc(q.toasts, func(t Toast) bool { return t.ID == id })
}

// Active returns the toasts that have not expired, oldest first.
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := q.now()
	q.toasts = slices.DeleteFunc(q.toasts, func(t Toast) bool { return t.expired(now) })
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}
