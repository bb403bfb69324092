// Package notify tracks the unread-notification state: push events from
// the realtime session, a periodic reconciliation poll as backstop, and
// optimistic read marking. Notifications are a best-effort enhancement;
// every failure path degrades instead of propagating.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/itsamisha/fixpoint-client/internal/api"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// Backend is the slice of the REST client the store needs.
// *api.Client satisfies it.
type Backend interface {
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Store owns the unread counter and the push/poll reconciliation.
type Store struct {
	backend Backend
	logger  *slog.Logger

	mu     sync.Mutex
	unread int
	// seen retains recently delivered event ids so the same event
	// arriving over both push and poll is counted once. Retention is
	// bounded by window: the oldest id is evicted per insertion.
	seen      map[int64]struct{}
	seenOrder []int64
	window    int
	readLocal map[int64]struct{}

	onToast func(models.Notification)
}

// NewStore creates a notification store. window bounds the dedupe set;
// values below 1 fall back to 512.
func NewStore(backend Backend, window int, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if window < 1 {
		window = 512
	}
	return &Store{
		backend:   backend,
		logger:    logger,
		seen:      make(map[int64]struct{}),
		window:    window,
		readLocal: make(map[int64]struct{}),
	}
}

// OnToast registers the transient-notification hook invoked for each new
// push event. Called outside the store lock.
func (s *Store) OnToast(fn func(models.Notification)) {
	s.mu.Lock()
	s.onToast = fn
	s.mu.Unlock()
}

// Unread returns the current unread count. Never negative.
func (s *Store) Unread() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// OnPush records a pushed notification: the unread counter grows, the
// toast hook fires, and the event id joins the dedupe set. Duplicate ids
// (push plus reconciliation, or a replayed frame) are counted once.
func (s *Store) OnPush(n models.Notification) {
	s.mu.Lock()
	if _, dup := s.seen[n.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.remember(n.ID)
	if !n.IsRead {
		s.unread++
	}
	toast := s.onToast
	s.mu.Unlock()

	if toast != nil {
		toast(n)
	}
}

// remember inserts an id into the bounded dedupe set. Caller holds mu.
func (s *Store) remember(id int64) {
	if id == 0 {
		return // synthetic events carry no id and cannot be deduped
	}
	s.seen[id] = struct{}{}
	s.seenOrder = append(s.seenOrder, id)
	if len(s.seenOrder) > s.window {
		oldest := s.seenOrder[0]
		s.seenOrder = s.seenOrder[1:]
		delete(s.seen, oldest)
	}
}

// Reconcile fetches the authoritative unread count. Auth failures and an
// absent notification subsystem degrade to zero; transient errors keep
// the current count. Never returns an error: notification failures must
// not block the rest of the application.
func (s *Store) Reconcile(ctx context.Context) {
	count, err := s.backend.UnreadCount(ctx)
	if err != nil {
		if api.IsAuthFailure(err) || api.IsNotFound(err) {
			s.setUnread(0)
			return
		}
		s.logger.Debug("unread reconciliation failed", "error", err)
		return
	}
	s.setUnread(count)
}

// Run reconciles immediately and then on every interval tick until ctx
// ends. Intended to be launched as a goroutine alongside the realtime
// session.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	s.Reconcile(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Reconcile(ctx)
		}
	}
}

// MarkRead optimistically marks one notification read and issues a
// best-effort backend write. Marking an already-read or unknown id never
// drives the counter negative. Local state is not rolled back if the
// write fails.
func (s *Store) MarkRead(ctx context.Context, id int64) {
	s.mu.Lock()
	if _, done := s.readLocal[id]; done {
		s.mu.Unlock()
		return
	}
	s.readLocal[id] = struct{}{}
	if s.unread > 0 {
		s.unread--
	}
	s.mu.Unlock()

	if err := s.backend.MarkNotificationRead(ctx, id); err != nil {
		s.logger.Debug("mark read failed", "id", id, "error", err)
	}
}

// MarkAllRead zeroes the counter optimistically and issues a best-effort
// backend write.
func (s *Store) MarkAllRead(ctx context.Context) {
	s.setUnread(0)
	if err := s.backend.MarkAllNotificationsRead(ctx); err != nil {
		s.logger.Debug("mark all read failed", "error", err)
	}
}

func (s *Store) setUnread(n int) {
	if n < 0 {
		n = 0
	}
	s.mu.Lock()
	s.unread = n
	s.mu.Unlock()
}
