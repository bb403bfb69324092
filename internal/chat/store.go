// Package chat holds the visible state of the one-to-one chat view: the
// active counterpart, its message history, and optimistic local echoes.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// Sender delivers an outbound message over the realtime session.
// *realtime.Manager satisfies it.
type Sender interface {
	SendChat(msg models.ChatMessage) bool
}

// HistoryFetcher loads the persisted thread with a counterpart.
// *api.Client satisfies it.
type HistoryFetcher interface {
	ChatHistory(ctx context.Context, counterpartID int64) ([]models.ChatMessage, error)
}

// Store owns the visible chat thread. All methods are safe for
// concurrent use; the inbound path may race counterpart selection.
type Store struct {
	self    models.UserRef
	sender  Sender
	history HistoryFetcher
	logger  *slog.Logger

	mu          sync.Mutex
	counterpart *models.UserRef
	messages    []models.ChatMessage
	selectSeq   uint64
	// pendingEchoes maps correlation ids of optimistic messages awaiting
	// their server echo, which is dropped instead of displayed twice.
	pendingEchoes map[string]struct{}

	onUpdate func()
}

// NewStore creates a chat store for the given identity.
func NewStore(self models.UserRef, sender Sender, history HistoryFetcher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		self:          self,
		sender:        sender,
		history:       history,
		logger:        logger,
		pendingEchoes: make(map[string]struct{}),
	}
}

// OnUpdate registers a callback invoked after any visible-state change.
// Intended for the view layer; must not call back into the store.
func (s *Store) OnUpdate(fn func()) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// SetSender installs the outbound transport. The store and the realtime
// session reference each other, so one side has to be bound after
// construction; sends before this call report not-connected.
func (s *Store) SetSender(sender Sender) {
	s.mu.Lock()
	s.sender = sender
	s.mu.Unlock()
}

// SelectCounterpart replaces the active counterpart, clears the visible
// thread, and fetches history scoped to (self, user). If the counterpart
// changes again while the fetch is in flight, the stale response is
// discarded rather than interleaved into the new thread.
func (s *Store) SelectCounterpart(ctx context.Context, user models.UserRef) error {
	s.mu.Lock()
	s.counterpart = &user
	s.messages = nil
	s.selectSeq++
	seq := s.selectSeq
	s.mu.Unlock()
	s.notify()

	if s.history == nil {
		return nil
	}
	msgs, err := s.history.ChatHistory(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("fetch history with %d: %w", user.ID, err)
	}

	s.mu.Lock()
	if s.selectSeq != seq {
		s.mu.Unlock()
		s.logger.Debug("discard stale history", "counterpart", user.ID)
		return nil
	}
	// Inbound messages may have landed while the fetch was in flight;
	// history is authoritative, live messages arrive after it.
	live := s.messages
	s.messages = append(msgs, live...)
	s.mu.Unlock()
	s.notify()
	return nil
}

// ClearCounterpart closes the thread view.
func (s *Store) ClearCounterpart() {
	s.mu.Lock()
	s.counterpart = nil
	s.messages = nil
	s.selectSeq++
	s.mu.Unlock()
	s.notify()
}

// Counterpart returns the active counterpart, or nil.
func (s *Store) Counterpart() *models.UserRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counterpart
}

// Messages returns a copy of the visible thread.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send composes and delivers a message to the active counterpart. Blank
// content is a no-op. The message is echoed into the visible thread
// before the network send; a failed send (not connected) rolls the echo
// back and reports false.
func (s *Store) Send(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	s.mu.Lock()
	sender := s.sender
	if s.counterpart == nil || sender == nil {
		s.mu.Unlock()
		return false
	}
	msg := models.ChatMessage{
		Sender:        s.self,
		Receiver:      *s.counterpart,
		Content:       content,
		Type:          models.ChatMessageText,
		CorrelationID: uuid.NewString(),
		ClientEchoed:  true,
	}
	s.messages = append(s.messages, msg)
	s.pendingEchoes[msg.CorrelationID] = struct{}{}
	s.mu.Unlock()
	s.notify()

	if !sender.SendChat(msg) {
		s.mu.Lock()
		s.dropEchoLocked(msg.CorrelationID)
		s.mu.Unlock()
		s.notify()
		return false
	}
	return true
}

// OnInboundMessage appends a pushed message to the visible thread only
// when it belongs to the (self, counterpart) pair. The server echo of an
// optimistic send is merged into the existing entry instead of appended.
func (s *Store) OnInboundMessage(msg models.ChatMessage) {
	s.mu.Lock()
	if msg.CorrelationID != "" {
		if _, pending := s.pendingEchoes[msg.CorrelationID]; pending {
			delete(s.pendingEchoes, msg.CorrelationID)
			for i := range s.messages {
				if s.messages[i].CorrelationID == msg.CorrelationID {
					// Adopt the server-assigned id and timestamp.
					msg.ClientEchoed = false
					s.messages[i] = msg
					break
				}
			}
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	cp := s.counterpart
	if cp == nil || !msg.Between(s.self.ID, cp.ID) {
		// Not for the open thread; retained for notification purposes by
		// the notification store, never appended here.
		s.mu.Unlock()
		return
	}
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) dropEchoLocked(correlationID string) {
	delete(s.pendingEchoes, correlationID)
	for i := range s.messages {
		if s.messages[i].CorrelationID == correlationID {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
