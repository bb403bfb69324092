// Package realtime owns the websocket session to the FixPoint backend:
// connection lifecycle, STOMP handshake, channel subscriptions, and the
// routing of inbound frames to the chat and notification stores.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/itsamisha/fixpoint-client/internal/retry"
	"github.com/itsamisha/fixpoint-client/internal/stomp"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ChatSink receives inbound chat messages.
type ChatSink interface {
	OnInboundMessage(msg models.ChatMessage)
}

// NotificationSink receives inbound notification events.
type NotificationSink interface {
	OnPush(n models.Notification)
}

// Config tunes the manager.
type Config struct {
	// URL is the ws(s) endpoint, e.g. "ws://localhost:8080/ws".
	URL string
	// Reconnect is the delay policy between attempts. The zero value
	// falls back to a fixed 5 second delay.
	Reconnect retry.Policy
	// HandshakeTimeout bounds the dial plus STOMP handshake.
	HandshakeTimeout time.Duration
}

// Manager owns the socket exclusively: no other component holds a
// reference to the underlying connection. It keeps reconnecting while
// running and stops synchronously on Stop, never leaking a reconnect
// timer past teardown.
type Manager struct {
	cfg    Config
	user   models.User
	token  string
	chat   ChatSink
	notify NotificationSink
	logger *slog.Logger

	metrics *Metrics

	mu      sync.Mutex
	state   State
	lastErr error
	conn    *websocket.Conn
	writeMu sync.Mutex

	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewManager creates a manager for one authenticated session. Either sink
// may be nil if the corresponding feature is unused.
func NewManager(cfg Config, user models.User, token string, chat ChatSink, notify NotificationSink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Reconnect == (retry.Policy{}) {
		cfg.Reconnect = retry.Fixed(5 * time.Second)
	}
	return &Manager{
		cfg:     cfg,
		user:    user,
		token:   token,
		chat:    chat,
		notify:  notify,
		logger:  logger,
		metrics: NewMetrics(),
	}
}

// Start launches the connect/read/reconnect loop. It requires a token and
// user id and returns an error otherwise; no connection is attempted for
// an anonymous session.
func (m *Manager) Start() error {
	if m.token == "" || m.user.ID == 0 {
		return errors.New("realtime: no authenticated session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("realtime: already started")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(ctx, m.done)
	return nil
}

// Stop tears the session down: the live connection is closed
// synchronously and no further reconnect attempt is scheduled. Safe to
// call more than once.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	cancel()
	if conn != nil {
		// Best-effort graceful close; the socket goes away either way.
		m.writeMu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, stomp.Disconnect().Marshal())
		m.writeMu.Unlock()
		_ = conn.Close()
	}
	<-done

	m.setState(StateDisconnected, nil)
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the most recent connection error, if any.
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Metrics returns a snapshot of transport counters.
func (m *Manager) Metrics() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// SendChat delivers a chat message to the backend. Sending while not
// CONNECTED is an expected condition and reports false rather than an
// error.
func (m *Manager) SendChat(msg models.ChatMessage) bool {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected
	m.mu.Unlock()
	if !connected || conn == nil {
		return false
	}

	body, err := json.Marshal(msg)
	if err != nil {
		m.logger.Error("encode chat message", "error", err)
		return false
	}
	frame := stomp.Send("/app/chat.send", body)

	m.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, frame.Marshal())
	m.writeMu.Unlock()
	if err != nil {
		m.metrics.RecordSendFailed()
		m.logger.Warn("send chat message", "error", err)
		return false
	}
	m.metrics.RecordSent()
	return true
}

// run is the reconnect loop. One session at a time; after any drop it
// waits out the policy delay, then dials again, for as long as the
// context lives.
func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		m.setState(StateConnecting, nil)

		err := m.session(ctx)
		if ctx.Err() != nil {
			return
		}
		if retry.IsPermanent(err) {
			m.logger.Error("realtime connection rejected, giving up", "error", err)
			m.setState(StateDisconnected, err)
			return
		}

		attempt++
		m.metrics.RecordReconnectAttempt()
		m.setState(StateDisconnected, err)
		m.logger.Warn("realtime connection lost", "attempt", attempt, "error", err)

		if waitErr := m.cfg.Reconnect.Wait(ctx, attempt); waitErr != nil {
			return
		}
	}
}

// session dials, handshakes, subscribes, and reads frames until the
// connection drops or ctx is cancelled.
func (m *Manager) session(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: m.cfg.HandshakeTimeout}
	header := http.Header{"Authorization": {"Bearer " + m.token}}
	conn, resp, err := dialer.DialContext(ctx, m.cfg.URL, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return retry.Permanent(fmt.Errorf("dial %s: %s", m.cfg.URL, resp.Status))
		}
		return fmt.Errorf("dial %s: %w", m.cfg.URL, err)
	}

	if err := m.handshake(conn); err != nil {
		_ = conn.Close()
		return err
	}

	m.mu.Lock()
	if !m.running {
		// Stop raced the dial; do not hold a connection past teardown.
		m.mu.Unlock()
		_ = conn.Close()
		return context.Canceled
	}
	m.conn = conn
	m.mu.Unlock()
	m.metrics.RecordConnectionOpened()
	m.setState(StateConnected, nil)
	m.logger.Info("realtime connected", "url", m.cfg.URL)

	m.subscribeAll(conn)

	// Close the socket when ctx ends so the read loop unblocks.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-stopWatch:
		}
	}()

	err = m.readLoop(conn)

	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	_ = conn.Close()
	m.metrics.RecordConnectionClosed()
	return err
}

// handshake sends CONNECT and waits for CONNECTED. An ERROR frame here
// means the backend rejected the token; that is permanent.
func (m *Manager) handshake(conn *websocket.Conn) error {
	connect := stomp.Connect(hostOf(m.cfg.URL), m.token)
	if err := conn.WriteMessage(websocket.TextMessage, connect.Marshal()); err != nil {
		return fmt.Errorf("send CONNECT: %w", err)
	}

	deadline := time.Now().Add(m.cfg.HandshakeTimeout)
	_ = conn.SetReadDeadline(deadline)
	defer conn.SetReadDeadline(time.Time{}) //nolint:errcheck // clearing deadline

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await CONNECTED: %w", err)
		}
		frame, err := stomp.Parse(raw)
		if err != nil || frame == nil {
			continue // tolerate heartbeats and noise during handshake
		}
		switch frame.Command {
		case stomp.CmdConnected:
			return nil
		case stomp.CmdError:
			return retry.Permanent(fmt.Errorf("handshake rejected: %s", frame.Headers["message"]))
		}
	}
}

// subscribeAll registers the per-user channels and, for elevated roles,
// the broadcast topic. Failures are logged, not fatal: the connection may
// still be usable for sending.
func (m *Manager) subscribeAll(conn *websocket.Conn) {
	subs := []struct {
		id          string
		destination string
	}{
		{"sub-chat", fmt.Sprintf("/user/%s/queue/messages", m.user.Username)},
		{"sub-notify", fmt.Sprintf("/user/%d/notifications", m.user.ID)},
	}
	if m.user.Role.Elevated() {
		subs = append(subs, struct {
			id          string
			destination string
		}{"sub-broadcast", "/topic/notifications"})
	}
	for _, s := range subs {
		frame := stomp.Subscribe(s.id, s.destination)
		m.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, frame.Marshal())
		m.writeMu.Unlock()
		if err != nil {
			m.logger.Warn("subscribe failed", "destination", s.destination, "error", err)
		}
	}
}

func (m *Manager) readLoop(conn *websocket.Conn) error {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		frame, err := stomp.Parse(raw)
		if err != nil {
			// Malformed frames are dropped, never crash the manager.
			m.metrics.RecordDropped()
			m.logger.Warn("drop malformed frame", "error", err)
			continue
		}
		if frame == nil {
			continue // heartbeat
		}
		switch frame.Command {
		case stomp.CmdMessage:
			m.route(frame)
		case stomp.CmdError:
			return fmt.Errorf("server error frame: %s", frame.Headers["message"])
		case stomp.CmdReceipt:
			// No receipts requested; ignore.
		default:
			m.metrics.RecordDropped()
			m.logger.Debug("drop unexpected frame", "command", frame.Command)
		}
	}
}

// route dispatches a MESSAGE frame to the chat or notification sink by
// payload shape. Topic names are advisory only: a chat-shaped payload on
// any destination still goes to the chat store, and vice versa.
func (m *Manager) route(frame *stomp.Frame) {
	var probe struct {
		Sender   *models.UserRef `json:"sender"`
		Receiver *models.UserRef `json:"receiver"`
		Content  string          `json:"content"`
		Title    string          `json:"title"`
		Message  string          `json:"message"`
	}
	if err := json.Unmarshal(frame.Body, &probe); err != nil {
		m.metrics.RecordDropped()
		m.logger.Warn("drop unparseable payload", "destination", frame.Destination(), "error", err)
		return
	}

	switch {
	case probe.Sender != nil && probe.Receiver != nil:
		var msg models.ChatMessage
		if err := json.Unmarshal(frame.Body, &msg); err != nil {
			m.metrics.RecordDropped()
			m.logger.Warn("drop malformed chat message", "error", err)
			return
		}
		m.metrics.RecordReceived()
		if m.chat != nil {
			m.chat.OnInboundMessage(msg)
		}
	case probe.Title != "" || probe.Message != "":
		var n models.Notification
		if err := json.Unmarshal(frame.Body, &n); err != nil {
			m.metrics.RecordDropped()
			m.logger.Warn("drop malformed notification", "error", err)
			return
		}
		m.metrics.RecordReceived()
		if m.notify != nil {
			m.notify.OnPush(n)
		}
	default:
		m.metrics.RecordDropped()
		m.logger.Debug("drop unrecognized payload", "destination", frame.Destination())
	}
}

func (m *Manager) setState(s State, err error) {
	m.mu.Lock()
	m.state = s
	if err != nil {
		m.lastErr = err
	}
	m.mu.Unlock()
}

func hostOf(wsURL string) string {
	// Good enough for the CONNECT host header; the backend does not
	// validate virtual hosts.
	u := wsURL
	for _, prefix := range []string{"ws://", "wss://"} {
		if len(u) > len(prefix) && u[:len(prefix)] == prefix {
			u = u[len(prefix):]
		}
	}
	for i, r := range u {
		if r == '/' || r == ':' {
			return u[:i]
		}
	}
	return u
}
