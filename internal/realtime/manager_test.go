package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/itsamisha/fixpoint-client/internal/retry"
	"github.com/itsamisha/fixpoint-client/internal/stomp"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// stompServer is a minimal STOMP-over-websocket backend double.
type stompServer struct {
	t          *testing.T
	srv        *httptest.Server
	upgrader   websocket.Upgrader
	rejectAuth bool

	mu    sync.Mutex
	conns []*websocket.Conn

	frames   chan *stomp.Frame // SUBSCRIBE/SEND frames from the client
	sessions chan *websocket.Conn
	dials    atomic.Int32
}

func newStompServer(t *testing.T) *stompServer {
	s := &stompServer{
		t:        t,
		frames:   make(chan *stomp.Frame, 64),
		sessions: make(chan *websocket.Conn, 8),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *stompServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
}

func (s *stompServer) handle(w http.ResponseWriter, r *http.Request) {
	s.dials.Add(1)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	// Expect CONNECT first.
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return
	}
	frame, err := stomp.Parse(raw)
	if err != nil || frame == nil || frame.Command != stomp.CmdConnect {
		conn.Close()
		return
	}
	if s.rejectAuth {
		reply := stomp.New(stomp.CmdError, "message", "bad credentials")
		_ = conn.WriteMessage(websocket.TextMessage, reply.Marshal())
		conn.Close()
		return
	}
	reply := stomp.New(stomp.CmdConnected, "version", "1.2")
	if err := conn.WriteMessage(websocket.TextMessage, reply.Marshal()); err != nil {
		return
	}
	s.sessions <- conn

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if f, err := stomp.Parse(raw); err == nil && f != nil {
			s.frames <- f
		}
	}
}

// push writes a MESSAGE frame to the given client connection.
func (s *stompServer) push(conn *websocket.Conn, destination string, payload any) {
	s.t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		s.t.Fatal(err)
	}
	f := stomp.New(stomp.CmdMessage,
		"destination", destination,
		"subscription", "sub-0",
		"message-id", "m-1",
		"content-type", "application/json",
	)
	f.Body = body
	if err := conn.WriteMessage(websocket.TextMessage, f.Marshal()); err != nil {
		s.t.Fatalf("push: %v", err)
	}
}

func (s *stompServer) awaitSession(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.sessions:
		return conn
	case <-time.After(3 * time.Second):
		t.Fatal("no websocket session established")
		return nil
	}
}

func (s *stompServer) awaitFrame(t *testing.T, command string) *stomp.Frame {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case f := <-s.frames:
			if f.Command == command {
				return f
			}
		case <-deadline:
			t.Fatalf("no %s frame received", command)
			return nil
		}
	}
}

type chatRecorder struct {
	msgs chan models.ChatMessage
}

func newChatRecorder() *chatRecorder {
	return &chatRecorder{msgs: make(chan models.ChatMessage, 16)}
}

func (r *chatRecorder) OnInboundMessage(msg models.ChatMessage) { r.msgs <- msg }

type notifyRecorder struct {
	events chan models.Notification
}

func newNotifyRecorder() *notifyRecorder {
	return &notifyRecorder{events: make(chan models.Notification, 16)}
}

func (r *notifyRecorder) OnPush(n models.Notification) { r.events <- n }

func testManager(t *testing.T, s *stompServer, user models.User) (*Manager, *chatRecorder, *notifyRecorder) {
	t.Helper()
	chat := newChatRecorder()
	notify := newNotifyRecorder()
	m := NewManager(Config{
		URL:       s.url(),
		Reconnect: retry.Fixed(20 * time.Millisecond),
	}, user, "tok-1", chat, notify, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(m.Stop)
	return m, chat, notify
}

func awaitState(t *testing.T, m *Manager, want State) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %v, want %v", m.State(), want)
}

func citizen() models.User {
	return models.User{ID: 7, Username: "amina", Role: models.RoleCitizen}
}

func TestStartRequiresSession(t *testing.T) {
	m := NewManager(Config{URL: "ws://localhost:1/ws"}, models.User{}, "", nil, nil, nil)
	if err := m.Start(); err == nil {
		t.Fatal("Start without a session must fail")
	}
}

func TestConnectAndSubscribe(t *testing.T) {
	s := newStompServer(t)
	m, _, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	s.awaitSession(t)
	awaitState(t, m, StateConnected)

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		f := s.awaitFrame(t, stomp.CmdSubscribe)
		seen[f.Destination()] = true
	}
	if !seen["/user/amina/queue/messages"] {
		t.Error("missing chat queue subscription")
	}
	if !seen["/user/7/notifications"] {
		t.Error("missing notification subscription")
	}
	if seen["/topic/notifications"] {
		t.Error("citizen must not subscribe to the broadcast topic")
	}
}

func TestElevatedRoleSubscribesBroadcast(t *testing.T) {
	s := newStompServer(t)
	admin := models.User{ID: 1, Username: "root", Role: models.RoleAdmin}
	m, _, _ := testManager(t, s, admin)
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	s.awaitSession(t)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		f := s.awaitFrame(t, stomp.CmdSubscribe)
		seen[f.Destination()] = true
	}
	if !seen["/topic/notifications"] {
		t.Error("admin should subscribe to the broadcast topic")
	}
}

func TestRouteByShapeNotTopic(t *testing.T) {
	s := newStompServer(t)
	m, chat, notify := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	conn := s.awaitSession(t)
	awaitState(t, m, StateConnected)

	// Chat-shaped payload arriving on the notifications destination still
	// reaches the chat sink.
	s.push(conn, "/user/7/notifications", models.ChatMessage{
		Sender:   models.UserRef{ID: 3},
		Receiver: models.UserRef{ID: 7},
		Content:  "hello",
		Type:     models.ChatMessageText,
	})
	select {
	case msg := <-chat.msgs:
		if msg.Content != "hello" {
			t.Fatalf("chat message = %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("chat message not routed")
	}

	s.push(conn, "/user/amina/queue/messages", models.Notification{
		ID:    11,
		Type:  models.NotificationNewComment,
		Title: "New comment",
	})
	select {
	case n := <-notify.events:
		if n.ID != 11 {
			t.Fatalf("notification = %+v", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("notification not routed")
	}
}

func TestMalformedPayloadDropped(t *testing.T) {
	s := newStompServer(t)
	m, chat, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	conn := s.awaitSession(t)
	awaitState(t, m, StateConnected)

	// Raw garbage body: dropped, manager keeps running.
	f := stomp.New(stomp.CmdMessage, "destination", "/user/7/notifications")
	f.Body = []byte("{{{not json")
	if err := conn.WriteMessage(websocket.TextMessage, f.Marshal()); err != nil {
		t.Fatal(err)
	}

	s.push(conn, "/user/amina/queue/messages", models.ChatMessage{
		Sender:   models.UserRef{ID: 3},
		Receiver: models.UserRef{ID: 7},
		Content:  "still alive",
	})
	select {
	case msg := <-chat.msgs:
		if msg.Content != "still alive" {
			t.Fatalf("message = %+v", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("manager stopped processing after malformed payload")
	}
	if m.Metrics().Dropped == 0 {
		t.Error("dropped counter not incremented")
	}
}

func TestSendChat(t *testing.T) {
	s := newStompServer(t)
	m, _, _ := testManager(t, s, citizen())

	msg := models.ChatMessage{
		Sender:   models.UserRef{ID: 7},
		Receiver: models.UserRef{ID: 3},
		Content:  "hi",
		Type:     models.ChatMessageText,
	}
	if m.SendChat(msg) {
		t.Fatal("SendChat before Start must report false, not panic")
	}

	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	s.awaitSession(t)
	awaitState(t, m, StateConnected)

	if !m.SendChat(msg) {
		t.Fatal("SendChat while connected = false")
	}
	f := s.awaitFrame(t, stomp.CmdSend)
	if f.Destination() != "/app/chat.send" {
		t.Errorf("destination = %q", f.Destination())
	}
	var sent models.ChatMessage
	if err := json.Unmarshal(f.Body, &sent); err != nil {
		t.Fatal(err)
	}
	if sent.Content != "hi" || sent.Receiver.ID != 3 {
		t.Errorf("sent payload = %+v", sent)
	}
}

func TestReconnectAfterDrop(t *testing.T) {
	s := newStompServer(t)
	m, _, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	conn := s.awaitSession(t)
	awaitState(t, m, StateConnected)

	conn.Close()
	s.awaitSession(t) // second connection after the fixed delay
	awaitState(t, m, StateConnected)

	if m.Metrics().ReconnectAttempts == 0 {
		t.Error("reconnect attempt not recorded")
	}
	// Subscriptions are re-established on the new connection.
	f := s.awaitFrame(t, stomp.CmdSubscribe)
	if f.Destination() == "" {
		t.Error("resubscription missing destination")
	}
}

func TestStopLeaksNoReconnect(t *testing.T) {
	s := newStompServer(t)
	m, _, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	conn := s.awaitSession(t)
	awaitState(t, m, StateConnected)

	// Drop and immediately tear down: the scheduled reconnect must die
	// with the manager.
	conn.Close()
	m.Stop()

	dialsAtStop := s.dials.Load()
	time.Sleep(150 * time.Millisecond) // several reconnect delays
	if got := s.dials.Load(); got != dialsAtStop {
		t.Fatalf("dials grew from %d to %d after Stop", dialsAtStop, got)
	}
	if m.State() != StateDisconnected {
		t.Fatalf("state after Stop = %v", m.State())
	}
}

func TestStopIdempotent(t *testing.T) {
	s := newStompServer(t)
	m, _, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}
	s.awaitSession(t)
	m.Stop()
	m.Stop() // second call is a no-op
}

func TestHandshakeRejectionIsPermanent(t *testing.T) {
	s := newStompServer(t)
	s.rejectAuth = true
	m, _, _ := testManager(t, s, citizen())
	if err := m.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if m.LastError() != nil && m.State() == StateDisconnected {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if m.LastError() == nil {
		t.Fatal("rejected handshake should record an error")
	}

	dials := s.dials.Load()
	time.Sleep(100 * time.Millisecond)
	if got := s.dials.Load(); got != dials {
		t.Fatalf("manager kept dialing after permanent rejection (%d -> %d)", dials, got)
	}
}
