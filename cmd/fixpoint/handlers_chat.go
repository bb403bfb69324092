package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/itsamisha/fixpoint-client/internal/chat"
	"github.com/itsamisha/fixpoint-client/internal/realtime"
	"github.com/itsamisha/fixpoint-client/internal/retry"
	"github.com/itsamisha/fixpoint-client/internal/session"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

func runChatUsers(ctx context.Context, a *app) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	users, err := a.client.ChatUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("Nobody to chat with yet.")
		return nil
	}
	fmt.Println("Chat partners:")
	for _, u := range users {
		line := "  " + u.Username
		if u.FullName != "" {
			line += " (" + u.FullName + ")"
		}
		if u.Role != "" && u.Role != models.RoleCitizen {
			line += " [" + string(u.Role) + "]"
		}
		fmt.Println(line)
	}
	fmt.Println("\nOpen a thread with: fixpoint chat <username>")
	return nil
}

func runChat(ctx context.Context, a *app, counterpartName string) error {
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}
	counterpart, err := resolveChatUser(ctx, a, counterpartName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A rejected token anywhere in the REST layer ends the live session.
	a.sessions.OnChange(func(s *session.Session) {
		if s == nil {
			stop()
		}
	})

	manager, store := buildChatSession(a, sess)
	printer := newThreadPrinter(store, sess.User.ID)
	store.OnUpdate(printer.flush)

	if err := manager.Start(); err != nil {
		return err
	}
	defer func() {
		manager.Stop()
		a.logger.Debug("realtime session closed", "metrics", manager.Metrics())
	}()

	if err := store.SelectCounterpart(ctx, *counterpart); err != nil {
		a.logger.Warn("history unavailable, live messages only", "error", err)
	}

	fmt.Printf("Chatting with %s. Type a message and press enter; /quit to leave.\n\n", counterpart.Username)
	printer.flush()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nLeaving chat.")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			text := strings.TrimSpace(line)
			if text == "/quit" || text == "/q" {
				return nil
			}
			if text == "" {
				continue
			}
			if !store.Send(text) {
				fmt.Printf("(not connected, message dropped; state: %s)\n", manager.State())
			}
		}
	}
}

// buildChatSession wires the realtime manager and the thread store for
// the logged-in user.
func buildChatSession(a *app, sess *session.Session) (*realtime.Manager, *chat.Store) {
	store := chat.NewStore(sess.User.Ref(), nil, a.client, a.logger)
	manager := realtime.NewManager(realtime.Config{
		URL: a.cfg.WebSocketURL(),
		Reconnect: retry.Policy{
			Initial: a.cfg.Realtime.ReconnectDelay,
			Max:     a.cfg.Realtime.ReconnectMaxDelay,
			Factor:  a.cfg.Realtime.ReconnectFactor,
			Jitter:  a.cfg.Realtime.ReconnectJitter,
		},
		HandshakeTimeout: a.cfg.Realtime.HandshakeTimeout,
	}, sess.User, sess.Token, store, nil, a.logger)
	store.SetSender(manager)
	return manager, store
}

func resolveChatUser(ctx context.Context, a *app, name string) (*models.UserRef, error) {
	users, err := a.client.ChatUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, name) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("no chat partner named %q (see: fixpoint chat)", name)
}

// threadPrinter renders messages appended to the thread since the last
// flush. The store calls it from the inbound goroutine, the prompt loop
// from the main one.
type threadPrinter struct {
	store  *chat.Store
	selfID int64

	mu      sync.Mutex
	printed int
}

func newThreadPrinter(store *chat.Store, selfID int64) *threadPrinter {
	return &threadPrinter{store: store, selfID: selfID}
}

func (p *threadPrinter) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	msgs := p.store.Messages()
	if len(msgs) < p.printed {
		// Thread was reset (counterpart switch); reprint from the top.
		p.printed = 0
	}
	for _, m := range msgs[p.printed:] {
		p.printLocked(m)
	}
	p.printed = len(msgs)
}

func (p *threadPrinter) printLocked(m models.ChatMessage) {
	who := m.Sender.Username
	if m.Sender.ID == p.selfID {
		who = "you"
	}
	when := ""
	if !m.SentAt.IsZero() {
		when = m.SentAt.Format("15:04") + " "
	}
	suffix := ""
	if m.ClientEchoed {
		suffix = " (sending…)"
	}
	fmt.Printf("%s%s: %s%s\n", when, who, m.Content, suffix)
}
