package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/itsamisha/fixpoint-client/internal/notify"
	"github.com/itsamisha/fixpoint-client/internal/realtime"
	"github.com/itsamisha/fixpoint-client/internal/retry"
	"github.com/itsamisha/fixpoint-client/internal/session"
	"github.com/itsamisha/fixpoint-client/pkg/models"
)

func runNotificationsList(ctx context.Context, a *app, unreadOnly bool) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	var items []models.Notification
	if unreadOnly {
		list, err := a.client.UnreadNotifications(ctx)
		if err != nil {
			return err
		}
		items = list
	} else {
		page, err := a.client.Notifications(ctx, 0, 50)
		if err != nil {
			return err
		}
		items = page.Content
	}
	if len(items) == 0 {
		fmt.Println("No notifications.")
		return nil
	}
	for _, n := range items {
		printNotification(n)
	}
	if count, err := a.client.UnreadCount(ctx); err == nil {
		fmt.Printf("\n%d unread.\n", count)
	}
	return nil
}

func runNotificationsWatch(ctx context.Context, a *app) error {
	sess, err := a.requireSession(ctx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A rejected token anywhere in the REST layer ends the watch.
	a.sessions.OnChange(func(s *session.Session) {
		if s == nil {
			stop()
		}
	})

	store := notify.NewStore(a.client, a.cfg.Notifications.DedupeWindow, a.logger)
	store.OnToast(func(n models.Notification) {
		printNotification(n)
	})

	manager := realtime.NewManager(realtime.Config{
		URL: a.cfg.WebSocketURL(),
		Reconnect: retry.Policy{
			Initial: a.cfg.Realtime.ReconnectDelay,
			Max:     a.cfg.Realtime.ReconnectMaxDelay,
			Factor:  a.cfg.Realtime.ReconnectFactor,
			Jitter:  a.cfg.Realtime.ReconnectJitter,
		},
		HandshakeTimeout: a.cfg.Realtime.HandshakeTimeout,
	}, sess.User, sess.Token, nil, store, a.logger)
	if err := manager.Start(); err != nil {
		return err
	}
	defer func() {
		manager.Stop()
		a.logger.Debug("realtime session closed", "metrics", manager.Metrics())
	}()

	store.Reconcile(ctx)
	fmt.Printf("Watching notifications for %s (%d unread). Ctrl-C to stop.\n",
		sess.User.Username, store.Unread())

	// Show the recent tail first so the stream has context.
	if recent, err := a.client.RecentNotifications(ctx); err == nil {
		for _, n := range recent {
			printNotification(n)
		}
	}

	// The poll is the backstop for events the push channel missed.
	store.Run(ctx, a.cfg.Notifications.PollInterval)
	fmt.Println("\nStopped.")
	return nil
}

func runNotificationsMarkRead(ctx context.Context, a *app, idArg string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	if idArg == "" {
		if err := a.client.MarkAllNotificationsRead(ctx); err != nil {
			return err
		}
		fmt.Println("All notifications marked read.")
		return nil
	}
	id, err := parseID(idArg)
	if err != nil {
		return err
	}
	if err := a.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Notification %d marked read.\n", id)
	return nil
}

func runNotificationsClear(ctx context.Context, a *app) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	if err := a.client.ClearAllNotifications(ctx); err != nil {
		return err
	}
	fmt.Println("All notifications cleared.")
	return nil
}

func printNotification(n models.Notification) {
	marker := "•"
	if n.IsRead {
		marker = " "
	}
	when := ""
	if !n.CreatedAt.IsZero() {
		when = n.CreatedAt.Format("2006-01-02 15:04") + "  "
	}
	fmt.Printf("%s %s[%d] %s: %s\n", marker, when, n.ID, n.Title, n.Message)
	if n.ProgressPercentage != nil {
		fmt.Printf("      progress: %d%%\n", *n.ProgressPercentage)
	}
	if n.ReportID > 0 {
		fmt.Printf("      report: #%d\n", n.ReportID)
	}
}
