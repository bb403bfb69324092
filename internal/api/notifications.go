package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// Notifications lists the current user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context, page, size int) (*models.Page[models.Notification], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}
	var out models.Page[models.Notification]
	if err := c.get(ctx, "/api/notifications", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UnreadNotifications lists only the unread notifications.
func (c *Client) UnreadNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.get(ctx, "/api/notifications/unread", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount is the reconciliation fetch backing the push channel.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out models.UnreadCount
	if err := c.get(ctx, "/api/notifications/unread/count", nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.put(ctx, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.put(ctx, "/api/notifications/read-all", nil, nil, nil)
}

// RecentNotifications returns the most recent notifications for the bell
// dropdown.
func (c *Client) RecentNotifications(ctx context.Context) ([]models.Notification, error) {
	var out []models.Notification
	if err := c.get(ctx, "/api/notifications/recent", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ClearAllNotifications deletes every notification for the current user.
func (c *Client) ClearAllNotifications(ctx context.Context) error {
	return c.delete(ctx, "/api/notifications/clear-all", nil)
}
