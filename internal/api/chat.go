package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/itsamisha/fixpoint-client/pkg/models"
)

// ChatUsers lists the users the current user may open a thread with.
// The backend returns either a bare array or {"users": [...]} depending
// on version; both are accepted.
func (c *Client) ChatUsers(ctx context.Context) ([]models.UserRef, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/chat/users", nil, &raw); err != nil {
		return nil, err
	}
	var list []models.UserRef
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Users []models.UserRef `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode /api/chat/users: %w", err)
	}
	return wrapped.Users, nil
}

// ChatHistory fetches the full one-to-one history with the given user.
func (c *Client) ChatHistory(ctx context.Context, counterpartID int64) ([]models.ChatMessage, error) {
	q := url.Values{"userId": {strconv.FormatInt(counterpartID, 10)}}
	var out []models.ChatMessage
	if err := c.get(ctx, "/api/chat/history", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
