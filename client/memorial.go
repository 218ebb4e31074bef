package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/cjy-OIer/blog/models"
)

// ListMessages fetches up to limit most recent guestbook messages.
func (c *Client) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	endpoint, err := c.endpoint(v, "api", "memorial", "messages")
	if err != nil {
		return nil, err
	}
	var list models.MessageList
	if err := c.getJSON(ctx, endpoint, &list); err != nil {
		return nil, err
	}
	if list.Messages == nil {
		list.Messages = []models.Message{}
	}
	return list.Messages, nil
}

// CreateMessage posts a new guestbook message. Non-2xx responses come back as *StatusError.
func (c *Client) CreateMessage(ctx context.Context, msg models.NewMessage) (models.Message, error) {
	endpoint, err := c.endpoint(nil, "api", "memorial", "messages")
	if err != nil {
		return models.Message{}, err
	}
	var created models.Message
	if err := c.postJSON(ctx, endpoint, msg, &created); err != nil {
		return models.Message{}, err
	}
	return created, nil
}

// Stats fetches GET /api/memorial/stats.
func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	endpoint, err := c.endpoint(nil, "api", "memorial", "stats")
	if err != nil {
		return models.Stats{}, err
	}
	var s models.Stats
	if err := c.getJSON(ctx, endpoint, &s); err != nil {
		return models.Stats{}, err
	}
	return s, nil
}
