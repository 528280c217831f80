// Package feed is the HTTP client for the server-side notification feed:
// the poll source plus the fire-and-forget mutation sink.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"notify-engine/internal/common/config"
	"notify-engine/internal/common/errors"
	commonhttp "notify-engine/internal/common/http"
	"notify-engine/internal/common/logger"
	"notify-engine/internal/common/validation"
	"notify-engine/internal/models"
)

type Client struct {
	baseURL   string
	http      *commonhttp.Client
	validator *validation.FeedValidator
	logger    logger.Logger
}

func NewClient(cfg config.FeedConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		http:      commonhttp.NewClient(time.Duration(cfg.Timeout)*time.Millisecond, cfg.Token),
		validator: validation.NewFeedValidator(),
		logger:    log.WithFields(map[string]interface{}{"component": "feed"}),
	}
}

// List fetches the current notification feed. Schema violations are logged
// and the payload is still processed; items are coerced leniently.
func (c *Client) List(ctx context.Context) ([]models.Notification, error) {
	body, err := c.get(ctx, "/notifications")
	if err != nil {
		return nil, errors.NewFeedFetchFailedError(err)
	}

	if problems, err := c.validator.Check(body); err == nil && len(problems) > 0 {
		c.logger.Warn("feed payload failed schema validation", map[string]interface{}{
			"problems": problems,
		})
	}

	var wire []Notification
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.NewFeedDecodeFailedError(err)
	}

	now := time.Now()
	out := make([]models.Notification, 0, len(wire))
	for _, n := range wire {
		out = append(out, n.toModel(now))
	}
	return out, nil
}

// UnreadCount fetches the server-side unread counter used for the badge
// without requiring a full list diff.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	body, err := c.get(ctx, "/notifications/unread-count")
	if err != nil {
		return 0, errors.NewFeedFetchFailedError(err)
	}

	var payload struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, errors.NewFeedDecodeFailedError(err)
	}
	return payload.Count, nil
}

// MarkRead syncs a single read flip to the server.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodPatch, "/notifications/"+id+"/read")
}

// MarkAllRead syncs a bulk read flip to the server.
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.send(ctx, http.MethodPatch, "/notifications/read-all")
}

// Delete removes a single notification server-side.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, "/notifications/"+id)
}

// DeleteAll removes every notification server-side.
func (c *Client) DeleteAll(ctx context.Context) error {
	return c.send(ctx, http.MethodDelete, "/notifications")
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, path string) error {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s %s", resp.StatusCode, method, path)
	}
	return nil
}
