package backend

import (
	"context"
	"net/http"
)

// Health reports whether the backend answers at all. The health route lives
// on the application root, outside the API prefix.
func (c *Client) Health(ctx context.Context) error {
	return c.doURL(ctx, http.MethodGet, c.root, "/health", nil, nil)
}

func (c *Client) Status(ctx context.Context) (*UserbotStatus, error) {
	var st UserbotStatus
	if err := c.do(ctx, http.MethodGet, "/userbot/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) StartUserbot(ctx context.Context) (string, error) {
	var resp MessageResp
	if err := c.do(ctx, http.MethodPost, "/userbot/start", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) StopUserbot(ctx context.Context) (string, error) {
	var resp MessageResp
	if err := c.do(ctx, http.MethodPost, "/userbot/stop", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
