package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var out GroupsResp
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &out); err != nil {
		return nil, err
	}
	return out.Groups, nil
}

func (c *Client) AddGroup(ctx context.Context, identifier string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodPost, "/groups", GroupReq{Identifier: identifier}, &resp)
	return resp.Message, err
}

func (c *Client) AddGroups(ctx context.Context, identifiers []string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodPost, "/groups/bulk", BulkGroupsReq{Identifiers: identifiers}, &resp)
	return resp.Message, err
}

func (c *Client) DeleteGroup(ctx context.Context, identifier string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodDelete, "/groups/"+url.PathEscape(identifier), nil, &resp)
	return resp.Message, err
}

func (c *Client) ListMessages(ctx context.Context) ([]Message, error) {
	var out MessagesResp
	if err := c.do(ctx, http.MethodGet, "/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

func (c *Client) AddMessage(ctx context.Context, text string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodPost, "/messages", MessageReq{Text: text}, &resp)
	return resp.Message, err
}

func (c *Client) DeleteMessage(ctx context.Context, id int64) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodDelete, "/messages/"+strconv.FormatInt(id, 10), nil, &resp)
	return resp.Message, err
}

func (c *Client) ListBlacklist(ctx context.Context) ([]BlacklistEntry, error) {
	var out BlacklistResp
	if err := c.do(ctx, http.MethodGet, "/blacklist", nil, &out); err != nil {
		return nil, err
	}
	return out.BlacklistedChats, nil
}

// AddBlacklist blacklists chatID. A nil duration makes the entry permanent.
func (c *Client) AddBlacklist(ctx context.Context, chatID, reason string, duration *int) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodPost, "/blacklist", BlacklistReq{ChatID: chatID, Reason: reason, Duration: duration}, &resp)
	return resp.Message, err
}

func (c *Client) DeleteBlacklist(ctx context.Context, chatID string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodDelete, "/blacklist/"+url.PathEscape(chatID), nil, &resp)
	return resp.Message, err
}

func (c *Client) ListSettings(ctx context.Context) ([]Setting, error) {
	var out SettingsResp
	if err := c.do(ctx, http.MethodGet, "/config", nil, &out); err != nil {
		return nil, err
	}
	return out.Config, nil
}

func (c *Client) SetSetting(ctx context.Context, key, value string) (string, error) {
	var resp MessageResp
	err := c.do(ctx, http.MethodPost, "/config", SettingReq{Key: key, Value: value}, &resp)
	return resp.Message, err
}
