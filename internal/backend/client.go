package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"userbot-tma/internal/config"
	"userbot-tma/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// Client talks to the userbot REST backend. It holds no session state: every
// method is a single request/response round trip without retries.
type Client struct {
	base string
	root string
	cli  *http.Client
	log  zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	base := strings.TrimRight(cfg.APIBase, "/")
	return &Client{
		base: base,
		root: appRoot(base),
		cli:  &http.Client{Timeout: cfg.HTTPTimeout()},
		log:  logging.Component(logger, "backend"),
	}
}

// appRoot is the scheme and host of base. Routes such as /health are served
// there rather than under the API prefix.
func appRoot(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Scheme + "://" + u.Host
}

// do sends in (if non-nil) as JSON to path under the API base and decodes a
// 2xx body into out (if non-nil). Non-2xx responses become *APIError;
// transport failures wrap ErrNetwork.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.doURL(ctx, method, c.base, path, in, out)
}

func (c *Client) doURL(ctx context.Context, method, prefix, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, prefix+path, body)
	if err != nil {
		return fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(requestIDHeader, reqID)

	l := c.log.With().Str("method", method).Str("path", path).Str("request_id", reqID).Logger()

	resp, err := c.cli.Do(req)
	if err != nil {
		l.Debug().Err(err).Msg("request failed")
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	l.Debug().Int("status", resp.StatusCode).Msg("response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var er ErrorResp
	if err := json.Unmarshal(raw, &er); err == nil && strings.TrimSpace(er.Detail) != "" {
		apiErr.Detail = er.Detail
		return apiErr
	}
	// FastAPI validation errors put a list under "detail".
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err == nil {
		if d, ok := generic["detail"]; ok && len(d) > 0 && (d[0] == '[' || d[0] == '{') {
			apiErr.Detail = string(d)
			return apiErr
		}
	}
	apiErr.Detail = statusDetail(resp.StatusCode)
	return apiErr
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
