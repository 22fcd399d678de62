// Package vk is the outbound messaging gateway: a thin client for the VK
// community API, rate-limited so a burst of door commands cannot trip the
// platform's per-token throttling.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://api.vk.com/method"
	defaultAPIVersion = "5.103"
	maxResponseBody   = 1 << 20
)

type Config struct {
	Token      string
	APIVersion string
	BaseURL    string // overridden in tests

	// RequestsPerSecond caps outbound calls; VK community tokens throttle
	// well below this in practice. Defaults to 3.
	RequestsPerSecond float64
}

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger

	token   string
	version string
	baseURL string
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
		token:      cfg.Token,
		version:    cfg.APIVersion,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
}

// apiError is VK's in-band error object.
type apiError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type apiResponse struct {
	Response json.RawMessage `json:"response"`
	Error    *apiError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("vk %s: rate limit wait: %w", method, err)
	}

	params.Set("v", c.version)
	params.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("vk %s: build request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vk %s: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("vk %s: read body: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vk %s: status %d", method, resp.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("vk %s: parse response: %w", method, err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("vk %s: api error %d: %s", method, parsed.Error.Code, parsed.Error.Message)
	}

	c.logger.Debug("vk call", zap.String("method", method))
	return parsed.Response, nil
}

// Send delivers a chat message. randomID is the platform's idempotency
// token: redelivered sends with the same id collapse on VK's side.
func (c *Client) Send(ctx context.Context, peerID int64, text string, randomID int64) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(randomID, 10))

	_, err := c.call(ctx, "messages.send", params)
	return err
}

// ResolveScreenName looks up the numeric user id behind a profile screen
// name. Used by registry maintenance only.
func (c *Client) ResolveScreenName(ctx context.Context, screenName string) (int64, error) {
	params := url.Values{}
	params.Set("user_ids", screenName)

	raw, err := c.call(ctx, "users.get", params)
	if err != nil {
		return 0, err
	}

	var users []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &users); err != nil {
		return 0, fmt.Errorf("vk users.get: parse: %w", err)
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("vk users.get: no user for %q", screenName)
	}
	return users[0].ID, nil
}
