// Package telegram talks to the Telegram Bot API: long-polling getUpdates
// and the startup checks done through go-telegram/bot.
package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/edgard/tg2site/internal/redact"
)

// ErrTransport is wrapped by every failure to obtain a successful Bot API
// response: network errors, timeouts, non-200 statuses and ok=false bodies.
var ErrTransport = errors.New("telegram transport error")

// maxErrorBody caps how much of an error response is kept for diagnostics.
const maxErrorBody = 4096

// ClientOptions configures a Client.
type ClientOptions struct {
	APIURL         string
	Token          string
	PollTimeout    time.Duration
	RequestTimeout time.Duration
	// HTTPClient overrides the client built from RequestTimeout.
	HTTPClient *http.Client
}

// Client fetches updates with the getUpdates long-poll method.
type Client struct {
	httpClient  *http.Client
	apiURL      string
	token       string
	pollTimeout time.Duration
	logger      *slog.Logger
}

type apiResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	ErrorCode   int      `json:"error_code,omitempty"`
	Description string   `json:"description,omitempty"`
}

// NewClient creates a getUpdates client.
func NewClient(opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.RequestTimeout}
	}
	return &Client{
		httpClient:  httpClient,
		apiURL:      strings.TrimRight(opts.APIURL, "/"),
		token:       opts.Token,
		pollTimeout: opts.PollTimeout,
		logger:      logger.With("component", "telegram_client"),
	}
}

// GetUpdates long-polls for updates with an identifier of at least offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	query := url.Values{}
	query.Set("offset", strconv.FormatInt(offset, 10))
	query.Set("timeout", strconv.Itoa(int(c.pollTimeout/time.Second)))
	endpoint := c.apiURL + "/bot" + c.token + "/getUpdates?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build getUpdates request", ErrTransport)
	}

	c.logger.DebugContext(ctx, "Polling for updates", "offset", offset, "timeout", c.pollTimeout)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: getUpdates request failed: %w", ErrTransport, scrubError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr apiResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Description != "" {
			return nil, fmt.Errorf("%w: getUpdates HTTP %d: %s", ErrTransport, resp.StatusCode, apiErr.Description)
		}
		return nil, fmt.Errorf("%w: getUpdates HTTP %d", ErrTransport, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode getUpdates response: %w", ErrTransport, err)
	}
	if !body.OK {
		return nil, fmt.Errorf("%w: getUpdates returned failure (code %d): %s", ErrTransport, body.ErrorCode, body.Description)
	}

	c.logger.DebugContext(ctx, "Received updates", "offset", offset, "count", len(body.Result))
	return body.Result, nil
}

// scrubError drops the request URL, which embeds the token, from a failed
// Bot API call. Any token left in the text is masked.
func scrubError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return redact.Error(err)
}
