package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/elnormous/contenttype"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

var jsonMediaType = contenttype.NewMediaType("application/json")

// ParseMode selects how Telegram renders message entities.
type ParseMode string

const (
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
	ParseModeMarkdown   ParseMode = "Markdown"
	ParseModeHTML       ParseMode = "HTML"
)

// ParseModes lists the accepted parse modes in their canonical order.
var ParseModes = []ParseMode{ParseModeMarkdownV2, ParseModeMarkdown, ParseModeHTML}

// Valid reports whether m is one of the supported parse modes.
func (m ParseMode) Valid() bool {
	switch m {
	case ParseModeMarkdownV2, ParseModeMarkdown, ParseModeHTML:
		return true
	default:
		return false
	}
}

// Client sends messages to a single chat on behalf of a single bot.
type Client struct {
	token   string
	chatID  string
	baseURL string
	hc      *http.Client
	log     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different Bot API server, such as a
// self-hosted telegram-bot-api instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.hc = hc
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient constructs a Client for the given bot token and destination chat.
func NewClient(token, chatID string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		chatID:  chatID,
		baseURL: DefaultBaseURL,
		hc:      &http.Client{},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// sendMessageResponse is the envelope every Bot API method answers with.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// SendMessage posts text to the configured chat. An empty mode defaults to
// MarkdownV2. On success the raw response body is returned.
func (c *Client) SendMessage(ctx context.Context, text string, mode ParseMode) (json.RawMessage, error) {
	start := time.Now()
	if mode == "" {
		mode = ParseModeMarkdownV2
	}

	form := url.Values{
		"chat_id":    {c.chatID},
		"text":       {text},
		"parse_mode": {string(mode)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("sendMessage"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", redactURLError(err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		err = redactURLError(err)
		c.log.WarnContext(ctx, "telegram.send.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("read response: %w", redactURLError(err))
		c.log.WarnContext(ctx, "telegram.send.fail", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.log.WarnContext(ctx, "telegram.send.http_error", slog.Int("status", res.StatusCode), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return nil, &HTTPError{StatusCode: res.StatusCode, Body: string(body)}
	}

	raw, err := decodeResponse(res.Header.Get("Content-Type"), body)
	if err != nil {
		c.log.WarnContext(ctx, "telegram.send.rejected", slog.String("err", err.Error()), slog.Int64("dur_ms", time.Since(start).Milliseconds()))
		return nil, err
	}

	c.log.InfoContext(ctx, "telegram.send.ok", slog.Int64("dur_ms", time.Since(start).Milliseconds()))
	return raw, nil
}

// Notify implements the notifier contract used by mcpservice.
func (c *Client) Notify(ctx context.Context, message string, mode ParseMode) (json.RawMessage, error) {
	return c.SendMessage(ctx, message, mode)
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + "/bot" + c.token + "/" + method
}

// decodeResponse validates a 2xx body. A missing Content-Type is tolerated;
// a declared non-JSON one is not.
func decodeResponse(ctype string, body []byte) (json.RawMessage, error) {
	if ctype != "" {
		if mt := contenttype.NewMediaType(ctype); !mt.Matches(jsonMediaType) {
			return nil, &ParseError{Err: fmt.Errorf("unexpected content type %q", ctype)}
		}
	}

	var env sendMessageResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Err: err}
	}
	if !env.OK {
		return nil, &APIError{ErrorCode: env.ErrorCode, Description: env.Description}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return nil, &ParseError{Err: err}
	}
	return compact.Bytes(), nil
}

// redactURLError drops the request URL from transport errors; it embeds the
// bot token.
func redactURLError(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", strings.ToLower(uerr.Op), uerr.Err)
	}
	return err
}
