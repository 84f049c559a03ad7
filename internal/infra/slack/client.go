package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://slack.com/api"
	historyPageSize = 200
)

// Config contains Slack client configuration
type Config struct {
	BaseURL    string
	BotToken   string
	AppToken   string
	HTTPClient *http.Client

	// ReactionsPerMinute paces reactions.add; zero disables pacing
	ReactionsPerMinute int

	// Retry policy for history, postMessage and views.publish
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client is a minimal Slack Web API client
type Client struct {
	http     *http.Client
	baseURL  string
	botToken string
	appToken string
	limiter  *rate.Limiter

	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// NewClient creates a new Slack client
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimSpace(strings.TrimRight(cfg.BaseURL, "/"))
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		http:            httpClient,
		baseURL:         baseURL,
		botToken:        strings.TrimSpace(cfg.BotToken),
		appToken:        strings.TrimSpace(cfg.AppToken),
		maxAttempts:     cfg.MaxAttempts,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = 3
	}
	if c.initialInterval <= 0 {
		c.initialInterval = 300 * time.Millisecond
	}
	if c.maxInterval <= 0 {
		c.maxInterval = 5 * time.Second
	}
	if cfg.ReactionsPerMinute > 0 {
		burst := cfg.ReactionsPerMinute / 10
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.ReactionsPerMinute)), burst)
	}
	return c
}

// AuthTestResult is the identity behind the bot token
type AuthTestResult struct {
	TeamID string `json:"team_id"`
	UserID string `json:"user_id"`
	BotID  string `json:"bot_id"`
	Team   string `json:"team"`
	User   string `json:"user"`
}

// AuthTest resolves the bot identity
func (c *Client) AuthTest(ctx context.Context) (*AuthTestResult, error) {
	var out struct {
		apiResponse
		AuthTestResult
	}
	if err := c.postJSON(ctx, c.botToken, "auth.test", nil, &out); err != nil {
		return nil, err
	}
	if out.UserID == "" {
		return nil, fmt.Errorf("slack auth.test returned empty user_id")
	}
	return &out.AuthTestResult, nil
}

// Reaction is one reaction in conversations.history
type Reaction struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// HistoryMessage is one message in conversations.history
type HistoryMessage struct {
	Type      string     `json:"type"`
	Subtype   string     `json:"subtype,omitempty"`
	User      string     `json:"user,omitempty"`
	BotID     string     `json:"bot_id,omitempty"`
	Text      string     `json:"text"`
	TS        string     `json:"ts"`
	ThreadTS  string     `json:"thread_ts,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

type historyResponse struct {
	apiResponse
	Messages         []HistoryMessage `json:"messages"`
	HasMore          bool             `json:"has_more"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// History returns every message of channelID newer than oldest, following
// pagination cursors. Messages come back newest first, as Slack sends them.
func (c *Client) History(ctx context.Context, channelID string, oldest time.Time) ([]HistoryMessage, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, fmt.Errorf("channel_id is required")
	}

	var all []HistoryMessage
	cursor := ""
	for {
		form := url.Values{}
		form.Set("channel", channelID)
		form.Set("limit", strconv.Itoa(historyPageSize))
		if !oldest.IsZero() {
			form.Set("oldest", FormatTS(oldest))
		}
		if cursor != "" {
			form.Set("cursor", cursor)
		}

		var page historyResponse
		err := c.withRetry(ctx, func() error {
			page = historyResponse{}
			return c.postForm(ctx, c.botToken, "conversations.history", form, &page)
		})
		if err != nil {
			return all, err
		}
		all = append(all, page.Messages...)

		cursor = page.ResponseMetadata.NextCursor
		if !page.HasMore || cursor == "" {
			return all, nil
		}
	}
}

// AddReaction adds one reaction. It is paced but never retried.
func (c *Client) AddReaction(ctx context.Context, channelID, ts, name string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	form := url.Values{}
	form.Set("channel", channelID)
	form.Set("timestamp", ts)
	form.Set("name", name)
	var out apiResponse
	return c.postForm(ctx, c.botToken, "reactions.add", form, &out)
}

type postMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// PostMessage posts text, optionally as a thread reply
func (c *Client) PostMessage(ctx context.Context, channelID, text, threadTS string) error {
	channelID = strings.TrimSpace(channelID)
	text = strings.TrimSpace(text)
	if channelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if text == "" {
		return fmt.Errorf("text is required")
	}
	req := postMessageRequest{Channel: channelID, Text: text, ThreadTS: strings.TrimSpace(threadTS)}
	return c.withRetry(ctx, func() error {
		var out apiResponse
		return c.postJSON(ctx, c.botToken, "chat.postMessage", req, &out)
	})
}

type publishViewRequest struct {
	UserID string         `json:"user_id"`
	View   map[string]any `json:"view"`
}

// PublishView publishes a home tab view for userID
func (c *Client) PublishView(ctx context.Context, userID string, view map[string]any) error {
	req := publishViewRequest{UserID: userID, View: view}
	return c.withRetry(ctx, func() error {
		var out apiResponse
		return c.postJSON(ctx, c.botToken, "views.publish", req, &out)
	})
}

// OpenSocketURL asks for a Socket Mode websocket URL with the app token
func (c *Client) OpenSocketURL(ctx context.Context) (string, error) {
	var out struct {
		apiResponse
		URL string `json:"url"`
	}
	if err := c.postJSON(ctx, c.appToken, "apps.connections.open", nil, &out); err != nil {
		return "", err
	}
	u := strings.TrimSpace(out.URL)
	if u == "" {
		return "", fmt.Errorf("slack apps.connections.open returned empty url")
	}
	return u, nil
}

// ConnectSocket opens a Socket Mode connection
func (c *Client) ConnectSocket(ctx context.Context) (*websocket.Conn, error) {
	u, err := c.OpenSocketURL(ctx)
	if err != nil {
		return nil, err
	}
	dialer := *websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial socket mode: %w", err)
	}
	return conn, nil
}

// withRetry repeats fn on 429, 5xx and transport errors with exponential backoff
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.initialInterval
	exp.MaxInterval = c.maxInterval
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(exp, uint64(c.maxAttempts-1))
	b = backoff.WithContext(b, ctx)

	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if !apiErr.Temporary() {
				return backoff.Permanent(err)
			}
			if apiErr.RetryAfter > 0 {
				if sleepErr := sleepWithContext(ctx, apiErr.RetryAfter); sleepErr != nil {
					return backoff.Permanent(sleepErr)
				}
			}
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

// apiResponse is the envelope every Web API method answers with
type apiResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (r *apiResponse) failure() (bool, string) {
	if r.OK {
		return false, ""
	}
	code := strings.TrimSpace(r.Error)
	if code == "" {
		code = "unknown_error"
	}
	return true, code
}

type responseEnvelope interface {
	failure() (bool, string)
}

func (c *Client) postJSON(ctx context.Context, token, method string, payload any, out responseEnvelope) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	return c.do(ctx, token, method, body, "application/json; charset=utf-8", out)
}

func (c *Client) postForm(ctx context.Context, token, method string, form url.Values, out responseEnvelope) error {
	return c.do(ctx, token, method, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

func (c *Client) do(ctx context.Context, token, method string, body io.Reader, contentType string, out responseEnvelope) error {
	if token == "" {
		return fmt.Errorf("slack %s: token is required", method)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack %s: %w", method, err)
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("slack %s: read body: %w", method, readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, Status: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests {
			apiErr.Code = CodeRateLimited
			apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("slack %s: decode: %w", method, err)
	}
	if failed, code := out.failure(); failed {
		return &APIError{Method: method, Code: code, Status: resp.StatusCode}
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return time.Second
	}
	return time.Duration(secs) * time.Second
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FormatTS renders t in Slack's "seconds.micros" timestamp form
func FormatTS(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/int(time.Microsecond))
}
