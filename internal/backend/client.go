// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is the backend the client talks to when none is configured.
	DefaultBaseURL = "http://localhost:5000"

	// DefaultChatTimeout bounds one chat exchange.
	DefaultChatTimeout = 10 * time.Second

	// DefaultFirstAidTimeout bounds the first-aid guide fetch.
	DefaultFirstAidTimeout = 5 * time.Second

	// DefaultRequestTimeout bounds every other request.
	DefaultRequestTimeout = 15 * time.Second

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024
)

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin, without a trailing /api.
	BaseURL string

	ChatTimeout     time.Duration
	FirstAidTimeout time.Duration
	RequestTimeout  time.Duration

	// RequestsPerSecond paces outbound requests. Zero disables pacing.
	RequestsPerSecond float64

	// UserAgent is sent on every request.
	UserAgent string
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           DefaultBaseURL,
		ChatTimeout:       DefaultChatTimeout,
		FirstAidTimeout:   DefaultFirstAidTimeout,
		RequestTimeout:    DefaultRequestTimeout,
		RequestsPerSecond: 5,
		UserAgent:         "medai-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the medical assistance backend.
// The Client is safe for concurrent use.
//
// Example:
//
//	client := backend.NewClient(cfg)
//	reply, err := client.Chat(ctx, "I feel dizzy", history)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.ChatTimeout <= 0 {
		config.ChatTimeout = def.ChatTimeout
	}
	if config.FirstAidTimeout <= 0 {
		config.FirstAidTimeout = def.FirstAidTimeout
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = def.UserAgent
	}

	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	return &Client{
		config: config,
		// Timeouts are applied per request through the context.
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, 2),
	}
}

// =============================================================================
// CHAT
// =============================================================================

// Chat sends one user message with its bounded history and returns the reply text.
// An empty or missing reply is an ErrTypeInvalidResponse error.
func (c *Client) Chat(ctx context.Context, message string, history []model.Message) (string, error) {
	if history == nil {
		history = []model.Message{}
	}
	var resp ChatResponse
	req := ChatRequest{Message: message, ChatHistory: history}
	if err := c.do(ctx, http.MethodPost, "/api/chat", nil, req, &resp, c.config.ChatTimeout); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Reply) == "" {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "empty reply"}
	}
	return resp.Reply, nil
}

// =============================================================================
// FIRST AID
// =============================================================================

// FirstAidGuides returns every first-aid guide.
func (c *Client) FirstAidGuides(ctx context.Context) ([]model.Guide, error) {
	var guides []model.Guide
	if err := c.do(ctx, http.MethodGet, "/api/first-aid", nil, nil, &guides, c.config.FirstAidTimeout); err != nil {
		return nil, err
	}
	if guides == nil {
		guides = []model.Guide{}
	}
	return guides, nil
}

// =============================================================================
// HOSPITALS
// =============================================================================

// NearbyHospitals returns hospitals near the given coordinate.
// A response without results yields an empty list.
func (c *Client) NearbyHospitals(ctx context.Context, at model.LatLng) ([]model.Hospital, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(at.Lng, 'f', -1, 64))

	var resp HospitalsResponse
	if err := c.do(ctx, http.MethodGet, "/api/nearby-hospitals", q, nil, &resp, c.config.RequestTimeout); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return []model.Hospital{}, nil
	}
	return resp.Results, nil
}

// =============================================================================
// SOS
// =============================================================================

// SOSProfile fetches the stored emergency profile for userID.
// A null body yields a blank profile. A 404 is an ErrNotFound error.
func (c *Client) SOSProfile(ctx context.Context, userID string) (*model.SOSProfile, error) {
	if userID == "" {
		return nil, errors.New("user id cannot be empty")
	}
	var p *model.SOSProfile
	path := "/api/sos/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p, c.config.RequestTimeout); err != nil {
		return nil, err
	}
	if p == nil {
		p = model.NewSOSProfile(userID)
	}
	p.UserID = userID
	p.Normalize()
	return p, nil
}

// SaveSOSProfile stores p for p.UserID.
func (c *Client) SaveSOSProfile(ctx context.Context, p *model.SOSProfile) error {
	if p == nil || p.UserID == "" {
		return errors.New("profile must carry a user id")
	}
	return c.do(ctx, http.MethodPost, "/api/sos", nil, p, nil, c.config.RequestTimeout)
}

// TriggerSOS raises an emergency alert for userID and returns the backend's confirmation.
func (c *Client) TriggerSOS(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}
	var resp AlertResponse
	if err := c.do(ctx, http.MethodPost, "/api/sos/alert", nil, AlertRequest{UserID: userID}, &resp, c.config.RequestTimeout); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do performs one JSON request. A nil in skips the body; a nil out discards the response.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, timeout time.Duration) error {
	requestID := uuid.NewString()
	log := logging.Get().With("request_id", requestID, "method", method, "path", path)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return classify(ctx, err, requestID)
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err, RequestID: requestID}
		}
		body = bytes.NewReader(b)
	}

	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err, RequestID: requestID}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Infow("request fail", "err", err, "elapsed", time.Since(start))
		return classify(ctx, err, requestID)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		log.Infow("read body fail", "err", err)
		return classify(ctx, err, requestID)
	}
	log.Debugw("response", "status", resp.StatusCode, "bytes", len(data), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, data, requestID, log)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err, RequestID: requestID}
	}
	return nil
}

func statusError(resp *http.Response, data []byte, requestID string, log *zap.SugaredLogger) error {
	ce := &ClientError{
		Type:      ErrTypeStatus,
		Message:   "request failed",
		Status:    resp.StatusCode,
		RequestID: requestID,
	}
	if resp.StatusCode == http.StatusNotFound {
		ce.Type = ErrTypeNotFound
		ce.Message = "not found"
	}
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil {
		ce.ServerMessage = strings.TrimSpace(eb.Message)
		ce.ServerError = strings.TrimSpace(eb.Error)
	}
	log.Infow("request rejected", "status", resp.StatusCode, "server_message", ce.ServerMessage, "server_error", ce.ServerError)
	return ce
}

// classify maps a transport failure onto a ClientError.
func classify(ctx context.Context, err error, requestID string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err, RequestID: requestID}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err, RequestID: requestID}
	}
	return &ClientError{Type: ErrTypeConnection, Message: "backend unreachable", Cause: err, RequestID: requestID}
}
