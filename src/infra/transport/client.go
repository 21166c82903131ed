// Package transport talks JSON over HTTP to the Challonge v1 API.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/domain/shared"
)

const (
	defaultBaseURL = "https://api.challonge.com/v1/"
	defaultTimeout = 30 * time.Second
	userAgent      = "sandai-challonge/1"
)

var ErrInvalidResponse = errors.New("transport: invalid response body")

var _ challonge.Transport = (*Client)(nil)

// Client implements challonge.Transport with basic authentication.
type Client struct {
	username   string
	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	registerer prometheus.Registerer

	latency  *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/") + "/"
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer registers the request metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// New builds a client for the given API credentials.
func New(username, apiKey string, opts ...Option) *Client {
	c := &Client{
		username:   username,
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		timeout:    defaultTimeout,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "challonge",
		Subsystem: "client",
		Name:      "request_latency_seconds",
		Help:      "Latency of requests sent to the Challonge API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	c.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "challonge",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total requests sent to the Challonge API",
	}, []string{"route", "method", "code"})
	if c.registerer != nil {
		c.registerer.MustRegister(c.latency, c.requests)
	}
	return c
}

// Do sends req and returns the JSON body. Failure statuses become
// *shared.APIError; an empty success body is returned as "{}".
func (c *Client) Do(ctx context.Context, req challonge.Request) (json.RawMessage, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	reqID := uuid.Must(uuid.NewV4()).String()
	httpReq.Header.Set("X-Request-Id", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, "error", start)
		c.logger.Debug("challonge request error",
			zap.String("method", req.Method),
			zap.String("route", routeOf(req.Path)),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.observe(req, strconv.Itoa(resp.StatusCode), start)
	c.logger.Debug("challonge request",
		zap.String("method", req.Method),
		zap.String("route", routeOf(req.Path)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", reqID),
	)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &shared.APIError{
			Kind:     shared.KindFromStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Method:   req.Method,
			Path:     req.Path,
			Messages: errorMessages(body),
		}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, ErrInvalidResponse)
	}
	return json.RawMessage(body), nil
}

func (c *Client) newRequest(ctx context.Context, req challonge.Request) (*http.Request, error) {
	endpoint := c.baseURL + strings.TrimPrefix(req.Path, "/") + ".json"
	if query := encodeParams(req.Prefix, req.Params); query != "" {
		endpoint += "?" + query
	}

	var body io.Reader
	contentType := ""
	if req.Upload != nil {
		buf, ct, err := multipartBody(req.Prefix, req.Upload)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.username, c.apiKey)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func multipartBody(prefix string, up *challonge.Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	field := up.Field
	if prefix != "" {
		field = prefix + "[" + up.Field + "]"
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(up.Content)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, up.FileName))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) observe(req challonge.Request, code string, start time.Time) {
	labels := prometheus.Labels{"route": routeOf(req.Path), "method": req.Method, "code": code}
	c.latency.With(labels).Observe(time.Since(start).Seconds())
	c.requests.With(labels).Inc()
}

// errorMessages reads {"errors": [...]} bodies. Anything else yields no message.
func errorMessages(body []byte) []string {
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return nil
	}

	var list []any
	if err := json.Unmarshal(payload.Errors, &list); err != nil {
		var single string
		if err := json.Unmarshal(payload.Errors, &single); err == nil {
			return []string{single}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
