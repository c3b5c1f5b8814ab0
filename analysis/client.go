// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

const (
	DefaultPath      = "/analyze_tone_praat"
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "tonerec/1.0"

	formField = "audio"
	// error bodies past this size are not worth parsing
	maxErrorBody = 64 << 10
)

// Config describes the remote analysis endpoint.
type Config struct {
	BaseURL   string
	Path      string
	Timeout   time.Duration
	UserAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Its Timeout is left alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client submits recordings to the analysis service. One request per call;
// failures are never retried.
type Client struct {
	endpoint  string
	userAgent string
	http      *http.Client
	log       *slog.Logger
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, ErrNoEndpoint
	}
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis endpoint %q: %w", cfg.BaseURL, err)
	}

	c := &Client{
		endpoint:  endpoint,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint is the full URL requests are posted to.
func (c *Client) Endpoint() string { return c.endpoint }

// Analyze uploads file and returns the service's verdict. Errors are
// *NetworkError, *ServerError or *MalformedResponseError.
func (c *Client) Analyze(ctx context.Context, file *wav.File) (*Result, error) {
	if file == nil || len(file.Data) == 0 {
		return nil, ErrNoAudio
	}

	body, contentType, err := multipartBody(file)
	if err != nil {
		return nil, fmt.Errorf("building request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	log := c.log.With(slog.String("request_id", requestID))
	log.Debug("submitting recording",
		slog.String("endpoint", c.endpoint),
		slog.Int("bytes", file.Size()))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("analysis request failed", slog.String("error", err.Error()))
		return nil, &NetworkError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "reading response", Err: err}
	}

	log.Debug("analysis response",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(respBody)),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		serr := &ServerError{StatusCode: resp.StatusCode, Detail: parseDetail(respBody)}
		log.Warn("analysis rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("detail", serr.Detail))
		return nil, serr
	}

	res, err := parseResult(respBody)
	if err != nil {
		log.Warn("unexpected analysis response", slog.String("error", err.Error()))
		return nil, err
	}

	log.Info("analysis complete",
		slog.String("tone", string(res.Tone)),
		slog.String("slope", res.FormatSlope()),
		slog.Bool("dipping", res.IsDipping))

	return res, nil
}

func multipartBody(file *wav.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := file.Name
	if name == "" {
		name = wav.FileName
	}
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = wav.MediaType
	}

	// CreateFormFile would label the part application/octet-stream
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, name))
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("writing audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, mw.FormDataContentType(), nil
}

// parseDetail extracts a string "detail" member from an error body.
// Structured details (such as validation error lists) are ignored.
func parseDetail(body []byte) string {
	if len(body) == 0 || len(body) > maxErrorBody {
		return ""
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}

	return strings.TrimSpace(detail)
}
