package jimeng

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"headergen/internal/infra"
)

// Protocol constants for the Jimeng 4.0 text-to-image model.
const (
	reqKey          = "jimeng_t2i_v40"
	actionSubmit    = "CVSync2AsyncSubmitTask"
	actionGetResult = "CVSync2AsyncGetResult"
	apiVersion      = "2022-08-31"
	codeSuccess     = 10000
	statusDone      = "done"
)

// Canvas bounds accepted by the model.
const (
	minPixelArea = 1024 * 1024
	maxPixelArea = 4096 * 4096
	minAspect    = 1.0 / 3.0
	maxAspect    = 3.0
	defaultEdge  = 2048
)

var (
	// ErrTaskRejected indicates the API answered with a non-success application code.
	ErrTaskRejected = errors.New("jimeng: task rejected")
	// ErrPollTimeout indicates polling exhausted the configured wait budget.
	ErrPollTimeout = errors.New("jimeng: poll timeout")
)

// Options configures the Jimeng visual API client.
type Options struct {
	Credentials    Credentials
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	Now            func() time.Time
	PollInterval   time.Duration
	MaxWait        time.Duration
	RequestTimeout time.Duration
}

// Client performs signed HTTP calls to the Volcengine Jimeng text-to-image API
// and drives its asynchronous submit/poll task lifecycle.
type Client struct {
	creds        Credentials
	baseURL      string
	httpClient   *http.Client
	logger       *infra.Logger
	now          func() time.Time
	pollInterval time.Duration
	maxWait      time.Duration
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://" + apiHost
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	maxWait := opts.MaxWait
	if maxWait <= 0 {
		maxWait = 60 * time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		creds:        opts.Credentials,
		baseURL:      baseURL,
		httpClient:   httpClient,
		logger:       logger,
		now:          now,
		pollInterval: interval,
		maxWait:      maxWait,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.creds.Configured()
}

// PollInterval returns the configured delay between result polls.
func (c *Client) PollInterval() time.Duration {
	return c.pollInterval
}

// MaxWait returns the configured polling budget per task.
func (c *Client) MaxWait() time.Duration {
	return c.maxWait
}

// SanitizeDimensions clamps a requested canvas into the bounds the model
// accepts. An aspect ratio outside [1/3, 3] raises the short edge; a total
// area outside [1024*1024, 4096*4096] rescales both edges proportionally.
// Non-positive input falls back to the 2048 square default. Out-of-range
// requests are corrected, never rejected.
func SanitizeDimensions(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return defaultEdge, defaultEdge
	}
	ratio := float64(width) / float64(height)
	if ratio > maxAspect {
		height = int(math.Ceil(float64(width) / maxAspect))
	} else if ratio < minAspect {
		width = int(math.Ceil(float64(height) / maxAspect))
	}
	area := float64(width) * float64(height)
	if area > maxPixelArea {
		scale := math.Sqrt(maxPixelArea / area)
		width = int(float64(width) * scale)
		height = int(float64(height) * scale)
	} else if area < minPixelArea {
		scale := math.Sqrt(minPixelArea / area)
		width = int(math.Ceil(float64(width) * scale))
		height = int(math.Ceil(float64(height) * scale))
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// SubmitTask sends one generation request and returns the remote task id.
func (c *Client) SubmitTask(ctx context.Context, prompt string, width, height int) (string, error) {
	if !c.HasCredentials() {
		return "", ErrNoCredentials
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("jimeng: prompt is required")
	}
	width, height = SanitizeDimensions(width, height)
	payload := submitRequest{
		ReqKey:      reqKey,
		Prompt:      prompt,
		Width:       width,
		Height:      height,
		ForceSingle: true,
	}
	var decoded submitResponse
	if err := c.post(ctx, actionSubmit, payload, &decoded); err != nil {
		return "", err
	}
	if decoded.Code != codeSuccess || decoded.Data.TaskID == "" {
		return "", fmt.Errorf("jimeng: submit code %d: %s: %w", decoded.Code, decoded.Message, ErrTaskRejected)
	}
	c.logger.Debug().
		Str("task_id", decoded.Data.TaskID).
		Int("width", width).
		Int("height", height).
		Msg("jimeng: task submitted")
	return decoded.Data.TaskID, nil
}

// GetResult performs one poll for a submitted task.
func (c *Client) GetResult(ctx context.Context, taskID string) (*TaskResult, error) {
	if !c.HasCredentials() {
		return nil, ErrNoCredentials
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, errors.New("jimeng: task id is required")
	}
	reqJSON, err := json.Marshal(resultOptions{ReturnURL: true})
	if err != nil {
		return nil, fmt.Errorf("jimeng: encode req_json: %w", err)
	}
	payload := resultRequest{ReqKey: reqKey, TaskID: taskID, ReqJSON: string(reqJSON)}
	var decoded resultResponse
	if err := c.post(ctx, actionGetResult, payload, &decoded); err != nil {
		return nil, err
	}
	if decoded.Code != codeSuccess {
		return nil, fmt.Errorf("jimeng: result code %d: %s: %w", decoded.Code, decoded.Message, ErrTaskRejected)
	}
	return &TaskResult{Status: decoded.Data.Status, ImageURLs: decoded.Data.ImageURLs}, nil
}

// WaitForImage polls the task until it produces an image or the wait budget is
// exhausted, and reports the time spent. Failed polls count as missed beats and
// the loop keeps going; only the deadline or ctx cancellation ends it early.
func (c *Client) WaitForImage(ctx context.Context, taskID string) (string, time.Duration, error) {
	start := c.now()
	for {
		res, err := c.GetResult(ctx, taskID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", c.now().Sub(start), ctx.Err()
			}
			c.logger.Warn().Err(err).Str("task_id", taskID).Msg("jimeng: poll failed")
		case res.Done():
			elapsed := c.now().Sub(start)
			c.logger.Info().
				Str("task_id", taskID).
				Dur("elapsed", elapsed).
				Msg("jimeng: task done")
			return res.ImageURLs[0], elapsed, nil
		default:
			c.logger.Debug().Str("task_id", taskID).Str("status", res.Status).Msg("jimeng: task pending")
		}
		elapsed := c.now().Sub(start)
		if elapsed >= c.maxWait {
			return "", elapsed, fmt.Errorf("jimeng: waited %s for task %s: %w", c.maxWait, taskID, ErrPollTimeout)
		}
		select {
		case <-ctx.Done():
			return "", c.now().Sub(start), ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

func (c *Client) post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("jimeng: encode request: %w", err)
	}
	query := map[string]string{"Action": action, "Version": apiVersion}
	header, err := signRequest(c.creds, c.now(), query, body)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + "?" + canonicalQuery(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("jimeng: build request: %w", err)
	}
	for name, values := range header {
		for _, v := range values {
			req.Header.Set(name, v)
		}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("jimeng: http request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("jimeng: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("jimeng: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("jimeng: decode response: %w", err)
	}
	return nil
}
