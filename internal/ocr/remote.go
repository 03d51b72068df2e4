package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/kumarraju1982/Convertx/internal/config"
	"github.com/kumarraju1982/Convertx/internal/pdf"
)

const (
	remoteMaxRetries   = 3
	remoteRetryDelay   = 2 * time.Second
	defaultRateLimit   = 4.0 // requests per second
	defaultHTTPTimeout = 120 * time.Second
)

// Remote is the high-accuracy engine backed by a hosted recognition
// service. It trades latency for quality on low-contrast scans.
type Remote struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewRemote creates a client for the hosted recognition service.
// The API key supports ${ENV_VAR} references.
func NewRemote(cfg config.RemoteCfg, logger *slog.Logger) (*Remote, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote engine requires a base_url")
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = defaultRateLimit
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &Remote{
		baseURL:    cfg.BaseURL,
		apiKey:     config.ResolveEnvVars(cfg.APIKey),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}, nil
}

// Name implements Engine.
func (r *Remote) Name() string { return "remote" }

type remoteRequest struct {
	Model    string `json:"model,omitempty"`
	Page     int    `json:"page"`
	DPI      int    `json:"dpi"`
	ImageB64 string `json:"image_base64"`
}

type remoteResponse struct {
	Words      []Word  `json:"words"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Recognize implements Engine. Requests are rate limited and retried
// with backoff on transient failures.
func (r *Remote) Recognize(ctx context.Context, img pdf.PageImage) (Result, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit wait for page %d: %w", img.PageNumber, err)
	}

	body, err := json.Marshal(remoteRequest{
		Model:    r.model,
		Page:     img.PageNumber,
		DPI:      img.DPI,
		ImageB64: base64.StdEncoding.EncodeToString(img.PNG),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode recognition request: %w", err)
	}

	var resp remoteResponse
	err = retry.Do(
		func() error {
			return r.doRequest(ctx, body, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(remoteMaxRetries),
		retry.Delay(remoteRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var re *remoteError
			if errors.As(err, &re) {
				return re.retryable()
			}
			return true // network errors are retryable
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("remote recognition failed on page %d: %w", img.PageNumber, err)
	}

	res := Result{Words: resp.Words, Text: resp.Text, Confidence: resp.Confidence}
	if res.Confidence == 0 && len(res.Words) > 0 {
		res.Confidence = meanConfidence(res.Words)
	}

	r.logger.Debug("page recognized",
		"engine", "remote",
		"page", img.PageNumber,
		"words", len(res.Words),
		"confidence", res.Confidence)

	return res, nil
}

func (r *Remote) doRequest(ctx context.Context, body []byte, out *remoteResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/recognize", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &remoteError{status: resp.StatusCode, body: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// remoteError is a non-2xx response from the recognition service.
type remoteError struct {
	status int
	body   string
}

func (e *remoteError) Error() string {
	return fmt.Sprintf("recognition service returned %d: %s", e.status, e.body)
}

// retryable reports whether the request may succeed on another attempt.
func (e *remoteError) retryable() bool {
	return e.status == http.StatusTooManyRequests || e.status >= 500
}
