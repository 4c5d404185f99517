package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aridelmo/argus/internal/waf"
)

var (
	// ErrUnavailable covers connect failures, timeouts and 5xx responses.
	ErrUnavailable = errors.New("decision service unavailable")
	// ErrMalformedVerdict means the service answered but the body could not
	// be decoded into a verdict.
	ErrMalformedVerdict = errors.New("decision service returned a malformed verdict")
)

// Client calls the external decision service over HTTP. The service is
// opaque: nothing is assumed about its internals beyond the verdict contract.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewClient creates a Client for the given base URL. Every analysis call is
// bounded by timeout so a stalled analyzer cannot stall the request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

type analyzeRequest struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Protocol string `json:"protocol"`
	Body     string `json:"request_body"`
}

type analyzeResponse struct {
	Allow       *bool    `json:"allow"`
	Reason      string   `json:"reason"`
	LearnedRule string   `json:"auto_learned_rule"`
	Score       *float64 `json:"score"`
	Perplexity  *float64 `json:"perplexity"`
}

// Analyze submits the Stage 2 payload and returns the service's verdict.
func (c *Client) Analyze(ctx context.Context, req waf.AnalysisRequest) (waf.Verdict, error) {
	payload := req.Stage2Payload()
	body, err := json.Marshal(analyzeRequest{
		Method:   payload.Method,
		Path:     payload.Path,
		Protocol: payload.Protocol,
		Body:     payload.Body,
	})
	if err != nil {
		return waf.Verdict{}, fmt.Errorf("encode analyze request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return waf.Verdict{}, fmt.Errorf("build analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return waf.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return waf.Verdict{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return waf.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if decoded.Allow == nil {
		return waf.Verdict{}, fmt.Errorf("%w: missing allow field", ErrMalformedVerdict)
	}

	return waf.Verdict{
		Allow:       *decoded.Allow,
		Reason:      decoded.Reason,
		LearnedRule: decoded.LearnedRule,
		Score:       decoded.Score,
		Perplexity:  decoded.Perplexity,
	}, nil
}

// Ping checks the decision service's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
