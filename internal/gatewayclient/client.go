// Package gatewayclient talks to a remote AI gateway over HTTP.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
	logx "github.com/skintellect/storefront/pkg/logger"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 4 << 20

// UnreachableMessage is used when the gateway cannot be reached or answers garbage.
const UnreachableMessage = "AI gateway unavailable"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details []errx.FieldError `json:"details"`
	} `json:"error"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Client calls the /ai endpoints of a gateway. Failures are returned as *errx.AppError
// carrying the gateway's envelope code.
type Client struct {
	baseURL string
	hc      *http.Client
}

func New(cfg model.GatewayClientConfig) *Client {
	return NewWithHTTPClient(cfg.URL, &http.Client{Timeout: cfg.Timeout})
}

// NewWithHTTPClient uses hc for every request. baseURL is the API root, e.g.
// http://localhost:3002/api.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *Client) Compare(ctx context.Context, source, target model.Product) (*model.AIAnalysis, error) {
	var out model.AIAnalysis
	body := map[string]model.Product{"source": source, "target": target}
	if err := c.post(ctx, "/ai/compare", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SafetyReport(ctx context.Context, ingredients []string) (string, error) {
	var out model.SafetyReport
	if err := c.post(ctx, "/ai/safety-audit", map[string][]string{"ingredients": ingredients}, &out); err != nil {
		return "", err
	}
	return out.Report, nil
}

// Health calls the unenveloped health endpoint.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, unreachable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errx.New(fmt.Errorf("health status %d", resp.StatusCode), resp.StatusCode, errx.CodeUpstream, UnreachableMessage)
	}
	var h Health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&h); err != nil {
		return nil, unreachable(fmt.Errorf("decode health: %w", err))
	}
	return &h, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("path", path).Msg("gateway request failed")
		return unreachable(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return unreachable(fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err))
	}

	if !env.Success {
		appErr := &errx.AppError{
			Err:     fmt.Errorf("gateway %s returned status %d", path, resp.StatusCode),
			Status:  resp.StatusCode,
			Code:    errx.CodeUnknown,
			Message: errx.SystemErrorMessage,
		}
		if env.Error != nil {
			appErr.Code = env.Error.Code
			appErr.Message = env.Error.Message
			appErr.Details = env.Error.Details
		}
		return appErr
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return unreachable(fmt.Errorf("decode %s data: %w", path, err))
	}
	return nil
}

func unreachable(err error) error {
	return errx.New(err, http.StatusBadGateway, errx.CodeUpstream, UnreachableMessage)
}
