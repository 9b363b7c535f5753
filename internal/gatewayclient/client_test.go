package gatewayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/skintellect/storefront/internal/core/error"
	"github.com/skintellect/storefront/internal/model"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL+"/api/", srv.Client())
}

func product(id string) model.Product {
	return model.Product{ID: id, Brand: "B", Name: "N", Category: "Serum", Price: 10, Ingredients: []string{"Water"}, ImageURL: "x"}
}

func TestCompare(t *testing.T) {
	var got map[string]model.Product
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/compare", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"success":true,"data":{"matchScore":64,"summary":"s","keyIngredients":[],"priceAnalysis":"p","verdict":"Premium Choice"}}`))
	})

	analysis, err := client.Compare(context.Background(), product("1"), product("2"))

	require.NoError(t, err)
	assert.Equal(t, model.VerdictPremiumChoice, analysis.Verdict)
	assert.Equal(t, "1", got["source"].ID)
	assert.Equal(t, "2", got["target"].ID)
}

func TestSafetyReport(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/safety-audit", r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Water", "Retinol"}, body["ingredients"])
		_, _ = w.Write([]byte(`{"success":true,"data":{"report":"## Overall Assessment"}}`))
	})

	report, err := client.SafetyReport(context.Background(), []string{"Water", "Retinol"})

	require.NoError(t, err)
	assert.Equal(t, "## Overall Assessment", report)
}

func TestEnvelopeErrorsBecomeAppErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "validation",
			status:   http.StatusBadRequest,
			body:     `{"success":false,"error":{"code":"VALIDATION_ERROR","message":"Invalid request body","details":[{"field":"ingredients","rule":"min","message":"too few"}]}}`,
			wantCode: errx.CodeValidation,
			wantMsg:  "Invalid request body",
		},
		{
			name:     "rate limited",
			status:   http.StatusTooManyRequests,
			body:     `{"success":false,"error":{"code":"RATE_LIMITED","message":"Too many requests, please try again later."}}`,
			wantCode: errx.CodeRateLimited,
			wantMsg:  errx.RateLimitedMessage,
		},
		{
			name:     "ai failure",
			status:   http.StatusInternalServerError,
			body:     `{"success":false,"error":{"code":"AI_ERROR","message":"Failed to analyze ingredients. Please try again."}}`,
			wantCode: errx.CodeAI,
			wantMsg:  errx.SafetyFailedMessage,
		},
		{
			name:     "not json",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantCode: errx.CodeUpstream,
			wantMsg:  UnreachableMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.SafetyReport(context.Background(), []string{"Water"})

			var appErr *errx.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantMsg, appErr.Message)
		})
	}
}

func TestUnreachableGateway(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := NewWithHTTPClient(url, &http.Client{Timeout: time.Second})

	_, err := client.Compare(context.Background(), product("1"), product("2"))

	assert.True(t, errx.HasCode(err, errx.CodeUpstream))
}

func TestHealth(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","timestamp":"2024-05-01T12:00:00Z"}`))
	})

	h, err := client.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), h.Timestamp.UTC())
}
