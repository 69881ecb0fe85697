package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/MarketDataService/internal/application"
	"github.com/jmanzanog/MarketDataService/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockService struct {
	searchFunc      func(ctx context.Context, isin string) (*domain.Instrument, error)
	searchBatchFunc func(ctx context.Context, isins []string) *application.SearchBatchResult
	quoteFunc       func(ctx context.Context, symbol string) (*domain.Quote, error)
	quoteBatchFunc  func(ctx context.Context, symbols []string) *application.QuoteBatchResult
}

func (m *mockService) SearchByISIN(ctx context.Context, isin string) (*domain.Instrument, error) {
	return m.searchFunc(ctx, isin)
}

func (m *mockService) SearchByISINBatch(ctx context.Context, isins []string) *application.SearchBatchResult {
	return m.searchBatchFunc(ctx, isins)
}

func (m *mockService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return m.quoteFunc(ctx, symbol)
}

func (m *mockService) GetQuoteBatch(ctx context.Context, symbols []string) *application.QuoteBatchResult {
	return m.quoteBatchFunc(ctx, symbols)
}

func newTestRouter(service MarketDataService) *gin.Engine {
	router := gin.New()
	SetupRoutes(router, NewHandler(service))
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, ServiceVersion, body["version"])
}

func TestRoot(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ServiceName, body["name"])
	assert.Equal(t, "/health", body["health"])
}

func TestSearchByISIN_OK(t *testing.T) {
	inst := domain.Instrument{
		ISIN:     "US0378331005",
		Symbol:   "AAPL",
		Name:     "Apple Inc.",
		Type:     domain.InstrumentTypeStock,
		Currency: "USD",
		Exchange: "NASDAQ",
	}
	service := &mockService{
		searchFunc: func(ctx context.Context, isin string) (*domain.Instrument, error) {
			assert.Equal(t, "US0378331005", isin)
			return &inst, nil
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search/US0378331005", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got domain.Instrument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, inst, got)
}

func TestSearchByISIN_NotFound(t *testing.T) {
	service := &mockService{
		searchFunc: func(ctx context.Context, isin string) (*domain.Instrument, error) {
			return nil, application.ErrInstrumentNotFound
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search/XX0000000000", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No instrument found for ISIN: XX0000000000", body.Detail)
}

func TestSearchByISIN_UpstreamFailure(t *testing.T) {
	service := &mockService{
		searchFunc: func(ctx context.Context, isin string) (*domain.Instrument, error) {
			return nil, errors.New("primary search failed for ISIN US0378331005: upstream is down")
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/search/US0378331005", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "Failed to search for instrument")
	assert.Contains(t, body.Detail, "upstream is down")
}

func TestSearchBatch_OK(t *testing.T) {
	service := &mockService{
		searchBatchFunc: func(ctx context.Context, isins []string) *application.SearchBatchResult {
			assert.Equal(t, []string{"US0378331005", "XX0000000000"}, isins)
			return &application.SearchBatchResult{
				Results: []domain.Instrument{{ISIN: "US0378331005", Symbol: "AAPL"}},
				Errors:  []application.SearchErrorItem{{ISIN: "XX0000000000", Error: "No instrument found for ISIN"}},
			}
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodPost, "/api/v1/search/batch",
		BatchSearchRequest{ISINs: []string{"US0378331005", "XX0000000000"}})
	require.Equal(t, http.StatusOK, w.Code)

	var result application.SearchBatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Results, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "AAPL", result.Results[0].Symbol)
	assert.Equal(t, "XX0000000000", result.Errors[0].ISIN)
}

func TestSearchBatch_MissingBodyIsBadRequest(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodPost, "/api/v1/search/batch", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchBatch_MissingFieldIsBadRequest(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodPost, "/api/v1/search/batch", gin.H{"symbols": []string{"AAPL"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQuote_OK(t *testing.T) {
	service := &mockService{
		quoteFunc: func(ctx context.Context, symbol string) (*domain.Quote, error) {
			return &domain.Quote{
				Symbol:   symbol,
				Price:    "195.5000",
				Currency: "USD",
				Time:     "2026-08-28T12:00:00.000000001Z",
			}, nil
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/quote/AAPL", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var quote domain.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "195.5000", quote.Price)
}

func TestGetQuote_NotFound(t *testing.T) {
	service := &mockService{
		quoteFunc: func(ctx context.Context, symbol string) (*domain.Quote, error) {
			return nil, application.ErrQuoteNotFound
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/quote/DEAD", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No quote found for symbol: DEAD", body.Detail)
}

func TestGetQuote_Failure(t *testing.T) {
	service := &mockService{
		quoteFunc: func(ctx context.Context, symbol string) (*domain.Quote, error) {
			return nil, errors.New("formatting blew up")
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodGet, "/api/v1/quote/AAPL", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Detail, "Failed to get quote")
}

func TestQuoteBatch_OK(t *testing.T) {
	service := &mockService{
		quoteBatchFunc: func(ctx context.Context, symbols []string) *application.QuoteBatchResult {
			return &application.QuoteBatchResult{
				Results: []domain.Quote{{Symbol: "AAPL", Price: "195.5000", Currency: "USD"}},
				Errors:  []application.QuoteErrorItem{{Symbol: "DEAD", Error: "No quote data available"}},
			}
		},
	}
	router := newTestRouter(service)

	w := doRequest(t, router, http.MethodPost, "/api/v1/quote/batch",
		BatchQuoteRequest{Symbols: []string{"AAPL", "DEAD"}})
	require.Equal(t, http.StatusOK, w.Code)

	var result application.QuoteBatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Results, 1)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "No quote data available", result.Errors[0].Error)
}

func TestQuoteBatch_MissingFieldIsBadRequest(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodPost, "/api/v1/quote/batch", gin.H{"isins": []string{"US0378331005"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	router := newTestRouter(&mockService{})

	// Generated when absent.
	w := doRequest(t, router, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// Echoed when supplied.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&mockService{})

	w := doRequest(t, router, http.MethodOptions, "/api/v1/search/batch", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorBodyShape(t *testing.T) {
	// Clients key on the "detail" field; the name is part of the contract.
	payload, err := json.Marshal(ErrorResponse{Detail: "boom"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"detail": "boom"}`, string(payload))
}
