package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/MarketDataService/internal/application"
	"github.com/jmanzanog/MarketDataService/internal/domain"
)

const (
	ServiceName    = "Market Data Service"
	ServiceVersion = "1.0.0"
)

// MarketDataService defines the interface for search and quote operations.
type MarketDataService interface {
	SearchByISIN(ctx context.Context, isin string) (*domain.Instrument, error)
	SearchByISINBatch(ctx context.Context, isins []string) *application.SearchBatchResult
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetQuoteBatch(ctx context.Context, symbols []string) *application.QuoteBatchResult
}

type Handler struct {
	service MarketDataService
}

func NewHandler(service MarketDataService) *Handler {
	return &Handler{
		service: service,
	}
}

// ErrorResponse is the error body shape consumed by API clients.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type BatchSearchRequest struct {
	ISINs []string `json:"isins" binding:"required"`
}

type BatchQuoteRequest struct {
	Symbols []string `json:"symbols" binding:"required"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": ServiceVersion,
	})
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    ServiceName,
		"version": ServiceVersion,
		"docs":    "/docs",
		"health":  "/health",
	})
}

func (h *Handler) SearchByISIN(c *gin.Context) {
	isin := c.Param("isin")

	instrument, err := h.service.SearchByISIN(c.Request.Context(), isin)
	if err != nil {
		if errors.Is(err, application.ErrInstrumentNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: fmt.Sprintf("No instrument found for ISIN: %s", isin)})
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to search instrument", "isin", isin, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: fmt.Sprintf("Failed to search for instrument: %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, instrument)
}

func (h *Handler) SearchBatch(c *gin.Context) {
	var req BatchSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid batch search request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	result := h.service.SearchByISINBatch(c.Request.Context(), req.ISINs)
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := h.service.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, application.ErrQuoteNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Detail: fmt.Sprintf("No quote found for symbol: %s", symbol)})
			return
		}
		slog.ErrorContext(c.Request.Context(), "Failed to get quote", "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: fmt.Sprintf("Failed to get quote: %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (h *Handler) QuoteBatch(c *gin.Context) {
	var req BatchQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.ErrorContext(c.Request.Context(), "Invalid batch quote request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		return
	}

	result := h.service.GetQuoteBatch(c.Request.Context(), req.Symbols)
	c.JSON(http.StatusOK, result)
}
