package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/jmanzanog/MarketDataService/internal/domain"
)

// SearchErrorItem is a per-ISIN failure inside a batch search.
type SearchErrorItem struct {
	ISIN  string `json:"isin"`
	Error string `json:"error"`
}

// SearchBatchResult collects batch search outcomes: every input ISIN lands
// in exactly one of the two lists.
type SearchBatchResult struct {
	Results []domain.Instrument `json:"results"`
	Errors  []SearchErrorItem   `json:"errors"`
}

// QuoteErrorItem is a per-symbol failure inside a batch quote.
type QuoteErrorItem struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// QuoteBatchResult collects batch quote outcomes.
type QuoteBatchResult struct {
	Results []domain.Quote   `json:"results"`
	Errors  []QuoteErrorItem `json:"errors"`
}

// SearchByISINBatch resolves many ISINs concurrently. Each item runs on its
// own goroutine since the underlying lookups are blocking I/O; one item's
// failure never aborts its siblings. No ordering is guaranteed beyond "every
// input accounted for exactly once".
func (s *MarketDataService) SearchByISINBatch(ctx context.Context, isins []string) *SearchBatchResult {
	result := &SearchBatchResult{
		Results: make([]domain.Instrument, 0, len(isins)),
		Errors:  make([]SearchErrorItem, 0),
	}

	if len(isins) == 0 {
		return result
	}

	type searchOutcome struct {
		isin       string
		instrument *domain.Instrument
		err        error
	}

	outcomes := make(chan searchOutcome, len(isins))
	var wg sync.WaitGroup

	for _, isin := range isins {
		wg.Add(1)
		go func(isin string) {
			defer wg.Done()

			instrument, err := s.SearchByISIN(ctx, isin)
			outcomes <- searchOutcome{
				isin:       isin,
				instrument: instrument,
				err:        err,
			}
		}(isin)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		switch {
		case o.err == nil:
			result.Results = append(result.Results, *o.instrument)
		case errors.Is(o.err, ErrInstrumentNotFound):
			result.Errors = append(result.Errors, SearchErrorItem{ISIN: o.isin, Error: "No instrument found for ISIN"})
		default:
			slog.ErrorContext(ctx, "Batch search error", "isin", o.isin, "error", o.err)
			result.Errors = append(result.Errors, SearchErrorItem{ISIN: o.isin, Error: o.err.Error()})
		}
	}

	return result
}

// GetQuoteBatch retrieves quotes for many symbols concurrently, with the
// same per-item isolation as SearchByISINBatch.
func (s *MarketDataService) GetQuoteBatch(ctx context.Context, symbols []string) *QuoteBatchResult {
	result := &QuoteBatchResult{
		Results: make([]domain.Quote, 0, len(symbols)),
		Errors:  make([]QuoteErrorItem, 0),
	}

	if len(symbols) == 0 {
		return result
	}

	type quoteOutcome struct {
		symbol string
		quote  *domain.Quote
		err    error
	}

	outcomes := make(chan quoteOutcome, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			quote, err := s.GetQuote(ctx, symbol)
			outcomes <- quoteOutcome{
				symbol: symbol,
				quote:  quote,
				err:    err,
			}
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		switch {
		case o.err == nil:
			result.Results = append(result.Results, *o.quote)
		case errors.Is(o.err, ErrQuoteNotFound):
			result.Errors = append(result.Errors, QuoteErrorItem{Symbol: o.symbol, Error: "No quote data available"})
		default:
			slog.ErrorContext(ctx, "Batch quote error", "symbol", o.symbol, "error", o.err)
			result.Errors = append(result.Errors, QuoteErrorItem{Symbol: o.symbol, Error: o.err.Error()})
		}
	}

	return result
}
