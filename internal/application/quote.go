package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmanzanog/MarketDataService/internal/domain"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/marketdata"
)

// GetQuote retrieves a fresh price for a symbol, preferring the primary
// source's lightweight snapshot and falling back to a full info lookup.
//
// If no usable price comes back and the symbol's base part is itself shaped
// like an ISIN, the symbol is assumed to be an unresolved identifier: one
// self-repair pass re-runs resolution and retries the corrected symbol. The
// retry is bounded to a single pass so a "corrected" symbol that is again a
// disguised ISIN cannot recurse.
func (s *MarketDataService) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	current := symbol

	for attempt := 0; attempt < 2; attempt++ {
		price, currency, ok := s.fetchPrice(ctx, current)
		if ok {
			return buildQuote(current, price, currency)
		}

		if attempt > 0 {
			break
		}

		base := domain.SymbolBase(current)
		if !domain.IsValidISIN(base) {
			break
		}

		slog.InfoContext(ctx, "Quote symbol looks like an unresolved ISIN, attempting self-repair", "symbol", current)
		inst, err := s.SearchByISIN(ctx, base)
		if err != nil {
			slog.WarnContext(ctx, "Self-repair resolution failed", "symbol", current, "error", err)
			break
		}
		if inst.Symbol == current {
			break
		}

		slog.InfoContext(ctx, "Self-repair found corrected symbol", "symbol", current, "corrected", inst.Symbol)
		current = inst.Symbol
	}

	return nil, ErrQuoteNotFound
}

// fetchPrice tries the fast snapshot first and the full details lookup
// second; both failures read as "no price".
func (s *MarketDataService) fetchPrice(ctx context.Context, symbol string) (float64, string, bool) {
	snapshot, err := s.primary.FastQuote(ctx, symbol)
	if err == nil {
		if price, ok := snapshotPrice(snapshot); ok && validPrice(price) {
			return price, snapshot.Currency, true
		}
	} else {
		slog.DebugContext(ctx, "Fast quote failed, falling back to full info", "symbol", symbol, "error", err)
	}

	details, err := s.primary.TickerDetails(ctx, symbol)
	if err != nil {
		slog.DebugContext(ctx, "Ticker info quote lookup failed", "symbol", symbol, "error", err)
		return 0, "", false
	}

	price, ok := detailsPrice(details)
	if !ok || !validPrice(price) {
		slog.WarnContext(ctx, "No price data found for symbol", "symbol", symbol)
		return 0, "", false
	}

	return price, details.Currency, true
}

func buildQuote(symbol string, price float64, currency string) (*domain.Quote, error) {
	priceStr, err := domain.FormatPrice(price)
	if err != nil {
		return nil, err
	}

	if currency == "" {
		currency = "USD"
	}

	return &domain.Quote{
		Symbol:   symbol,
		Price:    priceStr,
		Currency: currency,
		Time:     time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

func snapshotPrice(s *marketdata.PriceSnapshot) (float64, bool) {
	if s.LastPrice != nil {
		return *s.LastPrice, true
	}
	if s.RegularMarketPrice != nil {
		return *s.RegularMarketPrice, true
	}
	return 0, false
}
