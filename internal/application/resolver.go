package application

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/jmanzanog/MarketDataService/internal/domain"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/marketdata"
)

// marketSuffixes is the ordered list of listing venues tried during suffix
// sweeps. The order is tuned data, not an invariant: European venues first
// because most ISINs reaching the sweep are European-listed, then US (empty
// suffix) and the rest of the world.
var marketSuffixes = []string{
	".DE", // Germany
	".L",  // London
	".PA", // Paris
	".AS", // Amsterdam
	".MI", // Milan
	".SW", // Switzerland
	".MC", // Madrid
	".BR", // Brussels
	"",    // US listings carry no suffix
	".TO", // Toronto
	".AX", // Australia
	".HK", // Hong Kong
	".T",  // Tokyo
}

// nameCleanTerms are generic fund/issuer terms stripped from display names
// before a name-based re-search. Also tuned data.
var nameCleanTerms = []string{
	"UCITS", "ETF", "ETC", "Acc", "Dist", "Inc",
	"iShares", "Vanguard", "Xtrackers", "Amundi", "Lyxor",
	"SPDR", "Invesco", "WisdomTree", "HSBC", "Fidelity",
}

var nameCleanPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(nameCleanTerms, "|") + `)\b`)

// exchangeNames maps a symbol suffix to a human-readable exchange name, used
// when the primary source reports a blank exchange field.
var exchangeNames = map[string]string{
	"L":  "London Stock Exchange",
	"DE": "Deutsche Börse",
	"PA": "Euronext Paris",
	"AS": "Euronext Amsterdam",
	"BR": "Euronext Brussels",
	"MI": "Borsa Italiana",
	"MC": "Bolsa de Madrid",
	"SW": "SIX Swiss Exchange",
	"TO": "Toronto Stock Exchange",
	"V":  "TSX Venture Exchange",
	"AX": "Australian Securities Exchange",
	"HK": "Hong Kong Stock Exchange",
	"T":  "Tokyo Stock Exchange",
	"SS": "Shanghai Stock Exchange",
	"SZ": "Shenzhen Stock Exchange",
}

// SearchByISIN resolves an ISIN to a priced instrument through a sequence of
// fallback stages; the first stage to produce a validly priced symbol wins.
//
// Only an error from the initial primary search escapes as a hard error, to
// distinguish "source is down" from "instrument not found". Every later
// stage failure is logged and folded into the next fallback.
func (s *MarketDataService) SearchByISIN(ctx context.Context, isin string) (*domain.Instrument, error) {
	if !domain.IsValidISIN(isin) {
		slog.WarnContext(ctx, "Rejecting malformed ISIN", "isin", isin)
		return nil, ErrInstrumentNotFound
	}
	isin = strings.ToUpper(isin)

	candidates, err := s.primary.Search(ctx, isin)
	if err != nil {
		return nil, fmt.Errorf("primary search failed for ISIN %s: %w", isin, err)
	}

	if len(candidates) == 0 {
		slog.DebugContext(ctx, "Primary search returned no candidates", "isin", isin)
		return s.resolveViaDiscovery(ctx, isin)
	}

	first := candidates[0]
	if first.Symbol != "" {
		if inst := s.probeSymbol(ctx, isin, first.Symbol); inst != nil {
			return inst, nil
		}

		base := domain.SymbolBase(first.Symbol)
		if base != isin {
			if inst := s.sweepSuffixes(ctx, isin, base, first.Symbol); inst != nil {
				return inst, nil
			}
		} else {
			// The source echoed the ISIN back as a symbol; suffixing an
			// ISIN never yields a real listing.
			slog.DebugContext(ctx, "Skipping suffix sweep, base symbol equals ISIN", "isin", isin)
		}
	}

	if name := candidateName(first); name != "" {
		if inst := s.searchByName(ctx, isin, name); inst != nil {
			return inst, nil
		}
	}

	return s.resolveViaDiscovery(ctx, isin)
}

// probeSymbol fetches full ticker info for a symbol and converts it to an
// Instrument when the record is validly priced and not a ghost.
func (s *MarketDataService) probeSymbol(ctx context.Context, isin, symbol string) *domain.Instrument {
	details, err := s.primary.TickerDetails(ctx, symbol)
	if err != nil {
		slog.DebugContext(ctx, "Ticker info probe failed", "isin", isin, "symbol", symbol, "error", err)
		return nil
	}

	price, ok := detailsPrice(details)
	if !ok || !validPrice(price) {
		slog.DebugContext(ctx, "Ticker info probe has no usable price", "isin", isin, "symbol", symbol)
		return nil
	}

	// Ghost record: the source echoed the query back as a placeholder
	// symbol with no real instrument behind it.
	if domain.SymbolBase(symbol) == isin && details.LongName == "" {
		slog.DebugContext(ctx, "Rejecting ghost record", "isin", isin, "symbol", symbol)
		return nil
	}

	instrumentType := domain.InstrumentTypeStock
	if details.QuoteType == "ETF" {
		instrumentType = domain.InstrumentTypeETF
	}

	name := details.LongName
	if name == "" {
		name = details.ShortName
	}
	if name == "" {
		name = symbol
	}

	currency := details.Currency
	if currency == "" {
		currency = "USD"
	}

	inst := domain.NewInstrument(isin, symbol, name, instrumentType, currency, resolveExchange(symbol, details.Exchange))
	return &inst
}

// sweepSuffixes probes base combined with every candidate market suffix,
// skipping the symbol already tried.
func (s *MarketDataService) sweepSuffixes(ctx context.Context, isin, base, tried string) *domain.Instrument {
	for _, suffix := range marketSuffixes {
		candidate := base + suffix
		if candidate == tried {
			continue
		}
		if inst := s.probeSymbol(ctx, isin, candidate); inst != nil {
			slog.InfoContext(ctx, "Resolved via suffix sweep", "isin", isin, "symbol", candidate)
			return inst
		}
	}
	return nil
}

// searchByName re-runs the primary search with a cleaned display name and
// probes the first few candidates. Search errors here are swallowed; only
// the initial ISIN search is allowed to fail hard.
func (s *MarketDataService) searchByName(ctx context.Context, isin, name string) *domain.Instrument {
	cleaned := cleanInstrumentName(name)
	if len(cleaned) < 4 {
		// Cleaning ate the whole name; better to search the original than
		// an empty string.
		cleaned = name
	}

	candidates, err := s.primary.Search(ctx, cleaned)
	if err != nil {
		slog.WarnContext(ctx, "Name-based search failed", "isin", isin, "query", cleaned, "error", err)
		return nil
	}

	limit := 3
	if len(candidates) < limit {
		limit = len(candidates)
	}

	for _, c := range candidates[:limit] {
		if c.Symbol == "" {
			continue
		}
		// A symbol containing the original ISIN is a circular ghost match.
		if strings.Contains(c.Symbol, isin) {
			continue
		}
		if inst := s.probeSymbol(ctx, isin, c.Symbol); inst != nil {
			slog.InfoContext(ctx, "Resolved via name search", "isin", isin, "symbol", c.Symbol, "query", cleaned)
			return inst
		}
	}

	return nil
}

// resolveViaDiscovery is the final fallback: ask the secondary provider,
// then try to confirm its suggestion against the primary source.
func (s *MarketDataService) resolveViaDiscovery(ctx context.Context, isin string) (*domain.Instrument, error) {
	info := s.discovery.SearchByISIN(ctx, isin)
	if info == nil {
		return nil, ErrInstrumentNotFound
	}

	if inst := s.probeSymbol(ctx, isin, info.Symbol); inst != nil {
		return inst, nil
	}

	// Cross-pollination: the provider's suggested venue may differ from
	// where the primary source actually lists the instrument, so retry the
	// bare ticker against every suffix.
	ticker := domain.SymbolBase(info.Symbol)
	if inst := s.sweepSuffixes(ctx, isin, ticker, info.Symbol); inst != nil {
		return inst, nil
	}

	if info.Name != "" {
		if inst := s.searchByName(ctx, isin, info.Name); inst != nil {
			return inst, nil
		}
	}

	// Better a degraded answer than none: the provider only covers ETFs,
	// so return its raw suggestion even though the primary source could
	// not confirm a price for it.
	slog.WarnContext(ctx, "Returning unconfirmed discovery result", "isin", isin, "symbol", info.Symbol)
	inst := domain.NewInstrument(isin, info.Symbol, info.Name, domain.InstrumentTypeETF, info.Currency, info.Exchange)
	return &inst, nil
}

func candidateName(c marketdata.Candidate) string {
	if c.LongName != "" {
		return c.LongName
	}
	return c.ShortName
}

// cleanInstrumentName strips generic fund and issuer terms and collapses the
// remaining whitespace.
func cleanInstrumentName(name string) string {
	cleaned := nameCleanPattern.ReplaceAllString(name, " ")
	cleaned = strings.NewReplacer("(", " ", ")", " ").Replace(cleaned)
	return strings.Join(strings.Fields(cleaned), " ")
}

func detailsPrice(details *marketdata.TickerDetails) (float64, bool) {
	if details.RegularMarketPrice != nil {
		return *details.RegularMarketPrice, true
	}
	if details.CurrentPrice != nil {
		return *details.CurrentPrice, true
	}
	return 0, false
}

func validPrice(price float64) bool {
	return !math.IsNaN(price) && price > 0
}

// resolveExchange prefers the source-reported exchange and falls back to the
// symbol suffix. Suffix-less symbols are assumed US-listed.
func resolveExchange(symbol, exchange string) string {
	if exchange != "" {
		return exchange
	}
	if suffix := domain.SymbolSuffix(symbol); suffix != "" {
		if name, ok := exchangeNames[suffix]; ok {
			return name
		}
		return suffix
	}
	return "NYSE/NASDAQ"
}
