package justetf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmanzanog/MarketDataService/internal/domain"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/cache"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/discovery"
)

const (
	defaultBaseURL = "https://www.justetf.com/en/etf-profile.html"
	requestTimeout = 10 * time.Second

	// blockDuration is how long the circuit stays open after a 403.
	blockDuration = 10 * time.Minute

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// tickerPatterns are tried in priority order against the raw markup; the
// first match wins.
var tickerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"ticker"\s*:\s*"([A-Z0-9]+)"`),
	regexp.MustCompile(`(?i)Ticker[:\s]+([A-Z0-9]{2,10})\b`),
	regexp.MustCompile(`(?i)data-ticker="([A-Z0-9]+)"`),
}

var (
	h1Pattern       = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	titlePattern    = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	tagPattern      = regexp.MustCompile(`<[^>]+>`)
	currencyPattern = regexp.MustCompile(`\b(EUR|USD|GBP|CHF)\b`)
)

// exchangeSuffix maps a justETF exchange name, substring-matched against the
// page text, to the market suffix the primary source uses. Checked in order;
// the list covers the venues European ETFs actually list on.
var exchangeSuffixes = []struct {
	Exchange string
	Suffix   string
}{
	{"XETRA", ".DE"},
	{"gettex", ".DE"},
	{"London Stock Exchange", ".L"},
	{"Euronext Paris", ".PA"},
	{"Euronext Amsterdam", ".AS"},
	{"Borsa Italiana", ".MI"},
	{"SIX Swiss Exchange", ".SW"},
}

// Provider scrapes justETF for ISIN to ticker mappings. A single shared
// instance serves all requests; its circuit breaker is process-wide, so one
// 403 stops lookups for every ISIN until the cool-down elapses.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.MetadataCache

	// blockedUntil holds a UnixNano timestamp while the circuit is open,
	// 0 otherwise. Last writer wins; concurrent trips race harmlessly.
	blockedUntil atomic.Int64
}

// NewProvider creates a provider backed by the given metadata cache.
func NewProvider(metadataCache *cache.MetadataCache) *Provider {
	return &Provider{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		cache: metadataCache,
	}
}

// NewProviderWithBaseURL creates a provider against a custom endpoint.
func NewProviderWithBaseURL(baseURL string, metadataCache *cache.MetadataCache) *Provider {
	p := NewProvider(metadataCache)
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

// SetBaseURL sets the lookup endpoint (useful for testing).
func (p *Provider) SetBaseURL(baseURL string) {
	p.baseURL = baseURL
}

// isBlocked reports whether the circuit is currently open. An elapsed block
// self-clears on the next check.
func (p *Provider) isBlocked() bool {
	until := p.blockedUntil.Load()
	if until == 0 {
		return false
	}
	if time.Now().UnixNano() < until {
		return true
	}
	p.blockedUntil.Store(0)
	return false
}

// TripBreaker opens the circuit until now + blockDuration (exported for tests).
func (p *Provider) TripBreaker() {
	p.blockedUntil.Store(time.Now().Add(blockDuration).UnixNano())
}

// SearchByISIN looks up ETF information for an ISIN on justETF. The cache is
// consulted first; a circuit-breaker check guards the actual network call.
// All failures degrade to nil.
func (p *Provider) SearchByISIN(ctx context.Context, isin string) *domain.TickerInfo {
	if cached := p.cache.Get(ctx, isin); cached != nil {
		return cached
	}

	if p.isBlocked() {
		slog.WarnContext(ctx, "justETF provider temporarily blocked, skipping search", "isin", isin)
		return nil
	}

	html, status, err := p.fetchProfile(ctx, isin)
	if err != nil {
		slog.WarnContext(ctx, "justETF request failed", "isin", isin, "error", err)
		return nil
	}

	if status == http.StatusForbidden {
		slog.ErrorContext(ctx, "justETF returned 403, tripping circuit breaker", "isin", isin, "cooldown", blockDuration)
		p.TripBreaker()
		return nil
	}

	if status != http.StatusOK {
		slog.WarnContext(ctx, "justETF returned unexpected status", "isin", isin, "status", status)
		return nil
	}

	ticker := extractTicker(html)
	if ticker == "" {
		slog.WarnContext(ctx, "justETF: no ticker found", "isin", isin)
		return nil
	}

	name := extractName(html)
	exchange, suffix := extractExchange(html)
	currency := extractCurrency(html)

	symbol := ticker + suffix
	slog.InfoContext(ctx, "justETF: found symbol", "isin", isin, "symbol", symbol)

	if name == "" {
		name = ticker
	}
	if exchange == "" {
		exchange = "Unknown"
	}
	if currency == "" {
		currency = "EUR"
	}

	info := &domain.TickerInfo{
		Symbol:   symbol,
		Name:     name,
		Exchange: exchange,
		Currency: currency,
	}

	p.cache.Set(ctx, isin, *info)

	return info
}

// fetchProfile performs the HTTP GET with browser-like headers and returns
// the raw body and status code.
func (p *Provider) fetchProfile(ctx context.Context, isin string) (string, int, error) {
	params := url.Values{}
	params.Add("isin", isin)

	reqURL := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

// extractTicker tries each ticker pattern in priority order.
func extractTicker(html string) string {
	for _, pattern := range tickerPatterns {
		if m := pattern.FindStringSubmatch(html); m != nil {
			return strings.ToUpper(m[1])
		}
	}
	return ""
}

// extractName prefers the h1 heading and falls back to the page title with
// any "| site-name" suffix stripped.
func extractName(html string) string {
	if m := h1Pattern.FindStringSubmatch(html); m != nil {
		return stripTags(m[1])
	}
	if m := titlePattern.FindStringSubmatch(html); m != nil {
		title, _, _ := strings.Cut(stripTags(m[1]), "|")
		return strings.TrimSpace(title)
	}
	return ""
}

// extractExchange substring-searches the page for known exchange names and
// returns the matching name plus market suffix. London is the default: most
// instruments reaching this provider are European-listed.
func extractExchange(html string) (string, string) {
	for _, e := range exchangeSuffixes {
		if strings.Contains(html, e.Exchange) {
			return e.Exchange, e.Suffix
		}
	}
	return "", ".L"
}

func extractCurrency(html string) string {
	if m := currencyPattern.FindStringSubmatch(stripTags(html)); m != nil {
		return m[1]
	}
	return ""
}

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, " "))
}

// Compile-time check that Provider implements discovery.Provider.
var _ discovery.Provider = (*Provider)(nil)
