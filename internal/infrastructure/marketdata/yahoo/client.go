package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmanzanog/MarketDataService/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	searchPath     = "/v1/finance/search"
	quotePath      = "/v7/finance/quote"
	chartPath      = "/v8/finance/chart"

	// Yahoo serves HTML error pages to clients without a browser-like agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Client implements the PrimaryClient interface against the public Yahoo
// Finance endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo Finance client with default settings.
func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a new client with a custom base URL.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// searchResponse represents the Yahoo search endpoint response.
type searchResponse struct {
	Quotes []searchQuote `json:"quotes"`
}

type searchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
}

// quoteResponse represents the v7 quote endpoint response.
type quoteResponse struct {
	QuoteResponse struct {
		Result []quoteResult `json:"result"`
	} `json:"quoteResponse"`
}

type quoteResult struct {
	Symbol             string   `json:"symbol"`
	ShortName          string   `json:"shortName"`
	LongName           string   `json:"longName"`
	Currency           string   `json:"currency"`
	FullExchangeName   string   `json:"fullExchangeName"`
	QuoteType          string   `json:"quoteType"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PostMarketPrice    *float64 `json:"postMarketPrice"`
}

// chartResponse represents the v8 chart endpoint response; only the meta
// block is used, as a cheap price snapshot.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				Currency           string   `json:"currency"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Search queries the generic search endpoint and returns raw candidates.
func (c *Client) Search(ctx context.Context, query string) ([]marketdata.Candidate, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("quotesCount", "6")
	params.Add("newsCount", "0")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, searchPath, params.Encode())

	var searchResp searchResponse
	if err := c.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	candidates := make([]marketdata.Candidate, 0, len(searchResp.Quotes))
	for _, q := range searchResp.Quotes {
		candidates = append(candidates, marketdata.Candidate{
			Symbol:    q.Symbol,
			ShortName: q.ShortName,
			LongName:  q.LongName,
			QuoteType: q.QuoteType,
		})
	}

	return candidates, nil
}

// TickerDetails fetches the full info record for one symbol.
func (c *Client) TickerDetails(ctx context.Context, symbol string) (*marketdata.TickerDetails, error) {
	params := url.Values{}
	params.Add("symbols", symbol)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, quotePath, params.Encode())

	var quoteResp quoteResponse
	if err := c.getJSON(ctx, reqURL, &quoteResp); err != nil {
		return nil, err
	}

	if len(quoteResp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no ticker info found for symbol: %s", symbol)
	}

	r := quoteResp.QuoteResponse.Result[0]
	return &marketdata.TickerDetails{
		Symbol:             r.Symbol,
		ShortName:          r.ShortName,
		LongName:           r.LongName,
		Currency:           r.Currency,
		Exchange:           r.FullExchangeName,
		QuoteType:          r.QuoteType,
		RegularMarketPrice: r.RegularMarketPrice,
		CurrentPrice:       r.PostMarketPrice,
	}, nil
}

// FastQuote fetches the chart meta block, which carries the latest price
// without the weight of a full quote lookup.
func (c *Client) FastQuote(ctx context.Context, symbol string) (*marketdata.PriceSnapshot, error) {
	params := url.Values{}
	params.Add("range", "1d")
	params.Add("interval", "1d")

	reqURL := fmt.Sprintf("%s%s/%s?%s", c.baseURL, chartPath, url.PathEscape(symbol), params.Encode())

	var chartResp chartResponse
	if err := c.getJSON(ctx, reqURL, &chartResp); err != nil {
		return nil, err
	}

	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data found for symbol: %s", symbol)
	}

	meta := chartResp.Chart.Result[0].Meta
	return &marketdata.PriceSnapshot{
		LastPrice: meta.RegularMarketPrice,
		Currency:  meta.Currency,
	}, nil
}

// getJSON issues a GET request and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Compile-time check that Client implements PrimaryClient.
var _ marketdata.PrimaryClient = (*Client)(nil)
