package marketdata

import "context"

// Candidate is a single hit from the primary source's generic search.
// All fields are best-effort; only Symbol is usually present.
type Candidate struct {
	Symbol    string
	ShortName string
	LongName  string
	QuoteType string
}

// TickerDetails is the full info record the primary source reports for one
// symbol. Price fields are pointers so "missing" is distinguishable from 0.
type TickerDetails struct {
	Symbol             string
	ShortName          string
	LongName           string
	Currency           string
	Exchange           string
	QuoteType          string
	RegularMarketPrice *float64
	CurrentPrice       *float64
}

// PriceSnapshot is the lightweight quote the primary source serves faster
// than a full details lookup.
type PriceSnapshot struct {
	LastPrice          *float64
	RegularMarketPrice *float64
	Currency           string
}

// PrimaryClient is the contract of the primary market-data source. Transport
// failures surface as errors; "nothing found" is an empty result, not an
// error.
type PrimaryClient interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
	TickerDetails(ctx context.Context, symbol string) (*TickerDetails, error)
	FastQuote(ctx context.Context, symbol string) (*PriceSnapshot, error)
}
