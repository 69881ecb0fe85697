package application

import (
	"errors"

	"github.com/jmanzanog/MarketDataService/internal/infrastructure/discovery"
	"github.com/jmanzanog/MarketDataService/internal/infrastructure/marketdata"
)

// ErrInstrumentNotFound means the input was exhausted against every
// resolution stage without a match. Malformed ISINs surface the same way,
// just without any I/O having happened.
var ErrInstrumentNotFound = errors.New("no instrument found")

// ErrQuoteNotFound means no usable price could be retrieved for a symbol.
var ErrQuoteNotFound = errors.New("no quote found")

// MarketDataService resolves ISINs to priced instruments and retrieves
// quotes, falling back from the primary source to the discovery provider.
// It holds no state of its own; the cache and the provider's circuit breaker
// live in the injected collaborators.
type MarketDataService struct {
	primary   marketdata.PrimaryClient
	discovery discovery.Provider
}

func NewMarketDataService(primary marketdata.PrimaryClient, discoveryProvider discovery.Provider) *MarketDataService {
	return &MarketDataService{
		primary:   primary,
		discovery: discoveryProvider,
	}
}
