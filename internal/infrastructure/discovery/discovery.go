package discovery

import (
	"context"

	"github.com/jmanzanog/MarketDataService/internal/domain"
)

// Provider is an alternative instrument discovery source. Implementations
// never fail hard: a lookup that cannot be served for any reason (blocked,
// network error, unparseable response) returns nil.
type Provider interface {
	SearchByISIN(ctx context.Context, isin string) *domain.TickerInfo
}
