package domain

// TickerInfo is the resolved ticker metadata for an ISIN, as discovered by a
// secondary provider or assembled from primary-source lookups. It is the unit
// cached by the metadata cache; prices are deliberately never part of it.
type TickerInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}
