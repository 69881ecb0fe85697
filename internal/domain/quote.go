package domain

// Quote is a freshly captured price for a symbol. Price is a decimal string
// with exactly four places; Time is the ISO-8601 UTC capture timestamp.
// Quotes are computed per request and never cached.
type Quote struct {
	Symbol   string `json:"symbol"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Time     string `json:"time"`
}
