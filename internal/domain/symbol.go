package domain

import "strings"

// SymbolBase returns the ticker part of an exchange-qualified symbol,
// e.g. "NATO.L" -> "NATO". Symbols without a suffix are returned unchanged.
func SymbolBase(symbol string) string {
	base, _, _ := strings.Cut(symbol, ".")
	return base
}

// SymbolSuffix returns the exchange suffix of a symbol without the dot,
// e.g. "RR.L" -> "L". It returns "" when the symbol has no suffix.
func SymbolSuffix(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i >= 0 {
		return symbol[i+1:]
	}
	return ""
}
