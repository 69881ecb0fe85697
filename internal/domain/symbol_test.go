package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolBase(t *testing.T) {
	assert.Equal(t, "NATO", SymbolBase("NATO.L"))
	assert.Equal(t, "AAPL", SymbolBase("AAPL"))
	assert.Equal(t, "IE00BK5BQT80", SymbolBase("IE00BK5BQT80"))
}

func TestSymbolSuffix(t *testing.T) {
	assert.Equal(t, "L", SymbolSuffix("RR.L"))
	assert.Equal(t, "DE", SymbolSuffix("EXS1.DE"))
	assert.Equal(t, "", SymbolSuffix("AAPL"))
}
