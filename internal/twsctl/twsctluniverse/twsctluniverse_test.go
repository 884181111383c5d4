// Copyright 2026 Peter Edge
//
// All rights reserved.

package twsctluniverse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDow30Instruments(t *testing.T) {
	t.Parallel()
	instruments := Instruments(UniverseDow30, Selection{})
	require.Len(t, instruments, 30)
	bySymbol := instrumentsBySymbol(instruments)
	// NYSE-prefixed components resolve to NYSE, the rest to ISLAND.
	require.Equal(t, ExchangeNYSE, bySymbol["MMM"].Exchange)
	require.Equal(t, ExchangeIsland, bySymbol["AAPL"].Exchange)
	require.Equal(t, ExchangeIsland, bySymbol["MSFT"].Exchange)
	// Dow components are weekly/daily only.
	for _, instrument := range instruments {
		require.False(t, instrument.Hourly)
		require.Equal(t, "USD", instrument.Currency)
		require.Equal(t, SecTypeStock, instrument.SecType)
	}
}

func TestSP500Instruments(t *testing.T) {
	t.Parallel()
	instruments := Instruments(UniverseSP500, Selection{})
	bySymbol := instrumentsBySymbol(instruments)
	// Class shares use the IB space form.
	require.Contains(t, bySymbol, "BRK B")
	require.Contains(t, bySymbol, "BF B")
	require.NotContains(t, bySymbol, "BRK.B")
	// Built-in exchange overrides.
	require.Equal(t, ExchangeNYSE, bySymbol["META"].Exchange)
	require.Equal(t, ExchangeNYSE, bySymbol["CSCO"].Exchange)
	require.Equal(t, ExchangeSmart, bySymbol["AAPL"].Exchange)
	// Built-in exclude.
	require.NotContains(t, bySymbol, "VICI")
}

func TestSP500SelectionOverrides(t *testing.T) {
	t.Parallel()
	instruments := Instruments(UniverseSP500, Selection{
		ExchangeOverrides: map[string]string{"TSLA": ExchangeNYSE},
		Exclude:           map[string]bool{"AAPL": true},
	})
	bySymbol := instrumentsBySymbol(instruments)
	require.Equal(t, ExchangeNYSE, bySymbol["TSLA"].Exchange)
	require.NotContains(t, bySymbol, "AAPL")
	// Built-in adjustments still apply alongside the extra ones.
	require.Equal(t, ExchangeNYSE, bySymbol["META"].Exchange)
	require.NotContains(t, bySymbol, "VICI")
}

func TestCustomInstrumentsAreHourly(t *testing.T) {
	t.Parallel()
	instruments := Instruments(UniverseCustom, Selection{})
	require.NotEmpty(t, instruments)
	for _, instrument := range instruments {
		require.True(t, instrument.Hourly)
		require.Equal(t, ExchangeSmart, instrument.Exchange)
	}
}

func TestIndexInstruments(t *testing.T) {
	t.Parallel()
	instruments := Instruments(UniverseIndices, Selection{})
	bySymbol := instrumentsBySymbol(instruments)
	require.Equal(t, SecTypeIndex, bySymbol["SPX"].SecType)
	require.Equal(t, "CBOE", bySymbol["VIX"].Exchange)
	require.Equal(t, "EUR", bySymbol["DAX"].Currency)
	require.Equal(t, "HKD", bySymbol["HSI"].Currency)
}

func TestParseUniverse(t *testing.T) {
	t.Parallel()
	universe, err := ParseUniverse("SP500")
	require.NoError(t, err)
	require.Equal(t, UniverseSP500, universe)

	_, err = ParseUniverse("russell2000")
	require.Error(t, err)
}

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()
	require.Equal(t, "BRK B", NormalizeSymbol("BRK.B"))
	require.Equal(t, "AAPL", NormalizeSymbol("AAPL"))
}

func instrumentsBySymbol(instruments []Instrument) map[string]Instrument {
	bySymbol := make(map[string]Instrument, len(instruments))
	for _, instrument := range instruments {
		bySymbol[instrument.Symbol] = instrument
	}
	return bySymbol
}
