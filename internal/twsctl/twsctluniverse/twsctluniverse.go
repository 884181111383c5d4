// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package twsctluniverse defines the instrument universes available for download.
//
// The membership lists are maintained by hand from the index component lists
// on Wikipedia; they change a few times a year when indices rebalance.
package twsctluniverse

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// SecTypeStock is the security type of a stock instrument.
	SecTypeStock = "STK"
	// SecTypeIndex is the security type of an index instrument.
	SecTypeIndex = "IND"

	// ExchangeSmart is the IB smart-routing pseudo-exchange.
	ExchangeSmart = "SMART"
	// ExchangeNYSE is the New York Stock Exchange.
	ExchangeNYSE = "NYSE"
	// ExchangeIsland is the IB name for the NASDAQ exchange.
	ExchangeIsland = "ISLAND"
)

// Universe is a named set of instruments.
type Universe string

const (
	// UniverseDow30 is the Dow Jones Industrial Average components.
	UniverseDow30 Universe = "dow30"
	// UniverseSP500 is the S&P 500 components.
	UniverseSP500 Universe = "sp500"
	// UniverseNASDAQ100 is the NASDAQ-100 components.
	UniverseNASDAQ100 Universe = "nasdaq100"
	// UniverseREITs is a selection of real estate investment trusts.
	UniverseREITs Universe = "reits"
	// UniverseCustom is a hand-picked watchlist, downloaded with hourly bars.
	UniverseCustom Universe = "custom"
	// UniverseIndices is the market and volatility indices.
	UniverseIndices Universe = "indices"
)

// AllUniverses are all universes in display order.
var AllUniverses = []Universe{
	UniverseDow30,
	UniverseSP500,
	UniverseNASDAQ100,
	UniverseREITs,
	UniverseCustom,
	UniverseIndices,
}

// DefaultUniverses are the universes downloaded when none is selected.
var DefaultUniverses = []Universe{
	UniverseDow30,
	UniverseSP500,
	UniverseNASDAQ100,
}

// ParseUniverse parses a string into a Universe.
func ParseUniverse(s string) (Universe, error) {
	switch Universe(strings.ToLower(s)) {
	case UniverseDow30, UniverseSP500, UniverseNASDAQ100, UniverseREITs, UniverseCustom, UniverseIndices:
		return Universe(strings.ToLower(s)), nil
	default:
		return "", fmt.Errorf("unknown universe %q, must be one of: %s", s, universeNames())
	}
}

// Instrument is one instrument to download history for.
type Instrument struct {
	// Symbol is the IB symbol. Class shares use a space (e.g. "BRK B").
	Symbol string
	// Exchange is the IB exchange or routing destination.
	Exchange string
	// Currency is the trading currency.
	Currency string
	// SecType is the IB security type (SecTypeStock or SecTypeIndex).
	SecType string
	// Hourly requests per-year hourly bars in addition to weekly and daily.
	Hourly bool
}

// Selection adjusts how a symbol list is turned into instruments.
type Selection struct {
	// ExchangeOverrides maps symbols to an exchange different from the
	// universe default, for listings that IB only resolves on the primary
	// exchange.
	ExchangeOverrides map[string]string
	// Exclude holds symbols to skip entirely, for components that IB cannot
	// serve history for.
	Exclude map[string]bool
}

// Instruments returns the instruments of the universe, with any selection
// overrides applied on top of the built-in ones.
func Instruments(universe Universe, selection Selection) []Instrument {
	switch universe {
	case UniverseDow30:
		return dowInstruments(selection)
	case UniverseSP500:
		return stockInstruments(sp500Symbols, ExchangeSmart, sp500Selection(), selection, false)
	case UniverseNASDAQ100:
		return stockInstruments(nasdaq100Symbols, ExchangeIsland, Selection{}, selection, false)
	case UniverseREITs:
		return stockInstruments(reitSymbols, ExchangeSmart, Selection{}, selection, false)
	case UniverseCustom:
		return stockInstruments(customSymbols, ExchangeSmart, Selection{}, selection, true)
	case UniverseIndices:
		return indexInstruments()
	default:
		return nil
	}
}

// NormalizeSymbol converts an index-style symbol to the IB symbol form.
// Class shares are listed as e.g. "BRK.B" but IB uses "BRK B".
func NormalizeSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, ".", " ")
}

// *** PRIVATE ***

// https://en.wikipedia.org/wiki/List_of_S%26P_500_companies
var sp500Symbols = []string{
	"A", "AAL", "AAPL", "ABBV", "ABNB", "ABT", "ACGL", "ACN", "ADBE", "ADI",
	"ADM", "ADP", "ADSK", "AEE", "AEP", "AES", "AFL", "AIG", "AIZ", "AJG",
	"AKAM", "ALB", "ALGN", "ALL", "ALLE", "AMAT", "AMCR", "AMD", "AME", "AMGN",
	"AMP", "AMT", "AMZN", "ANET", "ANSS", "AON", "AOS", "APA", "APD", "APH",
	"APTV", "ARE", "ATO", "AVB", "AVGO", "AVY", "AWK", "AXON", "AXP", "AZO",
	"BA", "BAC", "BALL", "BAX", "BBWI", "BBY", "BDX", "BEN", "BF.B", "BG",
	"BIIB", "BIO", "BK", "BKNG", "BKR", "BLDR", "BLK", "BMY", "BR", "BRK.B",
	"BRO", "BSX", "BWA", "BX", "BXP", "C", "CAG", "CAH", "CARR", "CAT", "CB",
	"CBOE", "CBRE", "CCI", "CCL", "CDAY", "CDNS", "CDW", "CE", "CEG", "CF",
	"CFG", "CHD", "CHRW", "CHTR", "CI", "CINF", "CL", "CLX", "CMA", "CMCSA",
	"CME", "CMG", "CMI", "CMS", "CNC", "CNP", "COF", "COO", "COP", "COR",
	"COST", "CPB", "CPRT", "CPT", "CRL", "CRM", "CSCO", "CSGP", "CSX", "CTAS",
	"CTLT", "CTRA", "CTSH", "CTVA", "CVS", "CVX", "CZR", "D", "DAL", "DD",
	"DE", "DFS", "DG", "DGX", "DHI", "DHR", "DIS", "DLR", "DLTR", "DOV", "DOW",
	"DPZ", "DRI", "DTE", "DUK", "DVA", "DVN", "DXCM", "EA", "EBAY", "ECL",
	"ED", "EFX", "EG", "EIX", "EL", "ELV", "EMN", "EMR", "ENPH", "EOG", "EPAM",
	"EQIX", "EQR", "EQT", "ES", "ESS", "ETN", "ETR", "ETSY", "EVRG", "EW",
	"EXC", "EXPD", "EXPE", "EXR", "F", "FANG", "FAST", "FCX", "FDS", "FDX",
	"FE", "FFIV", "FI", "FICO", "FIS", "FITB", "FLT", "FMC", "FOX", "FOXA",
	"FRT", "FSLR", "FTNT", "FTV", "GD", "GE", "GEHC", "GEN", "GILD", "GIS",
	"GL", "GLW", "GM", "GNRC", "GOOG", "GOOGL", "GPC", "GPN", "GRMN", "GS",
	"GWW", "HAL", "HAS", "HBAN", "HCA", "HD", "HES", "HIG", "HII", "HLT",
	"HOLX", "HON", "HPE", "HPQ", "HRL", "HSIC", "HST", "HSY", "HUBB", "HUM",
	"HWM", "IBM", "ICE", "IDXX", "IEX", "IFF", "ILMN", "INCY", "INTC", "INTU",
	"INVH", "IP", "IPG", "IQV", "IR", "IRM", "ISRG", "IT", "ITW", "IVZ", "J",
	"JBHT", "JBL", "JCI", "JKHY", "JNJ", "JNPR", "JPM", "K", "KDP", "KEY",
	"KEYS", "KHC", "KIM", "KLAC", "KMB", "KMI", "KMX", "KO", "KR", "KVUE", "L",
	"LDOS", "LEN", "LH", "LHX", "LIN", "LKQ", "LLY", "LMT", "LNT", "LOW",
	"LRCX", "LULU", "LUV", "LVS", "LW", "LYB", "LYV", "MA", "MAA", "MAR",
	"MAS", "MCD", "MCHP", "MCK", "MCO", "MDLZ", "MDT", "MET", "META", "MGM",
	"MHK", "MKC", "MKTX", "MLM", "MMC", "MMM", "MNST", "MO", "MOH", "MOS",
	"MPC", "MPWR", "MRK", "MRNA", "MRO", "MS", "MSCI", "MSFT", "MSI", "MTB",
	"MTCH", "MTD", "MU", "NCLH", "NDAQ", "NDSN", "NEE", "NEM", "NFLX", "NI",
	"NKE", "NOC", "NOW", "NRG", "NSC", "NTAP", "NTRS", "NUE", "NVDA", "NVR",
	"NWS", "NWSA", "NXPI", "O", "ODFL", "OKE", "OMC", "ON", "ORCL", "ORLY",
	"OTIS", "OXY", "PANW", "PARA", "PAYC", "PAYX", "PCAR", "PCG", "PEAK",
	"PEG", "PEP", "PFE", "PFG", "PG", "PGR", "PH", "PHM", "PKG", "PLD", "PM",
	"PNC", "PNR", "PNW", "PODD", "POOL", "PPG", "PPL", "PRU", "PSA", "PSX",
	"PTC", "PWR", "PXD", "PYPL", "QCOM", "QRVO", "RCL", "REG", "REGN", "RF",
	"RHI", "RJF", "RL", "RMD", "ROK", "ROL", "ROP", "ROST", "RSG", "RTX",
	"RVTY", "SBAC", "SBUX", "SCHW", "SHW", "SJM", "SLB", "SNA", "SNPS", "SO",
	"SPG", "SPGI", "SRE", "STE", "STLD", "STT", "STX", "STZ", "SWK", "SWKS",
	"SYF", "SYK", "SYY", "T", "TAP", "TDG", "TDY", "TECH", "TEL", "TER", "TFC",
	"TFX", "TGT", "TJX", "TMO", "TMUS", "TPR", "TRGP", "TRMB", "TROW", "TRV",
	"TSCO", "TSLA", "TSN", "TT", "TTWO", "TXN", "TXT", "TYL", "UAL", "UBER",
	"UDR", "UHS", "ULTA", "UNH", "UNP", "UPS", "URI", "USB", "V", "VFC",
	"VICI", "VLO", "VLTO", "VMC", "VRSK", "VRSN", "VRTX", "VTR", "VTRS", "VZ",
	"WAB", "WAT", "WBA", "WBD", "WDC", "WEC", "WELL", "WFC", "WHR", "WM",
	"WMB", "WMT", "WRB", "WRK", "WST", "WTW", "WY", "WYNN", "XEL", "XOM",
	"XRAY", "XYL", "YUM", "ZBH", "ZBRA", "ZION", "ZTS",
}

// https://en.wikipedia.org/wiki/NASDAQ-100
var nasdaq100Symbols = []string{
	"ADBE", "ADP", "ABNB", "GOOGL", "GOOG", "AMZN", "AMD", "AEP", "AMGN",
	"ADI", "ANSS", "AAPL", "AMAT", "ASML", "AZN", "TEAM", "ADSK", "BKR",
	"BIIB", "BKNG", "AVGO", "CDNS", "CDW", "CHTR", "CTAS", "CSCO", "CCEP",
	"CTSH", "CMCSA", "CEG", "CPRT", "CSGP", "COST", "CRWD", "CSX", "DDOG",
	"DXCM", "FANG", "DLTR", "DASH", "EA", "EXC", "FAST", "FTNT", "GEHC",
	"GILD", "GFS", "HON", "IDXX", "ILMN", "INTC", "INTU", "ISRG", "KDP",
	"KLAC", "KHC", "LRCX", "LULU", "MAR", "MRVL", "MELI", "META", "MCHP", "MU",
	"MSFT", "MRNA", "MDLZ", "MDB", "MNST", "NFLX", "NVDA", "NXPI", "ORLY",
	"ODFL", "ON", "PCAR", "PANW", "PAYX", "PYPL", "PDD", "PEP", "QCOM", "REGN",
	"ROP", "ROST", "SIRI", "SPLK", "SBUX", "SNPS", "TTWO", "TMUS", "TSLA",
	"TXN", "TTD", "VRSK", "VRTX", "WBA", "WBD", "WDAY", "XEL", "ZS",
}

var reitSymbols = []string{
	"ARE", "AMT", "AVB", "BXP", "CPT", "CBRE", "CCI",
	"DLR", "DRE", "EQIX", "EQR", "ESS", "EXR", "FRT", "PEAK", "HST", "INVH",
	"IRM", "KIM", "MAA", "PLD", "PSA", "O", "REG", "SBAC", "SPG", "UDR",
	"VTR", "VICI", "VNO", "WELL", "WY",
}

// customSymbols is a hand-picked income/watchlist set downloaded with hourly bars.
var customSymbols = []string{
	"APLE", "BTI", "CIM", "D", "DUK", "ENB", "EPD",
	"EPR", "ETRN", "FAX", "GE", "GTY", "HBI", "JNJ", "KHC", "LMT",
	"LTC", "M", "MA", "MAIN", "MMM", "MMP", "MO", "MPW", "OPI",
	"OZK", "PM", "PPL", "PRU", "SKT", "TEVA", "TSN", "UHS", "V",
	"VLO", "WB", "WSR",
}

// https://en.wikipedia.org/wiki/Dow_Jones_Industrial_Average
// Symbols prefixed with "NYSE:" are NYSE listings; the rest are on NASDAQ.
var dowSymbols = []string{
	"NYSE:MMM", "NYSE:AXP", "AMGN", "AAPL", "NYSE:BA", "NYSE:CAT", "NYSE:CVX", "CSCO",
	"NYSE:KO", "NYSE:DOW", "NYSE:GS", "NYSE:HD", "HON", "NYSE:IBM", "INTC",
	"NYSE:JNJ", "NYSE:JPM", "NYSE:MCD", "NYSE:MRK", "MSFT", "NYSE:NKE", "NYSE:PG",
	"NYSE:CRM", "NYSE:TRV", "NYSE:UNH", "NYSE:VZ", "NYSE:V", "WBA", "NYSE:WMT", "NYSE:DIS",
}

// sp500Selection holds the built-in S&P 500 adjustments: symbols that IB only
// resolves on NYSE when smart-routed, and components IB serves no history for.
func sp500Selection() Selection {
	return Selection{
		ExchangeOverrides: map[string]string{
			"AAL":  ExchangeNYSE,
			"CSCO": ExchangeNYSE,
			"KEYS": ExchangeNYSE,
			"LIN":  ExchangeNYSE,
			"META": ExchangeNYSE,
			"MNST": ExchangeNYSE,
			"WELL": ExchangeNYSE,
		},
		Exclude: map[string]bool{
			"VICI": true,
		},
	}
}

func stockInstruments(symbols []string, defaultExchange string, builtin Selection, extra Selection, hourly bool) []Instrument {
	instruments := make([]Instrument, 0, len(symbols))
	for _, symbol := range symbols {
		symbol = NormalizeSymbol(symbol)
		if builtin.Exclude[symbol] || extra.Exclude[symbol] {
			continue
		}
		exchange := defaultExchange
		if override, ok := builtin.ExchangeOverrides[symbol]; ok {
			exchange = override
		}
		if override, ok := extra.ExchangeOverrides[symbol]; ok {
			exchange = override
		}
		instruments = append(instruments, Instrument{
			Symbol:   symbol,
			Exchange: exchange,
			Currency: "USD",
			SecType:  SecTypeStock,
			Hourly:   hourly,
		})
	}
	return instruments
}

func dowInstruments(extra Selection) []Instrument {
	instruments := make([]Instrument, 0, len(dowSymbols))
	for _, symbol := range dowSymbols {
		exchange := ExchangeIsland
		if strings.HasPrefix(symbol, "NYSE:") {
			symbol = strings.TrimPrefix(symbol, "NYSE:")
			exchange = ExchangeNYSE
		}
		if extra.Exclude[symbol] {
			continue
		}
		if override, ok := extra.ExchangeOverrides[symbol]; ok {
			exchange = override
		}
		instruments = append(instruments, Instrument{
			Symbol:   symbol,
			Exchange: exchange,
			Currency: "USD",
			SecType:  SecTypeStock,
			Hourly:   false,
		})
	}
	return instruments
}

func indexInstruments() []Instrument {
	return []Instrument{
		{Symbol: "SPX", Exchange: "CBOE", Currency: "USD", SecType: SecTypeIndex},
		{Symbol: "VIX", Exchange: "CBOE", Currency: "USD", SecType: SecTypeIndex},
		{Symbol: "DAX", Exchange: "EUREX", Currency: "EUR", SecType: SecTypeIndex},
		{Symbol: "VDAX", Exchange: "EUREX", Currency: "EUR", SecType: SecTypeIndex},
		{Symbol: "ESTX50", Exchange: "EUREX", Currency: "EUR", SecType: SecTypeIndex},
		{Symbol: "V2TX", Exchange: "EUREX", Currency: "EUR", SecType: SecTypeIndex},
		{Symbol: "HSI", Exchange: "HKFE", Currency: "HKD", SecType: SecTypeIndex},
		{Symbol: "VHSI", Exchange: "HKFE", Currency: "HKD", SecType: SecTypeIndex},
		{Symbol: "MHI", Exchange: "HKFE", Currency: "HKD", SecType: SecTypeIndex},
	}
}

func universeNames() string {
	names := make([]string, len(AllUniverses))
	for i, universe := range AllUniverses {
		names[i] = string(universe)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
