package api

import (
	"fmt"
	"strings"

	"crypto-signal-engine/internal/market"
)

var (
	supportedTimeframes = []string{"15m", "1h", "4h", "1d"}
	supportedTypes      = []string{"scalp", "intraday", "swing"}
	supportedRisks      = []string{"conservative", "moderate", "aggressive"}
)

// signalParams is the normalized request shape shared by the GET, POST and
// WebSocket entry points.
type signalParams struct {
	Symbol        string `json:"symbol"`
	Timeframe     string `json:"timeframe"`
	SignalType    string `json:"signalType"`
	RiskTolerance string `json:"riskTolerance"`
}

// normalize validates each field, substituting defaults for unknown values
// and recording a warning for every substitution.
func (p *signalParams) normalize() []string {
	var warnings []string

	p.Symbol = market.NormalizeTradingSymbol(p.Symbol)

	var w string
	p.Timeframe, w = pickAllowed(p.Timeframe, supportedTimeframes, "4h", "timeframe")
	if w != "" {
		warnings = append(warnings, w)
	}
	p.SignalType, w = pickAllowed(p.SignalType, supportedTypes, "swing", "signal type")
	if w != "" {
		warnings = append(warnings, w)
	}
	p.RiskTolerance, w = pickAllowed(p.RiskTolerance, supportedRisks, "moderate", "risk tolerance")
	if w != "" {
		warnings = append(warnings, w)
	}
	return warnings
}

// pickAllowed lowercases and validates a value against the allowed set.
// An unknown non-empty value falls back with a warning; empty falls back
// silently.
func pickAllowed(value string, allowed []string, fallback, label string) (string, string) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return fallback, ""
	}
	for _, a := range allowed {
		if v == a {
			return v, ""
		}
	}
	return fallback, fmt.Sprintf("unsupported %s %q, using %s", label, value, fallback)
}
