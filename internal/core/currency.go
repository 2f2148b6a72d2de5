package core

import (
	"fmt"
	"math"
	"strings"
)

// Currency identifies a display currency for tracked item costs.
type Currency string

const (
	CurrencyTK  Currency = "TK"
	CurrencyBDT Currency = "BDT"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyEUR Currency = "EUR"
)

type currencyConfig struct {
	symbol        string
	symbolBefore  bool
	decimalPlaces int
	thousandSep   string
	decimalSep    string
	indianGroups  bool // 1,12,315 style grouping
}

var currencyConfigs = map[Currency]currencyConfig{
	CurrencyTK:  {symbol: "TK", symbolBefore: false, decimalPlaces: 0, thousandSep: ",", decimalSep: ".", indianGroups: true},
	CurrencyBDT: {symbol: "TK", symbolBefore: false, decimalPlaces: 0, thousandSep: ",", decimalSep: ".", indianGroups: true},
	CurrencyUSD: {symbol: "$", symbolBefore: true, decimalPlaces: 2, thousandSep: ",", decimalSep: "."},
	CurrencyGBP: {symbol: "£", symbolBefore: true, decimalPlaces: 2, thousandSep: ",", decimalSep: "."},
	CurrencyEUR: {symbol: "€", symbolBefore: true, decimalPlaces: 2, thousandSep: ".", decimalSep: ","},
}

// Format renders the amount in the given currency, e.g. "$1,234.56",
// "1.234,56 €"-style separators for EUR, and Indian-style grouping with no
// decimals for TK/BDT ("1,12,315 TK").
func (m Money) Format(cur Currency) string {
	cfg, ok := currencyConfigs[cur]
	if !ok {
		cfg = currencyConfigs[CurrencyTK]
	}

	neg := m.Cents < 0
	cents := m.Cents
	if neg {
		cents = -cents
	}

	var intDigits, fracDigits string
	if cfg.decimalPlaces > 0 {
		intDigits = fmt.Sprintf("%d", cents/100)
		fracDigits = fmt.Sprintf("%02d", cents%100)
	} else {
		// Round to whole units, half-up
		intDigits = fmt.Sprintf("%d", (cents+50)/100)
	}

	var grouped string
	if cfg.indianGroups {
		grouped = groupIndian(intDigits)
	} else {
		grouped = groupStandard(intDigits, cfg.thousandSep)
	}

	out := grouped
	if fracDigits != "" {
		out += cfg.decimalSep + fracDigits
	}
	if neg {
		out = "-" + out
	}
	if cfg.symbolBefore {
		return cfg.symbol + out
	}
	return out + " " + cfg.symbol
}

// FormatCompact renders the amount in compact notation: "1.2K TK", "$12.5M".
// Amounts below a thousand fall back to the full format.
func (m Money) FormatCompact(cur Currency) string {
	cfg, ok := currencyConfigs[cur]
	if !ok {
		cfg = currencyConfigs[CurrencyTK]
	}

	units := math.Abs(m.Units())
	sign := ""
	if m.Cents < 0 {
		sign = "-"
	}

	var value, suffix string
	switch {
	case units >= 1_000_000:
		value = fmt.Sprintf("%.1f", units/1_000_000)
		suffix = "M"
	case units >= 1_000:
		value = fmt.Sprintf("%.1f", units/1_000)
		suffix = "K"
	default:
		return m.Format(cur)
	}

	if cfg.symbolBefore {
		return sign + cfg.symbol + value + suffix
	}
	return sign + value + suffix + " " + cfg.symbol
}

// groupStandard inserts a separator every three digits: 1234567 -> 1,234,567.
func groupStandard(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// groupIndian applies Indian-style grouping: the last three digits form one
// group, the rest group in twos: 112315 -> 1,12,315.
func groupIndian(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	head := digits[:n-3]
	tail := digits[n-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	groups = append(groups, tail)
	return strings.Join(groups, ",")
}
