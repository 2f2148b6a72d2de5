package core

import "testing"

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		cur   Currency
		want  string
	}{
		{name: "USD with decimals", cents: 123456, cur: CurrencyUSD, want: "$1,234.56"},
		{name: "GBP small", cents: 1599, cur: CurrencyGBP, want: "£15.99"},
		{name: "EUR swaps separators", cents: 123456, cur: CurrencyEUR, want: "€1.234,56"},
		{name: "TK rounds to whole units", cents: 123456, cur: CurrencyTK, want: "1,235 TK"},
		{name: "TK indian grouping", cents: 11231500, cur: CurrencyTK, want: "1,12,315 TK"},
		{name: "BDT aliases TK", cents: 500000, cur: CurrencyBDT, want: "5,000 TK"},
		{name: "negative USD", cents: -1599, cur: CurrencyUSD, want: "$-15.99"},
		{name: "unknown falls back to TK", cents: 100000, cur: Currency("XYZ"), want: "1,000 TK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money{Cents: tt.cents}.Format(tt.cur)
			if got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.cur, got, tt.want)
			}
		})
	}
}

func TestMoneyFormatCompact(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		cur   Currency
		want  string
	}{
		{name: "thousands USD", cents: 123456, cur: CurrencyUSD, want: "$1.2K"},
		{name: "millions TK", cents: 1250000000, cur: CurrencyTK, want: "12.5M TK"},
		{name: "below threshold falls back", cents: 99900, cur: CurrencyUSD, want: "$999.00"},
		{name: "negative thousands", cents: -123456, cur: CurrencyGBP, want: "-£1.2K"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money{Cents: tt.cents}.FormatCompact(tt.cur)
			if got != tt.want {
				t.Errorf("FormatCompact(%s) = %q, want %q", tt.cur, got, tt.want)
			}
		})
	}
}

func TestGroupIndian(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1"},
		{"315", "315"},
		{"2315", "2,315"},
		{"12315", "12,315"},
		{"112315", "1,12,315"},
		{"10112315", "1,01,12,315"},
	}
	for _, tc := range cases {
		if got := groupIndian(tc.in); got != tc.want {
			t.Errorf("groupIndian(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
