package calc

import (
	"strings"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	got := FormatCurrency(59.99, "USD")
	if !strings.Contains(got, "59.99") {
		t.Errorf("FormatCurrency(59.99, USD) = %q, want the amount present", got)
	}
	if got == "59.99" {
		t.Errorf("FormatCurrency(59.99, USD) = %q, want a currency marker", got)
	}
}

func TestFormatCurrencyUnknownCode(t *testing.T) {
	if got := FormatCurrency(10, "ZZZ"); got != "ZZZ 10.00" {
		t.Errorf("FormatCurrency(10, ZZZ) = %q, want %q", got, "ZZZ 10.00")
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-15", "January 15, 2024"},
		{"2026-12-01", "December 1, 2026"},
		{"not-a-date", "not-a-date"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.in); got != tt.want {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
