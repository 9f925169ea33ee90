package signal

import (
	"strings"
	"testing"
)

func TestFormatCoreLines(t *testing.T) {
	sig := &Signal{
		Title:     "Breakout alert",
		Timestamp: "2024-03-15 10:30:00",
		Action:    "BUY",
		Symbol:    "BTCUSD",
		Price:     "45000",
	}

	got := Format(sig)
	lines := strings.Split(got, "\n")

	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "Breakout alert" {
		t.Errorf("First line should be the title, got '%s'", lines[0])
	}
	if lines[1] != "2024-03-15 10:30:00" {
		t.Errorf("Second line should be the timestamp, got '%s'", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("Third line should be blank, got '%s'", lines[2])
	}
	if lines[3] != "BUY BTCUSD 45000" {
		t.Errorf("Expected 'BUY BTCUSD 45000', got '%s'", lines[3])
	}
}

func TestFormatExtraFields(t *testing.T) {
	sig := &Signal{
		Title:     "t",
		Timestamp: "now",
		Action:    "SELL",
		Symbol:    "EURUSD",
		Price:     "1.1",
		Extras: []Field{
			{Key: "stopLoss", Value: "44000.12340"},
			{Key: "take-profit", Value: "46000.000"},
			{Key: "note", Value: "weekly scalp"},
		},
	}

	got := Format(sig)

	if !strings.Contains(got, "STOPLOSS: 44000.1234\n") && !strings.HasSuffix(got, "STOPLOSS: 44000.1234") {
		if !strings.Contains(got, "STOPLOSS: 44000.1234") {
			t.Errorf("Expected 'STOPLOSS: 44000.1234' line, got:\n%s", got)
		}
	}
	if !strings.Contains(got, "TAKEPROFIT: 46000") {
		t.Errorf("Expected 'TAKEPROFIT: 46000' line, got:\n%s", got)
	}
	if !strings.Contains(got, "NOTE: weekly scalp") {
		t.Errorf("Expected 'NOTE: weekly scalp' line, got:\n%s", got)
	}

	// Extras render in submission order
	stopIdx := strings.Index(got, "STOPLOSS")
	profitIdx := strings.Index(got, "TAKEPROFIT")
	noteIdx := strings.Index(got, "NOTE")
	if !(stopIdx < profitIdx && profitIdx < noteIdx) {
		t.Errorf("Extra fields out of submission order:\n%s", got)
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"stopLoss":    "STOPLOSS",
		"take-profit": "TAKEPROFIT",
		"r_r ratio":   "RRRATIO",
		"entry2":      "ENTRY2",
		"---":         "",
	}
	for in, want := range cases {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNumber(t *testing.T) {
	cases := map[string]string{
		"44000.12340": "44000.1234",
		"46000.000":   "46000",
		"1.50":        "1.5",
		"45000":       "45000",
		"-0.12345":    "-0.1234",
		"not a num":   "not a num",
		"1.2.3":       "1.2.3",
		"":            "",
		"-":           "-",
		".5":          ".5",
		"5.":          "5.",
	}
	for in, want := range cases {
		if got := normalizeNumber(in); got != want {
			t.Errorf("normalizeNumber(%q) = %q, want %q", in, got, want)
		}
	}
}
