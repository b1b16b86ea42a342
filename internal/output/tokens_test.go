package output

import "testing"

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"four runes", "abcd", 1},
		{"rounds half up", "abcdef", 2},
		{"counts runes not bytes", "日本語の", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateTokens(tt.text); got != tt.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestFormatTokenCount(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{128000, "128.0k"},
	}
	for _, tt := range tests {
		if got := FormatTokenCount(tt.in); got != tt.want {
			t.Errorf("FormatTokenCount(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBudget(t *testing.T) {
	b := Budget(32000, 0)
	if b.Budget != DefaultBudget {
		t.Errorf("Budget = %d, want default", b.Budget)
	}
	if b.UsagePercent != 25 {
		t.Errorf("UsagePercent = %v, want 25", b.UsagePercent)
	}
	if b.Remaining != 96000 {
		t.Errorf("Remaining = %d, want 96000", b.Remaining)
	}

	over := Budget(9000, 8000)
	if over.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0 when over budget", over.Remaining)
	}
	if over.BudgetLabel != "8.0k" {
		t.Errorf("BudgetLabel = %q", over.BudgetLabel)
	}
}
