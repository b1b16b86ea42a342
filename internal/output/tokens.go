package output

import (
	"fmt"
	"unicode/utf8"
)

// ContextBudget describes how much of an LLM context window a corpus fills.
type ContextBudget struct {
	Tokens       int     `json:"tokens" toon:"tokens"`
	Budget       int     `json:"budget" toon:"budget"`
	BudgetLabel  string  `json:"budget_label" toon:"budget_label"`
	UsagePercent float64 `json:"usage_percent" toon:"usage_percent"`
	Remaining    int     `json:"remaining" toon:"remaining"`
}

// DefaultBudget is the context window used when none is given.
const DefaultBudget = 128000

// CharsPerToken approximates English prose; Markdown notes are mostly prose.
const CharsPerToken = 4.0

// EstimateTokens returns an approximate token count for text.
func EstimateTokens(text string) int {
	if len(text) == 0 {
		return 0
	}
	return int(float64(utf8.RuneCountInString(text))/CharsPerToken + 0.5)
}

// FormatTokenCount prints counts from 1000 up as "X.Xk".
func FormatTokenCount(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("%d", tokens)
	}
	return fmt.Sprintf("%.1fk", float64(tokens)/1000)
}

// Budget reports how many of budget tokens an estimated count uses.
// A non-positive budget uses DefaultBudget.
func Budget(tokens, budget int) ContextBudget {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return ContextBudget{
		Tokens:       tokens,
		Budget:       budget,
		BudgetLabel:  FormatTokenCount(budget),
		UsagePercent: float64(tokens) / float64(budget) * 100,
		Remaining:    max(budget-tokens, 0),
	}
}
