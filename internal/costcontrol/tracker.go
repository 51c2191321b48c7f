// Package costcontrol implements session cost tracking and spending
// thresholds.
//
// DESIGN: Every completed chat exchange appends one Entry. The ledger
// is append-only within a session; totals are computed over the entries
// so warn/stop answers are always consistent with the recorded history.
package costcontrol

import (
	"fmt"
	"strings"
	"sync"
)

// Entry records the cost of a single API call.
type Entry struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	Cost         float64 // USD
}

func (e Entry) String() string {
	return fmt.Sprintf("%s/%s: %d->%d tokens, $%.6f", e.Provider, e.Model, e.InputTokens, e.OutputTokens, e.Cost)
}

// Tracker accumulates costs across API calls and evaluates the warning
// and hard-limit thresholds. Thresholds are fixed at construction.
type Tracker struct {
	mu      sync.Mutex
	entries []Entry

	warnThreshold  float64 // USD
	limitThreshold float64 // USD
}

// NewTracker creates a tracker with the given thresholds (USD).
func NewTracker(warnThreshold, limitThreshold float64) *Tracker {
	return &Tracker{
		warnThreshold:  warnThreshold,
		limitThreshold: limitThreshold,
	}
}

// Record prices one exchange, appends the entry, and returns its cost.
func (t *Tracker) Record(provider, model string, inputTokens, outputTokens int) float64 {
	cost := CalculateCost(model, inputTokens, outputTokens)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{
		Provider:     provider,
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
	})
	return cost
}

// TotalCost sums all entry costs.
func (t *Tracker) TotalCost() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCostLocked()
}

func (t *Tracker) totalCostLocked() float64 {
	total := 0.0
	for _, e := range t.entries {
		total += e.Cost
	}
	return total
}

// TotalTokens returns the summed input and output token counts.
func (t *Tracker) TotalTokens() (inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		inputTokens += e.InputTokens
		outputTokens += e.OutputTokens
	}
	return inputTokens, outputTokens
}

// CallCount returns the number of recorded entries.
func (t *Tracker) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// ShouldWarn reports whether the total cost has reached the warning
// threshold.
func (t *Tracker) ShouldWarn() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCostLocked() >= t.warnThreshold
}

// ShouldStop reports whether the total cost has reached the hard limit.
func (t *Tracker) ShouldStop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCostLocked() >= t.limitThreshold
}

// Entries returns a snapshot of the ledger.
func (t *Tracker) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Reset discards all entries. Thresholds are unchanged.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
}

// Summary renders the session cost report shown by /cost and at exit.
func (t *Tracker) Summary() string {
	t.mu.Lock()
	total := t.totalCostLocked()
	calls := len(t.entries)
	inputTokens, outputTokens := 0, 0
	for _, e := range t.entries {
		inputTokens += e.InputTokens
		outputTokens += e.OutputTokens
	}
	t.mu.Unlock()

	divider := strings.Repeat("=", 60)
	lines := []string{
		divider,
		"SESSION COST SUMMARY",
		divider,
		fmt.Sprintf("Total API Calls: %d", calls),
		fmt.Sprintf("Total Tokens: %d input -> %d output", inputTokens, outputTokens),
		fmt.Sprintf("Total Cost: $%.6f", total),
		"",
		fmt.Sprintf("Warning Threshold: $%.2f", t.warnThreshold),
		fmt.Sprintf("Limit Threshold: $%.2f", t.limitThreshold),
	}
	switch {
	case total >= t.limitThreshold:
		lines = append(lines, "", fmt.Sprintf("LIMIT EXCEEDED! Cost has reached $%.6f", total))
	case total >= t.warnThreshold:
		lines = append(lines, "", fmt.Sprintf("Warning: cost is $%.6f", total))
	}
	lines = append(lines, divider)
	return strings.Join(lines, "\n")
}

func (t *Tracker) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("Tracker(%d calls, $%.6f)", len(t.entries), t.totalCostLocked())
}
