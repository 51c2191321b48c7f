package costcontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_RecordReturnsCostAndAppends(t *testing.T) {
	tracker := NewTracker(0.10, 1.00)

	cost := tracker.Record("openai", "gpt-4o-mini", 1000, 500)
	assert.InDelta(t, 0.00045, cost, 1e-10)

	entries := tracker.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "openai", entries[0].Provider)
	assert.Equal(t, "gpt-4o-mini", entries[0].Model)
	assert.Equal(t, 1000, entries[0].InputTokens)
	assert.Equal(t, 500, entries[0].OutputTokens)
	assert.InDelta(t, cost, entries[0].Cost, 1e-12)
}

func TestTracker_Totals(t *testing.T) {
	tracker := NewTracker(0.10, 1.00)

	tracker.Record("openai", "gpt-4o-mini", 1000, 500)
	tracker.Record("anthropic", "claude-3-5-haiku-20241022", 2000, 1000)

	assert.InDelta(t, 0.00045+0.0056, tracker.TotalCost(), 1e-10)

	in, out := tracker.TotalTokens()
	assert.Equal(t, 3000, in)
	assert.Equal(t, 1500, out)
	assert.Equal(t, 2, tracker.CallCount())
}

func TestTracker_Thresholds(t *testing.T) {
	// One gpt-4o-mini exchange costs 0.00045.
	tracker := NewTracker(0.0004, 0.0005)

	assert.False(t, tracker.ShouldWarn())
	assert.False(t, tracker.ShouldStop())

	tracker.Record("openai", "gpt-4o-mini", 1000, 500)
	assert.True(t, tracker.ShouldWarn())
	assert.False(t, tracker.ShouldStop())

	tracker.Record("openai", "gpt-4o-mini", 1000, 500)
	assert.True(t, tracker.ShouldWarn())
	assert.True(t, tracker.ShouldStop())
}

func TestTracker_ResetKeepsThresholds(t *testing.T) {
	tracker := NewTracker(0.0001, 0.0002)
	tracker.Record("openai", "gpt-4o-mini", 10000, 5000)
	require.True(t, tracker.ShouldStop())

	tracker.Reset()
	assert.Equal(t, 0.0, tracker.TotalCost())
	assert.Empty(t, tracker.Entries())
	assert.False(t, tracker.ShouldStop())

	// Thresholds survived the reset.
	tracker.Record("openai", "gpt-4o-mini", 10000, 5000)
	assert.True(t, tracker.ShouldStop())
}

func TestTracker_EntriesSnapshot(t *testing.T) {
	tracker := NewTracker(0.10, 1.00)
	tracker.Record("openai", "gpt-4o-mini", 100, 50)

	entries := tracker.Entries()
	entries[0].Cost = 999

	assert.NotEqual(t, 999.0, tracker.Entries()[0].Cost)
}

func TestTracker_Summary(t *testing.T) {
	tracker := NewTracker(0.10, 1.00)
	tracker.Record("openai", "gpt-4o-mini", 1000, 500)

	summary := tracker.Summary()
	assert.Contains(t, summary, "Total API Calls: 1")
	assert.Contains(t, summary, "1000 input -> 500 output")
	assert.Contains(t, summary, "$0.000450")
}
