package costcontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetModelPricing_KnownModels(t *testing.T) {
	tests := []struct {
		model      string
		wantInput  float64
		wantOutput float64
	}{
		{"gpt-4o-mini", 0.15, 0.60},
		{"gpt-4o", 2.5, 10},
		{"claude-3-5-haiku-20241022", 0.80, 4.00},
		{"claude-3-5-sonnet-20241022", 3, 15},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p := GetModelPricing(tt.model)
			assert.Equal(t, tt.wantInput, p.InputPerMTok)
			assert.Equal(t, tt.wantOutput, p.OutputPerMTok)
		})
	}
}

func TestGetModelPricing_UnknownModelUsesDefault(t *testing.T) {
	p := GetModelPricing("some-unknown-model-xyz")
	assert.Equal(t, defaultPricing, p)

	// Unknown models must price the same as the default model.
	assert.Equal(t,
		CalculateCost("gpt-4o-mini", 1000, 500),
		CalculateCost("some-unknown-model-xyz", 1000, 500))
}

func TestGetModelPricing_FamilyMatch(t *testing.T) {
	// A dated variant not in the exact table should match its family.
	p := GetModelPricing("claude-3-5-haiku-20260101")
	assert.Equal(t, 0.80, p.InputPerMTok)
	assert.Equal(t, 4.00, p.OutputPerMTok)

	// gpt-4o-mini dated variants must win over the broader gpt-4o prefix.
	p2 := GetModelPricing("gpt-4o-mini-2026-01-01")
	assert.Equal(t, 0.15, p2.InputPerMTok)
	assert.Equal(t, 0.60, p2.OutputPerMTok)
}

func TestCalculateCost_ReferenceValues(t *testing.T) {
	// 1000 input + 500 output at gpt-4o-mini rates.
	assert.InDelta(t, 0.00045, CalculateCost("gpt-4o-mini", 1000, 500), 1e-10)

	// Same token counts at claude-3-5-haiku rates.
	assert.InDelta(t, 0.0028, CalculateCost("claude-3-5-haiku-20241022", 1000, 500), 1e-10)
}

func TestCalculateCost_Zero(t *testing.T) {
	assert.Equal(t, 0.0, CalculateCost("gpt-4o-mini", 0, 0))
}

func TestCalculateCost_Monotonic(t *testing.T) {
	base := CalculateCost("gpt-4o-mini", 1000, 500)
	assert.Greater(t, CalculateCost("gpt-4o-mini", 2000, 500), base)
	assert.Greater(t, CalculateCost("gpt-4o-mini", 1000, 1000), base)
	assert.GreaterOrEqual(t, base, 0.0)
}
