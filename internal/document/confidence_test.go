package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verid-labs/verid/internal/provider"
)

func TestExtractionConfidence(t *testing.T) {
	perfectBlocks := []provider.TextBlock{
		{Text: "a", Confidence: 1.0},
		{Text: "b", Confidence: 1.0},
	}

	tests := []struct {
		name   string
		text   string
		fields int
		blocks []provider.TextBlock
		want   float64
	}{
		{
			name:   "everything perfect",
			text:   strings.Repeat("x", 250),
			fields: 4,
			blocks: perfectBlocks,
			want:   1.0,
		},
		{
			name: "nothing recognized",
			text: "",
			want: 0.0,
		},
		{
			name: "medium text only",
			text: strings.Repeat("x", 120),
			want: 0.3 * 0.67,
		},
		{
			name: "short text only",
			text: strings.Repeat("x", 60),
			want: 0.3 * 0.33,
		},
		{
			name:   "fields capped at four",
			text:   "",
			fields: 6,
			want:   0.4,
		},
		{
			name:   "ocr average weighted",
			text:   "",
			blocks: []provider.TextBlock{{Confidence: 0.5}, {Confidence: 1.0}},
			want:   0.75 * 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractionConfidence(tt.text, tt.fields, tt.blocks)

			assert.InDelta(t, tt.want, got, 0.0001)
		})
	}
}

// The score is a heuristic, but it must stay in [0, 1] no matter how
// far the inputs run out of range.
func TestExtractionConfidence_ExtremeInputsClampToOne(t *testing.T) {
	got := ExtractionConfidence(
		strings.Repeat("x", 100000),
		100,
		[]provider.TextBlock{{Confidence: 5.0}},
	)

	assert.Equal(t, 1.0, got)
}

func TestExtractionConfidence_MoreFieldsScoreHigher(t *testing.T) {
	text := strings.Repeat("x", 120)

	low := ExtractionConfidence(text, 1, nil)
	high := ExtractionConfidence(text, 3, nil)

	assert.Greater(t, high, low)
}
