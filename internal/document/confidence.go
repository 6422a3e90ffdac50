package document

import "github.com/verid-labs/verid/internal/provider"

// Confidence score weights. Three signals, each capped, summed and
// clamped to 1.0.
const (
	textLengthWeight = 0.3
	perFieldWeight   = 0.1
	maxFieldWeight   = 0.4
	ocrWeight        = 0.3
)

// ExtractionConfidence scores how trustworthy a pipeline run is from
// the amount of recognized text, the identity fields recovered and the
// OCR engine's own per-block confidence.
func ExtractionConfidence(text string, fieldsExtracted int, blocks []provider.TextBlock) float64 {
	score := 0.0

	switch {
	case len(text) > 200:
		score += textLengthWeight
	case len(text) > 100:
		score += textLengthWeight * 0.67
	case len(text) > 50:
		score += textLengthWeight * 0.33
	}

	fieldScore := float64(fieldsExtracted) * perFieldWeight
	if fieldScore > maxFieldWeight {
		fieldScore = maxFieldWeight
	}
	score += fieldScore

	if len(blocks) > 0 {
		sum := 0.0
		for _, b := range blocks {
			sum += b.Confidence
		}
		score += (sum / float64(len(blocks))) * ocrWeight
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}
