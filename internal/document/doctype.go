// Package document implements the document intelligence pipeline: type
// classification, field extraction (including passport MRZ parsing),
// per-country number validation and confidence scoring over OCR text.
package document

import (
	"regexp"
	"strings"

	"github.com/verid-labs/verid/internal/domain"
)

// documentMarkers holds the detection patterns per document type.
// Patterns cover international documents; several carry language
// variants for the same label.
var documentMarkers = map[domain.DocumentType][]*regexp.Regexp{
	domain.DocumentTypeNationalID: compileAll(
		`NATIONAL\s+ID`,
		`IDENTITY\s+CARD`,
		`ID\s+CARD`,
		`CÉDULA\s+DE\s+IDENTIDAD`,
		`CEDULA\s+DE\s+IDENTIDAD`,
		`DOCUMENTO\s+NACIONAL`,
		`DNI`,
		`JUNTA\s+CENTRAL\s+ELECTORAL`,
		`JCE`,
		`\d{3}[-\s]?\d{7}[-\s]?\d{1}`, // Dominican cedula format
		`\d{8}[A-Z]`,                  // Spanish DNI format
	),
	domain.DocumentTypePassport: compileAll(
		`PASAPORTE`,
		`PASSPORT`,
		`REISEPASS`,
		`PASSEPORT`,
		`P<[A-Z]{3}`, // MRZ indicator for any passport
		`TIPO\s*/?\s*TYPE\s*P`,
	),
	domain.DocumentTypeDriversLicense: compileAll(
		`LICENCIA\s+DE\s+CONDUCIR`,
		`DRIVER.*LICENSE`,
		`DRIVING\s+LICEN[CS]E`,
		`PERMIS\s+DE\s+CONDUIRE`,
		`FÜHRERSCHEIN`,
		`CATEGORÍA`,
		`CATEGORY`,
	),
}

// docTypeOrder fixes the tie-break: when two types score equally, the
// earlier one wins.
var docTypeOrder = []domain.DocumentType{
	domain.DocumentTypeNationalID,
	domain.DocumentTypePassport,
	domain.DocumentTypeDriversLicense,
}

// mrzPassportPattern is the fast-path signal: a TD3 MRZ line starting
// with "P<" identifies a passport even when only the MRZ region was
// OCR'd.
var mrzPassportPattern = regexp.MustCompile(`P<[A-Z]{3}`)

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// DetectType classifies OCR text into a document type with a confidence
// score. Confidence is the ratio of matched patterns to total patterns
// for the winning type; zero matches yields unknown.
func DetectType(text string) (domain.DocumentType, float64) {
	upper := strings.ToUpper(text)

	if mrzPassportPattern.MatchString(upper) {
		return domain.DocumentTypePassport, 1.0
	}

	scores := make(map[domain.DocumentType]int, len(documentMarkers))
	for docType, patterns := range documentMarkers {
		for _, p := range patterns {
			if p.MatchString(upper) {
				scores[docType]++
			}
		}
	}

	best := domain.DocumentTypeUnknown
	bestScore := 0
	for _, docType := range docTypeOrder {
		if scores[docType] > bestScore {
			best = docType
			bestScore = scores[docType]
		}
	}

	if bestScore == 0 {
		return domain.DocumentTypeUnknown, 0.0
	}

	return best, float64(bestScore) / float64(len(documentMarkers[best]))
}
