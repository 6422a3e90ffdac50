package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verid-labs/verid/internal/domain"
)

func TestDetectType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantType domain.DocumentType
	}{
		{
			name:     "dominican cedula",
			text:     "REPUBLICA DOMINICANA\nCEDULA DE IDENTIDAD Y ELECTORAL\nJUNTA CENTRAL ELECTORAL\n001-1391820-5",
			wantType: domain.DocumentTypeNationalID,
		},
		{
			name:     "spanish dni",
			text:     "DOCUMENTO NACIONAL DE IDENTIDAD\nDNI 12345678Z",
			wantType: domain.DocumentTypeNationalID,
		},
		{
			name:     "passport by label",
			text:     "PASSPORT\nPASAPORTE\nTIPO / TYPE P",
			wantType: domain.DocumentTypePassport,
		},
		{
			name:     "drivers license",
			text:     "LICENCIA DE CONDUCIR\nCATEGORIA B\nCATEGORY B",
			wantType: domain.DocumentTypeDriversLicense,
		},
		{
			name:     "german license",
			text:     "FÜHRERSCHEIN\nCATEGORY B",
			wantType: domain.DocumentTypeDriversLicense,
		},
		{
			name:     "no markers",
			text:     "the quick brown fox",
			wantType: domain.DocumentTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docType, confidence := DetectType(tt.text)

			assert.Equal(t, tt.wantType, docType)
			if tt.wantType == domain.DocumentTypeUnknown {
				assert.Zero(t, confidence)
			} else {
				assert.Greater(t, confidence, 0.0)
				assert.LessOrEqual(t, confidence, 1.0)
			}
		})
	}
}

func TestDetectType_MRZFastPath(t *testing.T) {
	// An MRZ line wins even when ID card markers are present too.
	text := "CEDULA DE IDENTIDAD\nP<DOMPEREZ<<JUAN<<<<<<<<<<<<<<<<<<<<<<<<<<<<"

	docType, confidence := DetectType(text)

	assert.Equal(t, domain.DocumentTypePassport, docType)
	assert.Equal(t, 1.0, confidence)
}

func TestDetectType_TieBreakPrefersNationalID(t *testing.T) {
	// One marker each: the tie goes to the national ID.
	docType, _ := DetectType("DNI PASSPORT")

	assert.Equal(t, domain.DocumentTypeNationalID, docType)
}

func TestDetectType_CaseInsensitive(t *testing.T) {
	docType, _ := DetectType("passport")

	assert.Equal(t, domain.DocumentTypePassport, docType)
}
