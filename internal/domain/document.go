package domain

// DocumentType classifies an identity document from its OCR text.
type DocumentType string

const (
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeNationalID     DocumentType = "national_id"
	DocumentTypeDriversLicense DocumentType = "drivers_license"
	DocumentTypeUnknown        DocumentType = "unknown"
)

// ExtractedData holds identity fields parsed from a document.
// Every field is independently optional; partial extraction is the
// normal case, not an error.
type ExtractedData struct {
	FullName           string `json:"full_name,omitempty"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	DocumentNumber     string `json:"document_number,omitempty"`
	DateOfBirth        string `json:"date_of_birth,omitempty"`     // ISO 8601 (YYYY-MM-DD)
	ExpirationDate     string `json:"expiration_date,omitempty"`   // ISO 8601 (YYYY-MM-DD)
	Nationality        string `json:"nationality,omitempty"`       // full country name
	NationalityCode    string `json:"nationality_code,omitempty"`  // ISO 3166-1 alpha-3
	IssuingCountry     string `json:"issuing_country,omitempty"`   // full country name
	IssuingCountryCode string `json:"issuing_country_code,omitempty"` // ISO 3166-1 alpha-3
	Gender             string `json:"gender,omitempty"`
}

// FieldsExtracted counts the identity fields that feed the
// confidence score (name, number, birth date, expiry).
func (d *ExtractedData) FieldsExtracted() int {
	count := 0
	for _, v := range []string{d.FullName, d.DocumentNumber, d.DateOfBirth, d.ExpirationDate} {
		if v != "" {
			count++
		}
	}
	return count
}

// ValidationResult reports one document-number validation attempt.
type ValidationResult struct {
	IsValid       bool   `json:"is_valid"`
	ErrorCode     string `json:"error_code,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	ValidatorUsed string `json:"validator_used,omitempty"`
	FormatName    string `json:"format_name,omitempty"`
}

// DocumentResult is the outcome of the full OCR -> classify ->
// extract -> validate pipeline for one document image.
type DocumentResult struct {
	Extracted         *ExtractedData     `json:"extracted,omitempty"`
	DocumentType      DocumentType       `json:"document_type"`
	ValidationIssues  []string           `json:"validation_issues"`
	ValidationDetails []ValidationResult `json:"validation_details,omitempty"`
	Confidence        float64            `json:"confidence"`
	DocumentOrigin    string             `json:"document_origin,omitempty"`
	OCRError          string             `json:"ocr_error,omitempty"`
}
