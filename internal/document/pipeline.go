package document

import (
	"context"
	"log/slog"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/provider"
)

// minOCRTextLength is the threshold below which a scan is treated as
// unreadable rather than parsed.
const minOCRTextLength = 10

// Issue codes produced by the pipeline itself (validators add theirs).
const (
	CodeOCRFailed          = "ocr_failed"
	CodeNoTextDetected     = "no_text_detected"
	CodeMRZChecksumInvalid = "mrz_checksum_invalid"
)

// Pipeline runs OCR, classification, field extraction and validation
// over one document image.
type Pipeline struct {
	reader provider.DocumentReader
	logger *slog.Logger
}

func NewPipeline(reader provider.DocumentReader, logger *slog.Logger) *Pipeline {
	return &Pipeline{reader: reader, logger: logger}
}

// Process runs the full pipeline. OCR and parsing troubles are reported
// in the result's issue list; only infrastructure failures outside the
// reader return an error.
func (p *Pipeline) Process(ctx context.Context, image []byte) (*domain.DocumentResult, error) {
	result := &domain.DocumentResult{
		DocumentType:     domain.DocumentTypeUnknown,
		ValidationIssues: []string{},
	}

	ocr, err := p.reader.ExtractText(ctx, image)
	if err != nil {
		p.logger.Error("text extraction failed", slog.String("error", err.Error()))
		result.OCRError = err.Error()
		result.ValidationIssues = append(result.ValidationIssues, CodeOCRFailed, err.Error())
		return result, nil
	}

	if len(ocr.FullText) < minOCRTextLength {
		result.ValidationIssues = append(result.ValidationIssues, CodeNoTextDetected)
		return result, nil
	}

	docType, typeConfidence := DetectType(ocr.FullText)
	result.DocumentType = docType

	p.logger.Info("document classified",
		slog.String("type", string(docType)),
		slog.Float64("confidence", typeConfidence),
	)

	var data *domain.ExtractedData
	mrzOK := true
	switch docType {
	case domain.DocumentTypePassport:
		data, mrzOK = ExtractPassportFields(ocr.FullText)
	case domain.DocumentTypeDriversLicense:
		data = ExtractDriversLicenseFields(ocr.FullText)
	default:
		data = ExtractNationalIDFields(ocr.FullText)
	}
	result.Extracted = data

	if docType == domain.DocumentTypePassport && !mrzOK {
		result.ValidationIssues = append(result.ValidationIssues, CodeMRZChecksumInvalid)
	}

	p.validate(result, docType, data)

	result.DocumentOrigin = data.IssuingCountryCode
	if result.DocumentOrigin == "" {
		result.DocumentOrigin = data.NationalityCode
	}

	result.Confidence = ExtractionConfidence(ocr.FullText, data.FieldsExtracted(), ocr.TextBlocks)

	return result, nil
}

// validate runs the field validators appropriate to the document type
// and folds their error codes into the issue list.
func (p *Pipeline) validate(result *domain.DocumentResult, docType domain.DocumentType, data *domain.ExtractedData) {
	record := func(r domain.ValidationResult) {
		result.ValidationDetails = append(result.ValidationDetails, r)
		if !r.IsValid && r.ErrorCode != "" {
			result.ValidationIssues = append(result.ValidationIssues, r.ErrorCode)
		}
	}

	if docType == domain.DocumentTypePassport {
		record(ValidatePassportNumber(data.DocumentNumber))
	} else {
		country := data.IssuingCountryCode
		if country == "" {
			country = data.NationalityCode
		}
		record(ValidateDocumentNumber(data.DocumentNumber, country))
	}

	if data.ExpirationDate != "" {
		record(ValidateExpirationDate(data.ExpirationDate))
	}
	if data.DateOfBirth != "" {
		record(ValidateDateOfBirth(data.DateOfBirth))
	}
}
