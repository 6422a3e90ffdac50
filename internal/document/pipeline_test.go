package document

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/provider"
)

type mockReader struct {
	mock.Mock
}

func (m *mockReader) ExtractText(ctx context.Context, image []byte) (*provider.OCRResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*provider.OCRResult), args.Error(1)
}

func newTestPipeline(reader provider.DocumentReader) *Pipeline {
	return NewPipeline(reader, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func ocrResult(text string, confidence float64) *provider.OCRResult {
	return &provider.OCRResult{
		FullText:   text,
		TextBlocks: []provider.TextBlock{{Text: text, Confidence: confidence}},
	}
}

func TestPipeline_Process_Cedula(t *testing.T) {
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).Return(ocrResult(cedulaText, 0.95), nil)

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeNationalID, result.DocumentType)
	assert.Empty(t, result.ValidationIssues)
	require.NotNil(t, result.Extracted)
	assert.Equal(t, "001-1391820-5", result.Extracted.DocumentNumber)
	assert.Equal(t, "DOM", result.DocumentOrigin)
	assert.Greater(t, result.Confidence, 0.5)
}

func TestPipeline_Process_PassportMRZ(t *testing.T) {
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).Return(ocrResult("PASSPORT\n"+specimenMRZ, 0.9), nil)

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypePassport, result.DocumentType)
	require.NotNil(t, result.Extracted)
	assert.Equal(t, "L898902C3", result.Extracted.DocumentNumber)
	assert.Equal(t, "UTO", result.DocumentOrigin)
	assert.NotContains(t, result.ValidationIssues, CodeMRZChecksumInvalid)
	// The specimen expired in 2012.
	assert.Contains(t, result.ValidationIssues, CodeDocumentExpired)
}

func TestPipeline_Process_BrokenMRZChecksum(t *testing.T) {
	corrupted := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C36UTO7408123F1204159ZE184226B<<<<<10"
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).Return(ocrResult(corrupted, 0.9), nil)

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Contains(t, result.ValidationIssues, CodeMRZChecksumInvalid)
}

func TestPipeline_Process_OCRFailure(t *testing.T) {
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).Return(nil, errors.New("engine offline"))

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeUnknown, result.DocumentType)
	assert.Equal(t, "engine offline", result.OCRError)
	assert.Contains(t, result.ValidationIssues, CodeOCRFailed)
	assert.Contains(t, result.ValidationIssues, "engine offline")
	assert.Zero(t, result.Confidence)
}

func TestPipeline_Process_NoText(t *testing.T) {
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).Return(ocrResult("abc", 0.2), nil)

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeUnknown, result.DocumentType)
	assert.Contains(t, result.ValidationIssues, CodeNoTextDetected)
	assert.Nil(t, result.Extracted)
}

func TestPipeline_Process_MissingNumberReported(t *testing.T) {
	reader := new(mockReader)
	reader.On("ExtractText", mock.Anything, mock.Anything).
		Return(ocrResult("CEDULA DE IDENTIDAD Y ELECTORAL\nREPUBLICA DOMINICANA\nSIN NUMERO LEGIBLE", 0.4), nil)

	result, err := newTestPipeline(reader).Process(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentTypeNationalID, result.DocumentType)
	assert.Contains(t, result.ValidationIssues, CodeMissingDocumentNumber)
}
