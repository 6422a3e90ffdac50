package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/verid-labs/verid/internal/domain"
	"github.com/verid-labs/verid/internal/service"
)

// MockDocumentService is a mock implementation of DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Process(ctx context.Context, imageBytes []byte) (*service.DocumentOutcome, error) {
	args := m.Called(ctx, imageBytes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentOutcome), args.Error(1)
}

func (m *MockDocumentService) Register(ctx context.Context, result *domain.DocumentResult, faceEmbedding []float32) (*service.RegisteredIdentity, error) {
	args := m.Called(ctx, result, faceEmbedding)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegisteredIdentity), args.Error(1)
}

func (m *MockDocumentService) VerifyClaim(ctx context.Context, identityID uuid.UUID, documentNumber, fullName, salt string) (*service.ClaimResult, error) {
	args := m.Called(ctx, identityID, documentNumber, fullName, salt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ClaimResult), args.Error(1)
}

func sampleOutcome() *service.DocumentOutcome {
	return &service.DocumentOutcome{
		Result: &domain.DocumentResult{
			DocumentType: domain.DocumentTypeNationalID,
			Extracted: &domain.ExtractedData{
				DocumentNumber: "001-1391820-5",
				FullName:       "Juan Carlos Perez Gomez",
			},
			DocumentOrigin:   "DOM",
			Confidence:       0.8,
			ValidationIssues: []string{},
		},
	}
}

func TestDocumentHandler_Process(t *testing.T) {
	imageContent := []byte("fake-document-image")

	t.Run("returns pipeline outcome", func(t *testing.T) {
		mockService := &MockDocumentService{}
		mockService.On("Process", mock.Anything, imageContent).Return(sampleOutcome(), nil)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/documents/process", handler.Process)

		body, contentType := imageRequest(imageContent, "image/jpeg")
		req := httptest.NewRequest("POST", "/v1/documents/process", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result service.DocumentOutcome
		respBody, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(respBody, &result))
		require.NotNil(t, result.Result)
		assert.Equal(t, domain.DocumentTypeNationalID, result.Result.DocumentType)
		assert.Equal(t, "001-1391820-5", result.Result.Extracted.DocumentNumber)

		mockService.AssertExpectations(t)
	})

	t.Run("missing image returns 422", func(t *testing.T) {
		mockService := &MockDocumentService{}
		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/documents/process", handler.Process)

		req := httptest.NewRequest("POST", "/v1/documents/process", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})
}

func TestDocumentHandler_Register(t *testing.T) {
	imageContent := []byte("fake-document-image")

	t.Run("registers identity and returns salt once", func(t *testing.T) {
		outcome := sampleOutcome()
		registered := &service.RegisteredIdentity{
			Identity: &domain.Identity{
				ID:           uuid.New(),
				DocumentHash: "abc123",
			},
			Salt: "deadbeef",
		}

		mockService := &MockDocumentService{}
		mockService.On("Process", mock.Anything, imageContent).Return(outcome, nil)
		mockService.On("Register", mock.Anything, outcome.Result, []float32(nil)).Return(registered, nil)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities", handler.Register)

		body, contentType := imageRequest(imageContent, "image/jpeg")
		req := httptest.NewRequest("POST", "/v1/identities", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var result service.RegisteredIdentity
		respBody, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(respBody, &result))
		assert.Equal(t, "deadbeef", result.Salt)

		mockService.AssertExpectations(t)
	})

	t.Run("passes embedding through", func(t *testing.T) {
		outcome := sampleOutcome()
		registered := &service.RegisteredIdentity{
			Identity: &domain.Identity{ID: uuid.New(), DocumentHash: "abc123"},
			Salt:     "deadbeef",
		}

		mockService := &MockDocumentService{}
		mockService.On("Process", mock.Anything, imageContent).Return(outcome, nil)
		mockService.On("Register", mock.Anything, outcome.Result, []float32{0.1, 0.2}).Return(registered, nil)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities", handler.Register)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		addImagePart(writer, "image", "doc.jpg", "image/jpeg", imageContent)
		_ = writer.WriteField("face_embedding", "[0.1,0.2]")
		_ = writer.Close()

		req := httptest.NewRequest("POST", "/v1/identities", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		mockService.AssertExpectations(t)
	})

	t.Run("invalid embedding returns 422", func(t *testing.T) {
		mockService := &MockDocumentService{}
		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities", handler.Register)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		addImagePart(writer, "image", "doc.jpg", "image/jpeg", imageContent)
		_ = writer.WriteField("face_embedding", "not-json")
		_ = writer.Close()

		req := httptest.NewRequest("POST", "/v1/identities", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)

		mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("duplicate identity returns 409", func(t *testing.T) {
		outcome := sampleOutcome()
		mockService := &MockDocumentService{}
		mockService.On("Process", mock.Anything, imageContent).Return(outcome, nil)
		mockService.On("Register", mock.Anything, outcome.Result, []float32(nil)).
			Return(nil, domain.ErrDuplicateIdentity)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities", handler.Register)

		body, contentType := imageRequest(imageContent, "image/jpeg")
		req := httptest.NewRequest("POST", "/v1/identities", body)
		req.Header.Set("Content-Type", contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 409, resp.StatusCode)
	})
}

func TestDocumentHandler_VerifyClaim(t *testing.T) {
	identityID := uuid.New()

	t.Run("checks claim", func(t *testing.T) {
		mockService := &MockDocumentService{}
		mockService.On("VerifyClaim", mock.Anything, identityID, "001-1391820-5", "Juan Perez", "deadbeef").
			Return(&service.ClaimResult{DocumentNumberMatches: true, FullNameMatches: true}, nil)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities/:id/claims", handler.VerifyClaim)

		payload := `{"document_number":"001-1391820-5","full_name":"Juan Perez","salt":"deadbeef"}`
		req := httptest.NewRequest("POST", "/v1/identities/"+identityID.String()+"/claims", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result service.ClaimResult
		respBody, _ := io.ReadAll(resp.Body)
		require.NoError(t, json.Unmarshal(respBody, &result))
		assert.True(t, result.DocumentNumberMatches)
		assert.True(t, result.FullNameMatches)

		mockService.AssertExpectations(t)
	})

	t.Run("invalid identity id returns 422", func(t *testing.T) {
		mockService := &MockDocumentService{}
		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities/:id/claims", handler.VerifyClaim)

		payload := `{"document_number":"001-1391820-5","salt":"deadbeef"}`
		req := httptest.NewRequest("POST", "/v1/identities/not-a-uuid/claims", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("empty claim returns 422", func(t *testing.T) {
		mockService := &MockDocumentService{}
		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities/:id/claims", handler.VerifyClaim)

		payload := `{"salt":"deadbeef"}`
		req := httptest.NewRequest("POST", "/v1/identities/"+identityID.String()+"/claims", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 422, resp.StatusCode)
	})

	t.Run("unknown identity returns 404", func(t *testing.T) {
		mockService := &MockDocumentService{}
		mockService.On("VerifyClaim", mock.Anything, identityID, "001-1391820-5", "", "deadbeef").
			Return(nil, domain.ErrNotFound)

		handler := NewDocumentHandler(mockService, testLogger())
		app := newTestApp()
		app.Post("/v1/identities/:id/claims", handler.VerifyClaim)

		payload := `{"document_number":"001-1391820-5","salt":"deadbeef"}`
		req := httptest.NewRequest("POST", "/v1/identities/"+identityID.String()+"/claims", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
