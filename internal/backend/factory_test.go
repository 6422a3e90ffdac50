package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verid-labs/verid/internal/config"
	"github.com/verid-labs/verid/internal/provider/insight"
	"github.com/verid-labs/verid/internal/provider/mock"
)

func TestNewFaceAnalyzer(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantType interface{}
		wantErr  bool
	}{
		{name: "insight explicit", provider: "insight", wantType: (*insight.Provider)(nil)},
		{name: "empty defaults to insight", provider: "", wantType: (*insight.Provider)(nil)},
		{name: "mock", provider: "mock", wantType: (*mock.Provider)(nil)},
		{name: "unknown", provider: "azure", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{FaceProvider: tt.provider}

			analyzer, err := NewFaceAnalyzer(context.Background(), cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown face backend")
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, analyzer)
		})
	}
}

func TestNewDocumentReader_Mock(t *testing.T) {
	cfg := &config.Config{OCRProvider: "mock"}

	reader, err := NewDocumentReader(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, (*mock.Provider)(nil), reader)
}

func TestNewDocumentReader_Unknown(t *testing.T) {
	cfg := &config.Config{OCRProvider: "tesseract"}

	_, err := NewDocumentReader(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown document reader backend")
}
