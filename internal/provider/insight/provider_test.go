package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryCount = 0

	return NewProvider(config)
}

func TestProvider_DetectLandmarks(t *testing.T) {
	landmarks := make([][2]float64, 106)
	landmarks[54] = [2]float64{200, 250}

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(DetectResponse{
			Faces: []DetectedFace{
				{
					BBox:      BBox{X: 50, Y: 60, W: 180, H: 220},
					Score:     0.96,
					Landmarks: landmarks,
				},
			},
		})
	})

	faces, err := p.DetectLandmarks(context.Background(), []byte("image"))
	require.NoError(t, err)
	require.Len(t, faces, 1)

	assert.Equal(t, 50.0, faces[0].BoundingBox.X)
	assert.Equal(t, 180.0, faces[0].BoundingBox.Width)
	assert.Equal(t, 0.96, faces[0].Confidence)
	require.Len(t, faces[0].Landmarks, 106)
	assert.Equal(t, 200.0, faces[0].Landmarks[54].X)
	assert.Equal(t, 250.0, faces[0].Landmarks[54].Y)
}

func TestProvider_DetectLandmarks_NoFaces(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(DetectResponse{Faces: []DetectedFace{}})
	})

	faces, err := p.DetectLandmarks(context.Background(), []byte("image"))
	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestProvider_AnalyzeEmotions(t *testing.T) {
	tests := []struct {
		name        string
		response    AnalyzeResponse
		wantVisible bool
		wantHappy   float64
	}{
		{
			name: "visible face with emotions",
			response: AnalyzeResponse{
				Results: []AnalyzeResult{
					{
						Emotion:         map[string]float64{"happy": 81.2, "neutral": 12.0},
						DominantEmotion: "happy",
						FaceConfidence:  0.95,
					},
				},
			},
			wantVisible: true,
			wantHappy:   81.2,
		},
		{
			name:        "no face in frame",
			response:    AnalyzeResponse{Results: []AnalyzeResult{}},
			wantVisible: false,
		},
		{
			name: "low confidence treated as obscured",
			response: AnalyzeResponse{
				Results: []AnalyzeResult{
					{
						Emotion:        map[string]float64{"neutral": 40.0},
						FaceConfidence: 0.2,
					},
				},
			},
			wantVisible: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(tt.response)
			})

			out, err := p.AnalyzeEmotions(context.Background(), []byte("image"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantVisible, out.Visible)
			if tt.wantVisible {
				assert.Equal(t, tt.wantHappy, out.Emotions["happy"])
			}
		})
	}
}

func TestProvider_CheckAntiSpoof(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(AntiSpoofResponse{IsReal: true, Score: 0.42})
	})

	res, err := p.CheckAntiSpoof(context.Background(), []byte("image"), 0.3)
	require.NoError(t, err)
	assert.True(t, res.IsReal)
	assert.Equal(t, 0.42, res.Score)

	// Threshold applied locally, not taken from the service verdict.
	res, err = p.CheckAntiSpoof(context.Background(), []byte("image"), 0.5)
	require.NoError(t, err)
	assert.False(t, res.IsReal)
}
