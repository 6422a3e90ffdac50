package insight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Detect(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        bool
		wantErrContain string
		validateResp   func(*testing.T, *DetectResponse)
	}{
		{
			name: "successful response with single face",
			serverResponse: DetectResponse{
				Faces: []DetectedFace{
					{
						BBox:      BBox{X: 10, Y: 20, W: 100, H: 120},
						Score:     0.98,
						Landmarks: make([][2]float64, 106),
					},
				},
			},
			serverStatus: http.StatusOK,
			wantErr:      false,
			validateResp: func(t *testing.T, resp *DetectResponse) {
				require.NotNil(t, resp)
				assert.Len(t, resp.Faces, 1)
				assert.Len(t, resp.Faces[0].Landmarks, 106)
				assert.Equal(t, 0.98, resp.Faces[0].Score)
			},
		},
		{
			name:           "empty response",
			serverResponse: DetectResponse{Faces: []DetectedFace{}},
			serverStatus:   http.StatusOK,
			wantErr:        false,
			validateResp: func(t *testing.T, resp *DetectResponse) {
				require.NotNil(t, resp)
				assert.Len(t, resp.Faces, 0)
			},
		},
		{
			name:           "server error 500",
			serverResponse: map[string]string{"error": "internal server error"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        true,
			wantErrContain: "status 500",
		},
		{
			name:           "bad request 400",
			serverResponse: map[string]string{"error": "invalid image format"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        true,
			wantErrContain: "status 400",
		},
		{
			name:           "invalid json response",
			serverResponse: "not a valid json",
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrContain: "invalid response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/detect", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req DetectRequest
				err := json.NewDecoder(r.Body).Decode(&req)
				require.NoError(t, err)

				assert.NotEmpty(t, req.Img)
				assert.True(t, req.Landmarks)

				w.WriteHeader(tt.serverStatus)
				if str, ok := tt.serverResponse.(string); ok {
					_, _ = w.Write([]byte(str))
				} else {
					_ = json.NewEncoder(w).Encode(tt.serverResponse)
				}
			}))
			defer server.Close()

			config := DefaultConfig()
			config.BaseURL = server.URL
			config.RetryCount = 0

			client := NewClient(config)
			resp, err := client.Detect(context.Background(), "dGVzdA==")

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrContain != "" {
					assert.Contains(t, err.Error(), tt.wantErrContain)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateResp != nil {
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)

		var req AnalyzeRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, []string{"emotion"}, req.Actions)

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(AnalyzeResponse{
			Results: []AnalyzeResult{
				{
					Emotion:         map[string]float64{"happy": 72.5, "neutral": 20.1},
					DominantEmotion: "happy",
					FaceConfidence:  0.97,
				},
			},
		})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryCount = 0

	client := NewClient(config)
	resp, err := client.Analyze(context.Background(), "dGVzdA==")

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "happy", resp.Results[0].DominantEmotion)
	assert.Equal(t, 72.5, resp.Results[0].Emotion["happy"])
}

func TestClient_AntiSpoof(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/antispoof", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(AntiSpoofResponse{IsReal: true, Score: 0.87})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryCount = 0

	client := NewClient(config)
	resp, err := client.AntiSpoof(context.Background(), "dGVzdA==")

	require.NoError(t, err)
	assert.True(t, resp.IsReal)
	assert.Equal(t, 0.87, resp.Score)
}

func TestClient_RetryOnFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "service unavailable"})
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(DetectResponse{Faces: []DetectedFace{}})
	}))
	defer server.Close()

	config := Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Detector:   "scrfd",
		RetryCount: 3,
	}

	client := NewClient(config)
	resp, err := client.Detect(context.Background(), "dGVzdA==")

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 3, attempts, "expected exactly 3 attempts")
}

func TestClient_RetryExhaustion(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "always failing"})
	}))
	defer server.Close()

	config := Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Detector:   "scrfd",
		RetryCount: 2,
	}

	client := NewClient(config)
	_, err := client.Detect(context.Background(), "dGVzdA==")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsightUnavailable)
	assert.Equal(t, 3, attempts, "expected initial attempt + 2 retries")
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid request"})
	}))
	defer server.Close()

	config := Config{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Detector:   "scrfd",
		RetryCount: 3,
	}

	client := NewClient(config)
	_, err := client.Detect(context.Background(), "dGVzdA==")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, 1, attempts, "4xx errors should not be retried")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(DetectResponse{Faces: []DetectedFace{}})
	}))
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL

	client := NewClient(config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Detect(ctx, "dGVzdA==")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, time.Second, calculateBackoff(0))
	assert.Equal(t, time.Second, calculateBackoff(1))
	assert.Equal(t, 2*time.Second, calculateBackoff(2))
	assert.Equal(t, 4*time.Second, calculateBackoff(3))
	assert.Equal(t, 8*time.Second, calculateBackoff(4))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "http://localhost:18080", config.BaseURL)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, "scrfd", config.Detector)
	assert.Equal(t, 3, config.RetryCount)
}
