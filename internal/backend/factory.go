// Package backend selects concrete analysis providers from configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/verid-labs/verid/internal/config"
	"github.com/verid-labs/verid/internal/provider"
	"github.com/verid-labs/verid/internal/provider/insight"
	"github.com/verid-labs/verid/internal/provider/mock"
	"github.com/verid-labs/verid/internal/provider/rekognition"
)

// BackendType defines supported analysis backend types
type BackendType string

const (
	// BackendTypeInsight is the InsightFace REST backend (local, for dev/test)
	BackendTypeInsight BackendType = "insight"
	// BackendTypeRekognition is the AWS Rekognition backend (cloud, for prod)
	BackendTypeRekognition BackendType = "rekognition"
	// BackendTypeMock is the deterministic in-process backend (tests only)
	BackendTypeMock BackendType = "mock"
)

// NewFaceAnalyzer creates a FaceAnalyzer instance based on configuration
//
// Environment variables:
//   - FACE_PROVIDER: "insight", "rekognition" or "mock" (default: "insight")
//   - INSIGHT_URL: InsightFace REST API URL (default: "http://localhost:18080")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY: via AWS SDK credential chain
func NewFaceAnalyzer(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, error) {
	switch BackendType(cfg.FaceProvider) {
	case BackendTypeRekognition:
		return createRekognitionProvider(ctx, cfg)

	case BackendTypeMock:
		return mock.New(), nil

	case BackendTypeInsight, "":
		// Default to InsightFace for dev/test environments
		return createInsightProvider(cfg), nil

	default:
		return nil, fmt.Errorf("unknown face backend: %s (supported: %s, %s, %s)",
			cfg.FaceProvider, BackendTypeInsight, BackendTypeRekognition, BackendTypeMock)
	}
}

// NewDocumentReader creates a DocumentReader instance based on configuration
//
// Environment variables:
//   - OCR_PROVIDER: "rekognition" or "mock" (default: "rekognition")
func NewDocumentReader(ctx context.Context, cfg *config.Config) (provider.DocumentReader, error) {
	switch BackendType(cfg.OCRProvider) {
	case BackendTypeMock:
		return mock.New(), nil

	case BackendTypeRekognition, "":
		return createRekognitionProvider(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown document reader backend: %s (supported: %s, %s)",
			cfg.OCRProvider, BackendTypeRekognition, BackendTypeMock)
	}
}

// createRekognitionProvider creates an AWS Rekognition provider instance
func createRekognitionProvider(ctx context.Context, cfg *config.Config) (*rekognition.Provider, error) {
	rekogConfig := rekognition.Config{
		Region: cfg.AWSRegion,
	}
	if rekogConfig.Region == "" {
		rekogConfig.Region = rekognition.DefaultConfig().Region
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition provider: %w", err)
	}

	return prov, nil
}

// createInsightProvider creates an InsightFace provider instance
func createInsightProvider(cfg *config.Config) *insight.Provider {
	insightConfig := insight.Config{
		BaseURL: cfg.InsightURL,
	}

	// Use defaults for other fields (timeout, detector, retry)
	if insightConfig.BaseURL == "" {
		insightConfig.BaseURL = insight.DefaultConfig().BaseURL
	}

	return insight.NewProvider(insightConfig)
}
