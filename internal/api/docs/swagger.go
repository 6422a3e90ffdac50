package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// CurrentChallengeData describes the challenge the user should perform next
type CurrentChallengeData struct {
	ChallengeType  string `json:"challenge_type" example:"smile"`
	Index          int    `json:"index" example:"0"`
	Total          int    `json:"total" example:"3"`
	Title          string `json:"title" example:"Smile"`
	Instruction    string `json:"instruction" example:"Please smile!"`
	Icon           string `json:"icon" example:"smile"`
	TimeoutSeconds int    `json:"timeout_seconds" example:"10"`
}

// SessionData represents a challenge session
type SessionData struct {
	SessionID        string               `json:"session_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CreatedAt        string               `json:"created_at" example:"2024-01-01T00:00:00Z"`
	Challenges       []string             `json:"challenges" example:"smile,blink,turn_left"`
	CurrentIndex     int                  `json:"current_index" example:"0"`
	IsComplete       bool                 `json:"is_complete" example:"false"`
	IsPassed         bool                 `json:"is_passed" example:"false"`
	CurrentChallenge CurrentChallengeData `json:"current_challenge"`
}

// CompleteResultData reports a challenge completion outcome
type CompleteResultData struct {
	Passed          bool                  `json:"passed" example:"true"`
	SessionComplete bool                  `json:"session_complete" example:"false"`
	SessionPassed   *bool                 `json:"session_passed,omitempty"`
	NextChallenge   *CurrentChallengeData `json:"next_challenge,omitempty"`
}

// BlinkFrameData is the per-frame blink detector output
type BlinkFrameData struct {
	BlinkDetected bool    `json:"blink_detected" example:"true"`
	EARValue      float64 `json:"ear_value" example:"0.27"`
	BlinkCount    int     `json:"blink_count" example:"1"`
	LeftEyeOpen   bool    `json:"left_eye_open" example:"true"`
	RightEyeOpen  bool    `json:"right_eye_open" example:"true"`
	FaceDetected  bool    `json:"face_detected" example:"true"`
}

// PoseFrameData is the per-frame head pose detector output
type PoseFrameData struct {
	Yaw                float64 `json:"yaw" example:"0.15"`
	Pitch              float64 `json:"pitch" example:"0.02"`
	Direction          string  `json:"direction" example:"left"`
	LeftTurnCompleted  bool    `json:"left_turn_completed" example:"true"`
	RightTurnCompleted bool    `json:"right_turn_completed" example:"false"`
	FaceDetected       bool    `json:"face_detected" example:"true"`
}

// BatchItemResultData is the verdict for one batch entry
type BatchItemResultData struct {
	Index         int     `json:"index" example:"0"`
	ChallengeType string  `json:"challenge_type" example:"smile"`
	Passed        bool    `json:"passed" example:"true"`
	Score         float64 `json:"score,omitempty" example:"87.5"`
	Error         string  `json:"error,omitempty" example:""`
}

// BatchResultData summarizes a batch challenge validation
type BatchResultData struct {
	AllPassed       bool                  `json:"all_passed" example:"true"`
	TotalChallenges int                   `json:"total_challenges" example:"3"`
	PassedCount     int                   `json:"passed_count" example:"3"`
	Results         []BatchItemResultData `json:"results"`
}

// SmileOutcomeData compares a challenge frame against a baseline
type SmileOutcomeData struct {
	Passed         bool    `json:"passed" example:"true"`
	BaselineScore  float64 `json:"baseline_score" example:"4.2"`
	ChallengeScore float64 `json:"challenge_score" example:"87.5"`
	FaceVisible    bool    `json:"face_visible" example:"true"`
}

// SpoofResultData is a single-frame anti-spoof verdict
type SpoofResultData struct {
	IsReal bool    `json:"is_real" example:"true"`
	Score  float64 `json:"score" example:"0.92"`
}

// FaceQualityData is the pre-verification quality gate report
type FaceQualityData struct {
	FaceCount     int     `json:"face_count" example:"1"`
	Confidence    float64 `json:"confidence" example:"0.97"`
	AreaRatio     float64 `json:"area_ratio" example:"0.18"`
	MultipleFaces bool    `json:"multiple_faces" example:"false"`
	Acceptable    bool    `json:"acceptable" example:"true"`
}

// PassiveLivenessData summarizes blink activity over a frame burst
type PassiveLivenessData struct {
	BlinkCount     int  `json:"blink_count" example:"1"`
	FramesWithFace int  `json:"frames_with_face" example:"5"`
	BestFrameIndex int  `json:"best_frame_index" example:"3"`
	IsLikelyReal   bool `json:"is_likely_real" example:"true"`
}

// ExtractedFieldsData holds the fields parsed from a document
type ExtractedFieldsData struct {
	FullName       string `json:"full_name,omitempty" example:"Juan Carlos Perez Gomez"`
	DocumentNumber string `json:"document_number,omitempty" example:"001-1391820-5"`
	DateOfBirth    string `json:"date_of_birth,omitempty" example:"1990-03-15"`
	ExpirationDate string `json:"expiration_date,omitempty" example:"2030-05-20"`
	Nationality    string `json:"nationality,omitempty" example:"Dominican Republic"`
	Gender         string `json:"gender,omitempty" example:"M"`
}

// DocumentResultData is the pipeline result for one document image
type DocumentResultData struct {
	DocumentType     string              `json:"document_type" example:"national_id"`
	Extracted        ExtractedFieldsData `json:"extracted"`
	ValidationIssues []string            `json:"validation_issues" example:"[]"`
	Confidence       float64             `json:"confidence" example:"0.82"`
	DocumentOrigin   string              `json:"document_origin,omitempty" example:"DOM"`
}

// CommitmentsData holds the salted commitments derived from a document
type CommitmentsData struct {
	DocumentNumberHash string `json:"document_number_hash,omitempty" example:"8f4e...c2"`
	FullNameHash       string `json:"full_name_hash,omitempty" example:"3a9d...7f"`
	IssuingCountryHash string `json:"issuing_country_hash,omitempty" example:"d01c...4e"`
}

// DocumentOutcomeData is the document processing response
type DocumentOutcomeData struct {
	Result      DocumentResultData `json:"result"`
	Commitments CommitmentsData    `json:"commitments,omitempty"`
}

// IdentityData is a stored identity record (commitments only, no raw PII)
type IdentityData struct {
	ID             string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DocumentHash   string `json:"document_hash" example:"8f4e...c2"`
	NameCommitment string `json:"name_commitment" example:"3a9d...7f"`
	DocumentType   string `json:"document_type,omitempty" example:"national_id"`
	CreatedAt      string `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// RegisteredIdentityData is returned once at registration time; the salt
// is never persisted
type RegisteredIdentityData struct {
	Identity IdentityData `json:"identity"`
	Salt     string       `json:"salt" example:"a1b2c3d4e5f60718..."`
}

// ClaimResultData reports which claimed fields matched
type ClaimResultData struct {
	DocumentNumberMatches bool `json:"document_number_matches" example:"true"`
	FullNameMatches       bool `json:"full_name_matches" example:"true"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Verid Identity Verification API",
		Version:     "v1.0.0",
		Description: "Privacy-preserving identity verification: multi-challenge liveness sessions and document extraction with salted commitments",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	apiKeyAuth := endpoint.WithSecurity([]map[string][]string{{"ApiKeyAuth": {}}})

	commonErrors := []response.Response{
		response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
		response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
		response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
	}

	endpoints := []*endpoint.EndPoint{
		// POST /v1/challenges - Create session
		endpoint.New(
			endpoint.POST,
			"/challenges",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Start a liveness challenge session"),
			endpoint.WithDescription("Generates a random 2-4 gesture challenge sequence. Optional exclusions and a forced head turn are supported."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionData{}, "201", "Session created"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// GET /v1/challenges/{session_id} - Get session
		endpoint.New(
			endpoint.GET,
			"/challenges/{session_id}",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Get session state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Challenge session ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionData{}, "200", "Session state"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Challenge session not found or expired"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			apiKeyAuth,
		),

		// POST /v1/challenges/{session_id}/complete - Complete current challenge
		endpoint.New(
			endpoint.POST,
			"/challenges/{session_id}/complete",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Record a challenge outcome"),
			endpoint.WithDescription("Completes the current challenge. Out-of-order completions are rejected; finishing the last challenge writes a verification audit record."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Challenge session ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CompleteResultData{}, "200", "Outcome recorded"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_NOT_FOUND", Message: "Challenge session not found or expired"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "CHALLENGE_OUT_OF_ORDER", Message: "Submitted challenge does not match the current challenge"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "SESSION_ALREADY_COMPLETE", Message: "Challenge session is already complete"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "UNKNOWN_CHALLENGE_TYPE", Message: "Unknown challenge type"}, "422", "Unprocessable Entity"),
			}),
			apiKeyAuth,
		),

		// POST /v1/challenges/{session_id}/frames/blink - Blink frame
		endpoint.New(
			endpoint.POST,
			"/challenges/{session_id}/frames/blink",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Feed one blink detection frame"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Challenge session ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BlinkFrameData{}, "200", "Frame processed"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/challenges/{session_id}/frames/pose - Head pose frame
		endpoint.New(
			endpoint.POST,
			"/challenges/{session_id}/frames/pose",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Feed one head pose frame"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("session_id", parameter.Path, parameter.WithDescription("Challenge session ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PoseFrameData{}, "200", "Frame processed"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/challenges/validate-batch - Batch validation
		endpoint.New(
			endpoint.POST,
			"/challenges/validate-batch",
			endpoint.WithTags("Challenges"),
			endpoint.WithSummary("Validate collected challenge frames"),
			endpoint.WithDescription("Judges one base64-encoded frame per challenge. Per-item failures do not abort the batch."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(BatchResultData{}, "200", "Batch evaluated"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/liveness/smile - Smile validation
		endpoint.New(
			endpoint.POST,
			"/liveness/smile",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Validate a smile challenge against a baseline"),
			endpoint.WithDescription("Requires both an absolute happy score and a minimum delta from the neutral baseline frame."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SmileOutcomeData{}, "200", "Smile evaluated"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/liveness/spoof - Anti-spoof
		endpoint.New(
			endpoint.POST,
			"/liveness/spoof",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Score a frame for presentation attacks"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SpoofResultData{}, "200", "Frame scored"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/liveness/quality - Face quality gate
		endpoint.New(
			endpoint.POST,
			"/liveness/quality",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Check face quality before verification"),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(FaceQualityData{}, "200", "Quality report"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			apiKeyAuth,
		),

		// POST /v1/liveness/passive - Passive liveness
		endpoint.New(
			endpoint.POST,
			"/liveness/passive",
			endpoint.WithTags("Liveness"),
			endpoint.WithSummary("Analyze passive liveness over a frame burst"),
			endpoint.WithDescription("Counts blinks across uploaded frames; at least one blink marks the subject as likely real."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(PassiveLivenessData{}, "200", "Burst analyzed"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/documents/process - Document pipeline
		endpoint.New(
			endpoint.POST,
			"/documents/process",
			endpoint.WithTags("Documents"),
			endpoint.WithSummary("Extract and validate a document image"),
			endpoint.WithDescription("Runs OCR, classification, field extraction, per-country validation, confidence scoring and commitment derivation."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(DocumentOutcomeData{}, "200", "Document processed"),
			}),
			endpoint.WithErrors(commonErrors),
			apiKeyAuth,
		),

		// POST /v1/identities - Register identity
		endpoint.New(
			endpoint.POST,
			"/identities",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("Register a privacy-preserving identity"),
			endpoint.WithDescription("Stores salted commitments and an optional face embedding. The salt is returned exactly once and never persisted."),
			endpoint.WithConsume([]mime.MIME{mime.MIME("multipart/form-data")}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RegisteredIdentityData{}, "201", "Identity registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "DUPLICATE_IDENTITY", Message: "This document is already registered to another user"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			apiKeyAuth,
		),

		// POST /v1/identities/{id}/claims - Verify claim
		endpoint.New(
			endpoint.POST,
			"/identities/{id}/claims",
			endpoint.WithTags("Identities"),
			endpoint.WithSummary("Verify claimed fields against stored commitments"),
			endpoint.WithDescription("Checks claimed values using the salt the user kept from registration. No raw field leaves storage because none is stored."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Identity ID")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ClaimResultData{}, "200", "Claim evaluated"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NOT_FOUND", Message: "Resource not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "UNAUTHORIZED", Message: "Invalid or missing API key"}, "401", "Unauthorized"),
			}),
			apiKeyAuth,
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
