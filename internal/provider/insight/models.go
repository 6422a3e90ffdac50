package insight

// DetectRequest for POST /detect
type DetectRequest struct {
	Img       string `json:"img"`       // base64 encoded image
	Landmarks bool   `json:"landmarks"` // request 106-point landmark set
}

// DetectResponse from POST /detect
type DetectResponse struct {
	Faces []DetectedFace `json:"faces"`
}

type DetectedFace struct {
	BBox      BBox         `json:"bbox"`
	Score     float64      `json:"score"`
	Landmarks [][2]float64 `json:"landmark_2d_106"`
}

type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// AnalyzeRequest for POST /analyze
type AnalyzeRequest struct {
	Img     string   `json:"img"`
	Actions []string `json:"actions"` // ["emotion"]
}

// AnalyzeResponse from POST /analyze
type AnalyzeResponse struct {
	Results []AnalyzeResult `json:"results"`
}

type AnalyzeResult struct {
	Region          BBox               `json:"region"`
	Emotion         map[string]float64 `json:"emotion"`
	DominantEmotion string             `json:"dominant_emotion"`
	FaceConfidence  float64            `json:"face_confidence"`
}

// AntiSpoofRequest for POST /antispoof
type AntiSpoofRequest struct {
	Img string `json:"img"`
}

// AntiSpoofResponse from POST /antispoof
type AntiSpoofResponse struct {
	IsReal bool    `json:"is_real"`
	Score  float64 `json:"score"`
}
