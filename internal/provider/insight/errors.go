package insight

import "errors"

var (
	ErrInsightUnavailable = errors.New("insight service unavailable")
	ErrInvalidResponse    = errors.New("invalid response from insight")
	ErrNoFaceInResponse   = errors.New("no face data in insight response")
)
