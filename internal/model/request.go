package model

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	ImageURL string `json:"image_url"`
}

// APIResponse is the uniform envelope returned by every endpoint: either a
// schema-valid assessment under Data, or a short error string. Callers never
// see raw parser errors or partial structured data.
type APIResponse struct {
	Success bool              `json:"success"`
	Data    *AssessmentResult `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// SimilarRequest is the body of POST /api/v1/history/similar: a full symptom
// profile to match past assessments against.
type SimilarRequest struct {
	Symptoms map[string]float64 `json:"symptoms"`
	Limit    int                `json:"limit,omitempty"`
}
