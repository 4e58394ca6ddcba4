package server

// EmbedRequest is the body of POST /embed. Text is a pointer so an absent
// field fails validation while an empty string does not.
type EmbedRequest struct {
	Text *string `json:"text" binding:"required"`
	Type string  `json:"type"`
}

// BatchRequest is the body of POST /batch
type BatchRequest struct {
	Texts []string `json:"texts" binding:"required"`
	Type  string   `json:"type"`
}

type EmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

type BatchResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

const (
	msgMissingText  = "Missing text field"
	msgMissingTexts = "Missing texts field"
	msgInvalidJSON  = "Invalid JSON body"
	msgInternal     = "Internal Server Error"
)
