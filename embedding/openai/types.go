package openai

// DefaultEndpoint is where text-embeddings-inference serves its
// OpenAI-compatible API when started with default flags.
const DefaultEndpoint = "http://127.0.0.1:8080/v1"

// DefaultAPIKeyEnv is read for a bearer token. Local inference servers usually
// need none; Hugging Face inference endpoints accept the hub token.
const DefaultAPIKeyEnv = "HF_TOKEN"

// Config describes how to reach an OpenAI-compatible embeddings server
type Config struct {
	// Endpoint is the API base URL, without the trailing /embeddings.
	Endpoint string
	// Model is sent as the "model" field of every request.
	Model string
	// APIKeyEnv names the environment variable holding the bearer token.
	APIKeyEnv string
}
