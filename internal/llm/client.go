package llm

import "context"

// Completion is the outcome of a model call. Refused is set when the
// model answered but declined to produce the requested content.
type Completion struct {
	Text    string
	Refused bool
}

// Client abstracts the text/vision model behind the service. The
// production implementation talks to Gemini; tests swap in fakes.
type Client interface {
	// CompleteText sends a text prompt and returns the model's reply.
	CompleteText(ctx context.Context, prompt string, maxTokens int) (Completion, error)

	// CompleteVision sends a prompt plus a binary attachment (image or
	// PDF) and returns the model's reply.
	CompleteVision(ctx context.Context, prompt string, data []byte, mimeType string) (Completion, error)
}
