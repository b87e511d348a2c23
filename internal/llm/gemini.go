package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/uxforge/uxforge/internal/config"
	"github.com/uxforge/uxforge/internal/logger"
)

// refusalMarkers are phrases that indicate the model declined the
// request instead of fulfilling it.
var refusalMarkers = []string{
	"i cannot", "i can't", "i'm unable", "i am unable",
	"no puedo", "lo siento, no",
}

// GeminiClient implements Client on top of the Google GenAI SDK.
type GeminiClient struct {
	client      *genai.Client
	textModel   string
	visionModel string
	timeout     time.Duration
	log         *logger.Logger
}

func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig, log *logger.Logger) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		timeout:     cfg.Timeout,
		log:         log,
	}, nil
}

// callContext bounds a model call with the configured timeout. A zero
// timeout leaves the caller's context in charge.
func (g *GeminiClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, g.timeout)
}

func (g *GeminiClient) CompleteText(ctx context.Context, prompt string, maxTokens int) (Completion, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel,
		genai.Text(prompt), cfg)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini text completion failed: %w", err)
	}
	return g.completion(resp), nil
}

func (g *GeminiClient) CompleteVision(ctx context.Context, prompt string, data []byte, mimeType string) (Completion, error) {
	ctx, cancel := g.callContext(ctx)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(data, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, nil)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini vision completion failed: %w", err)
	}
	return g.completion(resp), nil
}

func (g *GeminiClient) completion(resp *genai.GenerateContentResponse) Completion {
	text := resp.Text()
	return Completion{
		Text:    text,
		Refused: looksLikeRefusal(text),
	}
}

func looksLikeRefusal(text string) bool {
	if text == "" {
		return true
	}
	lower := strings.ToLower(text)
	for _, marker := range refusalMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}
