package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
)

const coarsePromptTemplate = `Analiza este mensaje del usuario y determina si está pidiendo generar código, una aplicación, un sitio web o cualquier artefacto de software.

Mensaje: "%s"

Responde únicamente con "CÓDIGO" o "CHAT".`

// CoarseClassifier answers the binary question "does this prompt ask
// for code?". Keywords act as a cheap prefilter; confirmed hits get a
// second opinion from the model, and any model failure falls back to
// the keyword verdict.
type CoarseClassifier struct {
	llm llm.Client
	log *logger.Logger
}

func NewCoarseClassifier(client llm.Client, log *logger.Logger) *CoarseClassifier {
	return &CoarseClassifier{llm: client, log: log}
}

// IsCodeRequest never fails: a degraded model only costs accuracy.
func (c *CoarseClassifier) IsCodeRequest(ctx context.Context, prompt string) bool {
	keywordHit := containsAny(prompt, codeGenerationKeywords)
	if !keywordHit {
		return false
	}

	completion, err := c.llm.CompleteText(ctx, fmt.Sprintf(coarsePromptTemplate, prompt), 10)
	if err != nil {
		c.log.Warn("coarse classification fell back to keywords", "error", err)
		return keywordHit
	}
	return strings.Contains(completion.Text, "CÓDIGO")
}
