package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/pkg/models"
)

// clarificationMarker tags assistant messages that are clarification
// questions, so the gate never asks twice in a row.
const clarificationMarker = "🤔"

// directGenerationToken is what the model answers when the prompt is
// already specific enough to generate from.
const directGenerationToken = "GENERAR_DIRECTO"

const clarifyPromptTemplate = `El usuario quiere generar una aplicación web y escribió:

"%s"

Si la petición ya es suficientemente específica para generar una aplicación completa, responde únicamente con "GENERAR_DIRECTO".

Si falta información esencial, responde con máximo 3 preguntas cortas de aclaración (tipo de negocio, funcionalidades clave, estilo visual). Sé breve.`

// Clarifier decides whether a generation request needs clarifying
// questions before committing a sandbox to it.
type Clarifier struct {
	llm llm.Client
	log *logger.Logger
}

func NewClarifier(client llm.Client, log *logger.Logger) *Clarifier {
	return &Clarifier{llm: client, log: log}
}

// Check returns the clarification message to send instead of
// generating, or "" when generation should proceed. Generation is the
// default on every failure or edge: the gate may only delay work it is
// confident about.
func (c *Clarifier) Check(ctx context.Context, prompt string, messages []models.ChatMessage) string {
	if recentlyAskedClarification(messages) {
		return ""
	}

	completion, err := c.llm.CompleteText(ctx, fmt.Sprintf(clarifyPromptTemplate, prompt), 300)
	if err != nil {
		c.log.Warn("clarification check failed, generating directly", "error", err)
		return ""
	}

	answer := strings.TrimSpace(completion.Text)
	if answer == "" || len(answer) > 300 {
		return ""
	}
	if strings.Contains(answer, directGenerationToken) {
		return ""
	}

	return fmt.Sprintf("🤔 **Perfecto! Quiero asegurarme de crear exactamente lo que necesitas.**\n\n%s\n\n*Una vez que me confirmes estos detalles, genero tu aplicación de inmediato.*", answer)
}

// recentlyAskedClarification scans the last 10 messages for an earlier
// clarification question from the assistant.
func recentlyAskedClarification(messages []models.ChatMessage) bool {
	start := 0
	if len(messages) > 10 {
		start = len(messages) - 10
	}
	for _, msg := range messages[start:] {
		if msg.Role == models.RoleAssistant && strings.Contains(msg.Content, clarificationMarker) {
			return true
		}
	}
	return false
}
