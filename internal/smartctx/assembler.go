package smartctx

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/uxforge/uxforge/internal/intent"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/pkg/models"
)

// trimMarker is appended wherever context had to be cut to fit a budget.
const trimMarker = "\n\n[Contexto parcial - contenido completo disponible para consulta...]"

// generationStatusText marks assistant messages that are only live
// progress updates; they carry no conversational value.
const generationStatusText = "Generando aplicación web"

// Assembler builds the final model prompt for a turn: relevant
// documents first, then recent conversation if the budget allows, the
// instruction block for the context type, and the user request last.
type Assembler struct {
	configs      map[models.ContextType]models.ContextConfig
	estimator    TokenEstimator
	instructions Instructions
	log          *logger.Logger
}

func NewAssembler(estimator TokenEstimator, instructions Instructions, log *logger.Logger) *Assembler {
	return &Assembler{
		configs:      DefaultConfigs(),
		estimator:    estimator,
		instructions: instructions,
		log:          log,
	}
}

// Build classifies the prompt and assembles context for the detected
// intent.
func (a *Assembler) Build(prompt string, messages []models.ChatMessage, documents []models.DocumentContext, now time.Time) models.SmartContext {
	detected := intent.Detect(prompt, messages, documents, now)
	return a.BuildWithIntent(detected, prompt, messages, documents, now)
}

// BuildWithIntent assembles context for an already-decided intent.
func (a *Assembler) BuildWithIntent(requestIntent models.Intent, prompt string, messages []models.ChatMessage, documents []models.DocumentContext, now time.Time) models.SmartContext {
	contextType := ContextTypeFor(requestIntent)
	config := a.configs[contextType]

	relevantDocuments := filterDocuments(documents, prompt, config.DocumentRelevanceThreshold, now)
	relevantMessages := filterMessages(messages, contextType, config.SlidingWindowSize)

	finalPrompt := a.composePrompt(prompt, relevantMessages, relevantDocuments, contextType, config)
	confidence := intent.Confidence(requestIntent, prompt, relevantDocuments, now)

	smart := models.SmartContext{
		Type:          contextType,
		Intent:        requestIntent,
		FinalPrompt:   finalPrompt,
		TokenCount:    a.estimator.Estimate(finalPrompt),
		DocumentsUsed: relevantDocuments,
		MessagesUsed:  relevantMessages,
		Confidence:    confidence,
	}

	a.log.Debug("assembled smart context",
		"intent", smart.Intent,
		"contextType", smart.Type,
		"tokenCount", smart.TokenCount,
		"documentsUsed", len(smart.DocumentsUsed),
		"messagesUsed", len(smart.MessagesUsed),
		"confidence", smart.Confidence)

	return smart
}

// composePrompt assembles the sections in priority order while tracking
// the token budget.
func (a *Assembler) composePrompt(userPrompt string, messages []models.ChatMessage, documents []models.DocumentContext, contextType models.ContextType, config models.ContextConfig) string {
	var context string
	currentTokens := 0

	if config.IncludeDocuments && len(documents) > 0 {
		documentContext := formatDocuments(documents)
		documentTokens := a.estimator.Estimate(documentContext)

		if documentTokens <= config.MaxDocumentTokens {
			context += documentContext
			currentTokens += documentTokens
		} else {
			context += a.trimToTokenLimit(documentContext, config.MaxDocumentTokens)
			currentTokens += config.MaxDocumentTokens
		}
	}

	if config.IncludeChatHistory && len(messages) > 0 {
		availableTokens := config.MaxTotalTokens - currentTokens - a.estimator.Estimate(userPrompt)
		if config.MaxChatTokens < availableTokens {
			availableTokens = config.MaxChatTokens
		}

		// Chat history is the lowest-priority section: skip it unless
		// meaningful space remains.
		if availableTokens > 100 {
			chatContext := a.trimToTokenLimit(formatChatHistory(messages), availableTokens)
			if strings.TrimSpace(chatContext) != "" {
				context += "\n\n" + chatContext
			}
		}
	}

	var finalPrompt strings.Builder
	if strings.TrimSpace(context) != "" {
		finalPrompt.WriteString(context)
		finalPrompt.WriteString("\n\n")
	}
	finalPrompt.WriteString(a.instructions.For(contextType))
	finalPrompt.WriteString("\n\n")
	finalPrompt.WriteString("# Solicitud del Usuario\n")
	finalPrompt.WriteString(userPrompt)

	return finalPrompt.String()
}

// filterDocuments keeps documents that are fresh enough for the context
// type and either explicitly referenced or lexically related to the
// prompt.
func filterDocuments(documents []models.DocumentContext, userPrompt string, thresholdHours float64, now time.Time) []models.DocumentContext {
	prompt := strings.ToLower(userPrompt)
	window := time.Duration(thresholdHours * float64(time.Hour))

	var relevant []models.DocumentContext
	for _, doc := range documents {
		if now.Sub(doc.Timestamp) > window {
			continue
		}
		if intent.ReferencesDocument(prompt) {
			relevant = append(relevant, doc)
			continue
		}
		if doc.Processed {
			if documentRelevance(doc, prompt) > 0.1 {
				relevant = append(relevant, doc)
			}
			continue
		}
		relevant = append(relevant, doc)
	}
	return relevant
}

// documentRelevance measures what fraction of the prompt's significant
// words appear anywhere in the serialized extraction.
func documentRelevance(doc models.DocumentContext, lowerPrompt string) float64 {
	serialized, err := json.Marshal(doc.ExtractedData)
	if err != nil {
		return 0
	}
	docContent := strings.ToLower(string(serialized))

	var significant, found int
	for _, word := range strings.Fields(lowerPrompt) {
		if len(word) <= 3 {
			continue
		}
		significant++
		if strings.Contains(docContent, word) {
			found++
		}
	}
	if significant == 0 {
		return 0
	}
	return float64(found) / float64(significant)
}

// filterMessages applies the sliding window and drops messages with no
// conversational value. Code generation never sees chat history.
func filterMessages(messages []models.ChatMessage, contextType models.ContextType, slidingWindowSize int) []models.ChatMessage {
	if contextType == models.ContextCodeGeneration {
		return nil
	}

	recent := messages
	if len(recent) > slidingWindowSize {
		recent = recent[len(recent)-slidingWindowSize:]
	}

	var relevant []models.ChatMessage
	for _, msg := range recent {
		if msg.IsGenerating || strings.Contains(msg.Content, generationStatusText) {
			continue
		}
		if len(msg.Content) > 5000 {
			continue
		}
		relevant = append(relevant, msg)
	}
	return relevant
}

func formatDocuments(documents []models.DocumentContext) string {
	if len(documents) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Contexto de Documentos Analizados\n\n")
	for _, doc := range documents {
		if !doc.Processed {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", doc.FileName)
		b.WriteString(formatExtraction(doc.ExtractedData))
		b.WriteString("\n---\n\n")
	}
	return b.String()
}

func formatChatHistory(messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Contexto de Conversación Reciente\n\n")
	for _, msg := range messages {
		role := "Asistente"
		if msg.Role == models.RoleUser {
			role = "Usuario"
		}
		content := msg.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&b, "**%s**: %s\n\n", role, content)
	}
	return b.String()
}

func formatExtraction(data models.ExtractedData) string {
	var b strings.Builder

	if data.Title != "" {
		fmt.Fprintf(&b, "**Título**: %s\n\n", data.Title)
	}
	if data.Summary != "" {
		fmt.Fprintf(&b, "**Resumen**: %s\n\n", data.Summary)
	}

	if len(data.Requirements) > 0 {
		b.WriteString("**Requisitos Clave**:\n")
		for _, req := range firstN(data.Requirements, 10) {
			fmt.Fprintf(&b, "- %s\n", req)
		}
		b.WriteString("\n")
	}

	if len(data.Features) > 0 {
		b.WriteString("**Funcionalidades Principales**:\n")
		for _, feature := range data.Features[:min(len(data.Features), 8)] {
			fmt.Fprintf(&b, "- **%s**: %s\n", feature.Name, feature.Description)
			if len(feature.Components) > 0 {
				fmt.Fprintf(&b, "  - Componentes: %s\n", strings.Join(feature.Components, ", "))
			}
		}
		b.WriteString("\n")
	}

	if len(data.UserFlows) > 0 {
		b.WriteString("**Flujos de Usuario**:\n")
		for _, flow := range data.UserFlows[:min(len(data.UserFlows), 5)] {
			priority := flow.Priority
			if priority == "" {
				priority = "media"
			}
			fmt.Fprintf(&b, "- **%s** (Prioridad: %s):\n", flow.Name, priority)
			fmt.Fprintf(&b, "  - Pasos: %s\n", strings.Join(flow.Steps, " → "))
			if len(flow.Screens) > 0 {
				fmt.Fprintf(&b, "  - Pantallas: %s\n", strings.Join(flow.Screens, ", "))
			}
		}
		b.WriteString("\n")
	}

	if len(data.TechnicalSpecs) > 0 {
		b.WriteString("**Especificaciones Técnicas**:\n")
		for _, spec := range data.TechnicalSpecs {
			fmt.Fprintf(&b, "- **%s**:\n", spec.Category)
			for _, req := range spec.Requirements {
				fmt.Fprintf(&b, "  - %s\n", req)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// trimToTokenLimit cuts text proportionally to fit a budget, preferring
// a section or paragraph break when one falls close to the target.
func (a *Assembler) trimToTokenLimit(text string, maxTokens int) string {
	estimated := a.estimator.Estimate(text)
	if estimated <= maxTokens {
		return text
	}

	ratio := float64(maxTokens) / float64(estimated)
	targetLength := int(float64(len(text)) * ratio * 0.95)
	if targetLength > len(text) {
		targetLength = len(text)
	}

	trimmed := text[:targetLength]
	finalLength := targetLength
	if sectionBreak := strings.LastIndex(trimmed, "---"); float64(sectionBreak) > float64(targetLength)*0.8 {
		finalLength = sectionBreak
	} else if paragraphBreak := strings.LastIndex(trimmed, "\n\n"); float64(paragraphBreak) > float64(targetLength)*0.8 {
		finalLength = paragraphBreak
	}

	return text[:finalLength] + trimMarker
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
