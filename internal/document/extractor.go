package document

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/pkg/models"
)

const extractionPrompt = `Analiza este documento y extrae su información estructurada como JSON con este formato exacto:

{
  "documentType": "prd" | "wireframe" | "design" | "requirements" | "other",
  "title": "título del documento",
  "summary": "resumen ejecutivo en 2-3 frases",
  "sections": [{"title": "...", "content": "...", "type": "text"}],
  "requirements": ["requisito 1", "requisito 2"],
  "userFlows": [{"name": "...", "steps": ["..."], "screens": ["..."], "priority": "high" | "medium" | "low"}],
  "features": [{"name": "...", "description": "...", "priority": "high" | "medium" | "low", "components": ["..."]}],
  "technicalSpecs": [{"category": "...", "requirements": ["..."]}]
}

Responde únicamente con el JSON, sin texto adicional.`

// Extractor turns uploaded PRDs, wireframes and images into structured
// document context via the vision model.
type Extractor struct {
	llm llm.Client
	log *logger.Logger
}

func NewExtractor(client llm.Client, log *logger.Logger) *Extractor {
	return &Extractor{llm: client, log: log}
}

// Extract analyzes a document's raw bytes. A non-empty customPrompt
// replaces the default extraction prompt. Extraction never fails hard:
// when the model output cannot be parsed, a synthetic summary entry is
// returned so the document still registers in the session.
func (e *Extractor) Extract(ctx context.Context, fileName, mimeType string, data []byte, customPrompt string) (models.DocumentContext, error) {
	prompt := customPrompt
	if prompt == "" {
		prompt = extractionPrompt
	}

	completion, err := e.llm.CompleteVision(ctx, prompt, data, mimeType)
	if err != nil {
		return models.DocumentContext{}, fmt.Errorf("document analysis failed for %s: %w", fileName, err)
	}

	extracted, ok := parseExtraction(completion.Text)
	if !ok {
		e.log.Warn("unparseable extraction output, using synthetic summary", "fileName", fileName)
		extracted = syntheticExtraction(fileName, completion.Text)
	}

	return models.DocumentContext{
		DocumentID:    uuid.NewString(),
		FileName:      fileName,
		MimeType:      mimeType,
		ExtractedData: extracted,
		Processed:     ok,
	}, nil
}

// parseExtraction pulls the first {...} block out of the model reply.
// Models often wrap JSON in prose or code fences.
func parseExtraction(text string) (models.ExtractedData, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return models.ExtractedData{}, false
	}

	var extracted models.ExtractedData
	if err := json.Unmarshal([]byte(text[start:end+1]), &extracted); err != nil {
		return models.ExtractedData{}, false
	}
	return extracted, true
}

func syntheticExtraction(fileName, text string) models.ExtractedData {
	summary := text
	if len(summary) > 200 {
		summary = summary[:200] + "..."
	}
	return models.ExtractedData{
		DocumentType: "other",
		Title:        fileName,
		Summary:      summary,
		Sections: []models.DocumentSection{
			{Title: "Contenido extraído", Content: text, Type: "text"},
		},
	}
}
