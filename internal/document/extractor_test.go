package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
)

type visionStub struct {
	text       string
	err        error
	lastPrompt string
}

func (v *visionStub) CompleteText(context.Context, string, int) (llm.Completion, error) {
	return llm.Completion{}, errors.New("not implemented")
}

func (v *visionStub) CompleteVision(_ context.Context, prompt string, _ []byte, _ string) (llm.Completion, error) {
	v.lastPrompt = prompt
	if v.err != nil {
		return llm.Completion{}, v.err
	}
	return llm.Completion{Text: v.text}, nil
}

func TestExtractParsesCleanJSON(t *testing.T) {
	stub := &visionStub{text: `{
		"documentType": "prd",
		"title": "App de pedidos",
		"summary": "PRD de una app de pedidos a domicilio",
		"requirements": ["registro de usuarios", "carrito"],
		"features": [{"name": "Carrito", "description": "gestión del carrito", "priority": "high"}]
	}`}
	extractor := NewExtractor(stub, logger.NewNop())

	doc, err := extractor.Extract(context.Background(), "prd.pdf", "application/pdf", []byte("datos"), "")
	require.NoError(t, err)

	assert.NotEmpty(t, doc.DocumentID)
	assert.True(t, doc.Processed)
	assert.Equal(t, "prd", doc.ExtractedData.DocumentType)
	assert.Equal(t, "App de pedidos", doc.ExtractedData.Title)
	assert.Len(t, doc.ExtractedData.Requirements, 2)
	require.Len(t, doc.ExtractedData.Features, 1)
	assert.Equal(t, "Carrito", doc.ExtractedData.Features[0].Name)
}

func TestExtractUnwrapsProseAroundJSON(t *testing.T) {
	stub := &visionStub{text: "Claro, aquí está el análisis:\n```json\n{\"documentType\": \"wireframe\", \"title\": \"Pantalla principal\", \"summary\": \"wireframe móvil\"}\n```\nEspero que sirva."}
	extractor := NewExtractor(stub, logger.NewNop())

	doc, err := extractor.Extract(context.Background(), "wf.png", "image/png", []byte("img"), "")
	require.NoError(t, err)

	assert.True(t, doc.Processed)
	assert.Equal(t, "wireframe", doc.ExtractedData.DocumentType)
}

func TestExtractUnparseableOutputBuildsSyntheticEntry(t *testing.T) {
	raw := "Este documento describe " + strings.Repeat("una funcionalidad, ", 20)
	stub := &visionStub{text: raw}
	extractor := NewExtractor(stub, logger.NewNop())

	doc, err := extractor.Extract(context.Background(), "notas.pdf", "application/pdf", []byte("datos"), "")
	require.NoError(t, err)

	assert.False(t, doc.Processed)
	assert.Equal(t, "other", doc.ExtractedData.DocumentType)
	assert.Equal(t, "notas.pdf", doc.ExtractedData.Title)
	assert.True(t, strings.HasSuffix(doc.ExtractedData.Summary, "..."))
	require.Len(t, doc.ExtractedData.Sections, 1)
	assert.Equal(t, "Contenido extraído", doc.ExtractedData.Sections[0].Title)
	assert.Equal(t, raw, doc.ExtractedData.Sections[0].Content)
}

func TestExtractBrokenJSONFallsBackToSynthetic(t *testing.T) {
	stub := &visionStub{text: `{"documentType": "prd", "title": incomplete`}
	extractor := NewExtractor(stub, logger.NewNop())

	doc, err := extractor.Extract(context.Background(), "roto.pdf", "application/pdf", []byte("datos"), "")
	require.NoError(t, err)

	assert.False(t, doc.Processed)
	assert.Equal(t, "other", doc.ExtractedData.DocumentType)
}

func TestExtractCustomPromptReplacesDefault(t *testing.T) {
	stub := &visionStub{text: `{"documentType": "prd", "title": "Menú", "summary": "carta del restaurante"}`}
	extractor := NewExtractor(stub, logger.NewNop())

	_, err := extractor.Extract(context.Background(), "menu.pdf", "application/pdf", []byte("datos"),
		"Extrae únicamente los platos y sus precios")
	require.NoError(t, err)
	assert.Equal(t, "Extrae únicamente los platos y sus precios", stub.lastPrompt)

	_, err = extractor.Extract(context.Background(), "menu.pdf", "application/pdf", []byte("datos"), "")
	require.NoError(t, err)
	assert.Equal(t, extractionPrompt, stub.lastPrompt)
}

func TestExtractTransportErrorPropagates(t *testing.T) {
	extractor := NewExtractor(&visionStub{err: errors.New("vision model down")}, logger.NewNop())

	_, err := extractor.Extract(context.Background(), "prd.pdf", "application/pdf", []byte("datos"), "")
	assert.Error(t, err)
}
