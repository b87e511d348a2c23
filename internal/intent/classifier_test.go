package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/pkg/models"
)

func TestDetect(t *testing.T) {
	now := time.Now()

	recentDoc := []models.DocumentContext{{DocumentID: "d1", Timestamp: now.Add(-10 * time.Minute)}}
	oldDoc := []models.DocumentContext{{DocumentID: "d1", Timestamp: now.Add(-2 * time.Hour)}}
	recentPreview := []models.ChatMessage{{PreviewURL: "https://localhost:49152", Timestamp: now.Add(-30 * time.Minute)}}
	oldPreview := []models.ChatMessage{{PreviewURL: "https://localhost:49152", Timestamp: now.Add(-3 * time.Hour)}}

	tests := []struct {
		name      string
		prompt    string
		messages  []models.ChatMessage
		documents []models.DocumentContext
		want      models.Intent
	}{
		{
			name:   "plain question defaults to chat",
			prompt: "¿qué puedes hacer?",
			want:   models.IntentChat,
		},
		{
			name:   "generation keyword",
			prompt: "crea una landing de restaurantes",
			want:   models.IntentGenerateCode,
		},
		{
			name:     "modification keyword with recent preview",
			prompt:   "cambia el color del header",
			messages: recentPreview,
			want:     models.IntentModifyExisting,
		},
		{
			name:     "modification keyword with stale preview is generation via add keyword",
			prompt:   "agrega una pantalla de pedidos",
			messages: oldPreview,
			want:     models.IntentGenerateCode,
		},
		{
			name:      "document reference with fresh document",
			prompt:    "resume el pdf que subí",
			documents: recentDoc,
			want:      models.IntentAnalyzeDocument,
		},
		{
			name:      "document reference with stale document falls through to chat",
			prompt:    "qué dice el pdf",
			documents: oldDoc,
			want:      models.IntentChat,
		},
		{
			name:      "document analysis wins over generation",
			prompt:    "crea la app que describe este documento",
			documents: recentDoc,
			want:      models.IntentAnalyzeDocument,
		},
		{
			name:     "modification wins over generation",
			prompt:   "mejora la página que creaste",
			messages: recentPreview,
			want:     models.IntentModifyExisting,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.prompt, tt.messages, tt.documents, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfidence(t *testing.T) {
	now := time.Now()
	freshDoc := []models.DocumentContext{{Timestamp: now.Add(-30 * time.Minute)}}
	oldDoc := []models.DocumentContext{{Timestamp: now.Add(-5 * time.Hour)}}

	t.Run("base confidence for chat", func(t *testing.T) {
		assert.InDelta(t, 0.5, Confidence(models.IntentChat, "hola", nil, now), 1e-9)
	})

	t.Run("keyword matches raise generation confidence", func(t *testing.T) {
		// "crea" and "app" both match.
		got := Confidence(models.IntentGenerateCode, "crea una app", nil, now)
		assert.InDelta(t, 0.7, got, 1e-9)
	})

	t.Run("keywords only count for generation", func(t *testing.T) {
		got := Confidence(models.IntentChat, "crea una app", nil, now)
		assert.InDelta(t, 0.5, got, 1e-9)
	})

	t.Run("documents add confidence with recency bonus", func(t *testing.T) {
		assert.InDelta(t, 0.8, Confidence(models.IntentChat, "hola", freshDoc, now), 1e-9)
		assert.InDelta(t, 0.7, Confidence(models.IntentChat, "hola", oldDoc, now), 1e-9)
	})

	t.Run("capped at one", func(t *testing.T) {
		got := Confidence(models.IntentGenerateCode,
			"crea genera construye una app web con dashboard y formulario", freshDoc, now)
		assert.Equal(t, 1.0, got)
	})
}

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) CompleteText(context.Context, string, int) (llm.Completion, error) {
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	return llm.Completion{Text: s.text}, nil
}

func (s *stubLLM) CompleteVision(context.Context, string, []byte, string) (llm.Completion, error) {
	return llm.Completion{}, errors.New("not implemented")
}

func TestCoarseClassifier(t *testing.T) {
	ctx := context.Background()

	t.Run("no keywords never asks the model", func(t *testing.T) {
		c := NewCoarseClassifier(&stubLLM{err: errors.New("should not be called")}, logger.NewNop())
		assert.False(t, c.IsCodeRequest(ctx, "¿cómo estás?"))
	})

	t.Run("model confirms code", func(t *testing.T) {
		c := NewCoarseClassifier(&stubLLM{text: "CÓDIGO"}, logger.NewNop())
		assert.True(t, c.IsCodeRequest(ctx, "crea una tienda online"))
	})

	t.Run("model overrides keyword hit", func(t *testing.T) {
		c := NewCoarseClassifier(&stubLLM{text: "CHAT"}, logger.NewNop())
		assert.False(t, c.IsCodeRequest(ctx, "¿qué es una app?"))
	})

	t.Run("model failure falls back to keyword verdict", func(t *testing.T) {
		c := NewCoarseClassifier(&stubLLM{err: errors.New("timeout")}, logger.NewNop())
		assert.True(t, c.IsCodeRequest(ctx, "crea una tienda online"))
	})
}

func TestClarifier(t *testing.T) {
	ctx := context.Background()

	t.Run("direct generation sentinel skips questions", func(t *testing.T) {
		c := NewClarifier(&stubLLM{text: "GENERAR_DIRECTO"}, logger.NewNop())
		assert.Empty(t, c.Check(ctx, "crea una tienda de mascotas", nil))
	})

	t.Run("short questions are wrapped and returned", func(t *testing.T) {
		c := NewClarifier(&stubLLM{text: "¿Qué tipo de negocio es?"}, logger.NewNop())
		got := c.Check(ctx, "crea algo", nil)
		assert.Contains(t, got, "🤔")
		assert.Contains(t, got, "¿Qué tipo de negocio es?")
	})

	t.Run("overlong reply skips questions", func(t *testing.T) {
		long := make([]byte, 400)
		for i := range long {
			long[i] = 'a'
		}
		c := NewClarifier(&stubLLM{text: string(long)}, logger.NewNop())
		assert.Empty(t, c.Check(ctx, "crea algo", nil))
	})

	t.Run("model failure skips questions", func(t *testing.T) {
		c := NewClarifier(&stubLLM{err: errors.New("down")}, logger.NewNop())
		assert.Empty(t, c.Check(ctx, "crea algo", nil))
	})

	t.Run("recent questions suppress another round", func(t *testing.T) {
		c := NewClarifier(&stubLLM{text: "¿Más detalles?"}, logger.NewNop())
		history := []models.ChatMessage{
			{Role: models.RoleAssistant, Content: "🤔 **Perfecto! Quiero asegurarme de crear exactamente lo que necesitas.**"},
		}
		assert.Empty(t, c.Check(ctx, "crea algo", history))
	})
}
