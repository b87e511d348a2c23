package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/uxforge/uxforge/internal/intent"
	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/internal/orchestrator"
	"github.com/uxforge/uxforge/internal/progress"
	"github.com/uxforge/uxforge/internal/session"
	"github.com/uxforge/uxforge/internal/smartctx"
	"github.com/uxforge/uxforge/pkg/models"
)

// ErrGenerationBusy is returned when a session already has a generation
// in flight.
var ErrGenerationBusy = fmt.Errorf("a generation is already running for this session")

// Service coordinates one chat turn end to end: classify the prompt,
// gate it behind clarification, then either orchestrate a generation or
// produce a conversational reply.
type Service struct {
	assembler    *smartctx.Assembler
	coarse       *intent.CoarseClassifier
	clarifier    *intent.Clarifier
	orchestrator *orchestrator.Orchestrator
	llm          llm.Client
	hub          *progress.Hub
	log          *logger.Logger

	// One generation at a time per session.
	mu    sync.Mutex
	slots map[string]*semaphore.Weighted
}

func NewService(assembler *smartctx.Assembler, coarse *intent.CoarseClassifier, clarifier *intent.Clarifier, orch *orchestrator.Orchestrator, client llm.Client, hub *progress.Hub, log *logger.Logger) *Service {
	return &Service{
		assembler:    assembler,
		coarse:       coarse,
		clarifier:    clarifier,
		orchestrator: orch,
		llm:          client,
		hub:          hub,
		log:          log,
		slots:        make(map[string]*semaphore.Weighted),
	}
}

// HandleTurn processes one user message and returns the assistant
// message that concluded the turn. extraContext is caller-provided
// background for conversational replies; generation turns get their
// context from the session instead.
func (s *Service) HandleTurn(ctx context.Context, store *session.Store, content, extraContext string, attachments []models.FileAttachment) (models.ChatMessage, error) {
	store.AddMessage(models.ChatMessage{
		Role:        models.RoleUser,
		Content:     content,
		Attachments: attachments,
	})

	if s.coarse.IsCodeRequest(ctx, content) {
		sess := store.Session()
		if questions := s.clarifier.Check(ctx, content, sess.Messages); questions != "" {
			s.log.Info("asking clarifying questions before generating")
			return store.AddMessage(models.ChatMessage{
				Role:    models.RoleAssistant,
				Content: questions,
			}), nil
		}
		return s.generate(ctx, store, content)
	}

	return s.converse(ctx, store, content, extraContext)
}

// generate runs the orchestrator with live progress updates written
// onto a dedicated assistant message and broadcast on the hub.
func (s *Service) generate(ctx context.Context, store *session.Store, prompt string) (models.ChatMessage, error) {
	sess := store.Session()

	slot := s.slotFor(sess.SessionID)
	if !slot.TryAcquire(1) {
		return models.ChatMessage{}, ErrGenerationBusy
	}
	defer slot.Release(1)

	existingSandboxID := store.SandboxID()
	modifying := existingSandboxID != ""

	placeholder := fmt.Sprintf("🚀 **Generando nueva aplicación móvil**\n\nSolicitud: \"%s\"\n\n🎯 Creando mockup móvil de Rappi desde cero...", prompt)
	if modifying {
		placeholder = fmt.Sprintf("🔄 **Modificando aplicación existente**\n\nSolicitud: \"%s\"\n\n✨ Aplicando cambios al mockup móvil actual...", prompt)
	}
	message := store.AddMessage(models.ChatMessage{
		Role:         models.RoleAssistant,
		Content:      placeholder,
		IsGenerating: true,
	})

	requestIntent := models.IntentGenerateCode
	if modifying {
		requestIntent = models.IntentModifyExisting
	}
	smart := s.assembler.BuildWithIntent(requestIntent, enhancePrompt(prompt, sess.Documents), sess.Messages, sess.Documents, time.Now())

	framework := detectFramework(prompt)
	onProgress := s.progressWriter(store, sess.SessionID, message.ID, modifying)

	result, err := s.orchestrator.Generate(ctx, smart.FinalPrompt, prompt, framework, existingSandboxID, onProgress)
	if err != nil {
		errorBody := fmt.Sprintf("❌ **Error en la generación**\n\n%s", err.Error())
		store.UpdateMessage(message.ID, models.MessagePatch{
			Content:      &errorBody,
			IsGenerating: boolPtr(false),
		})
		s.hub.Publish(progress.Event{SessionID: sess.SessionID, Stage: "error", Message: err.Error()})
		return models.ChatMessage{}, err
	}

	store.SetSandboxID(result.SandboxID)

	finalBody := successMessage(result, framework, len(sess.Documents))
	store.UpdateMessage(message.ID, models.MessagePatch{
		Content:      &finalBody,
		IsGenerating: boolPtr(false),
		PreviewURL:   &result.PreviewURL,
		ProjectID:    &result.ProjectName,
	})
	s.hub.Publish(progress.Event{SessionID: sess.SessionID, Stage: "ready", Message: result.PreviewURL, Percent: 100})

	updated, _ := s.messageByID(store, message.ID)
	return updated, nil
}

// converse assembles conversational context and asks the model for a
// reply.
func (s *Service) converse(ctx context.Context, store *session.Store, prompt, extraContext string) (models.ChatMessage, error) {
	sess := store.Session()
	smart := s.assembler.Build(prompt, sess.Messages, sess.Documents, time.Now())

	finalPrompt := smart.FinalPrompt
	if extraContext != "" {
		finalPrompt = fmt.Sprintf("# Contexto Adicional\n%s\n\n%s", extraContext, finalPrompt)
	}

	completion, err := s.llm.CompleteText(ctx, finalPrompt, 2048)
	if err != nil {
		body := fmt.Sprintf("❌ Error: %s", err.Error())
		store.AddMessage(models.ChatMessage{Role: models.RoleAssistant, Content: body})
		return models.ChatMessage{}, err
	}

	return store.AddMessage(models.ChatMessage{
		Role:    models.RoleAssistant,
		Content: completion.Text,
	}), nil
}

// NewChat resets the session. The sandbox id is captured before the
// session is cleared so the kill still happens when clearing succeeds.
func (s *Service) NewChat(ctx context.Context, store *session.Store) models.ChatSession {
	sandboxID := store.SandboxID()
	fresh := store.ClearSession()

	if sandboxID != "" {
		if err := s.orchestrator.KillSandbox(ctx, sandboxID); err != nil {
			s.log.Error("failed to kill sandbox after session reset, it may leak until expiry",
				"sandboxId", sandboxID, "error", err)
		}
	}
	return fresh
}

// AnalyzeDocument answers a question about pasted document text using
// the document-analysis context configuration.
func (s *Service) AnalyzeDocument(ctx context.Context, store *session.Store, fileName, fileContent, prompt string) (string, error) {
	sess := store.Session()

	question := fmt.Sprintf("Documento \"%s\":\n\n%s\n\nPregunta: %s", fileName, fileContent, prompt)
	smart := s.assembler.BuildWithIntent(models.IntentAnalyzeDocument, question, sess.Messages, sess.Documents, time.Now())

	completion, err := s.llm.CompleteText(ctx, smart.FinalPrompt, 2048)
	if err != nil {
		return "", fmt.Errorf("document analysis failed: %w", err)
	}
	return completion.Text, nil
}

// Reply answers a raw conversational request with explicit context and
// history, bypassing the session store. Serves the stateless chat
// endpoint.
func (s *Service) Reply(ctx context.Context, message, context string, history []models.ConversationEntry) (string, error) {
	var b strings.Builder
	b.WriteString("Eres un asistente inteligente de Rappi Creator, una plataforma para crear aplicaciones web a partir de documentos PRD.\n\n")
	b.WriteString("INSTRUCCIONES IMPORTANTES:\n")
	b.WriteString("- Responde de manera natural, útil y conversacional\n")
	b.WriteString("- Si el usuario quiere CREAR, GENERAR, CONSTRUIR algo (app, página, sitio web, etc.), responde: \"¡Perfecto! Voy a crear eso para ti ahora mismo.\" y nada más\n")
	b.WriteString("- Para preguntas normales, responde de manera informativa y útil\n")
	b.WriteString("- Mantén las respuestas concisas pero completas\n")
	b.WriteString("- Usa un tono amigable y profesional\n\n")

	b.WriteString("CONTEXTO ADICIONAL:\n")
	if context == "" {
		context = "Usuario interactuando con Rappi Creator"
	}
	b.WriteString(context)
	b.WriteString("\n\nHISTORIAL DE CONVERSACIÓN:\n")
	for _, entry := range history {
		fmt.Fprintf(&b, "%s: %s\n", entry.Role, entry.Content)
	}
	fmt.Fprintf(&b, "\nUSUARIO: %s", message)

	completion, err := s.llm.CompleteText(ctx, b.String(), 2048)
	if err != nil {
		return "", fmt.Errorf("chat reply failed: %w", err)
	}
	return completion.Text, nil
}

func (s *Service) slotFor(sessionID string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[sessionID]
	if !ok {
		slot = semaphore.NewWeighted(1)
		s.slots[sessionID] = slot
	}
	return slot
}

func (s *Service) progressWriter(store *session.Store, sessionID, messageID string, modifying bool) orchestrator.ProgressFunc {
	emoji, action := "🚀", "Generando aplicación móvil"
	if modifying {
		emoji, action = "🔄", "Modificando mockup móvil"
	}

	return func(stage, message string) {
		body := fmt.Sprintf("%s **%s**\n\n**Estado**: %s", emoji, action, message)
		store.UpdateMessage(messageID, models.MessagePatch{Content: &body})
		s.hub.Publish(progress.Event{
			SessionID: sessionID,
			Stage:     stage,
			Message:   message,
			Percent:   stagePercent(stage),
		})
	}
}

func (s *Service) messageByID(store *session.Store, id string) (models.ChatMessage, bool) {
	for _, msg := range store.Session().Messages {
		if msg.ID == id {
			return msg, true
		}
	}
	return models.ChatMessage{}, false
}

// enhancePrompt appends a short summary of analyzed documents so the
// generation prompt carries their identity even before the assembler
// adds full context.
func enhancePrompt(prompt string, documents []models.DocumentContext) string {
	if len(documents) == 0 {
		return prompt
	}

	var lines []string
	for _, doc := range documents {
		title := doc.ExtractedData.Title
		if title == "" {
			title = "Información extraída"
		}
		lines = append(lines, fmt.Sprintf("Documento: %s - %s", doc.FileName, title))
	}
	return fmt.Sprintf("%s\n\nCONTEXTO DE DOCUMENTOS:\n%s", prompt, strings.Join(lines, "\n"))
}

func detectFramework(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "vite"):
		return "vite"
	case strings.Contains(lower, "react") && !strings.Contains(lower, "next"):
		return "react"
	default:
		return "nextjs"
	}
}

func successMessage(result orchestrator.Result, framework string, documentCount int) string {
	contextInfo := ""
	if documentCount > 0 {
		contextInfo = fmt.Sprintf(" usando el contexto de %d documento(s) analizado(s)", documentCount)
	}

	if result.Modified {
		return fmt.Sprintf("🔄 **¡Mockup móvil modificado exitosamente!**\n\nHe actualizado el mockup de Rappi basándome en tu nueva solicitud%s.\n\n📱 **Vista previa**: El mockup actualizado está ejecutándose en el mismo sandbox\n📦 **Framework**: %s\n🆔 **Proyecto**: %s\n⚡ **Ventaja**: Sandbox reutilizado - modificación más rápida\n\n*Usa el botón 🔄 para recargar el preview si necesitas ver los cambios.*", contextInfo, framework, result.ProjectName)
	}
	return fmt.Sprintf("✅ **¡Mockup móvil de Rappi generado exitosamente!**\n\nHe creado un nuevo mockup móvil basado en tu solicitud%s.\n\n📱 **Vista previa**: El mockup está ejecutándose en un sandbox aislado\n📦 **Framework**: %s\n🆔 **Proyecto**: %s\n🚀 **Nuevo sandbox**: Creado para esta sesión\n\n*El preview se muestra en formato móvil (375px) para simular la app de Rappi.*", contextInfo, framework, result.ProjectName)
}

func stagePercent(stage string) int {
	switch stage {
	case "generating":
		return 25
	case "sandbox":
		return 50
	case "serving":
		return 75
	case "ready":
		return 100
	default:
		return 0
	}
}

func boolPtr(b bool) *bool { return &b }
