package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uxforge/uxforge/internal/intent"
	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/internal/orchestrator"
	"github.com/uxforge/uxforge/internal/progress"
	"github.com/uxforge/uxforge/internal/sandbox"
	"github.com/uxforge/uxforge/internal/session"
	"github.com/uxforge/uxforge/internal/smartctx"
	"github.com/uxforge/uxforge/pkg/models"
)

// scriptedLLM answers by prompt shape: intent checks, clarification,
// generation and conversation each have a recognizable prefix.
type scriptedLLM struct {
	clarifyAnswer string
	err           error
	prompts       []string
}

func (s *scriptedLLM) CompleteText(_ context.Context, prompt string, _ int) (llm.Completion, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return llm.Completion{}, s.err
	}
	switch {
	case strings.Contains(prompt, `"CÓDIGO" o "CHAT"`):
		return llm.Completion{Text: "CÓDIGO"}, nil
	case strings.Contains(prompt, "GENERAR_DIRECTO"):
		answer := s.clarifyAnswer
		if answer == "" {
			answer = "GENERAR_DIRECTO"
		}
		return llm.Completion{Text: answer}, nil
	case strings.Contains(prompt, "Rappi App Generator"):
		return llm.Completion{Text: "<!DOCTYPE html><html><body>mock</body></html>"}, nil
	default:
		return llm.Completion{Text: "respuesta conversacional"}, nil
	}
}

func (s *scriptedLLM) CompleteVision(context.Context, string, []byte, string) (llm.Completion, error) {
	return llm.Completion{}, errors.New("not implemented")
}

type memProvider struct {
	mu        sync.Mutex
	nextID    int
	live      map[string]bool
	killed    []string
	createErr error
}

func newMemProvider() *memProvider {
	return &memProvider{live: make(map[string]bool)}
}

func (m *memProvider) Create(context.Context, string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.nextID++
	id := fmt.Sprintf("sb-%d", m.nextID)
	m.live[id] = true
	return id, nil
}

func (m *memProvider) WriteFile(_ context.Context, id, _ string, _ []byte) error {
	if !m.alive(id) {
		return sandbox.ErrNotFound
	}
	return nil
}

func (m *memProvider) RunCommand(_ context.Context, id, _ string, _ sandbox.RunOptions) (sandbox.CommandResult, error) {
	if !m.alive(id) {
		return sandbox.CommandResult{}, sandbox.ErrNotFound
	}
	return sandbox.CommandResult{}, nil
}

func (m *memProvider) Host(_ context.Context, id string, port int) (string, error) {
	if !m.alive(id) {
		return "", sandbox.ErrNotFound
	}
	return fmt.Sprintf("%s.preview.local:%d", id, port), nil
}

func (m *memProvider) Kill(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.live[id] {
		return sandbox.ErrNotFound
	}
	delete(m.live, id)
	m.killed = append(m.killed, id)
	return nil
}

func (m *memProvider) alive(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.live[id]
}

type fixture struct {
	service  *Service
	store    *session.Store
	provider *memProvider
	registry *sandbox.Registry
}

func newFixture(t *testing.T, client llm.Client, provider *memProvider) *fixture {
	t.Helper()

	log := logger.NewNop()
	registry := sandbox.NewRegistry()
	orch := orchestrator.New(client, provider, registry, orchestrator.Options{
		SandboxTimeout: time.Minute,
		Port:           3000,
		PollAttempts:   1,
		PollDelay:      time.Millisecond,
	}, log)

	assembler := smartctx.NewAssembler(smartctx.WordCountEstimator{}, smartctx.DefaultInstructions(), log)
	service := NewService(assembler, intent.NewCoarseClassifier(client, log), intent.NewClarifier(client, log), orch, client, hubForTest(), log)

	storage, err := session.NewDiskStorage(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		service:  service,
		store:    session.NewStore("client-1", storage, log),
		provider: provider,
		registry: registry,
	}
}

func hubForTest() *progress.Hub { return progress.NewHub() }

func TestFirstGenerationCreatesSandbox(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, newMemProvider())

	reply, err := f.service.HandleTurn(context.Background(), f.store, "crea una tienda de mascotas", "", nil)
	require.NoError(t, err)

	assert.False(t, reply.IsGenerating)
	assert.Contains(t, reply.Content, "generado exitosamente")
	assert.NotEmpty(t, reply.PreviewURL)
	assert.NotEmpty(t, reply.ProjectID)

	sess := f.store.Session()
	assert.Equal(t, "sb-1", sess.SandboxID)
	// User message plus the generation message.
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, models.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, models.RoleAssistant, sess.Messages[1].Role)
}

func TestFollowUpReusesSandbox(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, newMemProvider())
	ctx := context.Background()

	_, err := f.service.HandleTurn(ctx, f.store, "crea una tienda de mascotas", "", nil)
	require.NoError(t, err)

	reply, err := f.service.HandleTurn(ctx, f.store, "mejora la página con un header naranja", "", nil)
	require.NoError(t, err)

	assert.Contains(t, reply.Content, "modificado exitosamente")
	assert.Equal(t, "sb-1", f.store.SandboxID())
	// No second sandbox was provisioned.
	assert.Equal(t, 1, f.provider.nextID)
}

func TestVaguePromptGetsClarifyingQuestions(t *testing.T) {
	client := &scriptedLLM{clarifyAnswer: "¿Qué tipo de negocio quieres mostrar?"}
	f := newFixture(t, client, newMemProvider())
	ctx := context.Background()

	reply, err := f.service.HandleTurn(ctx, f.store, "crea algo", "", nil)
	require.NoError(t, err)

	assert.Contains(t, reply.Content, "🤔")
	assert.Contains(t, reply.Content, "¿Qué tipo de negocio quieres mostrar?")
	assert.Empty(t, f.store.SandboxID())

	// The answer turn generates without asking again: the 🤔 marker in
	// recent history suppresses the gate.
	reply, err = f.service.HandleTurn(ctx, f.store, "crea una tienda de ropa", "", nil)
	require.NoError(t, err)
	assert.Contains(t, reply.Content, "generado exitosamente")
	assert.Equal(t, "sb-1", f.store.SandboxID())
}

func TestPlainQuestionGetsConversationalReply(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, newMemProvider())

	reply, err := f.service.HandleTurn(context.Background(), f.store, "¿qué puedes hacer por mí?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, "respuesta conversacional", reply.Content)
	assert.Empty(t, f.store.SandboxID())
	assert.Equal(t, 0, f.provider.nextID)
}

func TestConversationCarriesRequestContext(t *testing.T) {
	client := &scriptedLLM{}
	f := newFixture(t, client, newMemProvider())

	reply, err := f.service.HandleTurn(context.Background(), f.store,
		"¿qué puedes hacer por mí?", "Usuario editando un PRD de pedidos", nil)
	require.NoError(t, err)
	assert.Equal(t, "respuesta conversacional", reply.Content)

	require.NotEmpty(t, client.prompts)
	final := client.prompts[len(client.prompts)-1]
	assert.Contains(t, final, "# Contexto Adicional\nUsuario editando un PRD de pedidos")
	assert.Contains(t, final, "# Solicitud del Usuario\n¿qué puedes hacer por mí?")
}

func TestGenerationFailureLandsOnMessage(t *testing.T) {
	provider := newMemProvider()
	provider.createErr = errors.New("no capacity")
	f := newFixture(t, &scriptedLLM{}, provider)

	_, err := f.service.HandleTurn(context.Background(), f.store, "crea una tienda de mascotas", "", nil)
	require.Error(t, err)

	sess := f.store.Session()
	require.Len(t, sess.Messages, 2)
	final := sess.Messages[1]
	assert.False(t, final.IsGenerating)
	assert.Contains(t, final.Content, "Error en la generación")
	assert.Empty(t, sess.SandboxID)
}

func TestNewChatKillsSandboxAfterCapturingID(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, newMemProvider())
	ctx := context.Background()

	_, err := f.service.HandleTurn(ctx, f.store, "crea una tienda de mascotas", "", nil)
	require.NoError(t, err)
	old := f.store.Session().SessionID

	fresh := f.service.NewChat(ctx, f.store)

	assert.NotEqual(t, old, fresh.SessionID)
	assert.Empty(t, fresh.Messages)
	assert.Equal(t, []string{"sb-1"}, f.provider.killed)
	assert.Equal(t, 0, f.registry.Len())
}

func TestNewChatWithoutSandboxJustResets(t *testing.T) {
	f := newFixture(t, &scriptedLLM{}, newMemProvider())

	fresh := f.service.NewChat(context.Background(), f.store)
	assert.NotEmpty(t, fresh.SessionID)
	assert.Empty(t, f.provider.killed)
}

func TestDetectFramework(t *testing.T) {
	assert.Equal(t, "vite", detectFramework("crea una app con vite"))
	assert.Equal(t, "react", detectFramework("hazlo en react"))
	assert.Equal(t, "nextjs", detectFramework("usa react con nextjs"))
	assert.Equal(t, "nextjs", detectFramework("crea una tienda"))
}

func TestEnhancePromptAppendsDocumentSummary(t *testing.T) {
	documents := []models.DocumentContext{
		{FileName: "prd.pdf", ExtractedData: models.ExtractedData{Title: "App de pedidos"}},
		{FileName: "wf.png"},
	}

	enhanced := enhancePrompt("crea la app", documents)
	assert.Contains(t, enhanced, "CONTEXTO DE DOCUMENTOS")
	assert.Contains(t, enhanced, "Documento: prd.pdf - App de pedidos")
	assert.Contains(t, enhanced, "Documento: wf.png - Información extraída")

	assert.Equal(t, "crea la app", enhancePrompt("crea la app", nil))
}
