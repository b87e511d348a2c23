package api

import (
	"encoding/base64"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/uxforge/uxforge/internal/chat"
	"github.com/uxforge/uxforge/internal/document"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/internal/orchestrator"
	"github.com/uxforge/uxforge/internal/sandbox"
	"github.com/uxforge/uxforge/internal/session"
	"github.com/uxforge/uxforge/internal/smartctx"
	"github.com/uxforge/uxforge/pkg/models"
)

// Handler serves the HTTP surface. It owns no domain state; everything
// is delegated to the injected collaborators.
type Handler struct {
	sessions     *session.Manager
	chat         *chat.Service
	assembler    *smartctx.Assembler
	extractor    *document.Extractor
	orchestrator *orchestrator.Orchestrator
	registry     *sandbox.Registry
	log          *logger.Logger
}

func NewHandler(sessions *session.Manager, chatService *chat.Service, assembler *smartctx.Assembler, extractor *document.Extractor, orch *orchestrator.Orchestrator, registry *sandbox.Registry, log *logger.Logger) *Handler {
	return &Handler{
		sessions:     sessions,
		chat:         chatService,
		assembler:    assembler,
		extractor:    extractor,
		orchestrator: orch,
		registry:     registry,
		log:          log,
	}
}

// clientKey identifies the calling client for session and rate-limit
// scoping.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-Client-ID"); key != "" {
		return key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *Handler) store(r *http.Request) *session.Store {
	return h.sessions.For(clientKey(r))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// HandleChat runs one full chat turn for the client's session.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	message, err := h.chat.HandleTurn(r.Context(), h.store(r), req.Message, req.Context, nil)
	if err != nil {
		if err == chat.ErrGenerationBusy {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Success:  true,
		Response: message.Content,
	})
}

// HandleNewChat resets the client's session and kills its sandbox.
func (h *Handler) HandleNewChat(w http.ResponseWriter, r *http.Request) {
	fresh := h.chat.NewChat(r.Context(), h.store(r))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"sessionId": fresh.SessionID,
	})
}

// HandleAnalyzeDocument answers a question about pasted document text.
func (h *Handler) HandleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileContent == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "fileContent and prompt are required")
		return
	}

	analysis, err := h.chat.AnalyzeDocument(r.Context(), h.store(r), req.FileName, req.FileContent, req.Prompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.AnalyzeDocumentResponse{
		Success:  true,
		Analysis: analysis,
		FileName: req.FileName,
	})
}

// HandleProcessDocument runs structured extraction over an uploaded
// file and registers it in the client's session.
func (h *Handler) HandleProcessDocument(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FileData == "" || req.FileName == "" {
		writeError(w, http.StatusBadRequest, "fileData and fileName are required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		writeError(w, http.StatusBadRequest, "fileData must be valid base64")
		return
	}

	doc, err := h.extractor.Extract(r.Context(), req.FileName, req.MimeType, data, req.CustomPrompt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc = h.store(r).AddDocument(doc)

	writeJSON(w, http.StatusOK, models.ProcessDocumentResponse{
		Success:       true,
		ExtractedData: doc.ExtractedData,
		DocumentID:    doc.DocumentID,
		FileName:      doc.FileName,
	})
}

// HandleGeminiChat answers a stateless chat request with explicit
// context and history.
func (h *Handler) HandleGeminiChat(w http.ResponseWriter, r *http.Request) {
	var req models.GeminiChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	response, err := h.chat.Reply(r.Context(), req.Message, req.Context, req.ConversationHistory)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Success:  true,
		Response: response,
	})
}

// HandleGenerate creates a fresh sandbox from a prompt.
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	smart := h.assembler.BuildWithIntent(models.IntentGenerateCode, req.Prompt, nil, nil, time.Now())
	result, err := h.orchestrator.Generate(r.Context(), smart.FinalPrompt, req.Prompt, req.Framework, "", nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{
		Success:     true,
		SandboxID:   result.SandboxID,
		ProjectName: result.ProjectName,
		Framework:   req.Framework,
		PreviewURL:  result.PreviewURL,
	})
}

// HandleModify regenerates the app inside an existing sandbox.
func (h *Handler) HandleModify(w http.ResponseWriter, r *http.Request) {
	sandboxID := mux.Vars(r)["sandboxId"]

	var req models.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	smart := h.assembler.BuildWithIntent(models.IntentModifyExisting, req.Prompt, nil, nil, time.Now())
	result, err := h.orchestrator.Modify(r.Context(), smart.FinalPrompt, req.Prompt, req.Framework, sandboxID, nil)
	if err != nil {
		if err == sandbox.ErrNotFound {
			writeError(w, http.StatusNotFound, "Sandbox not found or expired")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateResponse{
		Success:     true,
		SandboxID:   result.SandboxID,
		ProjectName: result.ProjectName,
		Framework:   req.Framework,
		PreviewURL:  result.PreviewURL,
		Modified:    true,
	})
}

// HandleListSandboxes lists live sandboxes.
func (h *Handler) HandleListSandboxes(w http.ResponseWriter, r *http.Request) {
	entries := h.registry.List()
	sandboxes := make([]models.SandboxInfo, 0, len(entries))
	for _, entry := range entries {
		sandboxes = append(sandboxes, models.SandboxInfo{
			SandboxID: entry.SandboxID,
			Status:    "active",
		})
	}

	writeJSON(w, http.StatusOK, models.SandboxListResponse{
		Success:   true,
		Sandboxes: sandboxes,
		Count:     len(sandboxes),
	})
}

// HandleKillSandbox terminates a sandbox.
func (h *Handler) HandleKillSandbox(w http.ResponseWriter, r *http.Request) {
	sandboxID := mux.Vars(r)["sandboxId"]

	if err := h.orchestrator.KillSandbox(r.Context(), sandboxID); err != nil {
		if err == sandbox.ErrNotFound {
			writeError(w, http.StatusNotFound, "Sandbox not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Sandbox terminated successfully",
	})
}

// HandleHealth reports liveness and the live sandbox count.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:          "healthy",
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		ActiveSandboxes: h.registry.Len(),
	})
}
