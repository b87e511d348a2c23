package models

// Request/response payloads for the HTTP surface. Error responses share
// the {success:false, error} envelope across all endpoints.

type ChatRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}

type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

type AnalyzeDocumentRequest struct {
	FileContent string `json:"fileContent"`
	FileName    string `json:"fileName"`
	Prompt      string `json:"prompt"`
}

type AnalyzeDocumentResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis,omitempty"`
	FileName string `json:"fileName,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ProcessDocumentRequest struct {
	FileData     string `json:"fileData"` // base64
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

type ProcessDocumentResponse struct {
	Success       bool          `json:"success"`
	ExtractedData ExtractedData `json:"extractedData,omitempty"`
	DocumentID    string        `json:"documentId,omitempty"`
	FileName      string        `json:"fileName,omitempty"`
	Error         string        `json:"error,omitempty"`
}

type ConversationEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type GeminiChatRequest struct {
	Message             string              `json:"message"`
	Context             string              `json:"context,omitempty"`
	ConversationHistory []ConversationEntry `json:"conversationHistory,omitempty"`
}

type GenerateRequest struct {
	Prompt    string `json:"prompt"`
	Framework string `json:"framework,omitempty"`
}

type GenerateResponse struct {
	Success     bool   `json:"success"`
	SandboxID   string `json:"sandboxId,omitempty"`
	ProjectName string `json:"projectName,omitempty"`
	Framework   string `json:"framework,omitempty"`
	PreviewURL  string `json:"previewUrl,omitempty"`
	Modified    bool   `json:"modified,omitempty"`
	Error       string `json:"error,omitempty"`
}

type SandboxInfo struct {
	SandboxID string `json:"sandboxId"`
	Status    string `json:"status"`
}

type SandboxListResponse struct {
	Success   bool          `json:"success"`
	Sandboxes []SandboxInfo `json:"sandboxes"`
	Count     int           `json:"count"`
}

type HealthResponse struct {
	Status          string `json:"status"`
	Timestamp       string `json:"timestamp"`
	ActiveSandboxes int    `json:"activeSandboxes"`
}
