package models

// ContextType selects which token-budget configuration governs a turn.
type ContextType string

const (
	ContextCodeGeneration   ContextType = "code_generation"
	ContextConversation     ContextType = "conversation"
	ContextDocumentAnalysis ContextType = "document_analysis"
)

// Intent is the classified purpose of an incoming user message.
type Intent string

const (
	IntentGenerateCode    Intent = "generate_code"
	IntentModifyExisting  Intent = "modify_existing"
	IntentChat            Intent = "chat"
	IntentAnalyzeDocument Intent = "analyze_document"
)

// ContextConfig is the static token budget for one context type.
type ContextConfig struct {
	MaxDocumentTokens          int
	MaxChatTokens              int
	MaxTotalTokens             int
	SlidingWindowSize          int
	IncludeDocuments           bool
	IncludeChatHistory         bool
	DocumentRelevanceThreshold float64 // hours
}

// SmartContext is the assembled, token-bounded prompt for one turn.
// It is recomputed per turn and never persisted.
type SmartContext struct {
	Type          ContextType
	Intent        Intent
	FinalPrompt   string
	TokenCount    int
	DocumentsUsed []DocumentContext
	MessagesUsed  []ChatMessage
	Confidence    float64
}
