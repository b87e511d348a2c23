package smartctx

import "github.com/uxforge/uxforge/pkg/models"

// DefaultConfigs are the per-context token budgets. The numbers are
// sized for a 128k-context model: code generation gets the whole budget
// for documents and instructions, conversation keeps a long memory, and
// document analysis favors fresh uploads.
func DefaultConfigs() map[models.ContextType]models.ContextConfig {
	return map[models.ContextType]models.ContextConfig{
		models.ContextCodeGeneration: {
			MaxDocumentTokens:          80000,
			MaxChatTokens:              0,
			MaxTotalTokens:             100000,
			SlidingWindowSize:          0,
			IncludeDocuments:           true,
			IncludeChatHistory:         false,
			DocumentRelevanceThreshold: 24,
		},
		models.ContextConversation: {
			MaxDocumentTokens:          30000,
			MaxChatTokens:              40000,
			MaxTotalTokens:             80000,
			SlidingWindowSize:          20,
			IncludeDocuments:           true,
			IncludeChatHistory:         true,
			DocumentRelevanceThreshold: 48,
		},
		models.ContextDocumentAnalysis: {
			MaxDocumentTokens:          70000,
			MaxChatTokens:              20000,
			MaxTotalTokens:             100000,
			SlidingWindowSize:          10,
			IncludeDocuments:           true,
			IncludeChatHistory:         true,
			DocumentRelevanceThreshold: 2,
		},
	}
}

// ContextTypeFor maps an intent to the context configuration family it
// draws budgets from.
func ContextTypeFor(intent models.Intent) models.ContextType {
	switch intent {
	case models.IntentGenerateCode, models.IntentModifyExisting:
		return models.ContextCodeGeneration
	case models.IntentAnalyzeDocument:
		return models.ContextDocumentAnalysis
	default:
		return models.ContextConversation
	}
}
