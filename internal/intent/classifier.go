package intent

import (
	"time"

	"github.com/uxforge/uxforge/pkg/models"
)

// Recency windows used when keyword hits need supporting session
// evidence before they upgrade the intent.
const (
	documentAnalysisWindow = 30 * time.Minute
	modificationWindow     = 2 * time.Hour
)

// Detect classifies a prompt into one of four intents using keywords
// plus session evidence. The checks run in priority order; a prompt that
// matches none of them is plain conversation.
func Detect(prompt string, messages []models.ChatMessage, documents []models.DocumentContext, now time.Time) models.Intent {
	if containsAny(prompt, documentReferenceKeywords) && hasRecentDocument(documents, now, documentAnalysisWindow) {
		return models.IntentAnalyzeDocument
	}
	if containsAny(prompt, modificationKeywords) && hasRecentPreview(messages, now, modificationWindow) {
		return models.IntentModifyExisting
	}
	if containsAny(prompt, codeGenerationKeywords) {
		return models.IntentGenerateCode
	}
	return models.IntentChat
}

// Confidence scores a classification in [0.5, 1.0]. Keyword density only
// contributes for code generation; fresh documents raise it for every
// intent.
func Confidence(intent models.Intent, prompt string, documents []models.DocumentContext, now time.Time) float64 {
	confidence := 0.5

	if intent == models.IntentGenerateCode {
		confidence += 0.1 * float64(matchCount(prompt, codeGenerationKeywords))
	}
	if len(documents) > 0 {
		confidence += 0.2
		if hasRecentDocument(documents, now, time.Hour) {
			confidence += 0.1
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func hasRecentDocument(documents []models.DocumentContext, now time.Time, window time.Duration) bool {
	for _, doc := range documents {
		if now.Sub(doc.Timestamp) <= window {
			return true
		}
	}
	return false
}

// hasRecentPreview reports whether any recent message carries a preview
// URL, i.e. there is a live generated project to modify.
func hasRecentPreview(messages []models.ChatMessage, now time.Time, window time.Duration) bool {
	for _, msg := range messages {
		if msg.PreviewURL != "" && now.Sub(msg.Timestamp) <= window {
			return true
		}
	}
	return false
}
