package orchestrator

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// ProjectName derives a short directory name from the user's prompt:
// first three significant words of the lowercased, alphanumeric-only
// prompt, plus a uniqueness suffix.
func ProjectName(prompt string, now time.Time) string {
	var cleaned strings.Builder
	for _, r := range strings.ToLower(prompt) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			cleaned.WriteRune(r)
		}
	}

	var words []string
	for _, word := range strings.Fields(cleaned.String()) {
		if len(word) > 2 {
			words = append(words, word)
			if len(words) == 3 {
				break
			}
		}
	}

	name := "my-app"
	if len(words) > 0 {
		name = strings.Join(words, "-")
	}
	return fmt.Sprintf("%s-%s", name, uniqueSuffix(now))
}

// uniqueSuffix is the last four digits of the unix-millisecond clock.
func uniqueSuffix(now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	return millis[len(millis)-4:]
}
