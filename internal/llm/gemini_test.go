package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallContextAppliesConfiguredTimeout(t *testing.T) {
	g := &GeminiClient{timeout: 30 * time.Second}

	ctx, cancel := g.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Second), deadline, time.Second)
}

func TestCallContextZeroTimeoutPassesThrough(t *testing.T) {
	g := &GeminiClient{}

	ctx, cancel := g.callContext(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestCallContextKeepsTighterCallerDeadline(t *testing.T) {
	g := &GeminiClient{timeout: time.Hour}

	parent, parentCancel := context.WithTimeout(context.Background(), time.Second)
	defer parentCancel()

	ctx, cancel := g.callContext(parent)
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestLooksLikeRefusal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty reply", "", true},
		{"english refusal", "I cannot create that page.", true},
		{"spanish refusal", "No puedo generar ese contenido.", true},
		{"normal html", "<!DOCTYPE html><html></html>", false},
		{"refusal phrase mid-text is fine", "El botón dice \"no puedo esperar\".", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksLikeRefusal(tt.text))
		})
	}
}
