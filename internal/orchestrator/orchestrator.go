package orchestrator

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/uxforge/uxforge/internal/llm"
	"github.com/uxforge/uxforge/internal/logger"
	"github.com/uxforge/uxforge/internal/sandbox"
)

// Result describes a finished generation.
type Result struct {
	SandboxID   string
	ProjectName string
	PreviewURL  string
	// Modified is true when an existing sandbox was updated in place.
	Modified bool
}

// ProgressFunc receives human-readable stage updates during a
// generation.
type ProgressFunc func(stage, message string)

// Options tunes sandbox lifetime and readiness polling.
type Options struct {
	SandboxTimeout time.Duration
	Port           int
	PollAttempts   int
	PollDelay      time.Duration
}

func DefaultOptions() Options {
	return Options{
		SandboxTimeout: 5 * time.Minute,
		Port:           3000,
		PollAttempts:   30,
		PollDelay:      time.Second,
	}
}

// Orchestrator turns an assembled prompt into a running preview: it
// asks the model for HTML, provisions or reuses a sandbox, serves the
// file and reports the preview URL.
type Orchestrator struct {
	llm      llm.Client
	provider sandbox.Provider
	registry *sandbox.Registry
	opts     Options
	log      *logger.Logger
}

func New(client llm.Client, provider sandbox.Provider, registry *sandbox.Registry, opts Options, log *logger.Logger) *Orchestrator {
	if opts.Port == 0 {
		opts = DefaultOptions()
	}
	return &Orchestrator{
		llm:      client,
		provider: provider,
		registry: registry,
		opts:     opts,
		log:      log,
	}
}

// Generate produces a web app from the assembled prompt. When
// existingSandboxID names a live sandbox, the app is updated in place;
// any modify failure falls back silently to a fresh sandbox, so the
// user always ends up with a working preview or a single error.
func (o *Orchestrator) Generate(ctx context.Context, finalPrompt, rawPrompt, framework, existingSandboxID string, onProgress ProgressFunc) (Result, error) {
	if onProgress == nil {
		onProgress = func(string, string) {}
	}

	onProgress("generating", "Generando aplicación web...")
	html, err := o.generateHTML(ctx, finalPrompt, rawPrompt)
	if err != nil {
		return Result{}, err
	}

	if existingSandboxID != "" {
		result, err := o.modify(ctx, existingSandboxID, rawPrompt, framework, html, onProgress)
		if err == nil {
			return result, nil
		}
		o.log.Warn("modify failed, creating a fresh sandbox",
			"sandboxId", existingSandboxID, "error", err)
		o.registry.Remove(existingSandboxID)
	}

	return o.create(ctx, rawPrompt, framework, html, onProgress)
}

// Modify updates an existing sandbox in place. Unlike Generate it does
// not fall back to a fresh sandbox; callers that need not-found
// semantics get sandbox.ErrNotFound.
func (o *Orchestrator) Modify(ctx context.Context, finalPrompt, rawPrompt, framework, sandboxID string, onProgress ProgressFunc) (Result, error) {
	if onProgress == nil {
		onProgress = func(string, string) {}
	}

	onProgress("generating", "Generando aplicación web...")
	html, err := o.generateHTML(ctx, finalPrompt, rawPrompt)
	if err != nil {
		return Result{}, err
	}
	return o.modify(ctx, sandboxID, rawPrompt, framework, html, onProgress)
}

// generateHTML asks the model for a complete HTML document. A refusal
// becomes the deterministic fallback page instead of an error.
func (o *Orchestrator) generateHTML(ctx context.Context, finalPrompt, rawPrompt string) (string, error) {
	completion, err := o.llm.CompleteText(ctx, finalPrompt, 8192)
	if err != nil {
		return "", fmt.Errorf("code generation failed: %w", err)
	}
	if completion.Refused {
		o.log.Warn("model refused generation, serving fallback page")
		return llm.FallbackHTML(rawPrompt), nil
	}
	return stripCodeFences(completion.Text), nil
}

func (o *Orchestrator) create(ctx context.Context, rawPrompt, framework, html string, onProgress ProgressFunc) (result Result, err error) {
	onProgress("sandbox", "Creando entorno de ejecución...")

	sandboxID, err := o.provider.Create(ctx, framework)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create sandbox: %w", err)
	}

	// A sandbox created this turn must not outlive a failed generation.
	defer func() {
		if err != nil {
			killCtx := context.WithoutCancel(ctx)
			if killErr := o.provider.Kill(killCtx, sandboxID); killErr != nil {
				o.log.Warn("cleanup of failed sandbox did not complete",
					"sandboxId", sandboxID, "error", killErr)
			}
			o.registry.Remove(sandboxID)
		}
	}()

	projectName := ProjectName(rawPrompt, time.Now())
	previewURL, err := o.deploy(ctx, sandboxID, projectName, html, onProgress)
	if err != nil {
		return Result{}, err
	}

	o.registry.Add(sandbox.Entry{
		SandboxID:   sandboxID,
		ProjectName: projectName,
		Framework:   framework,
		PreviewURL:  previewURL,
	})
	o.scheduleExpiry(sandboxID)

	return Result{
		SandboxID:   sandboxID,
		ProjectName: projectName,
		PreviewURL:  previewURL,
	}, nil
}

func (o *Orchestrator) modify(ctx context.Context, sandboxID, rawPrompt, framework, html string, onProgress ProgressFunc) (Result, error) {
	onProgress("sandbox", "Actualizando aplicación existente...")

	// Each modification deploys into a fresh project directory so a
	// broken update never clobbers the one being served.
	projectName := fmt.Sprintf("project-%s", uniqueSuffix(time.Now()))

	// Stop the previous server; nothing to kill is fine.
	if _, err := o.provider.RunCommand(ctx, sandboxID, `pkill -f "python3.*http.server"`, sandbox.RunOptions{
		Timeout: 10 * time.Second,
	}); err != nil {
		if err == sandbox.ErrNotFound {
			return Result{}, err
		}
		o.log.Debug("no previous server process to stop", "sandboxId", sandboxID)
	}

	previewURL, err := o.deploy(ctx, sandboxID, projectName, html, onProgress)
	if err != nil {
		return Result{}, err
	}

	o.registry.Touch(sandboxID)

	return Result{
		SandboxID:   sandboxID,
		ProjectName: projectName,
		PreviewURL:  previewURL,
		Modified:    true,
	}, nil
}

// deploy writes the HTML into a project directory, serves it and waits
// for the server to answer.
func (o *Orchestrator) deploy(ctx context.Context, sandboxID, projectName, html string, onProgress ProgressFunc) (string, error) {
	projectPath := "/home/user/" + projectName

	if _, err := o.provider.RunCommand(ctx, sandboxID, fmt.Sprintf("mkdir -p %s", projectName), sandbox.RunOptions{
		Workdir: "/home/user",
		Timeout: 30 * time.Second,
	}); err != nil {
		return "", fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := o.provider.WriteFile(ctx, sandboxID, projectPath+"/index.html", []byte(html)); err != nil {
		return "", fmt.Errorf("failed to write index.html: %w", err)
	}

	onProgress("serving", "Iniciando servidor de vista previa...")

	serverCommand := fmt.Sprintf("cd %s && python3 -m http.server %d --bind 0.0.0.0", projectPath, o.opts.Port)
	if _, err := o.provider.RunCommand(ctx, sandboxID, serverCommand, sandbox.RunOptions{
		Workdir:    "/home/user",
		Background: true,
	}); err != nil {
		return "", fmt.Errorf("failed to start preview server: %w", err)
	}

	host, err := o.provider.Host(ctx, sandboxID, o.opts.Port)
	if err != nil {
		return "", fmt.Errorf("failed to resolve preview host: %w", err)
	}
	previewURL := "https://" + host

	o.waitForServer(ctx, host)
	onProgress("ready", "¡Aplicación lista!")
	return previewURL, nil
}

// waitForServer polls the preview port. Exhausting the attempts is not
// an error: the URL is still returned and the warning makes the
// degraded case visible in logs.
func (o *Orchestrator) waitForServer(ctx context.Context, host string) {
	for attempt := 0; attempt < o.opts.PollAttempts; attempt++ {
		conn, err := net.DialTimeout("tcp", host, time.Second)
		if err == nil {
			conn.Close()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.opts.PollDelay):
		}
	}
	o.log.Warn("preview server did not answer in time, returning URL optimistically",
		"host", host, "attempts", o.opts.PollAttempts)
}

// scheduleExpiry enforces the sandbox's bounded lifetime. The registry
// entry is dropped when the timer fires even if the kill fails, so the
// sandbox list never reports containers past their lifetime.
func (o *Orchestrator) scheduleExpiry(sandboxID string) {
	if o.opts.SandboxTimeout <= 0 {
		return
	}
	time.AfterFunc(o.opts.SandboxTimeout, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := o.provider.Kill(ctx, sandboxID); err != nil && err != sandbox.ErrNotFound {
			o.log.Warn("failed to expire sandbox", "sandboxId", sandboxID, "error", err)
		}
		o.registry.Remove(sandboxID)
	})
}

// KillSandbox terminates a sandbox and drops it from the registry.
func (o *Orchestrator) KillSandbox(ctx context.Context, sandboxID string) error {
	err := o.provider.Kill(ctx, sandboxID)
	if err != nil && err != sandbox.ErrNotFound {
		return err
	}
	o.registry.Remove(sandboxID)
	return err
}

// stripCodeFences unwraps ```html blocks models sometimes emit despite
// instructions.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```html")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
