package sandbox

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an operation references a sandbox the
// provider no longer knows about.
var ErrNotFound = errors.New("sandbox not found")

// RunOptions controls command execution inside a sandbox.
type RunOptions struct {
	// Workdir is the directory the command runs in, container root when
	// empty.
	Workdir string
	// Background detaches the command; Stdout/Stderr are empty.
	Background bool
	// Timeout bounds foreground commands. Zero means the caller's
	// context decides.
	Timeout time.Duration
}

// CommandResult carries the output of a foreground command.
type CommandResult struct {
	Stdout string
	Stderr string
}

// Provider is the sandbox collaborator: an isolated environment with a
// filesystem, a shell and a routable host. The production implementation
// runs Docker containers; tests swap in fakes. Sandbox lifetime is owned
// by the caller, which kills expired sandboxes through Kill.
type Provider interface {
	// Create provisions a sandbox and returns its id.
	Create(ctx context.Context, framework string) (string, error)

	// WriteFile places content at path inside the sandbox, creating
	// parent directories.
	WriteFile(ctx context.Context, id, path string, content []byte) error

	// RunCommand executes a shell command inside the sandbox.
	RunCommand(ctx context.Context, id, command string, opts RunOptions) (CommandResult, error)

	// Host returns the externally reachable host for a port exposed by
	// the sandbox.
	Host(ctx context.Context, id string, port int) (string, error)

	// Kill terminates the sandbox and releases its resources.
	Kill(ctx context.Context, id string) error
}
