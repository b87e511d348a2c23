package sandbox

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/uxforge/uxforge/internal/logger"
)

// frameworkImages routes the requested framework to a container image.
// Unknown frameworks fall back to the default static stack.
var frameworkImages = map[string]string{
	"static": "python:3.12-slim",
	"node":   "node:22-slim",
}

// DockerProvider implements Provider with local Docker containers. Each
// sandbox is one labeled container kept alive by a sleep process;
// commands run through the exec API.
type DockerProvider struct {
	client       *client.Client
	defaultImage string
	port         int
	log          *logger.Logger
}

func NewDockerProvider(defaultImage string, port int, log *logger.Logger) (*DockerProvider, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	return &DockerProvider{
		client:       cli,
		defaultImage: defaultImage,
		port:         port,
		log:          log,
	}, nil
}

func (p *DockerProvider) imageFor(framework string) string {
	if img, ok := frameworkImages[strings.ToLower(framework)]; ok {
		return img
	}
	return p.defaultImage
}

func (p *DockerProvider) Create(ctx context.Context, framework string) (string, error) {
	exposed := nat.Port(fmt.Sprintf("%d/tcp", p.port))

	containerConfig := &container.Config{
		Image: p.imageFor(framework),
		Cmd:   []string{"sleep", "infinity"},
		Labels: map[string]string{
			"managed-by": "uxforge",
			"framework":  framework,
		},
		ExposedPorts: nat.PortSet{exposed: struct{}{}},
		WorkingDir:   "/workspace",
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			exposed: []nat.PortBinding{{HostIP: "0.0.0.0", HostPort: "0"}},
		},
		AutoRemove: false,
	}

	resp, err := p.client.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create sandbox container: %w", err)
	}

	if err := p.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = p.client.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		return "", fmt.Errorf("failed to start sandbox container: %w", err)
	}

	p.log.Info("created sandbox", "sandboxId", resp.ID[:12], "framework", framework)
	return resp.ID, nil
}

func (p *DockerProvider) WriteFile(ctx context.Context, id, filePath string, content []byte) error {
	dir := path.Dir(filePath)
	if dir != "/" && dir != "." {
		if _, err := p.RunCommand(ctx, id, fmt.Sprintf("mkdir -p %s", dir), RunOptions{}); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	header := &tar.Header{
		Name: strings.TrimPrefix(filePath, "/"),
		Mode: 0644,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", filePath, err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", filePath, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", filePath, err)
	}

	if err := p.client.CopyToContainer(ctx, id, "/", &buf, container.CopyToContainerOptions{}); err != nil {
		return p.wrapNotFound(err, fmt.Sprintf("failed to write %s", filePath))
	}
	return nil
}

func (p *DockerProvider) RunCommand(ctx context.Context, id, command string, opts RunOptions) (CommandResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	execConfig := container.ExecOptions{
		Cmd:          []string{"sh", "-c", command},
		WorkingDir:   opts.Workdir,
		AttachStdout: !opts.Background,
		AttachStderr: !opts.Background,
		Detach:       opts.Background,
	}

	execResp, err := p.client.ContainerExecCreate(ctx, id, execConfig)
	if err != nil {
		return CommandResult{}, p.wrapNotFound(err, "failed to create exec")
	}

	if opts.Background {
		if err := p.client.ContainerExecStart(ctx, execResp.ID, container.ExecStartOptions{Detach: true}); err != nil {
			return CommandResult{}, fmt.Errorf("failed to start background command: %w", err)
		}
		return CommandResult{}, nil
	}

	attach, err := p.client.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return CommandResult{}, fmt.Errorf("failed to attach exec: %w", err)
	}
	defer attach.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil && err != io.EOF {
		return CommandResult{}, fmt.Errorf("failed to read command output: %w", err)
	}

	return CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

func (p *DockerProvider) Host(ctx context.Context, id string, port int) (string, error) {
	inspect, err := p.client.ContainerInspect(ctx, id)
	if err != nil {
		return "", p.wrapNotFound(err, "failed to inspect sandbox")
	}

	bindings := inspect.NetworkSettings.Ports[nat.Port(fmt.Sprintf("%d/tcp", port))]
	if len(bindings) == 0 {
		return "", fmt.Errorf("sandbox %s has no binding for port %d", id[:12], port)
	}
	return fmt.Sprintf("localhost:%s", bindings[0].HostPort), nil
}

func (p *DockerProvider) Kill(ctx context.Context, id string) error {
	timeout := 10
	if err := p.client.ContainerStop(ctx, id, container.StopOptions{Timeout: &timeout}); err != nil {
		return p.wrapNotFound(err, "failed to stop sandbox")
	}
	if err := p.client.ContainerRemove(ctx, id, container.RemoveOptions{Force: true}); err != nil {
		return p.wrapNotFound(err, "failed to remove sandbox")
	}
	p.log.Info("killed sandbox", "sandboxId", id[:12])
	return nil
}

// EnsureImage pulls the default image if it is not present locally.
func (p *DockerProvider) EnsureImage(ctx context.Context) error {
	images, err := p.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == p.defaultImage {
				return nil
			}
		}
	}

	reader, err := p.client.ImagePull(ctx, p.defaultImage, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", p.defaultImage, err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}

func (p *DockerProvider) Close() error {
	return p.client.Close()
}

func (p *DockerProvider) wrapNotFound(err error, msg string) error {
	if client.IsErrNotFound(err) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
