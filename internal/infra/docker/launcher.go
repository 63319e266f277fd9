// Package docker runs the program under test inside a Docker container with
// the suite root bind-mounted as the working directory.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"testsuite/internal/domain/suite"
	"testsuite/internal/logging"
	"testsuite/internal/ports"
)

// DefaultWorkdir is where the suite root is mounted inside the container.
const DefaultWorkdir = "/suite"

// Config describes the container the program under test runs in.
type Config struct {
	Image   string
	Workdir string
	// SkipPull uses the local image without contacting a registry.
	SkipPull bool
	// MemoryBytes caps container memory and swap. Zero means unlimited.
	MemoryBytes int64
	// NanoCPUs is the CPU quota in units of 1e-9 CPUs. Zero means unlimited.
	NanoCPUs int64
}

// resources converts the limits into a container resource set. Negative
// limits are treated as unset.
func (c Config) resources() container.Resources {
	var res container.Resources
	if c.MemoryBytes > 0 {
		res.Memory = c.MemoryBytes
		res.MemorySwap = c.MemoryBytes
	}
	if c.NanoCPUs > 0 {
		res.NanoCPUs = c.NanoCPUs
	}
	return res
}

// Launcher implements ports.Launcher on top of the Docker engine API.
type Launcher struct {
	cli    dockerClient
	cfg    Config
	logger *slog.Logger

	pullOnce sync.Once
	pullErr  error
}

// ensure Launcher implements ports.Launcher.
var _ ports.Launcher = (*Launcher)(nil)

// New connects to the Docker daemon described by the environment.
func New(cfg Config, logger *slog.Logger) (*Launcher, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker launcher: create client: %w", err)
	}

	launcher, err := newLauncherWithClient(cli, cfg, logger)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return launcher, nil
}

func newLauncherWithClient(cli dockerClient, cfg Config, logger *slog.Logger) (*Launcher, error) {
	if cfg.Image == "" {
		return nil, fmt.Errorf("docker launcher: missing image configuration")
	}
	if cfg.Workdir == "" {
		cfg.Workdir = DefaultWorkdir
	}
	return &Launcher{
		cli:    cli,
		cfg:    cfg,
		logger: logging.OrDiscard(logger),
	}, nil
}

// Close releases the Docker client.
func (l *Launcher) Close() error {
	if l.cli == nil {
		return nil
	}
	return l.cli.Close()
}

// Launch runs inv in a fresh container and waits for it to exit.
func (l *Launcher) Launch(ctx context.Context, inv suite.Invocation) (suite.Exit, error) {
	if len(inv.Args) == 0 || inv.Args[0] == "" {
		return suite.Exit{}, fmt.Errorf("docker launcher: empty command")
	}
	if err := l.ensureImage(ctx); err != nil {
		return suite.Exit{}, err
	}

	root, err := filepath.Abs(inv.Dir)
	if err != nil {
		return suite.Exit{}, fmt.Errorf("docker launcher: resolve suite root: %w", err)
	}

	attachStdin := inv.Stdin != nil
	containerID, cleanup, err := l.createContainer(ctx, root, inv.Args, attachStdin)
	if err != nil {
		return suite.Exit{}, err
	}
	defer cleanup()

	var attach types.HijackedResponse
	if attachStdin {
		attach, err = l.cli.ContainerAttach(ctx, containerID, container.AttachOptions{
			Stream: true,
			Stdin:  true,
		})
		if err != nil {
			return suite.Exit{}, fmt.Errorf("attach container: %w", err)
		}
		defer attach.Close()
	}

	l.logger.Debug("starting container", "id", containerID, "image", l.cfg.Image, "args", inv.Args)

	start := time.Now()
	if err := l.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return suite.Exit{}, fmt.Errorf("start container: %w", err)
	}

	if attachStdin && attach.Conn != nil {
		if _, err := io.Copy(attach.Conn, inv.Stdin); err != nil {
			return suite.Exit{}, fmt.Errorf("write stdin: %w", err)
		}
		if closer, ok := attach.Conn.(interface{ CloseWrite() error }); ok {
			_ = closer.CloseWrite()
		}
	}

	status, err := l.waitForExit(ctx, containerID)
	if err != nil {
		return suite.Exit{}, err
	}
	elapsed := time.Since(start)

	if err := l.copyLogs(ctx, containerID, inv.Stdout, inv.Stderr); err != nil {
		return suite.Exit{}, fmt.Errorf("fetch logs: %w", err)
	}

	l.logger.Debug("container exited", "id", containerID, "code", status.StatusCode, "elapsed", elapsed)
	return suite.Exit{Code: int(status.StatusCode), Duration: elapsed}, nil
}

func (l *Launcher) ensureImage(ctx context.Context) error {
	if l.cfg.SkipPull {
		return nil
	}
	l.pullOnce.Do(func() {
		l.logger.Info("pulling image", "image", l.cfg.Image)
		reader, err := l.cli.ImagePull(ctx, l.cfg.Image, image.PullOptions{})
		if err != nil {
			l.pullErr = fmt.Errorf("pull image %s: %w", l.cfg.Image, err)
			return
		}
		defer reader.Close()
		if _, err := io.Copy(io.Discard, reader); err != nil {
			l.pullErr = fmt.Errorf("consume pull output for %s: %w", l.cfg.Image, err)
		}
	})
	return l.pullErr
}

func (l *Launcher) createContainer(ctx context.Context, root string, cmd []string, attachStdin bool) (string, func(), error) {
	resp, err := l.cli.ContainerCreate(
		ctx,
		&container.Config{
			Image:        l.cfg.Image,
			Cmd:          cmd,
			AttachStdout: true,
			AttachStderr: true,
			AttachStdin:  attachStdin,
			OpenStdin:    attachStdin,
			StdinOnce:    attachStdin,
			WorkingDir:   l.cfg.Workdir,
		},
		&container.HostConfig{
			Binds:     []string{root + ":" + l.cfg.Workdir},
			Resources: l.cfg.resources(),
		},
		nil,
		nil,
		"",
	)
	if err != nil {
		return "", nil, fmt.Errorf("create container: %w", err)
	}

	cleanup := func() {
		_ = l.cli.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}
	return resp.ID, cleanup, nil
}

func (l *Launcher) waitForExit(ctx context.Context, containerID string) (*container.WaitResponse, error) {
	statusCh, errCh := l.cli.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case status := <-statusCh:
		if status.Error != nil {
			return nil, fmt.Errorf("container error: %s", status.Error.Message)
		}
		return &status, nil
	case err := <-errCh:
		return nil, fmt.Errorf("wait for container: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("wait for container: %w", ctx.Err())
	}
}

func (l *Launcher) copyLogs(ctx context.Context, containerID string, stdout, stderr io.Writer) error {
	logs, err := l.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return err
	}
	defer logs.Close()

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
