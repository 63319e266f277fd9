//go:build integration

package docker

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/client"

	"testsuite/internal/domain/suite"
)

const integrationImage = "alpine:3.20"

func requireDaemon(t *testing.T) {
	t.Helper()
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("docker client unavailable: %v", err)
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		t.Skipf("docker daemon unavailable: %v", err)
	}
}

func TestLauncherAgainstDaemon(t *testing.T) {
	requireDaemon(t)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "data.txt"), []byte("mounted\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	launcher, err := New(Config{Image: integrationImage, MemoryBytes: 64 << 20}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() {
		if err := launcher.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var stdout, stderr bytes.Buffer
	exit, err := launcher.Launch(ctx, suite.Invocation{
		Args:   []string{"sh", "-c", "cat data.txt; cat; echo oops >&2; exit 3"},
		Dir:    root,
		Stdin:  strings.NewReader("from stdin\n"),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if exit.Code != 3 {
		t.Fatalf("expected exit code 3, got %d", exit.Code)
	}
	if got := stdout.String(); got != "mounted\nfrom stdin\n" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if got := stderr.String(); got != "oops\n" {
		t.Fatalf("unexpected stderr %q", got)
	}
}
