package docker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/stdcopy"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

type fakeDockerClient struct {
	mu          sync.Mutex
	nextID      int
	imagePulls  []string
	pullErr     error
	createCalls []containerCreateCall
	removed     []string
	started     []string
	waits       map[string]waitCall
	logs        map[string][]byte
	attach      map[string]types.HijackedResponse
	createHooks []func(string)
	closed      bool
}

type containerCreateCall struct {
	id         string
	config     *container.Config
	hostConfig *container.HostConfig
}

type waitCall struct {
	status *container.WaitResponse
	err    error
	block  bool
}

func newFakeDockerClient() *fakeDockerClient {
	return &fakeDockerClient{
		waits:  make(map[string]waitCall),
		logs:   make(map[string][]byte),
		attach: make(map[string]types.HijackedResponse),
	}
}

func (f *fakeDockerClient) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ImagePull(ctx context.Context, ref string, opts image.PullOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imagePulls = append(f.imagePulls, ref)
	if f.pullErr != nil {
		return nil, f.pullErr
	}
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (f *fakeDockerClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.CreateResponse, error) {
	f.mu.Lock()
	id := fmt.Sprintf("container-%d", f.nextID)
	f.nextID++
	f.createCalls = append(f.createCalls, containerCreateCall{id: id, config: config, hostConfig: hostConfig})
	var hook func(string)
	if len(f.createHooks) > 0 {
		hook = f.createHooks[0]
		f.createHooks = f.createHooks[1:]
	}
	f.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return container.CreateResponse{ID: id}, nil
}

func (f *fakeDockerClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	f.mu.Lock()
	f.removed = append(f.removed, containerID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ContainerAttach(ctx context.Context, containerID string, options container.AttachOptions) (types.HijackedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	resp, ok := f.attach[containerID]
	if !ok {
		return types.HijackedResponse{}, errors.New("attach not configured")
	}
	return resp, nil
}

func (f *fakeDockerClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	f.mu.Lock()
	f.started = append(f.started, containerID)
	f.mu.Unlock()
	return nil
}

func (f *fakeDockerClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	statusCh := make(chan container.WaitResponse, 1)
	errCh := make(chan error, 1)

	f.mu.Lock()
	call := f.waits[containerID]
	f.mu.Unlock()

	switch {
	case call.block:
	case call.err != nil:
		errCh <- call.err
	case call.status != nil:
		statusCh <- *call.status
	default:
		statusCh <- container.WaitResponse{}
	}
	return statusCh, errCh
}

func (f *fakeDockerClient) ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	data := f.logs[containerID]
	f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeDockerClient) setWait(containerID string, call waitCall) {
	f.mu.Lock()
	f.waits[containerID] = call
	f.mu.Unlock()
}

func (f *fakeDockerClient) setLogs(containerID string, stdout, stderr string) {
	var buf bytes.Buffer
	if stdout != "" {
		w := stdcopy.NewStdWriter(&buf, stdcopy.Stdout)
		_, _ = w.Write([]byte(stdout))
	}
	if stderr != "" {
		w := stdcopy.NewStdWriter(&buf, stdcopy.Stderr)
		_, _ = w.Write([]byte(stderr))
	}
	f.mu.Lock()
	f.logs[containerID] = buf.Bytes()
	f.mu.Unlock()
}

func (f *fakeDockerClient) setAttachResponse(containerID string, resp types.HijackedResponse) {
	f.mu.Lock()
	f.attach[containerID] = resp
	f.mu.Unlock()
}

func (f *fakeDockerClient) onCreate(hook func(string)) {
	f.mu.Lock()
	f.createHooks = append(f.createHooks, hook)
	f.mu.Unlock()
}

type fakeConn struct {
	bytes.Buffer
	closed bool
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) CloseWrite() error {
	return c.Close()
}

func (c *fakeConn) LocalAddr() net.Addr              { return fakeAddr("local") }
func (c *fakeConn) RemoteAddr() net.Addr             { return fakeAddr("remote") }
func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

type fakeAddr string

func (a fakeAddr) Network() string { return string(a) }
func (a fakeAddr) String() string  { return string(a) }
