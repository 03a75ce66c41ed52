package gfmrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alnah/go-gfmrender/internal/fileutil"
	"github.com/alnah/go-gfmrender/internal/process"
)

// DefaultDiagramCommand is the mermaid CLI binary.
const DefaultDiagramCommand = "mmdc"

// CommandRunner abstracts command execution to enable testing without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec. The command runs in its
// own process group, killed as a whole when ctx ends.
type ExecRunner struct{}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...) // #nosec G204 -- binary and args are built by CommandRenderer
	process.Isolate(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting command: %w", err)
	}

	waitDone := make(chan error, 1)
	go func() { waitDone <- cmd.Wait() }()

	select {
	case err := <-waitDone:
		return stdout.String(), stderr.String(), err
	case <-ctx.Done():
		process.KillProcessGroup(cmd.Process.Pid)
		_ = cmd.Process.Kill()
		<-waitDone
		return stdout.String(), stderr.String(), ctx.Err()
	}
}

// CommandRenderer renders diagrams by invoking the mermaid CLI.
// Each render writes the source to a temp file and reads the SVG back.
type CommandRenderer struct {
	// Command is the binary to run. Empty means DefaultDiagramCommand.
	Command string
	Runner  CommandRunner

	lookPath func(string) (string, error)

	mu       sync.Mutex
	settings DiagramSettings
	ready    bool
}

var _ DiagramRenderer = (*CommandRenderer)(nil)

// NewCommandRenderer creates a CommandRenderer with a real command runner.
func NewCommandRenderer(command string) *CommandRenderer {
	return &CommandRenderer{
		Command:  command,
		Runner:   &ExecRunner{},
		lookPath: exec.LookPath,
	}
}

// Initialize checks the binary is installed and records the settings applied
// to every later render.
func (c *CommandRenderer) Initialize(_ context.Context, settings DiagramSettings) error {
	if c.lookPath != nil {
		if _, err := c.lookPath(c.command()); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCommandNotFound, c.command(), err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	c.ready = true
	return nil
}

// RenderDiagram runs the CLI on source and returns the SVG it wrote.
// id is unused: the CLI assigns its own element ids.
func (c *CommandRenderer) RenderDiagram(ctx context.Context, _ string, source string) (string, error) {
	c.mu.Lock()
	settings, ready := c.settings, c.ready
	c.mu.Unlock()
	if !ready {
		return "", fmt.Errorf("%w: %s used before Initialize", ErrDiagramRender, c.command())
	}

	dir, cleanup, err := fileutil.TempDir()
	if err != nil {
		return "", err
	}
	defer cleanup()

	in := filepath.Join(dir, "diagram.mmd")
	out := filepath.Join(dir, "diagram.svg")
	if err := os.WriteFile(in, []byte(source), 0o600); err != nil {
		return "", fmt.Errorf("writing diagram source: %w", err)
	}

	args := []string{"-i", in, "-o", out, "--quiet"}
	if settings.Theme != "" {
		args = append(args, "-t", settings.Theme)
	}

	_, stderr, err := c.Runner.Run(ctx, c.command(), args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %v", ErrCommandFailed, strings.TrimSpace(stderr), err)
	}

	svg, err := os.ReadFile(out) // #nosec G304 -- path inside our temp dir
	if err != nil {
		return "", fmt.Errorf("%w: reading output: %v", ErrCommandFailed, err)
	}
	return string(svg), nil
}

func (c *CommandRenderer) command() string {
	if c.Command == "" {
		return DefaultDiagramCommand
	}
	return c.Command
}
