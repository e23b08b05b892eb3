package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// CLI runs av commands against a temp directory in tests.
type CLI struct {
	t   *testing.T
	Dir string
	Env map[string]string
}

// NewCLI creates a test CLI with its own temp directory and empty environment.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{
		t:   t,
		Dir: t.TempDir(),
		Env: map[string]string{},
	}
}

// Run executes av with args and returns stdout, stderr and the exit code.
// "av" and "--cwd" are added automatically.
func (c *CLI) Run(args ...string) (string, string, int) {
	return c.RunWithInput("", args...)
}

// RunWithInput is Run with stdin. stdin must be a string or io.Reader.
func (c *CLI) RunWithInput(stdin any, args ...string) (string, string, int) {
	var inReader io.Reader

	switch v := stdin.(type) {
	case string:
		inReader = strings.NewReader(v)
	case io.Reader:
		inReader = v
	default:
		panic(fmt.Sprintf("stdin must be string or io.Reader, got %T", stdin))
	}

	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"av", "--cwd", c.Dir}, args...)
	code := Run(inReader, &outBuf, &errBuf, fullArgs, c.Env, nil)

	return outBuf.String(), errBuf.String(), code
}

// MustRun fails the test on a non-zero exit. Returns trimmed stdout.
func (c *CLI) MustRun(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustRunWithInput is MustRun with stdin.
func (c *CLI) MustRunWithInput(stdin any, args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.RunWithInput(stdin, args...)
	if code != 0 {
		c.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail fails the test if the command succeeds or writes to stdout.
// Returns trimmed stderr.
func (c *CLI) MustFail(args ...string) string {
	c.t.Helper()

	stdout, stderr, code := c.Run(args...)
	if code == 0 {
		c.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	if stdout != "" {
		c.t.Fatalf("command %v failed but stdout should be empty\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// BirdDir returns the default bird directory.
func (c *CLI) BirdDir() string {
	return filepath.Join(c.Dir, ".birds")
}

// ReadBird returns the content of a bird file.
func (c *CLI) ReadBird(id string) string {
	c.t.Helper()

	content, err := os.ReadFile(filepath.Join(c.BirdDir(), id+".md"))
	if err != nil {
		c.t.Fatalf("failed to read bird %s: %v", id, err)
	}

	return string(content)
}

// WriteBird writes raw content to a bird file, creating the directory.
func (c *CLI) WriteBird(id, content string) {
	c.t.Helper()

	err := os.MkdirAll(c.BirdDir(), 0o750)
	if err != nil {
		c.t.Fatalf("failed to create bird dir: %v", err)
	}

	err = os.WriteFile(filepath.Join(c.BirdDir(), id+".md"), []byte(content), 0o600)
	if err != nil {
		c.t.Fatalf("failed to write bird %s: %v", id, err)
	}
}

// AssertContains fails the test if content doesn't contain substr.
func AssertContains(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}

// AssertNotContains fails the test if content contains substr.
func AssertNotContains(t *testing.T, content, substr string) {
	t.Helper()

	if strings.Contains(content, substr) {
		t.Errorf("content should NOT contain %q\ncontent:\n%s", substr, content)
	}
}
