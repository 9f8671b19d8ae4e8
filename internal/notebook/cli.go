// Package notebook wraps the external notebooklm command-line tool. The
// notebook service itself is an opaque collaborator; everything here is
// subprocess plumbing and output parsing.
package notebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hualin/docpack/internal/logger"
)

// MaxSourcesPerNotebook is the notebook service's per-notebook source
// limit. Batch sizes are capped here regardless of configuration.
const MaxSourcesPerNotebook = 50

// InfoFileName records created notebooks for later auditing.
const InfoFileName = ".notebooklm_info.json"

const (
	createTimeout = 30 * time.Second
	uploadTimeout = 60 * time.Second
)

var notebookIDPattern = regexp.MustCompile(`[a-f0-9-]{36}`)

// runCommand executes a subprocess and returns its stdout. Swappable in
// tests.
type runCommand func(ctx context.Context, stdin string, name string, args ...string) (string, error)

func execRun(ctx context.Context, stdin string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return stdout.String(), fmt.Errorf("%s: %s", name, msg)
	}
	return stdout.String(), nil
}

// CLI drives the notebooklm binary.
type CLI struct {
	bin      string
	infoPath string
	log      *logger.Logger
	run      runCommand
}

// NewCLI creates a wrapper for the notebooklm binary.
// Parameters:
//   - bin: binary name or path; empty uses "notebooklm".
//   - infoPath: notebook info file location; empty uses InfoFileName.
//   - log: logger; nil uses the default logger.
//
// Returns:
//   - *CLI: wrapper instance.
func NewCLI(bin, infoPath string, log *logger.Logger) *CLI {
	if bin == "" {
		bin = "notebooklm"
	}
	if infoPath == "" {
		infoPath = InfoFileName
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &CLI{bin: bin, infoPath: infoPath, log: log, run: execRun}
}

// BatchName returns the notebook name for a batch: the base name for the
// first batch, "<name> (N)" for later ones.
func BatchName(name string, batchNum int) string {
	if batchNum > 1 {
		return fmt.Sprintf("%s (%d)", name, batchNum)
	}
	return name
}

// Create makes a new notebook and returns its ID parsed from the
// command output. The created notebook is recorded in the info file.
func (c *CLI) Create(ctx context.Context, name string, batchNum int) (string, error) {
	notebookName := BatchName(name, batchNum)

	ctx, cancel := context.WithTimeout(ctx, createTimeout)
	defer cancel()

	out, err := c.run(ctx, "", c.bin, "create", notebookName)
	if err != nil {
		return "", fmt.Errorf("create notebook %q: %w", notebookName, err)
	}

	id := parseNotebookID(out)
	if id == "" {
		return "", fmt.Errorf("create notebook %q: no notebook ID in output", notebookName)
	}

	if err := c.recordNotebook(notebookName, id, batchNum); err != nil {
		c.log.WithError(err).Warn("Could not record notebook info")
	}

	return id, nil
}

// AddSource uploads content as a text source, piped through stdin.
func (c *CLI) AddSource(ctx context.Context, notebookID, title, content string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err := c.run(ctx, content, c.bin,
		"source", "add",
		"-n", notebookID,
		"--type", "text",
		"--title", title,
		"/dev/stdin",
	)
	if err != nil {
		return fmt.Errorf("add source %q: %w", title, err)
	}
	return nil
}

// parseNotebookID pulls the notebook UUID out of the create command's
// output.
func parseNotebookID(output string) string {
	for _, candidate := range notebookIDPattern.FindAllString(strings.ToLower(output), -1) {
		if _, err := uuid.Parse(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// notebookInfo is one entry of the info file, keyed by batch.
type notebookInfo struct {
	NotebookName string `json:"notebook_name"`
	NotebookID   string `json:"notebook_id"`
	CreatedAt    string `json:"created_at"`
}

// recordNotebook merges the created notebook into the info file.
func (c *CLI) recordNotebook(name, id string, batchNum int) error {
	info := map[string]notebookInfo{}
	if data, err := os.ReadFile(c.infoPath); err == nil {
		_ = json.Unmarshal(data, &info)
	}

	info[fmt.Sprintf("batch_%d", batchNum)] = notebookInfo{
		NotebookName: name,
		NotebookID:   id,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notebook info: %w", err)
	}
	if err := os.WriteFile(c.infoPath, data, 0o644); err != nil {
		return fmt.Errorf("write notebook info %s: %w", c.infoPath, err)
	}
	return nil
}
