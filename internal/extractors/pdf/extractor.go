// Package pdf extracts text from PDF files using the pdftotext tool from poppler.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/novelcheck/internal/core/domain"
	"github.com/custodia-labs/novelcheck/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// toolName is the external binary used for extraction.
const toolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// Extractor runs pdftotext in layout mode and returns its output.
type Extractor struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates an extractor that runs the installed pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}, lookPath: exec.LookPath}
}

// NewWithRunner creates an extractor that delegates to runner.
// The tool lookup is skipped since runner decides how to execute it.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{
		runner:   runner,
		lookPath: func(name string) (string, error) { return name, nil },
	}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns how to install pdftotext on common platforms.
func InstallInstructions() string {
	return "pdftotext is part of poppler. Install it with:\n" +
		"  macOS:         brew install poppler\n" +
		"  Debian/Ubuntu: apt install poppler-utils\n" +
		"  Fedora:        dnf install poppler-utils"
}

// Extract returns the text of the PDF at path.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrIO, path, err)
	}

	bin, err := e.lookPath(toolName)
	if err != nil {
		return "", fmt.Errorf("%w: %w\n%s", domain.ErrExtraction, ErrPDFToolNotFound, InstallInstructions())
	}

	out, err := e.runner.Run(ctx, bin, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("%w: pdftotext failed on %s: %w", domain.ErrExtraction, path, err)
	}

	// Form feeds separate pages.
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}
