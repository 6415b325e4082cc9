package loader

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/contexta-ai/contexta/internal/core"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFLoader extracts text from PDF files by shelling out to pdftotext.
type PDFLoader struct {
	runner CommandRunner
}

// NewPDFLoader returns a PDF loader. A nil runner uses os/exec.
func NewPDFLoader(runner CommandRunner) *PDFLoader {
	if runner == nil {
		runner = execRunner{}
	}
	return &PDFLoader{runner: runner}
}

// Load runs pdftotext on the file and returns the extracted text.
func (l *PDFLoader) Load(ctx context.Context, filePath string) (string, error) {
	if err := statFile(filePath); err != nil {
		return "", err
	}

	out, err := l.runner.Run(ctx, "pdftotext", filePath, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: pdftotext is not installed", core.ErrNotImplemented)
		}
		return "", fmt.Errorf("%w: pdftotext failed on %s: %v", core.ErrUpstream, filePath, err)
	}
	return string(out), nil
}

// DocxLoader is a recognized format without an implementation yet.
type DocxLoader struct{}

// Load always reports the format as not implemented.
func (l *DocxLoader) Load(ctx context.Context, filePath string) (string, error) {
	return "", fmt.Errorf("%w: DOCX loading not yet implemented", core.ErrNotImplemented)
}
