// Package ocr extracts text from slip photos by shelling out to the
// tesseract binary. The engine is defined as an interface so the service
// layer can be tested without tesseract installed.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/alanyoungcy/slipscan/internal/domain"
)

// Engine turns an image into raw text.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Config holds parameters for the tesseract CLI engine.
type Config struct {
	// Binary is the tesseract executable name or path.
	Binary string
	// Language is the trained-data language code, e.g. "eng".
	Language string
	// CharWhitelist restricts recognition to the given characters. Empty
	// means no restriction.
	CharWhitelist string
	// Timeout bounds a single tesseract invocation.
	Timeout time.Duration
}

// Tesseract implements Engine using the external tesseract binary.
type Tesseract struct {
	cfg Config
}

// NewTesseract creates a Tesseract engine. Missing fields get conservative
// defaults.
func NewTesseract(cfg Config) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Tesseract{cfg: cfg}
}

// sparseThreshold is the output length below which the uniform-block pass is
// considered to have missed the text and the sparse pass is attempted.
const sparseThreshold = 10

// Recognize runs tesseract over the image. Slips are mostly uniform blocks
// of text, so page segmentation mode 6 runs first; if it comes back nearly
// empty the sparse-text mode 11 is tried, which copes better with busy
// backgrounds and scattered labels.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	text, err := t.run(ctx, image, "6")
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) >= sparseThreshold {
		return text, nil
	}

	sparse, err := t.run(ctx, image, "11")
	if err != nil {
		// The first pass succeeded; its output stands.
		return text, nil
	}
	if len(strings.TrimSpace(sparse)) > len(strings.TrimSpace(text)) {
		return sparse, nil
	}
	return text, nil
}

// run executes one tesseract pass with the given page segmentation mode,
// feeding the image on stdin and reading text from stdout.
func (t *Tesseract) run(ctx context.Context, image []byte, psm string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	args := []string{"stdin", "stdout", "-l", t.cfg.Language, "--psm", psm}
	if t.cfg.CharWhitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+t.cfg.CharWhitelist)
	}

	cmd := exec.CommandContext(ctx, t.cfg.Binary, args...)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ocr: tesseract psm %s: %w: %v", psm, domain.ErrOCRFailed, ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("ocr: tesseract psm %s: %w: %s", psm, domain.ErrOCRFailed, msg)
	}

	return stdout.String(), nil
}

// Available reports whether the configured binary can be found on PATH. Used
// at startup to fail fast with a clear message instead of erroring on the
// first upload.
func (t *Tesseract) Available() error {
	if _, err := exec.LookPath(t.cfg.Binary); err != nil {
		if t.cfg.Binary != "tesseract" {
			if _, statErr := os.Stat(t.cfg.Binary); statErr == nil {
				return nil
			}
		}
		return fmt.Errorf("ocr: tesseract binary %q not found: %w", t.cfg.Binary, err)
	}
	return nil
}
