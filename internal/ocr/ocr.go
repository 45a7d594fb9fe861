// Package ocr extracts text from scanned PDFs by rasterizing each page with
// pdftoppm and running tesseract over the page images.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lawdesk/internal/logger"

	"go.uber.org/zap"
)

// DefaultDPI is the rasterization resolution used when none is configured.
const DefaultDPI = 600

// ErrExtract wraps every failure to turn a PDF into text.
var ErrExtract = errors.New("ocr extract")

// RunFunc runs an external command and returns its stdout.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

type Extractor struct {
	dpi       int
	pdftoppm  string
	tesseract string
	run       RunFunc
}

type Option func(*Extractor)

// WithDPI sets the rasterization resolution. Non-positive values are ignored.
func WithDPI(dpi int) Option {
	return func(e *Extractor) {
		if dpi > 0 {
			e.dpi = dpi
		}
	}
}

// WithBinaries overrides the pdftoppm and tesseract executables. Empty
// values keep the defaults.
func WithBinaries(pdftoppm, tesseract string) Option {
	return func(e *Extractor) {
		if pdftoppm != "" {
			e.pdftoppm = pdftoppm
		}
		if tesseract != "" {
			e.tesseract = tesseract
		}
	}
}

func WithRunner(run RunFunc) Option {
	return func(e *Extractor) { e.run = run }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		dpi:       DefaultDPI,
		pdftoppm:  "pdftoppm",
		tesseract: "tesseract",
		run:       execRun,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractPDF OCRs every page of pdf in page order. Each page's text is
// followed by a newline.
func (e *Extractor) ExtractPDF(ctx context.Context, pdf io.Reader) (string, error) {
	dir, err := os.MkdirTemp("", "lawdesk-ocr-")
	if err != nil {
		return "", fmt.Errorf("%w: temp dir: %w", ErrExtract, err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	f, err := os.Create(input)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if _, err := io.Copy(f, pdf); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: write pdf: %w", ErrExtract, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	return e.extract(ctx, input, dir)
}

// ExtractFile OCRs the PDF at path.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "lawdesk-ocr-")
	if err != nil {
		return "", fmt.Errorf("%w: temp dir: %w", ErrExtract, err)
	}
	defer os.RemoveAll(dir)
	return e.extract(ctx, path, dir)
}

func (e *Extractor) extract(ctx context.Context, input, dir string) (string, error) {
	prefix := filepath.Join(dir, "page")
	if _, err := e.run(ctx, e.pdftoppm, "-r", strconv.Itoa(e.dpi), "-png", input, prefix); err != nil {
		return "", fmt.Errorf("%w: rasterize: %w", ErrExtract, err)
	}
	pages, err := pageImages(prefix)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: no pages rendered", ErrExtract)
	}

	var b strings.Builder
	for i, img := range pages {
		out, err := e.run(ctx, e.tesseract, img, "stdout")
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrExtract, i+1, err)
		}
		b.Write(out)
		b.WriteByte('\n')
	}
	logger.Logger.Debug("ocr complete", zap.String("file", input), zap.Int("pages", len(pages)))
	return b.String(), nil
}

// pageImages lists the images pdftoppm wrote for prefix ordered by page
// number. pdftoppm zero-pads the number to the width of the page count, so
// lexical order is not enough.
func pageImages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".png")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

// ExtractFiles OCRs each existing .pdf in paths. Other paths are skipped.
// Files that fail are left out of the result and reported in the joined
// error.
func (e *Extractor) ExtractFiles(ctx context.Context, paths []string) (map[string]string, error) {
	results := make(map[string]string, len(paths))
	var errs []error
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), ".pdf") {
			continue
		}
		if info, err := os.Stat(p); err != nil || info.IsDir() {
			continue
		}
		text, err := e.ExtractFile(ctx, p)
		if err != nil {
			logger.Logger.Warn("ocr failed", zap.String("file", p), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		results[p] = text
	}
	return results, errors.Join(errs...)
}
