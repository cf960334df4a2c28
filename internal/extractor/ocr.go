package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// IsOCRAvailable reports whether pdftoppm and tesseract are both installed.
func IsOCRAvailable() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// extractWithOCR renders each page to an image with pdftoppm and reads it
// back with Tesseract. It handles scanned statements without a text layer.
func extractWithOCR(ctx context.Context, path string) (Pages, error) {
	if !IsOCRAvailable() {
		return nil, fmt.Errorf("OCR requires pdftoppm (poppler-utils) and tesseract (tesseract-ocr)")
	}

	tmpDir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	if out, err := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", path, prefix).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(filepath.Join(tmpDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("listing page images: %w", err)
	}
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}

	var pages Pages
	for _, img := range images {
		// PSM 4: a single column of text of variable sizes.
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", "eng", "--psm", "4").Output()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("tesseract produced no text from %d page images", len(images))
	}
	return pages, nil
}
