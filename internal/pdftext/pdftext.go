// Package pdftext extracts plain text from PDF documents by shelling out to
// pdftotext (poppler-utils). Page order is preserved, which the question
// extractor depends on.
package pdftext

import (
	"context"
	"fmt"
	"os/exec"
)

// Extract returns the concatenated, page-ordered plain text of the PDF at
// path. The context bounds the subprocess lifetime.
func Extract(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "pdftotext", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return string(output), nil
}
