package ocr

import (
	"context"
	"regexp"
	"strings"
)

// Engine recovers the text visible in an image. An image without text yields
// an empty string and no error.
type Engine interface {
	Recognize(ctx context.Context, img *Image) (string, error)
}

var blankLines = regexp.MustCompile(`\n{2,}`)

// NormalizeText collapses every run of consecutive newlines into one.
func NormalizeText(text string) string {
	return blankLines.ReplaceAllString(text, "\n")
}

// IsBlank reports whether normalized OCR output carries no text.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
