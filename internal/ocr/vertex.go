package ocr

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/Lllllllleong/translatorbot/internal/gcp"
)

// formats Gemini accepts as inline image data without conversion.
var geminiFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
}

// VertexEngine runs OCR through a Gemini model on Vertex AI.
type VertexEngine struct {
	model *genai.GenerativeModel
}

// NewVertexEngine uses the OCR model pre-configured on the Vertex client.
func NewVertexEngine(client *gcp.VertexClient) *VertexEngine {
	return &VertexEngine{model: client.OCRModel}
}

func (e *VertexEngine) Recognize(ctx context.Context, img *Image) (string, error) {
	format, data := img.Format, img.Data
	if !geminiFormats[format] {
		pngData, err := img.PNG()
		if err != nil {
			return "", err
		}
		format, data = "png", pngData
	}

	resp, err := e.model.GenerateContent(ctx, genai.ImageData(format, data), genai.Text(gcp.OCRUserPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate OCR content from gemini: %w", err)
	}
	return extractText(resp), nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	text := strings.TrimSpace(sb.String())
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
