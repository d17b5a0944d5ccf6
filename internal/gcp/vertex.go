package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
)

// --- OCR Model Prompts ---
const OCRSystemPrompt = "You are an optical character recognition engine. You transcribe the text visible in an image exactly as written, in its original language. You never translate, summarize, or describe the image."
const OCRUserPrompt = `Transcribe all text visible in the attached image.

Rules:
1. Output only the transcribed text, with no preamble, commentary, or code fences.
2. Keep the original language and spelling. Do not translate.
3. Keep line breaks where the image has separate lines.
4. If the image contains no text, output nothing at all.`

// VertexClient holds the pre-configured generative models used by the bot.
type VertexClient struct {
	OCRModel   *genai.GenerativeModel
	baseClient *genai.Client
}

// NewVertexClient creates a new client holding the OCR model.
func NewVertexClient(ctx context.Context, projectID, region, ocrModelName string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	ocrModel := baseClient.GenerativeModel(ocrModelName)
	ocrModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(OCRSystemPrompt)},
	}
	// Deterministic transcription.
	ocrModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}
	ocrModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		OCRModel:   ocrModel,
		baseClient: baseClient,
	}, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}
