package services

import (
	"fmt"
	"strings"

	"github.com/Lllllllleong/translatorbot/internal/models"
)

// Compose renders translated fragments as a single chat reply. results must be
// parallel to fragments. Images are numbered among themselves, starting at 1.
func Compose(fragments []models.Fragment, results []models.TranslationResult, targetLang string) string {
	var sb strings.Builder
	imageNumber := 0

	for i, fragment := range fragments {
		result := results[i]
		switch fragment.Kind {
		case models.FragmentBody:
			fmt.Fprintf(&sb, "Original message (%s): `%s`\n", result.DetectedSourceLanguage, fragment.Text)
			fmt.Fprintf(&sb, "Translated message (%s): `%s`\n\n", targetLang, result.Text)
		case models.FragmentImage:
			imageNumber++
			// Code block keeps the image's line breaks intact.
			fmt.Fprintf(&sb, "Translated image %d (%s->%s): ```%s```\n", imageNumber, result.DetectedSourceLanguage, targetLang, result.Text)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ComposeText renders the translation of a free-text request as one line.
func ComposeText(result models.TranslationResult, targetLang string) string {
	return fmt.Sprintf("Translated text (%s->%s): `%s`", result.DetectedSourceLanguage, targetLang, result.Text)
}
