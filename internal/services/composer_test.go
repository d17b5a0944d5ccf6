package services

import (
	"strings"
	"testing"

	"github.com/Lllllllleong/translatorbot/internal/models"
)

func TestCompose_SingleBody(t *testing.T) {
	got := Compose(
		[]models.Fragment{{Kind: models.FragmentBody, AttachmentIndex: -1, Text: "Bonjour tout le monde"}},
		[]models.TranslationResult{{DetectedSourceLanguage: "FR", Text: "Hello everyone"}},
		"en",
	)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	if lines[0] != "Original message (FR): `Bonjour tout le monde`" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Translated message (en): `Hello everyone`" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestCompose_BodyAndImages(t *testing.T) {
	fragments := []models.Fragment{
		{Kind: models.FragmentBody, AttachmentIndex: -1, Text: "Regarde"},
		{Kind: models.FragmentImage, Index: 1, AttachmentIndex: 0, Text: "CHAT\nCHIEN"},
		{Kind: models.FragmentImage, Index: 2, AttachmentIndex: 3, Text: "Ausgang"},
	}
	results := []models.TranslationResult{
		{DetectedSourceLanguage: "FR", Text: "Look"},
		{DetectedSourceLanguage: "FR", Text: "CAT\nDOG"},
		{DetectedSourceLanguage: "DE", Text: "Exit"},
	}

	want := "Original message (FR): `Regarde`\n" +
		"Translated message (en): `Look`\n" +
		"\n" +
		"Translated image 1 (FR->en): ```CAT\nDOG```\n" +
		"Translated image 2 (DE->en): ```Exit```"

	if got := Compose(fragments, results, "en"); got != want {
		t.Errorf("Compose() =\n%s\nwant\n%s", got, want)
	}
}

func TestCompose_ImagesOnlyNumberedFromOne(t *testing.T) {
	fragments := []models.Fragment{
		{Kind: models.FragmentImage, Index: 1, AttachmentIndex: 2, Text: "KATZE"},
	}
	results := []models.TranslationResult{{DetectedSourceLanguage: "DE", Text: "CHAT"}}

	want := "Translated image 1 (DE->fr): ```CHAT```"
	if got := Compose(fragments, results, "fr"); got != want {
		t.Errorf("Compose() = %q, want %q", got, want)
	}
}

func TestCompose_Empty(t *testing.T) {
	if got := Compose(nil, nil, "en"); got != "" {
		t.Errorf("Compose() = %q, want empty", got)
	}
}

func TestComposeText(t *testing.T) {
	got := ComposeText(models.TranslationResult{DetectedSourceLanguage: "EN", Text: "やあ"}, "ja")
	if got != "Translated text (EN->ja): `やあ`" {
		t.Errorf("ComposeText() = %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Error("free-text reply should be a single line")
	}
}
