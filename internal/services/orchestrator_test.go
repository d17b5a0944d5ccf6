package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Lllllllleong/translatorbot/internal/apperrors"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/preferences"
)

func newTestOrchestrator(engine *fakeEngine, translator Translator) (*Orchestrator, *preferences.MemoryStore) {
	store := preferences.NewMemoryStore("")
	return New(store, NewExtractor(inlineFetcher{}, engine, 2), translator), store
}

func TestTranslateMessage_BodyWithDefaultLanguage(t *testing.T) {
	translator := &stubTranslator{results: []models.TranslationResult{{DetectedSourceLanguage: "FR", Text: "Hello everyone"}}}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)

	resp := o.TranslateMessage(context.Background(), "42", models.Message{Content: "Bonjour tout le monde"})

	if resp.Status != models.StatusDelivered {
		t.Fatalf("Status = %q, want delivered", resp.Status)
	}
	if !resp.Ephemeral {
		t.Error("responses should be private to the requester")
	}
	if translator.target != "en" {
		t.Errorf("target = %q, want default en", translator.target)
	}
	for _, want := range []string{
		"Original message (FR): `Bonjour tout le monde`",
		"Translated message (en): `Hello everyone`",
	} {
		if !strings.Contains(resp.Content, want) {
			t.Errorf("response %q missing %q", resp.Content, want)
		}
	}
}

func TestTranslateMessage_ImageWithStoredPreference(t *testing.T) {
	translator := &stubTranslator{results: []models.TranslationResult{{DetectedSourceLanguage: "EN", Text: "KATZE\nHUND"}}}
	o, store := newTestOrchestrator(&fakeEngine{texts: map[int]string{5: "CAT\n\nDOG"}}, translator)
	ctx := context.Background()

	if err := store.Set(ctx, "42", "de"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	resp := o.TranslateMessage(ctx, "42", models.Message{
		Content:     "",
		Attachments: []models.Attachment{{Filename: "sign.png", Data: pngOfWidth(t, 5)}},
	})

	if resp.Status != models.StatusDelivered {
		t.Fatalf("Status = %q, want delivered (content %q)", resp.Status, resp.Content)
	}
	if translator.target != "de" {
		t.Errorf("target = %q, want de", translator.target)
	}
	if len(translator.texts) != 1 || translator.texts[0] != "CAT\nDOG" {
		t.Errorf("translated texts = %q, want [\"CAT\\nDOG\"]", translator.texts)
	}
	if resp.Content != "Translated image 1 (EN->de): ```KATZE\nHUND```" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestTranslateMessage_NothingToTranslate(t *testing.T) {
	translator := &stubTranslator{}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)

	resp := o.TranslateMessage(context.Background(), "42", models.Message{
		Content:     "?",
		Attachments: []models.Attachment{{Filename: "doc.pdf", Data: []byte("%PDF-1.7")}},
	})

	if resp.Status != models.StatusEmpty || resp.Content != NothingToTranslateMessage {
		t.Errorf("response = %+v, want nothing-to-translate notice", resp)
	}
	if translator.calls != 0 {
		t.Errorf("translator called %d times, want 0", translator.calls)
	}
}

func TestTranslateMessage_TranslationFailureIsHidden(t *testing.T) {
	cause := apperrors.NewTranslationServiceError("request", 0, errors.New("dial tcp 10.0.0.1:443: connect: connection refused"))
	translator := &stubTranslator{err: cause}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)

	resp := o.TranslateMessage(context.Background(), "42", models.Message{Content: "Hola amigos"})

	if resp.Status != models.StatusFailed {
		t.Fatalf("Status = %q, want failed", resp.Status)
	}
	if resp.Content != FailureMessage {
		t.Errorf("Content = %q, want generic failure notice", resp.Content)
	}
	if strings.Contains(resp.Content, "connection refused") {
		t.Error("error details must not reach the user")
	}
}

func TestTranslateMessage_MisalignedResultsFail(t *testing.T) {
	translator := &stubTranslator{results: []models.TranslationResult{
		{DetectedSourceLanguage: "FR", Text: "one"},
		{DetectedSourceLanguage: "FR", Text: "two"},
	}}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)

	resp := o.TranslateMessage(context.Background(), "42", models.Message{Content: "un seul"})
	if resp.Status != models.StatusFailed || resp.Content != FailureMessage {
		t.Errorf("response = %+v, want failure for misaligned results", resp)
	}
}

func TestTranslateMessage_PreferenceReadFailure(t *testing.T) {
	translator := &stubTranslator{}
	o := New(failingStore{}, NewExtractor(inlineFetcher{}, &fakeEngine{}, 1), translator)

	resp := o.TranslateMessage(context.Background(), "42", models.Message{Content: "Hallo Welt"})
	if resp.Status != models.StatusFailed {
		t.Errorf("Status = %q, want failed", resp.Status)
	}
	if translator.calls != 0 {
		t.Error("translator should not be called without a target language")
	}
}

func TestTranslateText(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		explicit   string
		text       string
		wantTarget string
		wantStatus string
		wantCalls  int
	}{
		{name: "explicit language wins", stored: "ja", explicit: "fr", text: "hi", wantTarget: "fr", wantStatus: models.StatusDelivered, wantCalls: 1},
		{name: "falls back to preference", stored: "ja", text: "hi", wantTarget: "ja", wantStatus: models.StatusDelivered, wantCalls: 1},
		{name: "falls back to default", text: "hi", wantTarget: "en", wantStatus: models.StatusDelivered, wantCalls: 1},
		{name: "whitespace text", text: "  \n", wantStatus: models.StatusEmpty, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translator := &stubTranslator{results: []models.TranslationResult{{DetectedSourceLanguage: "EN", Text: "translated"}}}
			o, store := newTestOrchestrator(&fakeEngine{}, translator)
			ctx := context.Background()
			if tt.stored != "" {
				_ = store.Set(ctx, "42", tt.stored)
			}

			resp := o.TranslateText(ctx, "42", tt.text, tt.explicit)

			if resp.Status != tt.wantStatus {
				t.Fatalf("Status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if translator.calls != tt.wantCalls {
				t.Errorf("translator calls = %d, want %d", translator.calls, tt.wantCalls)
			}
			if tt.wantCalls > 0 {
				if translator.target != tt.wantTarget {
					t.Errorf("target = %q, want %q", translator.target, tt.wantTarget)
				}
				want := fmt.Sprintf("Translated text (EN->%s): `translated`", tt.wantTarget)
				if resp.Content != want {
					t.Errorf("Content = %q, want %q", resp.Content, want)
				}
			}
		})
	}
}

func TestSetPreferenceThenTranslateText(t *testing.T) {
	translator := &stubTranslator{results: []models.TranslationResult{{DetectedSourceLanguage: "EN", Text: "やあ"}}}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)
	ctx := context.Background()

	set := o.SetPreference(ctx, "42", "ja")
	if set.Status != models.StatusDelivered || set.Content != "Set preferred language to ja" {
		t.Fatalf("SetPreference() = %+v", set)
	}

	resp := o.TranslateText(ctx, "42", "hi", "")
	if translator.target != "ja" {
		t.Errorf("target = %q, want ja", translator.target)
	}
	if resp.Status != models.StatusDelivered {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestSetPreference_Edges(t *testing.T) {
	ctx := context.Background()

	o, store := newTestOrchestrator(&fakeEngine{}, &stubTranslator{})
	resp := o.SetPreference(ctx, "42", "   ")
	if resp.Content != MissingLanguageMessage {
		t.Errorf("Content = %q, want missing-language prompt", resp.Content)
	}
	if got, _ := store.Get(ctx, "42"); got != "en" {
		t.Errorf("blank code should not be stored, got %q", got)
	}

	resp = o.SetPreference(ctx, "42", " pt-BR ")
	if resp.Content != "Set preferred language to pt-BR" {
		t.Errorf("Content = %q", resp.Content)
	}

	failing := New(failingStore{}, nil, nil)
	resp = failing.SetPreference(ctx, "42", "de")
	if resp.Status != models.StatusFailed || resp.Content != PreferenceFailureMessage {
		t.Errorf("response = %+v, want preference failure notice", resp)
	}
}

func TestTranslate_WrapsPlainTranslatorErrors(t *testing.T) {
	translator := &stubTranslator{err: errors.New("backend unavailable")}
	o, _ := newTestOrchestrator(&fakeEngine{}, translator)

	req := models.TranslationRequest{
		Fragments:      []models.Fragment{{Kind: models.FragmentBody, AttachmentIndex: -1, Text: "hola"}},
		TargetLanguage: "en",
	}
	_, err := o.translate(context.Background(), discardLogger, req, func([]models.TranslationResult) string { return "" })

	var tsErr *apperrors.TranslationServiceError
	if !errors.As(err, &tsErr) {
		t.Fatalf("error = %v, want a TranslationServiceError", err)
	}
	if tsErr.Op != "translate" {
		t.Errorf("Op = %q, want translate", tsErr.Op)
	}

	// Errors that already carry service detail keep it.
	translator.err = apperrors.NewTranslationServiceError("status", 456, errors.New("quota exceeded"))
	_, err = o.translate(context.Background(), discardLogger, req, func([]models.TranslationResult) string { return "" })
	if !errors.As(err, &tsErr) || tsErr.Op != "status" || tsErr.StatusCode != 456 {
		t.Errorf("error = %v, want the original status error", err)
	}
}

func TestClose(t *testing.T) {
	var closed []string
	o := New(preferences.NewMemoryStore(""), nil, nil)
	o.closers = []func() error{
		func() error { closed = append(closed, "storage"); return nil },
		func() error { closed = append(closed, "vertex"); return errors.New("already closed") },
	}

	err := o.Close()
	if err == nil || !strings.Contains(err.Error(), "already closed") {
		t.Errorf("Close() error = %v, want the vertex failure", err)
	}
	if len(closed) != 2 {
		t.Errorf("closed %v, want every client closed", closed)
	}
	if err := o.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}

	if err := New(preferences.NewMemoryStore(""), nil, nil).Close(); err != nil {
		t.Errorf("Close() without clients = %v", err)
	}
}
