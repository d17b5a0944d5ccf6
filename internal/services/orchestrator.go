package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/translatorbot/internal/apperrors"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/preferences"
	"github.com/google/uuid"
)

// User-facing replies. None of them carry error details.
const (
	NothingToTranslateMessage = "Nothing to translate in this message."
	FailureMessage            = "Failed to translate :c"
	PreferenceFailureMessage  = "Failed to save preferred language :c"
	MissingLanguageMessage    = "Please provide a language code, for example `de` or `ja`."
)

// Request states, logged as the "state" attribute.
const (
	stateReceived    = "RECEIVED"
	stateExtracting  = "EXTRACTING"
	stateTranslating = "TRANSLATING"
	stateComposing   = "COMPOSING"
	stateDelivered   = "DELIVERED"
	stateFailed      = "FAILED"
)

// Translator translates a batch of texts in one call, returning one result per
// text in input order.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]models.TranslationResult, error)
}

// Orchestrator runs the translate-message, translate-text and set-preference
// entry points.
type Orchestrator struct {
	prefs      preferences.Store
	extractor  *Extractor
	translator Translator
	closers    []func() error
}

// New creates an Orchestrator. extractor and translator may be nil for a
// deployment that only serves SetPreference.
func New(prefs preferences.Store, extractor *Extractor, translator Translator) *Orchestrator {
	return &Orchestrator{
		prefs:      prefs,
		extractor:  extractor,
		translator: translator,
	}
}

// Close releases the clients NewOrchestrator created.
func (o *Orchestrator) Close() error {
	var errs []error
	for _, c := range o.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	o.closers = nil
	return errors.Join(errs...)
}

// TranslateMessage translates a chat message's text and the text of its image
// attachments into the user's preferred language.
func (o *Orchestrator) TranslateMessage(ctx context.Context, userID string, msg models.Message) *models.Response {
	logCtx := requestLogger("translate-message", userID).With("messageId", msg.ID)
	logCtx.Info("Request received.", "state", stateReceived, "attachmentCount", len(msg.Attachments))

	targetLang, err := o.prefs.Get(ctx, userID)
	if err != nil {
		return failed(logCtx, "Failed to resolve preferred language", err)
	}
	logCtx = logCtx.With("targetLang", targetLang)

	logCtx.Info("Extracting fragments.", "state", stateExtracting)
	fragments := o.extractor.Extract(ctx, logCtx, msg)

	content, err := o.translate(ctx, logCtx, models.TranslationRequest{Fragments: fragments, TargetLanguage: targetLang}, func(results []models.TranslationResult) string {
		return Compose(fragments, results, targetLang)
	})
	return o.respond(logCtx, content, err)
}

// TranslateText translates free text into explicitLang, or into the user's
// preferred language when explicitLang is empty.
func (o *Orchestrator) TranslateText(ctx context.Context, userID, text, explicitLang string) *models.Response {
	logCtx := requestLogger("translate-text", userID)
	logCtx.Info("Request received.", "state", stateReceived)

	targetLang := strings.TrimSpace(explicitLang)
	if targetLang == "" {
		var err error
		targetLang, err = o.prefs.Get(ctx, userID)
		if err != nil {
			return failed(logCtx, "Failed to resolve preferred language", err)
		}
	}
	logCtx = logCtx.With("targetLang", targetLang)

	var fragments []models.Fragment
	if strings.TrimSpace(text) != "" {
		fragments = []models.Fragment{{Kind: models.FragmentBody, AttachmentIndex: -1, Text: text}}
	}

	content, err := o.translate(ctx, logCtx, models.TranslationRequest{Fragments: fragments, TargetLanguage: targetLang}, func(results []models.TranslationResult) string {
		return ComposeText(results[0], targetLang)
	})
	return o.respond(logCtx, content, err)
}

// SetPreference stores the user's preferred target language. The code is not
// validated; an unsupported code shows up as a failed translation later.
func (o *Orchestrator) SetPreference(ctx context.Context, userID, language string) *models.Response {
	logCtx := requestLogger("set-preference", userID)

	language = strings.TrimSpace(language)
	if language == "" {
		return &models.Response{Content: MissingLanguageMessage, Ephemeral: true, Status: models.StatusEmpty}
	}

	if err := o.prefs.Set(ctx, userID, language); err != nil {
		logCtx.Error("Failed to store preferred language", "error", err, "language", language)
		return &models.Response{Content: PreferenceFailureMessage, Ephemeral: true, Status: models.StatusFailed}
	}

	logCtx.Info("Preferred language set.", "language", language)
	return &models.Response{
		Content:   fmt.Sprintf("Set preferred language to %s", language),
		Ephemeral: true,
		Status:    models.StatusDelivered,
	}
}

// translate runs the single batch call and composes the reply. An empty
// request returns apperrors.ErrEmptyRequest without calling the translator.
func (o *Orchestrator) translate(ctx context.Context, logCtx *slog.Logger, req models.TranslationRequest, compose func([]models.TranslationResult) string) (string, error) {
	if len(req.Fragments) == 0 {
		return "", apperrors.ErrEmptyRequest
	}

	logCtx.Info("Calling translation service.", "state", stateTranslating, "fragmentCount", len(req.Fragments))
	results, err := o.translator.Translate(ctx, req.Texts(), req.TargetLanguage)
	if err != nil {
		if !apperrors.IsTranslationServiceError(err) {
			err = apperrors.NewTranslationServiceError("translate", 0, err)
		}
		return "", fmt.Errorf("batch translation failed: %w", err)
	}
	if len(results) != len(req.Fragments) {
		return "", apperrors.NewTranslationServiceError("count", 0,
			fmt.Errorf("got %d translations for %d fragments", len(results), len(req.Fragments)))
	}

	logCtx.Info("Composing response.", "state", stateComposing)
	return compose(results), nil
}

func (o *Orchestrator) respond(logCtx *slog.Logger, content string, err error) *models.Response {
	switch {
	case errors.Is(err, apperrors.ErrEmptyRequest):
		logCtx.Info("Nothing to translate.", "state", stateDelivered)
		return &models.Response{Content: NothingToTranslateMessage, Ephemeral: true, Status: models.StatusEmpty}
	case err != nil:
		return failed(logCtx, "Translation failed", err)
	}

	logCtx.Info("Response delivered.", "state", stateDelivered, "length", len(content))
	return &models.Response{Content: content, Ephemeral: true, Status: models.StatusDelivered}
}

// failed logs the underlying error for operators and returns the generic notice.
func failed(logCtx *slog.Logger, message string, err error) *models.Response {
	var tsErr *apperrors.TranslationServiceError
	if errors.As(err, &tsErr) {
		logCtx.Error(message, "state", stateFailed, "error", err, "op", tsErr.Op, "statusCode", tsErr.StatusCode)
	} else {
		logCtx.Error(message, "state", stateFailed, "error", err)
	}
	return &models.Response{Content: FailureMessage, Ephemeral: true, Status: models.StatusFailed}
}

func requestLogger(operation, userID string) *slog.Logger {
	return slog.With("requestId", uuid.NewString(), "operation", operation, "userId", userID)
}
