package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Lllllllleong/translatorbot/internal/apperrors"
	"github.com/Lllllllleong/translatorbot/internal/attachments"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/ocr"
	"golang.org/x/sync/errgroup"
)

// DefaultOCRConcurrency bounds OCR fan-out per request.
const DefaultOCRConcurrency = 4

// Extractor turns a chat message into the ordered list of fragments to translate.
type Extractor struct {
	fetcher     attachments.Fetcher
	engine      ocr.Engine
	concurrency int
}

// NewExtractor creates an Extractor running at most concurrency OCR calls at once.
func NewExtractor(fetcher attachments.Fetcher, engine ocr.Engine, concurrency int) *Extractor {
	if concurrency < 1 {
		concurrency = DefaultOCRConcurrency
	}
	return &Extractor{
		fetcher:     fetcher,
		engine:      engine,
		concurrency: concurrency,
	}
}

// Extract returns at most one body fragment followed by one image fragment per
// attachment that yielded OCR text, in attachment order. Attachments that
// cannot be fetched, decoded or read are skipped; Extract itself never fails.
func (e *Extractor) Extract(ctx context.Context, logCtx *slog.Logger, msg models.Message) []models.Fragment {
	var fragments []models.Fragment
	if hasBody(msg.Content) {
		fragments = append(fragments, models.Fragment{
			Kind:            models.FragmentBody,
			AttachmentIndex: -1,
			Text:            msg.Content,
		})
	}

	if len(msg.Attachments) == 0 {
		return fragments
	}

	// One slot per attachment; workers only write their own slot.
	slots := make([]string, len(msg.Attachments))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)

	for i, att := range msg.Attachments {
		eg.Go(func() error {
			text, err := e.recognize(gctx, i, att)
			switch {
			case apperrors.IsDecodeError(err):
				logCtx.Warn("Skipping attachment, not a usable image.", "attachmentIndex", i, "filename", att.Filename, "error", err)
			case err != nil:
				logCtx.Warn("Skipping attachment.", "attachmentIndex", i, "filename", att.Filename, "error", err)
			default:
				slots[i] = text
			}
			return nil
		})
	}
	_ = eg.Wait()

	imageIndex := 0
	for i, text := range slots {
		if text == "" {
			continue
		}
		imageIndex++
		fragments = append(fragments, models.Fragment{
			Kind:            models.FragmentImage,
			Index:           imageIndex,
			AttachmentIndex: i,
			Text:            text,
		})
	}

	logCtx.Info("Extraction complete.", "fragmentCount", len(fragments), "attachmentCount", len(msg.Attachments), "imageFragments", imageIndex)
	return fragments
}

// recognize returns the normalized OCR text of one attachment. Blank text is
// not an error; undecodable attachments yield a *apperrors.DecodeError.
func (e *Extractor) recognize(ctx context.Context, index int, att models.Attachment) (string, error) {
	data, err := e.fetcher.Fetch(ctx, att)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}

	img, err := ocr.Decode(data)
	if err != nil {
		return "", &apperrors.DecodeError{AttachmentIndex: index, Err: err}
	}

	text, err := e.engine.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("ocr failed for %s image: %w", img.Format, err)
	}

	text = ocr.NormalizeText(text)
	if ocr.IsBlank(text) {
		return "", nil
	}
	return text, nil
}

// hasBody reports whether message text counts as content: more than one
// character once surrounding whitespace is removed.
func hasBody(content string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(content)) > 1
}
