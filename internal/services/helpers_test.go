package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/ocr"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// pngOfWidth builds a tiny PNG whose width identifies it to fakeEngine.
func pngOfWidth(t *testing.T, width int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, 1))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// pngHeaderOnly returns a grayscale PNG holding nothing but its IHDR chunk, so
// any declared size costs a few dozen bytes.
func pngHeaderOnly(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8
	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// inlineFetcher returns inline data and fails for any attachment with a URL.
type inlineFetcher struct{}

func (inlineFetcher) Fetch(_ context.Context, att models.Attachment) ([]byte, error) {
	if att.URL != "" {
		return nil, errors.New("network unavailable")
	}
	return att.Data, nil
}

// fakeEngine maps image width to OCR output, sleeping delays[width] first.
type fakeEngine struct {
	mu     sync.Mutex
	texts  map[int]string
	errs   map[int]error
	delays map[int]time.Duration
	calls  int
	active int
	peak   int
}

func (e *fakeEngine) Recognize(ctx context.Context, img *ocr.Image) (string, error) {
	width := img.Width

	e.mu.Lock()
	e.calls++
	e.active++
	if e.active > e.peak {
		e.peak = e.active
	}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
	}()

	if d := e.delays[width]; d > 0 {
		time.Sleep(d)
	}
	if err := e.errs[width]; err != nil {
		return "", err
	}
	return e.texts[width], nil
}

// stubTranslator records its input and returns canned results.
type stubTranslator struct {
	mu      sync.Mutex
	calls   int
	texts   []string
	target  string
	results []models.TranslationResult
	err     error
}

func (s *stubTranslator) Translate(_ context.Context, texts []string, targetLang string) ([]models.TranslationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.texts = texts
	s.target = targetLang
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

// failingStore is a preference store whose backend is down.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errors.New("firestore unavailable")
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("firestore unavailable")
}
