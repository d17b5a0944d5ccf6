// Package deepl is the batch translation client for the DeepL API.
package deepl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Lllllllleong/translatorbot/internal/apperrors"
	"github.com/Lllllllleong/translatorbot/internal/models"
)

const (
	// DefaultBaseURL is the DeepL free-tier endpoint.
	DefaultBaseURL = "https://api-free.deepl.com"

	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response ends up in logs.
	maxErrorBody = 512
)

// Client calls the DeepL /v2/translate endpoint. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authKey    string
	timeout    time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint (paid tier, test server).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds each translate call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a client authenticated with authKey.
func NewClient(authKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		authKey:    authKey,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// translateRequest is the JSON body DeepL expects.
type translateRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
}

// translateResponse is the JSON body DeepL returns.
type translateResponse struct {
	Translations []models.TranslationResult `json:"translations"`
}

// Translate sends all texts to DeepL in one request and returns one result per
// text, in input order. Any failure, including a result count that does not
// match the input, is a *apperrors.TranslationServiceError and no results are returned.
func (c *Client) Translate(ctx context.Context, texts []string, targetLang string) ([]models.TranslationResult, error) {
	if len(texts) == 0 {
		return []models.TranslationResult{}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(translateRequest{Text: texts, TargetLang: targetLang})
	if err != nil {
		return nil, apperrors.NewTranslationServiceError("encode", 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/translate", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewTranslationServiceError("request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewTranslationServiceError("request", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewTranslationServiceError("read", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewTranslationServiceError("status", resp.StatusCode,
			fmt.Errorf("unexpected response: %s", truncate(string(body), maxErrorBody)))
	}

	var parsed translateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperrors.NewTranslationServiceError("decode", resp.StatusCode,
			fmt.Errorf("failed to parse response: %w", err))
	}
	if parsed.Translations == nil {
		return nil, apperrors.NewTranslationServiceError("decode", resp.StatusCode,
			fmt.Errorf("response has no translations field: %s", truncate(string(body), maxErrorBody)))
	}

	if len(parsed.Translations) != len(texts) {
		return nil, apperrors.NewTranslationServiceError("count", resp.StatusCode,
			fmt.Errorf("got %d translations for %d texts", len(parsed.Translations), len(texts)))
	}

	return parsed.Translations, nil
}

// truncate shortens s to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
