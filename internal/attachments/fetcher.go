// Package attachments loads the bytes of message attachments.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/translatorbot/internal/gcp"
	"github.com/Lllllllleong/translatorbot/internal/models"
)

// DefaultMaxBytes caps a single attachment download.
const DefaultMaxBytes = 15 * 1024 * 1024

// ErrTooLarge is returned for attachments above the size cap.
var ErrTooLarge = errors.New("attachment exceeds size limit")

// Fetcher returns the raw bytes of an attachment.
type Fetcher interface {
	Fetch(ctx context.Context, att models.Attachment) ([]byte, error)
}

// Loader resolves inline data, gs:// objects and http(s) URLs such as chat CDN links.
type Loader struct {
	httpClient    *http.Client
	storageClient *storage.Client
	maxBytes      int64
}

// NewLoader creates a Loader. storageClient may be nil, in which case gs:// URLs fail.
func NewLoader(httpClient *http.Client, storageClient *storage.Client, maxBytes int64) *Loader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{
		httpClient:    httpClient,
		storageClient: storageClient,
		maxBytes:      maxBytes,
	}
}

func (l *Loader) Fetch(ctx context.Context, att models.Attachment) ([]byte, error) {
	if len(att.Data) > 0 {
		if int64(len(att.Data)) > l.maxBytes {
			return nil, ErrTooLarge
		}
		return att.Data, nil
	}

	switch {
	case att.URL == "":
		return nil, fmt.Errorf("attachment %q has neither data nor url", att.Filename)
	case strings.HasPrefix(att.URL, "gs://"):
		if l.storageClient == nil {
			return nil, fmt.Errorf("no storage client configured for %s", att.URL)
		}
		return gcp.ReadObject(ctx, l.storageClient, att.URL, l.maxBytes)
	case strings.HasPrefix(att.URL, "https://"), strings.HasPrefix(att.URL, "http://"):
		return l.fetchHTTP(ctx, att.URL)
	default:
		return nil, fmt.Errorf("unsupported attachment url scheme: %s", att.URL)
	}
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download of %s returned status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
