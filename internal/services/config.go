package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/translatorbot/internal/attachments"
	"github.com/Lllllllleong/translatorbot/internal/deepl"
	"github.com/Lllllllleong/translatorbot/internal/gcp"
	"github.com/Lllllllleong/translatorbot/internal/ocr"
	"github.com/Lllllllleong/translatorbot/internal/preferences"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Preference store backends.
const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config holds all configuration for the translator services.
type Config struct {
	ProjectID          string        `env:"PROJECT_ID"`
	VertexAIRegion     string        `env:"VERTEX_AI_REGION" envDefault:"us-central1"`
	OCRModel           string        `env:"OCR_MODEL" envDefault:"gemini-1.5-flash"`
	OCRConcurrency     int           `env:"OCR_CONCURRENCY" envDefault:"4"`
	MaxAttachmentBytes int64         `env:"MAX_ATTACHMENT_BYTES" envDefault:"15728640"`
	DeepLKey           string        `env:"DEEPL_KEY"`
	DeepLAPIURL        string        `env:"DEEPL_API_URL" envDefault:"https://api-free.deepl.com"`
	TranslateTimeout   time.Duration `env:"TRANSLATE_TIMEOUT" envDefault:"15s"`
	DefaultLanguage    string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	PreferenceBackend  string        `env:"PREFERENCE_BACKEND" envDefault:"firestore"`
	CollectionName     string        `env:"FIRESTORE_COLLECTION" envDefault:"language_preferences"`
	ResultsBucket      string        `env:"RESULTS_BUCKET"`
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file from the working directory if there is one.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.PreferenceBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID environment variable must be set for the firestore preference backend")
		}
	default:
		return fmt.Errorf("PREFERENCE_BACKEND must be %q or %q, got %q", BackendFirestore, BackendMemory, c.PreferenceBackend)
	}
	if c.OCRConcurrency < 1 {
		return fmt.Errorf("OCR_CONCURRENCY must be at least 1, got %d", c.OCRConcurrency)
	}
	return nil
}

// NewPreferenceStore creates the preference store selected by the configuration.
func NewPreferenceStore(ctx context.Context, cfg *Config) (preferences.Store, error) {
	if cfg.PreferenceBackend == BackendMemory {
		return preferences.NewMemoryStore(cfg.DefaultLanguage), nil
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return preferences.NewFirestoreStore(firestoreClient, cfg.CollectionName, cfg.DefaultLanguage), nil
}

// NewOrchestrator wires the full pipeline: preference store, attachment loader,
// Vertex AI OCR and the DeepL client. storageClient is shared with the caller
// when it also writes to Cloud Storage; pass nil to have one created and closed
// with the Orchestrator.
func NewOrchestrator(ctx context.Context, cfg *Config, storageClient *storage.Client) (*Orchestrator, error) {
	if cfg.DeepLKey == "" {
		return nil, fmt.Errorf("DEEPL_KEY environment variable must be set")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	store, err := NewPreferenceStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var closers []func() error
	if storageClient == nil {
		storageClient, err = storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		closers = append(closers, storageClient.Close)
	}

	vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.OCRModel)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, fmt.Errorf("failed to create vertex client: %w", err)
	}
	closers = append(closers, vertexClient.Close)

	// Attachment downloads and DeepL calls share one connection pool. DeepL
	// requests are bounded separately by TRANSLATE_TIMEOUT.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	loader := attachments.NewLoader(httpClient, storageClient, cfg.MaxAttachmentBytes)
	extractor := NewExtractor(loader, ocr.NewVertexEngine(vertexClient), cfg.OCRConcurrency)
	translator := deepl.NewClient(cfg.DeepLKey,
		deepl.WithBaseURL(cfg.DeepLAPIURL),
		deepl.WithHTTPClient(httpClient),
		deepl.WithTimeout(cfg.TranslateTimeout),
	)

	o := New(store, extractor, translator)
	o.closers = closers
	return o, nil
}
