package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/translatorbot/internal/gcp"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/services"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	orchestrator  *services.Orchestrator
	resultsBucket *storage.BucketHandle
	once          sync.Once
	initErr       error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered by Pub/Sub or Eventarc; the composed reply is written to
	// RESULTS_BUCKET for the front end to pick up.
	functions.CloudEvent("TranslateEvent", translateEvent)
}

// main is required by the Go Functions Framework.
func main() {}

func setup(ctx context.Context) error {
	cfg, err := services.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.ResultsBucket == "" {
		return fmt.Errorf("RESULTS_BUCKET environment variable must be set")
	}

	// One client serves attachment reads and result writes.
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	orchestrator, err = services.NewOrchestrator(ctx, cfg, storageClient)
	if err != nil {
		return err
	}
	resultsBucket = storageClient.Bucket(cfg.ResultsBucket)
	return nil
}

func translateEvent(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		initErr = setup(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var data models.TranslateEventData
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}
	data.RequestID = requestID(data, e)
	logCtx := slog.With("requestId", data.RequestID, "eventId", e.ID(), "userId", data.UserID)

	res := orchestrator.TranslateMessage(ctx, data.UserID, data.Message)

	payload, err := encodeResult(data, res)
	if err != nil {
		logCtx.Error("Failed to encode result", "error", err)
		return err
	}

	objectName := resultObjectName(data.RequestID)
	if err := gcp.SaveToGCSAtomically(ctx, resultsBucket, objectName, payload); err != nil {
		logCtx.Error("Failed to save result", "error", err, "object", objectName)
		return err
	}

	logCtx.Info("Result saved.", "object", objectName, "status", res.Status)
	return nil
}

// requestID falls back to the event ID, which stays the same across
// redeliveries, so a retried event maps to the same result object.
func requestID(data models.TranslateEventData, e cloudevents.Event) string {
	if data.RequestID != "" {
		return data.RequestID
	}
	return e.ID()
}

func encodeResult(data models.TranslateEventData, res *models.Response) (string, error) {
	b, err := json.Marshal(models.TranslateEventResult{
		RequestID: data.RequestID,
		UserID:    data.UserID,
		Response:  *res,
	})
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}
	return string(b), nil
}

func resultObjectName(requestID string) string {
	return fmt.Sprintf("results/%s.json", requestID)
}
