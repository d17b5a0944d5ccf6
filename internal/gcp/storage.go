package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// ParseGCSUri splits a gs://bucket/object URI into its bucket and object name.
func ParseGCSUri(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// URI: %q", uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// URI must name a bucket and an object: %q", uri)
	}
	return bucket, object, nil
}

// ReadObject reads a whole GCS object, refusing objects larger than maxBytes.
func ReadObject(ctx context.Context, client *storage.Client, uri string, maxBytes int64) ([]byte, error) {
	bucket, object, err := ParseGCSUri(uri)
	if err != nil {
		return nil, err
	}

	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for %s: %w", uri, err)
	}
	defer reader.Close()

	if maxBytes > 0 && reader.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("object %s is %d bytes, limit is %d", uri, reader.Attrs.Size, maxBytes)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object %s: %w", uri, err)
	}
	return data, nil
}

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure: redelivered events write the same result.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, content string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := io.Copy(writer, strings.NewReader(content)); err != nil {
		_ = writer.Close()
		slog.Error("Failed to copy content to GCS object", "object", objectName, "error", err)
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Skipping write, object already exists.", "object", objectName)
			return nil
		}
		slog.Error("Failed to close GCS writer", "object", objectName, "error", err)
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}
