// Package apperrors defines the error taxonomy of the translation pipeline.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrEmptyRequest reports that a request carried nothing translatable.
// It is informational, not a failure.
var ErrEmptyRequest = errors.New("nothing to translate")

// DecodeError reports an attachment that could not be read as a raster image.
// The pipeline skips such attachments.
type DecodeError struct {
	AttachmentIndex int
	Err             error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("attachment %d is not a decodable image: %v", e.AttachmentIndex, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TranslationServiceError reports a failed batch translation call. Op names the
// failing step ("request", "status", "decode", "count"); StatusCode is set when
// the remote service answered.
type TranslationServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TranslationServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("translation service %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("translation service %s failed: %v", e.Op, e.Err)
}

func (e *TranslationServiceError) Unwrap() error {
	return e.Err
}

// NewTranslationServiceError wraps err as a TranslationServiceError.
func NewTranslationServiceError(op string, statusCode int, err error) *TranslationServiceError {
	return &TranslationServiceError{Op: op, StatusCode: statusCode, Err: err}
}

// IsTranslationServiceError reports whether err is or wraps a TranslationServiceError.
func IsTranslationServiceError(err error) bool {
	var tsErr *TranslationServiceError
	return errors.As(err, &tsErr)
}

// IsDecodeError reports whether err is or wraps a DecodeError.
func IsDecodeError(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}
