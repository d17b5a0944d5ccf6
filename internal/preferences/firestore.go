package preferences

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore keeps one document per user in a Firestore collection,
// keyed by user ID.
type FirestoreStore struct {
	client      *firestore.Client
	collection  string
	defaultLang string
}

// NewFirestoreStore creates a store backed by the given collection.
func NewFirestoreStore(client *firestore.Client, collection, defaultLang string) *FirestoreStore {
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}
	return &FirestoreStore{
		client:      client,
		collection:  collection,
		defaultLang: defaultLang,
	}
}

func (s *FirestoreStore) Get(ctx context.Context, userID string) (string, error) {
	snap, err := s.client.Collection(s.collection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return s.defaultLang, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read preference for user %s: %w", userID, err)
	}

	var entry models.PreferenceEntry
	if err := snap.DataTo(&entry); err != nil {
		return "", fmt.Errorf("failed to decode preference for user %s: %w", userID, err)
	}
	if entry.Language == "" {
		return s.defaultLang, nil
	}
	return entry.Language, nil
}

func (s *FirestoreStore) Set(ctx context.Context, userID, language string) error {
	entry := models.PreferenceEntry{
		UserID:    userID,
		Language:  language,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := s.client.Collection(s.collection).Doc(userID).Set(ctx, entry); err != nil {
		return fmt.Errorf("failed to save preference for user %s: %w", userID, err)
	}
	return nil
}
