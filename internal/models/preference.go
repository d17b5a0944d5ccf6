package models

import "time"

// PreferenceEntry is the Firestore record holding a user's preferred target language.
// The document ID is the user ID, so there is at most one entry per user.
type PreferenceEntry struct {
	UserID    string    `firestore:"userId,omitempty"`
	Language  string    `firestore:"language,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty"`
}
