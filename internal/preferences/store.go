// Package preferences stores each user's preferred target language.
package preferences

import (
	"context"
	"sync"
)

// DefaultLanguage is returned for users without a stored preference.
const DefaultLanguage = "en"

// Store maps user IDs to preferred language codes. Codes are stored as given;
// implementations must be safe for concurrent use.
type Store interface {
	// Get returns the user's preferred language, or the store's default when none is set.
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, language string) error
}

// MemoryStore keeps preferences in a process-local map. Entries live for the
// lifetime of the process.
type MemoryStore struct {
	mu          sync.RWMutex
	prefs       map[string]string
	defaultLang string
}

// NewMemoryStore creates an empty store. An empty defaultLang means DefaultLanguage.
func NewMemoryStore(defaultLang string) *MemoryStore {
	if defaultLang == "" {
		defaultLang = DefaultLanguage
	}
	return &MemoryStore{
		prefs:       make(map[string]string),
		defaultLang: defaultLang,
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if lang, ok := s.prefs[userID]; ok {
		return lang, nil
	}
	return s.defaultLang, nil
}

func (s *MemoryStore) Set(_ context.Context, userID, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[userID] = language
	return nil
}
