package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/translatorbot/internal/models"
	"github.com/Lllllllleong/translatorbot/internal/services"
)

var (
	orchestrator *services.Orchestrator
	once         sync.Once
	initErr      error
)

func init() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandlePreferLanguage", handlePreferLanguage)
}

// main is required by the Go Functions Framework.
func main() {}

// handlePreferLanguage only needs the preference store, so it skips the OCR
// and translation clients entirely.
func handlePreferLanguage(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cfg, err := services.LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		store, err := services.NewPreferenceStore(context.Background(), cfg)
		if err != nil {
			initErr = err
			return
		}
		orchestrator = services.New(store, nil, nil)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.PreferLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "Bad Request: userId is required", http.StatusBadRequest)
		return
	}

	res := orchestrator.SetPreference(r.Context(), req.UserID, req.Language)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}
