package models

// These structs define the JSON payloads exchanged between a front end and the
// translator functions.

// Response statuses.
const (
	StatusDelivered = "delivered"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

// Response is what every entry point hands back to the front end. Content is
// always safe to show to the requesting user.
type Response struct {
	Content   string `json:"content"`
	Ephemeral bool   `json:"ephemeral"`
	Status    string `json:"status"`
}

// TranslateMessageRequest is the input for the translate-message function.
type TranslateMessageRequest struct {
	UserID  string  `json:"userId"`
	Message Message `json:"message"`
}

// TranslateTextRequest is the input for the translate-text function.
// Language is optional; when empty the user's preference is used.
type TranslateTextRequest struct {
	UserID   string `json:"userId"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// PreferLanguageRequest is the input for the prefer-language function.
type PreferLanguageRequest struct {
	UserID   string `json:"userId"`
	Language string `json:"language"`
}

// TranslateEventData is the CloudEvent data for an asynchronous translate-message request.
type TranslateEventData struct {
	RequestID string  `json:"requestId"`
	UserID    string  `json:"userId"`
	Message   Message `json:"message"`
}

// TranslateEventResult is what the translate-event function stores for each request.
type TranslateEventResult struct {
	RequestID string   `json:"requestId"`
	UserID    string   `json:"userId"`
	Response  Response `json:"response"`
}
