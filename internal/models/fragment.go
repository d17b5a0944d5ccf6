package models

// FragmentKind tags where a fragment's text came from.
type FragmentKind int

const (
	FragmentBody FragmentKind = iota
	FragmentImage
)

func (k FragmentKind) String() string {
	switch k {
	case FragmentBody:
		return "body"
	case FragmentImage:
		return "image"
	default:
		return "unknown"
	}
}

// Fragment is one unit of text submitted for translation.
//
// For image fragments, Index is the 1-based position among the images that
// produced text, and AttachmentIndex is the 0-based position of the source
// attachment in the message. Body fragments carry Index 0 and AttachmentIndex -1.
type Fragment struct {
	Kind            FragmentKind
	Index           int
	AttachmentIndex int
	Text            string
}

// TranslationResult is the translation of a single fragment.
type TranslationResult struct {
	DetectedSourceLanguage string `json:"detected_source_language"`
	Text                   string `json:"text"`
}

// TranslationRequest is the batch handed to a translation client.
type TranslationRequest struct {
	Fragments      []Fragment
	TargetLanguage string
}

// Texts returns the fragment texts in order.
func (r TranslationRequest) Texts() []string {
	texts := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		texts[i] = f.Text
	}
	return texts
}

// Attachment is a file attached to a chat message. Data is used as-is when set;
// otherwise the bytes are fetched from URL (gs:// or http(s)://).
type Attachment struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	URL         string `json:"url,omitempty"`
	Data        []byte `json:"data,omitempty"`
}

// Message is the chat message a user asked to translate.
type Message struct {
	ID          string       `json:"id,omitempty"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
