package imagegen

import "headergen/internal/crop"

// Statuses carried by every operation result.
const (
	StatusSuccess = "success"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// FailureKind classifies a non-success outcome.
type FailureKind string

const (
	FailureConfig    FailureKind = "config"
	FailureTransport FailureKind = "transport"
	FailureRejected  FailureKind = "remote_rejected"
	FailureTimeout   FailureKind = "timeout"
	FailureDecode    FailureKind = "decode"
)

// Resolution tiers accepted by the generation operations. Unknown tiers fall
// back to 2k.
const (
	Tier1K = "1k"
	Tier2K = "2k"
	Tier4K = "4k"
)

// SquareRequest asks for a 1:1 cover image.
type SquareRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// WideRequest asks for a 2.35:1 official-account header.
type WideRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style,omitempty"`
	Tier   string `json:"tier,omitempty"`
}

// GenerateResult is the outcome of one generation operation. Status is always
// set and the zero field groups tell the rest of the story: a success carries
// the image URL, a timeout still carries the task id so the caller can come
// back for it, and errors carry their kind and message. Operations return
// values, never errors.
type GenerateResult struct {
	Status         string      `json:"status"`
	Kind           FailureKind `json:"kind,omitempty"`
	Message        string      `json:"message,omitempty"`
	TaskID         string      `json:"task_id,omitempty"`
	ImageURL       string      `json:"image_url,omitempty"`
	Prompt         string      `json:"prompt,omitempty"`
	Width          int         `json:"width,omitempty"`
	Height         int         `json:"height,omitempty"`
	ElapsedSeconds float64     `json:"elapsed_seconds,omitempty"`
}

// CropRequest asks for a remote image cropped to a target ratio.
type CropRequest struct {
	URL    string  `json:"url"`
	Ratio  float64 `json:"ratio"`
	Output string  `json:"output,omitempty"`
}

// CropOutcome wraps a crop result with the shared status envelope.
type CropOutcome struct {
	Status  string       `json:"status"`
	Kind    FailureKind  `json:"kind,omitempty"`
	Message string       `json:"message,omitempty"`
	Result  *crop.Result `json:"result,omitempty"`
}

// StyleRequest asks for style suggestions for a content category.
type StyleRequest struct {
	ContentType string `json:"content_type"`
	Mood        string `json:"mood,omitempty"`
}

// StyleSuggestion is one catalog entry, rendered for display.
type StyleSuggestion struct {
	Style   string `json:"style"`
	Label   string `json:"label"`
	Example string `json:"example"`
}

// StyleResult lists the suggestions for a request.
type StyleResult struct {
	Status      string            `json:"status"`
	ContentType string            `json:"content_type"`
	Mood        string            `json:"mood,omitempty"`
	Styles      []StyleSuggestion `json:"styles"`
}
