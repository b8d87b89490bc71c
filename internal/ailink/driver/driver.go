package driver

import (
	"context"

	"github.com/claimlens/claimlens/internal/ailink/content"
)

// Driver defines the interface for AI completion providers.
type Driver interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *Request) (*Response, error)
	// Name returns the driver identifier (e.g., "gemini").
	Name() string
	// Capabilities returns what this driver supports.
	Capabilities() Capabilities
}

// Capabilities describes driver features.
type Capabilities struct {
	SupportsSearch    bool
	SupportsJSONMode  bool
	SupportsStreaming bool
	// SearchExcludesJSONMode is set when the provider rejects requests that
	// combine search grounding with a JSON response format.
	SearchExcludesJSONMode bool
}

// ResponseFormat specifies the expected response format.
type ResponseFormat struct {
	Type string `json:"type"` // "text", "json_object"
}

// Usage contains token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// SearchParameters enables provider-side web search grounding.
type SearchParameters struct {
	Mode            string   `json:"mode,omitempty"`
	ReturnCitations bool     `json:"return_citations,omitempty"`
	Sources         []Source `json:"sources,omitempty"`
}

// Source is a search source kind ("web", "news").
type Source struct {
	Type string `json:"type"`
}

// Request is a provider-agnostic completion request.
type Request struct {
	Model            string
	Messages         []content.Message
	SearchParameters *SearchParameters
	ResponseFormat   *ResponseFormat
	Temperature      *float64
	MaxTokens        *int
	PromptSlug       string
	Metadata         map[string]string
}

// WantsSearch reports whether the request asks for web search grounding.
func (r *Request) WantsSearch() bool {
	return r != nil && r.SearchParameters != nil && len(r.SearchParameters.Sources) > 0
}

// Citation is a web reference the provider attached to its answer.
type Citation struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// Response is a provider-agnostic completion response.
type Response struct {
	Content      []content.ContentBlock
	FinishReason string
	Usage        *Usage
	Citations    []Citation
}
