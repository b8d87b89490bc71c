package gemini

import (
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
)

type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	UsageMetadata  *usageMetadata  `json:"usageMetadata,omitempty"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
}

type candidate struct {
	Content           contentEntry       `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *groundingMetadata `json:"groundingMetadata,omitempty"`
}

type groundingMetadata struct {
	GroundingChunks  []groundingChunk `json:"groundingChunks,omitempty"`
	WebSearchQueries []string         `json:"webSearchQueries,omitempty"`
}

type groundingChunk struct {
	Web *webChunk `json:"web,omitempty"`
}

type webChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

func toDriverResponse(resp *generateContentResponse) (*driver.Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response")
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("empty response candidates")
	}

	first := resp.Candidates[0]
	texts := make([]string, 0, len(first.Content.Parts))
	for _, p := range first.Content.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}

	response := &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: strings.Join(texts, "")}},
		FinishReason: strings.ToLower(first.FinishReason),
	}

	if first.GroundingMetadata != nil {
		for _, chunk := range first.GroundingMetadata.GroundingChunks {
			if chunk.Web == nil {
				continue
			}
			response.Citations = append(response.Citations, driver.Citation{Title: chunk.Web.Title, URI: chunk.Web.URI})
		}
	}

	if resp.UsageMetadata != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	return response, nil
}
