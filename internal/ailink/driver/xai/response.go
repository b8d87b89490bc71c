package xai

import (
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
)

// chatCompletionResponse is for the /chat/completions endpoint.
type chatCompletionResponse struct {
	Choices   []choice `json:"choices"`
	Usage     *usage   `json:"usage,omitempty"`
	Citations []string `json:"citations,omitempty"`
}

type choice struct {
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Content string `json:"content"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// responsesAPIResponse is for the /responses endpoint.
type responsesAPIResponse struct {
	ID        string          `json:"id"`
	Output    []outputItem    `json:"output"`
	Usage     *responsesUsage `json:"usage,omitempty"`
	Citations []string        `json:"citations,omitempty"`
}

type outputItem struct {
	Type    string          `json:"type"`
	Role    string          `json:"role,omitempty"`
	Content []outputContent `json:"content,omitempty"`
	Text    string          `json:"text,omitempty"`
}

type outputContent struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	Annotations []annotation `json:"annotations,omitempty"`
}

type annotation struct {
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

type responsesUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

func toDriverResponse(resp *chatCompletionResponse) (*driver.Response, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response choices")
	}

	choice := resp.Choices[0]
	response := &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: choice.Message.Content}},
		FinishReason: choice.FinishReason,
		Citations:    urlCitations(resp.Citations),
	}

	if resp.Usage != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

func toDriverResponseFromResponses(resp *responsesAPIResponse) (*driver.Response, error) {
	if resp == nil || len(resp.Output) == 0 {
		return nil, fmt.Errorf("empty response output")
	}

	// Tool invocations (web_search_call, x_search_call) are skipped; only
	// message output carries answer text and annotations.
	var textParts []string
	var citations []driver.Citation
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" && c.Text != "" {
					textParts = append(textParts, c.Text)
				}
				for _, a := range c.Annotations {
					if a.Type == "url_citation" {
						citations = append(citations, driver.Citation{Title: a.Title, URI: a.URL})
					}
				}
			}
			if item.Text != "" {
				textParts = append(textParts, item.Text)
			}
		case "text":
			if item.Text != "" {
				textParts = append(textParts, item.Text)
			}
		}
	}
	citations = append(citations, urlCitations(resp.Citations)...)

	response := &driver.Response{
		Content:      []content.ContentBlock{{Type: content.ContentTypeText, Text: strings.Join(textParts, "\n")}},
		FinishReason: "stop",
		Citations:    citations,
	}

	if resp.Usage != nil {
		response.Usage = &driver.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

func urlCitations(urls []string) []driver.Citation {
	if len(urls) == 0 {
		return nil
	}
	out := make([]driver.Citation, 0, len(urls))
	for _, u := range urls {
		out = append(out, driver.Citation{URI: u})
	}
	return out
}
