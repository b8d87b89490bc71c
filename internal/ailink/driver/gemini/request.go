package gemini

import (
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
)

type generateContentRequest struct {
	Contents          []contentEntry    `json:"contents"`
	SystemInstruction *contentEntry     `json:"systemInstruction,omitempty"`
	Tools             []tool            `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type contentEntry struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type tool struct {
	GoogleSearch *struct{} `json:"google_search,omitempty"`
}

type generationConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	MaxOutputTokens  *int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

func buildRequest(req *driver.Request) (*generateContentRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("messages are required")
	}

	jsonMode := req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object"
	if jsonMode && req.WantsSearch() {
		return nil, fmt.Errorf("gemini does not support json response format with search grounding")
	}

	payload := &generateContentRequest{}
	var system []part
	for _, msg := range req.Messages {
		text := content.JoinText(msg.Content)
		switch msg.Role {
		case "system":
			system = append(system, part{Text: text})
		case "assistant", "model":
			payload.Contents = append(payload.Contents, contentEntry{Role: "model", Parts: []part{{Text: text}}})
		default:
			payload.Contents = append(payload.Contents, contentEntry{Role: "user", Parts: []part{{Text: text}}})
		}
	}
	if len(payload.Contents) == 0 {
		return nil, fmt.Errorf("at least one user message is required")
	}
	if len(system) > 0 {
		payload.SystemInstruction = &contentEntry{Parts: system}
	}

	if req.WantsSearch() {
		payload.Tools = []tool{{GoogleSearch: &struct{}{}}}
	}

	if req.Temperature != nil || req.MaxTokens != nil || jsonMode {
		payload.GenerationConfig = &generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		}
		if jsonMode {
			payload.GenerationConfig.ResponseMimeType = "application/json"
		}
	}

	return payload, nil
}
