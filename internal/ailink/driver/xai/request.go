package xai

import (
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
)

// chatCompletionRequest is for the /chat/completions endpoint (no search).
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      *int            `json:"max_tokens,omitempty"`
}

// responsesAPIRequest is for the /responses endpoint (with search tools).
type responsesAPIRequest struct {
	Model           string          `json:"model"`
	Input           []inputMessage  `json:"input"`
	Tools           []responsesTool `json:"tools,omitempty"`
	Temperature     *float64        `json:"temperature,omitempty"`
	MaxOutputTokens *int            `json:"max_output_tokens,omitempty"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesTool struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func buildResponsesRequest(req *driver.Request) (*responsesAPIRequest, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		return nil, fmt.Errorf("xai responses endpoint does not accept a json response format")
	}

	input := make([]inputMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		input = append(input, inputMessage{Role: msg.Role, Content: content.JoinText(msg.Content)})
	}

	tools := make([]responsesTool, 0, len(req.SearchParameters.Sources))
	seen := map[string]bool{}
	for _, src := range req.SearchParameters.Sources {
		toolType := "web_search"
		if src.Type == "x" {
			toolType = "x_search"
		}
		if seen[toolType] {
			continue
		}
		seen[toolType] = true
		tools = append(tools, responsesTool{Type: toolType})
	}

	return &responsesAPIRequest{
		Model:           req.Model,
		Input:           input,
		Tools:           tools,
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}, nil
}

func buildChatRequest(req *driver.Request) (*chatCompletionRequest, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	messages := make([]chatMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, chatMessage{Role: msg.Role, Content: content.JoinText(msg.Content)})
	}

	payload := &chatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.ResponseFormat != nil {
		payload.ResponseFormat = &responseFormat{Type: req.ResponseFormat.Type}
	}
	return payload, nil
}

func validate(req *driver.Request) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages are required")
	}
	return nil
}
