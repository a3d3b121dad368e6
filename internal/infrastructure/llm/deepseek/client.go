package deepseek

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/partdesk/parts-assistant/internal/core/domain"
	"github.com/partdesk/parts-assistant/internal/infrastructure/resilience"
)

const (
	answerTemperature  = 1.0
	answerMaxTokens    = 2000
	analyzeTemperature = 0.1
	analyzeMaxTokens   = 500
)

// Client talks to a DeepSeek (OpenAI-compatible) chat completions API. It
// implements both query analysis and answer generation.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) GenerateAnswer(ctx context.Context, system string, history []domain.ChatMessage, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	messages = append(messages, chatMessage{Role: "system", Content: system})
	for _, msg := range history {
		role := msg.Role
		if role != "user" && role != "assistant" {
			continue
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	answer, err := c.complete(ctx, "generate_answer", chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate_answer", err)
	}
	return answer, nil
}

// queryAnalysisWire mirrors the JSON schema the model is instructed to
// produce; "type" maps to the intent.
type queryAnalysisWire struct {
	Type          string   `json:"type"`
	ApplianceType string   `json:"appliance_type"`
	KeyTerms      []string `json:"key_terms"`
	Confidence    float64  `json:"confidence"`
	Strategy      string   `json:"search_strategy"`
}

func (c *Client) AnalyzeQuery(ctx context.Context, query string) (domain.QueryAnalysis, error) {
	raw, err := c.complete(ctx, "analyze_query", chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: analysisPrompt},
			{Role: "user", Content: "Analyze this query: " + query},
		},
		Temperature:    analyzeTemperature,
		MaxTokens:      analyzeMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return domain.QueryAnalysis{}, wrapTemporaryIfNeeded("analyze_query", err)
	}

	var wire queryAnalysisWire
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &wire); err != nil {
		return domain.QueryAnalysis{}, fmt.Errorf("parse analysis json: %w", err)
	}
	if wire.KeyTerms == nil {
		wire.KeyTerms = []string{}
	}
	return domain.QueryAnalysis{
		Intent:        domain.QueryIntent(wire.Type),
		ApplianceType: domain.ApplianceType(wire.ApplianceType),
		KeyTerms:      wire.KeyTerms,
		Confidence:    wire.Confidence,
		Strategy:      domain.SearchStrategy(wire.Strategy),
		OriginalQuery: query,
	}, nil
}

func (c *Client) complete(ctx context.Context, operation string, payload chatRequest) (string, error) {
	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", payload, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyDeepSeekError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("deepseek %s: empty choices", operation)
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
