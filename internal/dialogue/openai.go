package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultModel        = openai.GPT4
	greetingMaxTokens   = 200
	respondMaxTokens    = 300
	dialogueTemperature = 0.7
)

// OpenAIEngine implements Engine on the OpenAI chat completions API.
type OpenAIEngine struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures the OpenAI-backed dialogue engine.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional override for OpenAI-compatible gateways
	Model   string // optional, defaults to GPT-4
}

// NewOpenAIEngine creates a dialogue engine backed by OpenAI.
func NewOpenAIEngine(cfg OpenAIConfig) *OpenAIEngine {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAIEngine{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Greet returns the opening utterance for a call. Failures fall back to the
// scripted greeting so the call can proceed.
func (e *OpenAIEngine) Greet(ctx context.Context, params GreetParams) (string, error) {
	var prompt string
	if params.Purpose == domain.CallPurposeReminder {
		prompt = reminderGreetingPrompt(params)
	} else {
		prompt = bookingGreetingPrompt(params)
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: dialogueTemperature,
		MaxTokens:   greetingMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPersona},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		logger.Base().Warn("greeting generation failed, using scripted fallback", zap.Error(err))
		return FallbackGreeting(params.CustomerName, params.VehicleModel), nil
	}
	if len(resp.Choices) == 0 {
		return FallbackGreeting(params.CustomerName, params.VehicleModel), nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Respond returns the reply and structured intent for the latest customer
// utterance in the transcript.
func (e *OpenAIEngine) Respond(ctx context.Context, params RespondParams) (*TurnResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(params.Transcript)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: respondSystemPrompt(params),
	})
	for _, turn := range params.Transcript {
		role := openai.ChatMessageRoleUser
		if turn.Role == domain.TranscriptRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Content})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: dialogueTemperature,
		MaxTokens:   respondMaxTokens,
		Messages:    messages,
	})
	if err != nil {
		return nil, fmt.Errorf("dialogue completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("dialogue completion returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	return parseTurnResult(raw), nil
}

// parseTurnResult decodes the model's JSON reply. Non-JSON output degrades
// to a plain message with unknown intent so the conversation continues.
func parseTurnResult(raw string) *TurnResult {
	var result TurnResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return &TurnResult{
			Message:       raw,
			Intent:        "unknown",
			NeedsFollowup: true,
		}
	}
	return &result
}
