package questions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
)

const (
	// DefaultGeneratorBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultGeneratorBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultGeneratorModel   = "gemini-1.5-flash"
)

// Generator produces the question document (as JSON text) for the generation endpoint.
type Generator interface {
	Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (string, error)
}

// OpenAIGenerator asks an OpenAI-compatible chat model for questions.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// NewOpenAIGenerator builds a generator. Empty baseURL and model fall back to the Gemini defaults.
func NewOpenAIGenerator(apiKey, baseURL, model string, log *logger.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultGeneratorBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if model == "" {
		model = DefaultGeneratorModel
	}
	if log == nil {
		log = logger.Nop()
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, topic string, difficulty domain.Difficulty, count int) (string, error) {
	g.log.Debug("generating questions", "topic", topic, "difficulty", difficulty, "count", count, "model", g.model)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(topic, difficulty, count)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion")
	}
	content := StripCodeFence(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty completion content")
	}
	return content, nil
}

const systemPrompt = "You write multiple-choice quiz questions. Reply with a single JSON object and nothing else."

func buildPrompt(topic string, difficulty domain.Difficulty, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate %d %s level multiple-choice interview questions on the topic %q.\n\n", count, difficulty, topic)
	sb.WriteString("Requirements:\n")
	fmt.Fprintf(&sb, "- Each question has exactly %d options\n", domain.OptionsPerQuestion)
	sb.WriteString("- \"answer\" is the 0-based index of the correct option\n")
	sb.WriteString("- No markdown, no commentary outside the JSON\n\n")
	sb.WriteString(`Format: {"questions":[{"question":"...","options":["...","...","...","..."],"answer":1}]}`)
	return sb.String()
}

// StripCodeFence removes a surrounding ``` or ```json fence some models add anyway.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
