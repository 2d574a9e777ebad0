package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "shelearns",
		Subsystem: "ai",
		Name:      "answer_duration_seconds",
		Help:      "Duration of AI assistant requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shelearns",
		Subsystem: "ai",
		Name:      "answer_failures_total",
		Help:      "Number of AI assistant failures",
	}, []string{"model"})
)

// OpenRouterConfig defines configuration options for the learning assistant.
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenRouterAssistant implements Assistant against any OpenAI-compatible
// chat completion API, OpenRouter by default.
type OpenRouterAssistant struct {
	client *openai.Client
	cfg    OpenRouterConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenRouterAssistant builds a new assistant using the provided configuration.
func NewOpenRouterAssistant(cfg OpenRouterConfig) (*OpenRouterAssistant, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("assistant api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}

	if cfg.Model == "" {
		cfg.Model = "deepseek/deepseek-r1-0528:free"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/TinsuJembere/shelearns-api/pkg/ai/openrouter")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	client := openai.NewClientWithConfig(config)

	return &OpenRouterAssistant{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Answer sends the conversation history plus the new question to the model
// and returns the assistant's reply.
func (a *OpenRouterAssistant) Answer(parent context.Context, history []Message, question string) (string, error) {
	ctx, span := a.tracer.Start(parent, "openrouter.answer", trace.WithAttributes(
		attribute.String("model", a.cfg.Model),
	))
	defer span.End()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: assistantSystemPrompt(),
	})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == "bot" || m.Role == openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
		Messages:    messages,
	})
	aiDuration.WithLabelValues(a.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", fmt.Errorf("assistant answer: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from assistant")
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	if answer == "" {
		aiFailures.WithLabelValues(a.cfg.Model).Inc()
		return "", fmt.Errorf("assistant returned an empty reply")
	}

	return answer, nil
}

func assistantSystemPrompt() string {
	return "You are SheLearns' learning assistant. Help women learning to code with clear, " +
		"encouraging, and practical answers. Keep replies focused on the question asked."
}
