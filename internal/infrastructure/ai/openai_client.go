package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"aisle-server/internal/infrastructure/config"
)

// Generator AI生成サービスインターフェース
type Generator interface {
	// Generate システムプロンプトとユーザープロンプトからテキストを生成
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient OpenAI実装のGenerator
type OpenAIClient struct {
	client openai.Client
	model  string
	tracer trace.Tracer
}

// NewOpenAIClient 新しいOpenAIClientを作成
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &OpenAIClient{
		client: client,
		model:  cfg.Model,
		tracer: otel.Tracer("openai-client"),
	}
}

// Generate システムプロンプトとユーザープロンプトからテキストを生成
func (c *OpenAIClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "OpenAIClient.Generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.model", c.model),
		attribute.Int("ai.prompt_length", len(userPrompt)),
	)

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	if len(completion.Choices) == 0 {
		err := fmt.Errorf("completion returned no choices")
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return "", err
	}

	content := completion.Choices[0].Message.Content
	span.SetAttributes(attribute.Int("ai.response_length", len(content)))
	span.SetStatus(otelcodes.Ok, "completion generated")
	return content, nil
}
