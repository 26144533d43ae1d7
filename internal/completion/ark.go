package completion

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ArkConfig holds provider credentials. Model is the default model; each
// Generate call overrides it with the agent's own model identifier.
type ArkConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Region  string
}

// ArkClient backs the Client interface with an eino ChatModel talking to an
// Ark (OpenAI-compatible) endpoint.
type ArkClient struct {
	chatModel model.ChatModel
}

func NewArkClient(ctx context.Context, cfg ArkConfig) (*ArkClient, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ark: APIKey and Model are required")
	}
	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("ark: create chat model: %w", err)
	}
	return &ArkClient{chatModel: chatModel}, nil
}

func (c *ArkClient) Generate(ctx context.Context, transcript []Turn, p Params) (string, error) {
	msgs := toSchemaMessages(transcript)
	opts := []model.Option{
		model.WithTemperature(float32(p.Temperature)),
		model.WithMaxTokens(p.MaxTokens),
	}
	if p.Model != "" {
		opts = append(opts, model.WithModel(p.Model))
	}
	out, err := c.chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out.Content, nil
}

func toSchemaMessages(transcript []Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(transcript))
	for _, turn := range transcript {
		switch turn.Role {
		case RoleSystem:
			msgs = append(msgs, schema.SystemMessage(turn.Text))
		case RoleUser:
			msgs = append(msgs, schema.UserMessage(turn.Text))
		case RoleAssistant:
			msgs = append(msgs, schema.AssistantMessage(turn.Text, nil))
		}
	}
	return msgs
}
