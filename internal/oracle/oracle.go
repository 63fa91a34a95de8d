// Package oracle wraps the remote translation model behind a minimal
// text-to-text interface: a system instruction and user content go in,
// the model's completion text comes out. The rest of the pipeline never
// sees transport details.
package oracle

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"office-translator/internal/logger"
	"office-translator/internal/types"
)

// Oracle is the translation completion service. Implementations must be
// safe for concurrent use. There is no retry or backoff at this layer: a
// failed call is terminal for the job that made it.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatOracle implements Oracle on an OpenAI-compatible chat completion
// endpoint via the eino chat model.
type ChatOracle struct {
	model *openai.ChatModel
	name  string
}

// NewChatOracle creates a ChatOracle for the given credentials. baseURL
// may be empty for the default endpoint.
func NewChatOracle(ctx context.Context, apiKey, baseURL, model string) (*ChatOracle, error) {
	if apiKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "oracle API key is not configured", nil)
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	cfg := &openai.ChatModelConfig{
		Model:  model,
		APIKey: apiKey,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	cm, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrOracle, "failed to create chat model", err)
	}

	logger.Info("oracle client created",
		logger.String("model", model),
		logger.Bool("customBaseURL", baseURL != ""))
	return &ChatOracle{model: cm, name: model}, nil
}

// Complete sends one chat completion request and returns the model text.
func (o *ChatOracle) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()

	resp, err := o.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		logger.Error("oracle call failed", err, logger.String("model", o.name))
		return "", types.NewAppError(types.ErrOracle, "translation service call failed", err)
	}

	logger.Debug("oracle call completed",
		logger.String("model", o.name),
		logger.Int("responseLength", len(resp.Content)),
		logger.Int64("elapsedMs", time.Since(start).Milliseconds()))
	return resp.Content, nil
}

// CanonicalLanguage normalizes a target-language request value. BCP 47
// tags like "tr" or "de" become their English display name ("Turkish",
// "German") so prompts read naturally; anything that does not resolve
// to a known language, such as "Turkish" itself, is passed through
// trimmed.
func CanonicalLanguage(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	tag, err := language.Parse(s)
	if err != nil {
		return s
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return s
}
