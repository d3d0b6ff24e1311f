package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"gentletalk/internal/bootstrap/logging"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIClient performs one chat completion per call. Failures are never retried.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	timeout     time.Duration
}

var _ ports.GenerationClient = (*OpenAIClient)(nil)

func NewOpenAIClient(opts Options) *OpenAIClient {
	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(key))
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}

	return &OpenAIClient{
		client:      openai.NewClient(reqOpts...),
		model:       opts.Model,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
	}
}

func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	if ctx == nil {
		return "", errors.New("context is required")
	}
	parent := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "generation.openai"), slog.String("model", c.model))
	started := time.Now()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		if parentErr := parent.Err(); parentErr != nil {
			return "", parentErr
		}
		if ctx.Err() != nil {
			return "", errs.WithKind(err, errs.KindProviderError, "chat completion timed out")
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			logging.Warn(logCtx, "generation provider rejected request", slog.Int("status", apiErr.StatusCode))
		}
		return "", errs.WithKind(err, errs.KindProviderError, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errs.E(errs.KindProviderError, "chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errs.E(errs.KindProviderError, "chat completion returned empty content")
	}

	logging.Debug(logCtx, "generation completed",
		slog.Duration("elapsed", time.Since(started)),
		slog.Int64("total_tokens", resp.Usage.TotalTokens),
	)
	return content, nil
}
