package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/lexhaven/lexrag/internal/domain"
	"github.com/lexhaven/lexrag/internal/metrics"
)

// go-openai drops a zero temperature on the wire (omitempty); the smallest
// positive float32 keeps the field explicit while staying effectively zero.
const temperatureZero = math.SmallestNonzeroFloat32

// Generator produces natural-language text via the OpenAI chat completions
// API, and optionally speech via the audio API.
type Generator struct {
	client   *openai.Client
	model    string
	ttsModel string
	ttsVoice string
	logger   *zap.Logger
}

// GeneratorConfig holds the answer-generation provider settings.
type GeneratorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	TTSModel string
	TTSVoice string
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		ttsModel: cfg.TTSModel,
		ttsVoice: cfg.TTSVoice,
		logger:   logger,
	}
}

// Complete sends the ordered message sequence and returns the generated text.
func (g *Generator) Complete(ctx context.Context, messages []domain.Turn, temperature float32) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	if temperature == 0 {
		temperature = temperatureZero
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: temperature,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", classifyGenerationError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrAnswerProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// WithModel returns a copy of the generator targeting a different model.
// Used to drive summarization on a cheaper model than answer generation.
func (g *Generator) WithModel(model string) *Generator {
	clone := *g
	clone.model = model
	return &clone
}

// Speak converts text to speech and returns the raw audio bytes.
func (g *Generator) Speak(ctx context.Context, text string) ([]byte, error) {
	resp, err := g.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(g.ttsModel),
		Input: text,
		Voice: openai.SpeechVoice(g.ttsVoice),
	})
	if err != nil {
		return nil, fmt.Errorf("create speech: %w: %w", err, domain.ErrAnswerProviderError)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read speech response: %w", err)
	}
	return audio, nil
}

func classifyGenerationError(err error) error {
	if isConnectionError(err) {
		return fmt.Errorf("completion request: %w: %w: %w",
			err, domain.ErrConnection, domain.ErrAnswerProviderError)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrAnswerProviderError)
	}

	return fmt.Errorf("completion request failed: %w: %w", err, domain.ErrAnswerProviderError)
}
