package narrative

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/lox/genevaclimate/internal/htmlutil"
	"github.com/lox/genevaclimate/internal/metrics"
)

const systemPrompt = "You write two or three plain sentences summarising a city's yearly climate records. " +
	"Use only the figures provided, keep their units and rounding, and do not speculate about causes."

// OpenAIWriter asks a chat model for the narrative, falling back to another
// Writer when the request fails or returns nothing.
type OpenAIWriter struct {
	client   openai.Client
	model    string
	limiter  *rate.Limiter
	timeout  time.Duration
	fallback Writer
}

// NewOpenAIWriter creates a writer using apiKey. Extra client options are
// passed through, which tests use to point the client at a local server.
func NewOpenAIWriter(apiKey string, fallback Writer, opts ...option.RequestOption) (*OpenAIWriter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key not set")
	}
	if fallback == nil {
		fallback = TemplateWriter{}
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIWriter{
		client:   openai.NewClient(opts...),
		model:    openai.ChatModelGPT4oMini,
		limiter:  rate.NewLimiter(rate.Every(10*time.Second), 1),
		timeout:  30 * time.Second,
		fallback: fallback,
	}, nil
}

func (w *OpenAIWriter) Write(ctx context.Context, in Input) (string, error) {
	text, err := w.complete(ctx, in)
	if err == nil {
		metrics.NarrativeRequestsTotal.WithLabelValues("openai", "ok").Inc()
		return text, nil
	}
	metrics.NarrativeRequestsTotal.WithLabelValues("openai", "error").Inc()
	log.Printf("narrative: openai failed, using fallback: %v", err)
	return w.fallback.Write(ctx, in)
}

func (w *OpenAIWriter) complete(ctx context.Context, in Input) (string, error) {
	if len(in.Highlights) == 0 {
		return "", errors.New("no highlights")
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	resp, err := w.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage("Climate records for Geneva, Switzerland:\n" + facts(in)),
		},
		MaxCompletionTokens: openai.Int(300),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	// Models occasionally answer in HTML; the page wants plain prose.
	text := htmlutil.ToText(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}
