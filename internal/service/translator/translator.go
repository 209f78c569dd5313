// Package translator provides one-shot text translation through the chat
// completions API, complementing the realtime audio relay for plain text
// input.
package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"

	"realtime-translation-relay/internal/language"
	"realtime-translation-relay/internal/observability/logging"
	"realtime-translation-relay/internal/observability/metrics"
)

const defaultModel = "gpt-4o"

var (
	ErrEmptyText           = errors.New("translator: empty input text")
	ErrUnsupportedLanguage = errors.New("translator: unsupported target language")
)

// Translator translates text to a target language, detecting the source
// language automatically.
type Translator struct {
	client  openai.Client
	model   string
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New builds a Translator. Extra request options are appended after the
// API key, so callers can override the base URL.
func New(apiKey, model string, opts ...option.RequestOption) *Translator {
	if model == "" {
		model = defaultModel
	}
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Translator{
		client:  openai.NewClient(clientOpts...),
		model:   model,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("translator"),
	}
}

// Translate returns text translated to targetLang. The model is instructed
// to return only the translation, so the response body is the result.
func (t *Translator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if !language.IsSupported(targetLang) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedLanguage, targetLang)
	}

	start := time.Now()
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(translationPrompt(targetLang)),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		err = fmt.Errorf("translator: chat completion: %w", err)
		t.metrics.RecordTranslation("text", err, time.Since(start).Seconds())
		return "", err
	}
	if len(resp.Choices) == 0 {
		err = errors.New("translator: empty completion response")
		t.metrics.RecordTranslation("text", err, time.Since(start).Seconds())
		return "", err
	}

	result := strings.TrimSpace(resp.Choices[0].Message.Content)
	t.metrics.RecordTranslation("text", nil, time.Since(start).Seconds())
	t.log.Debug().
		Str("targetLang", targetLang).
		Int("inputLen", len(text)).
		Int("outputLen", len(result)).
		Msg("Translated text")
	return result, nil
}

func translationPrompt(targetLang string) string {
	return fmt.Sprintf(
		"You are a professional translator. Translate the user's text to %s. "+
			"Detect the source language automatically. "+
			"Return only the translation with no explanations or quotes.",
		language.NameFor(targetLang),
	)
}
