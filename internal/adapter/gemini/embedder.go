// Package gemini adapts the Gemini embedding API to the pipeline's Embedder
// seam. The embedder is "dynamic": a caller-supplied key (BYOK) takes
// precedence over the configured default, and the underlying client is
// rebuilt only when the effective key changes.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"clipseek/internal/config"
)

// ErrMissingAPIKey is the configuration fault: no usable key before any
// network call. HTTP callers map it to an unauthorized response so the
// frontend can prompt for a key instead of retrying.
var ErrMissingAPIKey = errors.New("no API key provided: set GEMINI_API_KEY or provide one via header")

const embeddingModel = "text-embedding-004"

// ResolveKey picks the effective API key: the per-request override when
// present, the configured fallback otherwise. Empty and placeholder keys are
// rejected up front.
func ResolveKey(override, fallback string) (string, error) {
	key := override
	if key == "" {
		key = fallback
	}
	if key == "" || key == config.PlaceholderAPIKey {
		return "", ErrMissingAPIKey
	}
	return key, nil
}

type DynamicEmbedder struct {
	defaultKey string
	client     *genai.Client
	currentKey string
	mu         sync.RWMutex
	clientOpts []option.ClientOption
}

func NewDynamicEmbedder(defaultKey string, opts ...option.ClientOption) *DynamicEmbedder {
	return &DynamicEmbedder{
		defaultKey: defaultKey,
		clientOpts: opts,
	}
}

// Embed embeds text with the configured default key.
func (e *DynamicEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedWithKey(ctx, "", text)
}

// EmbedWithKey embeds text with an optional per-request key override.
func (e *DynamicEmbedder) EmbedWithKey(ctx context.Context, apiKey, text string) ([]float32, error) {
	key, err := ResolveKey(apiKey, e.defaultKey)
	if err != nil {
		return nil, err
	}

	client, err := e.getClient(ctx, key)
	if err != nil {
		return nil, err
	}

	model := client.EmbeddingModel(embeddingModel)
	res, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}

	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding received")
	}

	return res.Embedding.Values, nil
}

func (e *DynamicEmbedder) getClient(ctx context.Context, key string) (*genai.Client, error) {
	e.mu.RLock()
	if e.client != nil && e.currentKey == key {
		defer e.mu.RUnlock()
		return e.client, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	// Double check
	if e.client != nil && e.currentKey == key {
		return e.client, nil
	}

	if e.client != nil {
		if err := e.client.Close(); err != nil {
			slog.Warn("failed to close previous genai client", "error", err)
		}
	}

	opts := append(e.clientOpts, option.WithAPIKey(key))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	e.client = client
	e.currentKey = key
	return client, nil
}
