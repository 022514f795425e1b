// Package ollama embeds macro text through a local Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const (
	// DefaultModel is the recommended embedding model
	DefaultModel = "nomic-embed-text"
	// DefaultURL is the default Ollama API endpoint
	DefaultURL = "http://localhost:11434"

	heartbeatTimeout = 2 * time.Second
)

var (
	ErrEmptyText     = errors.New("text to embed is empty")
	ErrNoEmbedding   = errors.New("server returned no embedding")
	ErrModelNotFound = errors.New("embedding model not found")
)

// Client embeds macro text with a single model
type Client struct {
	api   *api.Client
	model string
}

// NewClient creates a client for the server at rawURL. Empty arguments
// select DefaultURL and DefaultModel.
func NewClient(rawURL, model string) (*Client, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ollama url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama url: %s", rawURL)
	}

	return &Client{
		api:   api.NewClient(base, http.DefaultClient),
		model: model,
	}, nil
}

// Available reports whether the server answers a heartbeat within a
// couple of seconds
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()
	return c.api.Heartbeat(ctx) == nil
}

// Embed returns the embedding vector of text
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	resp, err := c.api.Embed(ctx, &api.EmbedRequest{
		Model: c.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, ErrNoEmbedding
	}

	vec := make([]float64, len(resp.Embeddings[0]))
	for i, v := range resp.Embeddings[0] {
		vec[i] = float64(v)
	}
	return vec, nil
}

// CheckModel returns ErrModelNotFound unless the model has been pulled.
// A model listed with the ":latest" tag matches its bare name.
func (c *Client) CheckModel(ctx context.Context) error {
	resp, err := c.api.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	for _, m := range resp.Models {
		if strings.TrimSuffix(m.Name, ":latest") == strings.TrimSuffix(c.model, ":latest") {
			return nil
		}
	}
	return fmt.Errorf("%w: %s (run: ollama pull %s)", ErrModelNotFound, c.model, c.model)
}

// Model returns the embedding model name
func (c *Client) Model() string {
	return c.model
}
