// Package openai implements the ai.Client interface against any
// OpenAI-compatible chat completion endpoint.
package openai

import (
	"sync"

	"github.com/vladprrs/ajtbd/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client talks to an OpenAI-compatible API for job decomposition.
// Create one with NewClient.
type Client struct {
	model   string
	baseURL string
	apiKey  string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	Chat *openai.Client
}

// NewClientParams configures an OpenAI-backed client. BaseURL may be empty
// to target the official API, which also enables the gpt-5 temperature
// workaround in reasoning mode.
type NewClientParams struct {
	Model   string
	BaseURL string
	APIKey  string
}

// NewClient creates a Client for the configured endpoint. A missing API key
// yields a client with no underlying connection, which fails on first use.
func NewClient(params NewClientParams) *Client {
	return &Client{
		model:   params.Model,
		baseURL: params.BaseURL,
		apiKey:  params.APIKey,
		Chat:    newOpenaiClient(params.BaseURL, params.APIKey),
	}
}

func newOpenaiClient(baseURL, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}
