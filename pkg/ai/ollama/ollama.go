// Package ollama implements the ai.Client interface using a locally-hosted
// or remote Ollama server.
package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/vladprrs/ajtbd/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// Client talks to an Ollama server for job decomposition. Requests are
// throttled through a weighted semaphore so a small local server is not
// overwhelmed by parallel decomposition calls.
type Client struct {
	model string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	API *api.Client
}

// NewClientParams contains configuration options for creating a new Client.
type NewClientParams struct {
	Model string

	BaseURL string
	APIKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewClient creates a new Ollama-backed client. It connects to the server
// at BaseURL (or the Ollama default if empty).
func NewClient(params NewClientParams) (*Client, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.APIKey,
			},
			rt: http.DefaultTransport,
		},
	}

	concurrency := params.MaxConcurrentRequests
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Client{
		model:      params.Model,
		reqLock:    semaphore.NewWeighted(concurrency),
		baseURL:    u,
		apiKey:     params.APIKey,
		httpClient: httpClient,
		API:        api.NewClient(u, httpClient),
	}, nil
}
