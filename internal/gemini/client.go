// Package gemini is a thin HTTP client for the Google Generative Language
// API, covering the two calls the engine needs: chapter generation and text
// embedding.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GenerateOptions are the per-call sampling parameters.
type GenerateOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Client calls the Gemini API for generation and embedding.
type Client struct {
	apiKey     string
	model      string
	embedModel string
	baseURL    string
	httpClient *http.Client
	stats      *Stats
}

// NewClient creates a client for the given models. The embedding model must
// match the one used to build the corpus or similarity scores are meaningless.
func NewClient(apiKey, model, embedModel string) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		embedModel: embedModel,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		stats: NewStats(time.Hour),
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []generatePart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type embedRequest struct {
	Model   string          `json:"model"`
	Content generateContent `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Generate produces chapter text for a prompt. An empty string with a nil
// error means the model returned no candidates; callers treat that as a
// failed iteration, not a service error.
func (c *Client) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxTokens,
		},
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	start := time.Now()
	respBody, status, err := c.post(ctx, url, reqBody)
	c.stats.Record(OpGenerate, time.Since(start).Milliseconds())
	if err != nil {
		return "", &GenerationError{Message: err.Error()}
	}
	if status != http.StatusOK {
		return "", &GenerationError{StatusCode: status, Message: string(respBody)}
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &GenerationError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if apiResp.Error != nil {
		return "", &GenerationError{StatusCode: apiResp.Error.Code, Message: apiResp.Error.Message}
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}

	var text string
	for _, p := range apiResp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}

// Embed returns the embedding vector for a text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := embedRequest{
		Model: "models/" + c.embedModel,
		Content: generateContent{
			Parts: []generatePart{{Text: text}},
		},
	}

	url := fmt.Sprintf("%s/models/%s:embedContent?key=%s", c.baseURL, c.embedModel, c.apiKey)

	start := time.Now()
	respBody, status, err := c.post(ctx, url, reqBody)
	c.stats.Record(OpEmbed, time.Since(start).Milliseconds())
	if err != nil {
		return nil, &EmbeddingError{Message: err.Error()}
	}
	if status != http.StatusOK {
		return nil, &EmbeddingError{StatusCode: status, Message: string(respBody)}
	}

	var apiResp embedResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, &EmbeddingError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if apiResp.Error != nil {
		return nil, &EmbeddingError{StatusCode: apiResp.Error.Code, Message: apiResp.Error.Message}
	}
	if len(apiResp.Embedding.Values) == 0 {
		return nil, &EmbeddingError{Message: "empty embedding in response"}
	}

	return apiResp.Embedding.Values, nil
}

func (c *Client) post(ctx context.Context, url string, reqBody any) ([]byte, int, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("gemini api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// Stats returns latency aggregates for recent API calls.
func (c *Client) Stats() map[string]StatsSnapshot {
	return c.stats.Snapshot()
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
