// Package llm — OpenAI-compatible HTTP adapter.
// All three configured backends (local Ollama runtime, IONOS cloud inference,
// OPEA model-server) speak the OpenAI wire dialect, so a single adapter
// variant is instantiated once per backend from its own endpoint set.
// Endpoints used:
//   - POST .../chat/completions — non-streaming chat completion
//   - POST .../embeddings       — batch embedding
//   - POST .../rerank           — second-pass relevance scoring (optional)
//   - GET  .../models           — health check
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"

	// Generation latency dominates, so chat gets a materially longer
	// timeout than the utility capabilities (~30:1).
	defaultChatTimeout = 300 * time.Second
	defaultUtilTimeout = 10 * time.Second
)

// Endpoint configures one capability of a backend.
type Endpoint struct {
	BaseURL string        // e.g. "http://localhost:11434/v1"
	Model   string        // default model for this capability
	APIKey  string        // bearer token, empty for local backends
	Timeout time.Duration // 0 → capability default
}

// Options configures an HTTPProvider for one backend.
type Options struct {
	// Key is the routing key ("ollama", "ionos", "opea") and the tag
	// attached to every error originating from this backend.
	Key        string
	Chat       Endpoint
	Embeddings Endpoint
	// Rerank with an empty BaseURL marks the capability as unsupported.
	Rerank    Endpoint
	TargetDim int
}

// HTTPProvider implements Provider against an OpenAI-compatible backend.
type HTTPProvider struct {
	key          string
	chat         Endpoint
	embed        Endpoint
	rerank       Endpoint
	targetDim    int
	chatClient   *http.Client
	utilClient   *http.Client
	rerankClient *http.Client
}

// NewHTTPProvider creates a provider for one backend. Timeout policy is per
// capability: chat defaults to 300s, embeddings and rerank to 10s. Rerank
// inherits the embeddings timeout unless its endpoint sets its own.
func NewHTTPProvider(opts Options) *HTTPProvider {
	chatTimeout := opts.Chat.Timeout
	if chatTimeout <= 0 {
		chatTimeout = defaultChatTimeout
	}
	utilTimeout := opts.Embeddings.Timeout
	if utilTimeout <= 0 {
		utilTimeout = defaultUtilTimeout
	}
	rerankTimeout := opts.Rerank.Timeout
	if rerankTimeout <= 0 {
		rerankTimeout = utilTimeout
	}
	return &HTTPProvider{
		key:          opts.Key,
		chat:         opts.Chat,
		embed:        opts.Embeddings,
		rerank:       opts.Rerank,
		targetDim:    opts.TargetDim,
		chatClient:   &http.Client{Timeout: chatTimeout},
		utilClient:   &http.Client{Timeout: utilTimeout},
		rerankClient: &http.Client{Timeout: rerankTimeout},
	}
}

// ─── internal wire types ─────────────────────────────────────────────────────

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content any    `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// embeddingsResponse tolerates the field-name and nesting variants the
// backends produce. Exactly one of the three shapes is populated.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Embeddings [][]float32 `json:"embeddings"`
	Embedding  []float32   `json:"embedding"`
	Usage      struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type rerankRow struct {
	Index          *int     `json:"index"`
	RelevanceScore *float64 `json:"relevance_score"`
	Score          *float64 `json:"score"`
	Document       any      `json:"document"`
}

// rerankResponse tolerates both envelope names seen across rerank servers.
type rerankResponse struct {
	Results []rerankRow `json:"results"`
	Data    []rerankRow `json:"data"`
}

// ─── Provider implementation ─────────────────────────────────────────────────

// ChatCompletion posts an OpenAI-compatible chat payload. Extra fields are
// merged into the body with precedence over the defaults, but "messages" can
// never be overridden. Failures are provider-tagged and not retried.
func (p *HTTPProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.chat.Model
	}

	body := map[string]any{
		"model":       model,
		"temperature": req.Temperature,
		"stream":      false,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	for k, v := range req.Extra {
		if k == "messages" {
			continue
		}
		body[k] = v
	}
	body["messages"] = req.Messages

	respBody, err := p.doPost(ctx, p.chatClient, p.chat, "/chat/completions", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close() //nolint:errcheck

	var decoded chatCompletionResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("%s chat: decode response: %w", p.key, decodeErr)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("%s chat: response contained no choices", p.key)
	}
	return &ChatResponse{
		Content:    CoerceContent(decoded.Choices[0].Message.Content),
		StopReason: decoded.Choices[0].FinishReason,
		Tokens:     decoded.Usage.TotalTokens,
	}, nil
}

// Embed computes embeddings for each text in one batch call. The response
// vector field name and nesting differ by backend; normalization happens
// here and is never leaked to callers. Every returned vector is fitted to
// the configured target dimension.
func (p *HTTPProvider) Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error) {
	if len(req.Texts) == 0 {
		return &EmbedResponse{Embeddings: [][]float32{}}, nil
	}

	model := req.Model
	if model == "" {
		model = p.embed.Model
	}
	format := req.EncodingFormat
	if format == "" {
		format = "float"
	}

	body := map[string]any{
		"model":           model,
		"input":           req.Texts,
		"encoding_format": format,
	}

	respBody, err := p.doPost(ctx, p.utilClient, p.embed, "/embeddings", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close() //nolint:errcheck

	var decoded embeddingsResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("%s embeddings: decode response: %w", p.key, decodeErr)
	}

	vectors := collectVectors(decoded)
	if len(vectors) != len(req.Texts) {
		return nil, fmt.Errorf("%s embeddings: got %d vectors for %d inputs", p.key, len(vectors), len(req.Texts))
	}

	out := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if i == 0 {
			logObservedDimension(p.key, len(vec), p.targetDim)
		}
		out[i] = FitDimension(vec, p.targetDim)
	}
	return &EmbedResponse{Embeddings: out, Tokens: decoded.Usage.TotalTokens}, nil
}

// collectVectors flattens the three known embeddings envelope shapes.
func collectVectors(decoded embeddingsResponse) [][]float32 {
	switch {
	case len(decoded.Data) > 0:
		out := make([][]float32, len(decoded.Data))
		for i, d := range decoded.Data {
			out[i] = d.Embedding
		}
		return out
	case len(decoded.Embeddings) > 0:
		return decoded.Embeddings
	case len(decoded.Embedding) > 0:
		return [][]float32{decoded.Embedding}
	default:
		return nil
	}
}

// Rerank scores documents against the query. The caller's original document
// index is restored on every result regardless of reordering in the backend
// response; a missing relevance score defaults to zero rather than failing,
// and each original index appears at most once even if the backend repeats it.
func (p *HTTPProvider) Rerank(ctx context.Context, req RerankRequest) ([]RerankResult, error) {
	if p.rerank.BaseURL == "" {
		return nil, fmt.Errorf("%s rerank: %w", p.key, ErrRerankUnsupported)
	}

	model := req.Model
	if model == "" {
		model = p.rerank.Model
	}
	topN := req.TopN
	if topN <= 0 {
		topN = len(req.Documents)
	}

	body := map[string]any{
		"model":            model,
		"query":            req.Query,
		"documents":        req.Documents,
		"top_n":            topN,
		"return_documents": true,
	}

	respBody, err := p.doPost(ctx, p.rerankClient, p.rerank, "/rerank", body)
	if err != nil {
		return nil, err
	}
	defer respBody.Close() //nolint:errcheck

	var decoded rerankResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("%s rerank: decode response: %w", p.key, decodeErr)
	}

	rows := decoded.Results
	if len(rows) == 0 {
		rows = decoded.Data
	}

	seen := make(map[int]bool, len(rows))
	results := make([]RerankResult, 0, len(rows))
	for pos, row := range rows {
		idx := pos
		if row.Index != nil {
			idx = *row.Index
		}
		if idx < 0 || idx >= len(req.Documents) || seen[idx] {
			continue
		}
		seen[idx] = true
		score := 0.0
		if row.RelevanceScore != nil {
			score = *row.RelevanceScore
		} else if row.Score != nil {
			score = *row.Score
		}
		results = append(results, RerankResult{
			Index:          idx,
			RelevanceScore: score,
			Document:       req.Documents[idx],
		})
	}
	return results, nil
}

// ModelInfo returns static metadata for this backend.
func (p *HTTPProvider) ModelInfo() ModelMeta {
	return ModelMeta{
		ID:       p.chat.Model,
		Provider: p.key,
		Rerank:   p.rerank.BaseURL != "",
	}
}

// HealthCheck calls GET .../models — returns nil if the backend is reachable.
func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.chat.BaseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("%s healthcheck: build request: %w", p.key, err)
	}
	if p.chat.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.chat.APIKey)
	}
	resp, err := p.utilClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s healthcheck: %w", p.key, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s healthcheck: status %d", p.key, resp.StatusCode)
	}
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doPost sends a POST to ep.BaseURL+path and returns the response body.
// Transport errors and non-2xx statuses come back provider-tagged.
// Caller is responsible for closing the returned ReadCloser.
func (p *HTTPProvider) doPost(ctx context.Context, client *http.Client, ep Endpoint, path string, body any) (io.ReadCloser, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%s post %s: marshal body: %w", p.key, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%s post %s: build request: %w", p.key, path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	if ep.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+ep.APIKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s post %s: %w", p.key, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("%s post %s: status %d: %s", p.key, path, resp.StatusCode, bytes.TrimSpace(detail))
	}
	return resp.Body, nil
}
