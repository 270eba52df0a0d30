// Package retrieval implements the retrieval half of the RAG pipeline:
// embed the conversation's question, search the vector index, optionally
// rerank, and render a bounded context block with provenance.
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
)

const (
	// maxRerankPool caps over-fetching when reranking is active: the
	// reranker needs a wider candidate pool than topK to be effective.
	maxRerankPool = 20

	contextSeparator = "\n---\n"

	// rerankForcedKey is the backend whose embeddings always go through
	// reranking, regardless of the configuration flag.
	rerankForcedKey = "opea"
)

// Searcher is the external vector-search collaborator. The payload is
// deliberately opaque: deployed search services disagree on the envelope
// (top-level array, nested data field, nested first element), and the
// engine normalizes all of them.
type Searcher interface {
	Search(ctx context.Context, collection string, queryVector []float32, topK int) (any, error)
}

// Options configures an Engine.
type Options struct {
	TopK           int    // candidates in the final context; default 5
	RerankEnabled  bool   // config flag; opea embeddings override it to true
	RerankProvider string // routing key for rerank calls; empty → embedding provider
}

// Engine runs the retrieval pipeline. Stateless across requests.
type Engine struct {
	router *llm.Router
	search Searcher
	opts   Options
}

// Result is one retrieval outcome: the rendered context block plus the
// surviving (possibly reranked) hits for downstream citation.
type Result struct {
	Context string
	Hits    []llm.Hit
}

// NewEngine creates an Engine.
func NewEngine(router *llm.Router, search Searcher, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	return &Engine{router: router, search: search, opts: opts}
}

// Retrieve runs the pipeline for a conversation. The query is the
// concatenation of all user turns in order (question framing, not just the
// latest turn). Rerank failures degrade to the pre-rerank ordering; embed
// and search failures are returned to the caller.
func (e *Engine) Retrieve(ctx context.Context, msgs []llm.Message, collection, providerKey string) (*Result, error) {
	query := userQuery(msgs)
	if query == "" {
		return &Result{Hits: []llm.Hit{}}, nil
	}

	p, err := e.router.Route(providerKey)
	if err != nil {
		return nil, err
	}

	emb, err := p.Embed(ctx, llm.EmbedRequest{Texts: []string{query}})
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}
	if len(emb.Embeddings) == 0 {
		return nil, fmt.Errorf("retrieval: embed query: empty response")
	}

	rerankActive := e.rerankActive(providerKey)
	fetchK := e.opts.TopK
	if rerankActive {
		fetchK = min(3*e.opts.TopK, maxRerankPool)
	}

	raw, err := e.search.Search(ctx, collection, emb.Embeddings[0], fetchK)
	if err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}

	hits := hitsFromRecords(normalizeRecords(raw))

	if rerankActive && len(hits) > 0 {
		hits = e.rerankOrFallback(ctx, providerKey, query, hits)
	}
	if len(hits) > e.opts.TopK {
		hits = hits[:e.opts.TopK]
	}

	return &Result{Context: renderContext(hits), Hits: hits}, nil
}

// rerankActive decides whether to rerank for the resolved embedding
// provider. The opea model-server always reranks; otherwise the config
// flag governs.
func (e *Engine) rerankActive(providerKey string) bool {
	return e.router.Resolve(providerKey) == rerankForcedKey || e.opts.RerankEnabled
}

// rerankOrFallback reranks hits, falling back to the original ordering on
// any reranker failure so retrieval still completes.
func (e *Engine) rerankOrFallback(ctx context.Context, providerKey, query string, hits []llm.Hit) []llm.Hit {
	rerankKey := e.opts.RerankProvider
	if rerankKey == "" {
		rerankKey = providerKey
	}
	rp, err := e.router.Route(rerankKey)
	if err != nil {
		log.Warn().Err(err).Msg("rerank provider unavailable, keeping vector ordering")
		return hits
	}

	reranked, err := llm.RerankHits(ctx, rp, query, hits, e.opts.TopK)
	if err != nil {
		log.Warn().Err(err).Msg("reranking failed, keeping vector ordering")
		return hits
	}
	return reranked
}

// userQuery concatenates all user-role message contents in order.
func userQuery(msgs []llm.Message) string {
	var parts []string
	for _, m := range msgs {
		if m.Role == llm.RoleUser && strings.TrimSpace(m.Content) != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n")
}

// normalizeRecords flattens the known search envelope shapes into one
// record list.
func normalizeRecords(raw any) []map[string]any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []map[string]any:
		return v
	case []any:
		// nested first element: [[rec, rec, ...]]
		if len(v) == 1 {
			if inner, ok := v[0].([]any); ok {
				return normalizeRecords(inner)
			}
		}
		out := make([]map[string]any, 0, len(v))
		for _, elem := range v {
			if rec, ok := elem.(map[string]any); ok {
				out = append(out, rec)
			}
		}
		return out
	case map[string]any:
		for _, field := range []string{"data", "results"} {
			if nested, ok := v[field]; ok {
				return normalizeRecords(nested)
			}
		}
		return nil
	default:
		return nil
	}
}

// hitsFromRecords maps raw records to hits with best-effort extraction from
// labels, entity or raw fields.
func hitsFromRecords(records []map[string]any) []llm.Hit {
	hits := make([]llm.Hit, 0, len(records))
	for i, rec := range records {
		labels, _ := rec["labels"].(map[string]any)
		entity, _ := rec["entity"].(map[string]any)

		hit := llm.Hit{
			ID:     firstString(labels, entity, rec, "id", "identifier"),
			Text:   extractText(rec, labels, entity),
			Score:  firstFloat(rec, "score", "similarity", "distance"),
			Source: firstString(labels, entity, rec, "source", "filename"),
		}
		if hit.ID == "" {
			hit.ID = fmt.Sprintf("doc-%d", i)
		}
		if hit.Source == "" {
			hit.Source = fmt.Sprintf("doc-%d", i)
		}
		hits = append(hits, hit)
	}
	return hits
}

// extractText falls back through labels.text, text, content, finally the
// raw record JSON.
func extractText(rec, labels, entity map[string]any) string {
	for _, m := range []map[string]any{labels, entity, rec} {
		if m == nil {
			continue
		}
		for _, field := range []string{"text", "content"} {
			if s, ok := m[field].(string); ok && s != "" {
				return s
			}
		}
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return string(raw)
}

// firstString returns the first non-empty string under any of the keys,
// searching the maps in order.
func firstString(maps ...any) string {
	var ms []map[string]any
	var keys []string
	for _, arg := range maps {
		switch v := arg.(type) {
		case map[string]any:
			ms = append(ms, v)
		case string:
			keys = append(keys, v)
		}
	}
	for _, m := range ms {
		if m == nil {
			continue
		}
		for _, k := range keys {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// firstFloat returns the first numeric value under any of the keys.
func firstFloat(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case float32:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0
}

// renderContext formats surviving hits into the context block. Hits with
// empty or degenerate text are dropped.
func renderContext(hits []llm.Hit) string {
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		text := strings.TrimSpace(h.Text)
		if text == "" || text == "{}" || text == "null" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("[%s] (score: %.4f)\n %s", h.Source, h.DisplayScore(), text))
	}
	return strings.Join(blocks, contextSeparator)
}
