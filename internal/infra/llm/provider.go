// Package llm — Provider interface.
// Backends (Ollama, IONOS cloud inference, OPEA model-server) implement this
// interface so the orchestration core is never coupled to a specific vendor.
package llm

import (
	"context"
	"errors"
)

// ErrRerankUnsupported is returned by providers that have no rerank endpoint
// configured. Callers treat it like any other rerank failure: log and fall
// back to the pre-rerank ordering.
var ErrRerankUnsupported = errors.New("rerank not supported by this provider")

// Provider is the per-backend capability interface. One variant exists per
// configured backend; the Router selects exactly one per request by routing
// key. No method retries — retry policy belongs to the caller.
type Provider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Embed computes dense vector representations for a batch of texts.
	// Returned vectors are fitted to the configured target dimension.
	Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error)

	// Rerank scores each document against the query. Results carry the
	// caller's original document index. Providers without a rerank
	// endpoint return ErrRerankUnsupported.
	Rerank(ctx context.Context, req RerankRequest) ([]RerankResult, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the backend is reachable.
	HealthCheck(ctx context.Context) error
}
