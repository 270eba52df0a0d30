// Package llm defines the model-agnostic provider gateway.
// All types here are shared between the provider interface and the
// OpenAI-compatible HTTP adapter that every configured backend speaks.
package llm

// Conversation roles. Order of messages is semantically significant: the
// most recent user turn drives intent detection and context injection.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleFunction  = "function"
)

// Message represents a single turn in a conversation (role + content).
// Messages are value objects; callers build new slices instead of mutating.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// Extra fields are merged into the request body verbatim. They take
	// precedence over the defaults above but never override "messages".
	Extra map[string]any
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text, already coerced to a string.
	StopReason string // "stop" | "length" | "error"
	Tokens     int    // Total tokens consumed (prompt + completion).
}

// EmbedRequest is the input for a batch embedding call.
type EmbedRequest struct {
	// Model overrides the provider default when non-empty.
	Model string
	Texts []string
	// EncodingFormat is passed through to the backend ("float" when empty).
	EncodingFormat string
}

// EmbedResponse is the output from a batch embedding call.
// Embeddings[i] corresponds to Texts[i] in the request. Every vector has
// already been fitted to the configured target dimension.
type EmbedResponse struct {
	Embeddings [][]float32
	Tokens     int
}

// RerankRequest is the input for a second-pass relevance scoring call.
type RerankRequest struct {
	// Model overrides the provider default when non-empty.
	Model     string
	Query     string
	Documents []string
	TopN      int
}

// RerankResult scores one input document against the query.
// Index is always a valid index into the request's Documents slice,
// regardless of any reordering in the backend response.
type RerankResult struct {
	Index          int
	RelevanceScore float64
	Document       string
}

// Hit is a scored retrieval candidate. Score is the vector-similarity score
// from the initial search; Relevance is set by RerankHits and supersedes
// Score for ordering while Score is retained for observability.
type Hit struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	Relevance float64 `json:"relevance,omitempty"`
	Source    string  `json:"source"`
}

// DisplayScore returns the score a hit should be presented with: the rerank
// relevance when one was assigned, otherwise the retrieval similarity.
func (h Hit) DisplayScore() float64 {
	if h.Relevance != 0 {
		return h.Relevance
	}
	return h.Score
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "meta-llama/llama-3.1-8b-instruct"
	Provider string // routing key: "ollama", "ionos" or "opea"
	Rerank   bool   // whether the backend exposes a rerank endpoint
}
