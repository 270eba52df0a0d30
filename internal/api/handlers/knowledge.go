package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
	"github.com/plantcopilot/plantcopilot/internal/infra/vectorstore"
)

// DocumentStore is the ingestion surface of the vector store.
type DocumentStore interface {
	AddDocuments(ctx context.Context, collection string, docs []vectorstore.Document) error
}

// KnowledgeHandler serves POST /api/v1/knowledge/documents: embeds incoming
// documents through the routed provider and adds them to the vector store.
type KnowledgeHandler struct {
	router            *llm.Router
	store             DocumentStore
	defaultCollection string
}

// NewKnowledgeHandler creates a KnowledgeHandler.
func NewKnowledgeHandler(router *llm.Router, store DocumentStore, defaultCollection string) *KnowledgeHandler {
	return &KnowledgeHandler{router: router, store: store, defaultCollection: defaultCollection}
}

type ingestDocument struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
}

type ingestRequest struct {
	Collection   string           `json:"collection"`
	HostProvider string           `json:"hostProvider"`
	Documents    []ingestDocument `json:"documents"`
}

// Ingest embeds and stores a batch of documents.
func (h *KnowledgeHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "documents must not be empty")
		return
	}
	for _, d := range req.Documents {
		if d.Content == "" {
			writeError(w, http.StatusBadRequest, "document content must not be empty")
			return
		}
	}

	collection := req.Collection
	if collection == "" {
		collection = h.defaultCollection
	}

	p, err := h.router.Route(req.HostProvider)
	if err != nil {
		log.Error().Err(err).Str("provider", req.HostProvider).Msg("no provider for ingestion")
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	texts := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		texts[i] = d.Content
	}
	emb, err := p.Embed(r.Context(), llm.EmbedRequest{Texts: texts})
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("embedding failed during ingestion")
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	docs := make([]vectorstore.Document, len(req.Documents))
	for i, d := range req.Documents {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		docs[i] = vectorstore.Document{
			ID:        id,
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: emb.Embeddings[i],
		}
	}

	if err := h.store.AddDocuments(r.Context(), collection, docs); err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("vector store ingestion failed")
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ingested": len(docs), "collection": collection})
}
