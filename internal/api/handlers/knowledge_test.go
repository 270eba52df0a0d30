package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
	"github.com/plantcopilot/plantcopilot/internal/infra/vectorstore"
)

type embedProvider struct {
	embedErr error
	lastReq  llm.EmbedRequest
}

func (p *embedProvider) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{}, nil
}

func (p *embedProvider) Embed(ctx context.Context, req llm.EmbedRequest) (*llm.EmbedResponse, error) {
	p.lastReq = req
	if p.embedErr != nil {
		return nil, p.embedErr
	}
	vectors := make([][]float32, len(req.Texts))
	for i := range vectors {
		vectors[i] = []float32{float32(i), 1}
	}
	return &llm.EmbedResponse{Embeddings: vectors}, nil
}

func (p *embedProvider) Rerank(ctx context.Context, req llm.RerankRequest) ([]llm.RerankResult, error) {
	return nil, llm.ErrRerankUnsupported
}

func (p *embedProvider) ModelInfo() llm.ModelMeta { return llm.ModelMeta{ID: "fake"} }

func (p *embedProvider) HealthCheck(ctx context.Context) error { return nil }

type fakeDocStore struct {
	lastColl string
	lastDocs []vectorstore.Document
	err      error
}

func (f *fakeDocStore) AddDocuments(ctx context.Context, collection string, docs []vectorstore.Document) error {
	f.lastColl = collection
	f.lastDocs = docs
	return f.err
}

func newKnowledgeFixture(p llm.Provider, store DocumentStore) *KnowledgeHandler {
	router := llm.NewRouter(map[string]llm.Provider{"ollama": p}, "ollama")
	return NewKnowledgeHandler(router, store, "default-docs")
}

func ingestHTTPRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/api/v1/knowledge/documents", strings.NewReader(body))
}

func TestKnowledgeHandler_Ingest_Success(t *testing.T) {
	t.Parallel()

	p := &embedProvider{}
	store := &fakeDocStore{}
	h := newKnowledgeFixture(p, store)

	body := `{"collection":"manuals","documents":[{"id":"d1","content":"lubrication","metadata":{"source":"a.pdf"}},{"content":"torque specs"}]}`
	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if resp["ingested"] != float64(2) || resp["collection"] != "manuals" {
		t.Errorf("unexpected response: %v", resp)
	}
	if store.lastColl != "manuals" || len(store.lastDocs) != 2 {
		t.Fatalf("unexpected store call: coll=%q docs=%d", store.lastColl, len(store.lastDocs))
	}
	if store.lastDocs[0].ID != "d1" || store.lastDocs[0].Metadata["source"] != "a.pdf" {
		t.Errorf("document fields not passed through: %+v", store.lastDocs[0])
	}
	if store.lastDocs[1].ID == "" {
		t.Error("expected generated id for document without one")
	}
	if len(store.lastDocs[0].Embedding) == 0 {
		t.Error("expected embeddings attached to documents")
	}
	if len(p.lastReq.Texts) != 2 || p.lastReq.Texts[1] != "torque specs" {
		t.Errorf("expected batched embed of contents, got %v", p.lastReq.Texts)
	}
}

func TestKnowledgeHandler_Ingest_DefaultCollection(t *testing.T) {
	t.Parallel()

	store := &fakeDocStore{}
	h := newKnowledgeFixture(&embedProvider{}, store)

	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(`{"documents":[{"content":"text"}]}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastColl != "default-docs" {
		t.Errorf("expected default collection, got %q", store.lastColl)
	}
}

func TestKnowledgeHandler_Ingest_EmptyDocuments(t *testing.T) {
	t.Parallel()

	h := newKnowledgeFixture(&embedProvider{}, &fakeDocStore{})
	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(`{"documents":[]}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestKnowledgeHandler_Ingest_EmptyContent(t *testing.T) {
	t.Parallel()

	h := newKnowledgeFixture(&embedProvider{}, &fakeDocStore{})
	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(`{"documents":[{"content":""}]}`))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty content, got %d", rec.Code)
	}
}

func TestKnowledgeHandler_Ingest_EmbedFailure(t *testing.T) {
	t.Parallel()

	h := newKnowledgeFixture(&embedProvider{embedErr: errors.New("backend down")}, &fakeDocStore{})
	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(`{"documents":[{"content":"text"}]}`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on embed failure, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "backend down") {
		t.Error("backend detail leaked into the response")
	}
}

func TestKnowledgeHandler_Ingest_StoreFailure(t *testing.T) {
	t.Parallel()

	h := newKnowledgeFixture(&embedProvider{}, &fakeDocStore{err: errors.New("disk full")})
	rec := httptest.NewRecorder()
	h.Ingest(rec, ingestHTTPRequest(`{"documents":[{"content":"text"}]}`))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on store failure, got %d", rec.Code)
	}
}
