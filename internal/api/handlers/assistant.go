package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/plantcopilot/plantcopilot/internal/domain/assistant"
	"github.com/plantcopilot/plantcopilot/internal/infra/llm"
)

// AssistantService is the orchestrator surface the handler consumes.
type AssistantService interface {
	Handle(ctx context.Context, req assistant.Request) (any, error)
}

// AssistantHandler serves POST /api/v1/assistant/chat.
type AssistantHandler struct {
	svc AssistantService
}

// NewAssistantHandler creates an AssistantHandler.
func NewAssistantHandler(svc AssistantService) *AssistantHandler {
	return &AssistantHandler{svc: svc}
}

// StringList accepts either a JSON string or an array of strings. Older chat
// clients send vectorStoreIds as a single string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*l = nil
			return nil
		}
		*l = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = StringList(many)
	return nil
}

type chatRequest struct {
	Messages       []llm.Message     `json:"messages"`
	VectorStoreIDs StringList        `json:"vectorStoreIds"`
	HostProvider   string            `json:"hostProvider"`
	Assets         []assistant.Asset `json:"assets"`
}

// Chat decodes the conversation request, runs the orchestrator and writes
// whichever terminal response it produced.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.svc.Handle(r.Context(), assistant.Request{
		Messages:       req.Messages,
		VectorStoreIDs: req.VectorStoreIDs,
		HostProvider:   req.HostProvider,
		Assets:         req.Assets,
	})
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyConversation) {
			writeError(w, http.StatusBadRequest, "messages must not be empty")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("assistant request failed")
		writeError(w, http.StatusInternalServerError, "assistant request failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
