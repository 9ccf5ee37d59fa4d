package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/distrisur/pedidos-go/internal/dialogue"
	"github.com/distrisur/pedidos-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatHandler is the web-chat transport: a stateless JSON endpoint that
// feeds utterances into the dialogue engine and returns the reply inline.
type ChatHandler struct {
	engine *dialogue.Engine
	logger *zap.Logger
}

func NewChatHandler(engine *dialogue.Engine, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{engine: engine, logger: logger}
}

type chatRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
	Token  string `json:"token"`
}

type chatResponse struct {
	UserID  string          `json:"user_id"`
	Text    string          `json:"text"`
	Choices []domain.Choice `json:"choices,omitempty"`
}

// HandleChat processes one utterance. A missing user_id starts a fresh
// conversation; the generated id comes back in the response so the
// client can carry it on subsequent turns.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.Token == "" {
		writeError(w, http.StatusBadRequest, "text or token is required")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = uuid.NewString()
	}

	reply := h.engine.Process(r.Context(), userID, domain.Utterance{
		Text:  req.Text,
		Token: req.Token,
	})

	writeJSON(w, http.StatusOK, chatResponse{
		UserID:  userID,
		Text:    reply.Text,
		Choices: reply.Choices,
	})
}
