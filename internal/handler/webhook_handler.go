package handler

import (
	"encoding/json"
	"net/http"

	"github.com/distrisur/pedidos-go/internal/dialogue"
	"github.com/distrisur/pedidos-go/internal/port"
	"github.com/distrisur/pedidos-go/internal/transport/telegram"

	"go.uber.org/zap"
)

// WebhookHandler receives Bot API updates and pushes the engine's
// replies back through the prompt sender.
type WebhookHandler struct {
	engine *dialogue.Engine
	sender port.PromptSender
	logger *zap.Logger
}

func NewWebhookHandler(engine *dialogue.Engine, sender port.PromptSender, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{engine: engine, sender: sender, logger: logger}
}

// HandleTelegram processes one webhook update. It always answers 200 so
// the platform does not redeliver updates we already handled; delivery
// failures are logged, not surfaced.
func (h *WebhookHandler) HandleTelegram(w http.ResponseWriter, r *http.Request) {
	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warn("webhook: undecodable update", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		return
	}

	userID, in, ok := update.Utterance()
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}

	reply := h.engine.Process(r.Context(), userID, in)

	if err := h.sender.SendPrompt(r.Context(), userID, reply); err != nil {
		h.logger.Error("webhook: reply delivery failed",
			zap.String("user_id", userID), zap.Error(err))
	}
	w.WriteHeader(http.StatusOK)
}
