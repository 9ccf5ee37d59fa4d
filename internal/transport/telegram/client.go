// Package telegram is the chat-platform side of the transport adapter:
// it decodes webhook updates into utterances and delivers the engine's
// replies through the Bot API, rendering choices as an inline keyboard.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("transport/telegram")

// Update is the inbound webhook payload, reduced to the fields the
// dialogue needs: typed text or a tapped inline button.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message,omitempty"`
	CallbackQuery *struct {
		ID      string `json:"id"`
		Message *struct {
			Chat struct {
				ID int64 `json:"id"`
			} `json:"chat"`
		} `json:"message,omitempty"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Data string `json:"data"`
	} `json:"callback_query,omitempty"`
}

// Utterance maps an update to the engine's input. ok is false for update
// kinds the bot ignores (edits, stickers, joins).
//
// Sessions are keyed on the chat id, for button taps too: keying taps on
// the sender would split one dialogue across two sessions in a group
// chat. From.ID is only a fallback for callbacks whose originating
// message the platform no longer includes.
func (u *Update) Utterance() (userID string, in domain.Utterance, ok bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Data != "":
		chatID := u.CallbackQuery.From.ID
		if u.CallbackQuery.Message != nil {
			chatID = u.CallbackQuery.Message.Chat.ID
		}
		return fmt.Sprintf("%d", chatID),
			domain.Utterance{Token: u.CallbackQuery.Data}, true
	case u.Message != nil && u.Message.Text != "":
		return fmt.Sprintf("%d", u.Message.Chat.ID),
			domain.Utterance{Text: u.Message.Text}, true
	}
	return "", domain.Utterance{}, false
}

// Client wraps the Bot API sendMessage call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewClient creates the outbound Bot API client.
func NewClient(httpClient *http.Client, baseURL, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		cb:         cb,
		cfg:        cfg,
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

// SendPrompt implements port.PromptSender: one message per reply, with
// choices as one inline button per row.
func (c *Client) SendPrompt(ctx context.Context, userID string, reply *domain.Reply) error {
	ctx, span := tracer.Start(ctx, "Telegram.SendPrompt")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	payload := sendMessageRequest{
		ChatID:    userID,
		Text:      reply.Text,
		ParseMode: "Markdown",
	}
	if len(reply.Choices) > 0 {
		kb := &inlineKeyboard{}
		for _, choice := range reply.Choices {
			kb.InlineKeyboard = append(kb.InlineKeyboard,
				[]inlineButton{{Text: choice.Label, CallbackData: choice.Token}})
		}
		payload.ReplyMarkup = kb
	}

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(payload)
			if err != nil {
				return fmt.Errorf("marshal sendMessage: %w", err)
			}

			url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
			}
			return nil
		})
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "telegram"}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: "telegram.sendMessage"}
	default:
		return &domain.ErrExternalService{Service: "telegram", Err: err}
	}
}
