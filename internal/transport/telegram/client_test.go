package telegram_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/infra/resilience"
	"github.com/distrisur/pedidos-go/internal/transport/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeUpdate(t *testing.T, payload string) *telegram.Update {
	t.Helper()
	var u telegram.Update
	require.NoError(t, json.Unmarshal([]byte(payload), &u))
	return &u
}

func TestUpdate_Utterance(t *testing.T) {
	// A typed message keys on the chat.
	u := decodeUpdate(t, `{"update_id":1,"message":{"chat":{"id":777},"text":"hola"}}`)
	userID, in, ok := u.Utterance()
	require.True(t, ok)
	assert.Equal(t, "777", userID)
	assert.Equal(t, "hola", in.Text)

	// A button tap keys on the same chat, even when the tapper differs
	// (group chat: From is the member, Message.Chat is the group).
	u = decodeUpdate(t, `{"update_id":2,"callback_query":{"id":"cb-1","message":{"chat":{"id":777}},"from":{"id":42},"data":"action_view_cart"}}`)
	userID, in, ok = u.Utterance()
	require.True(t, ok)
	assert.Equal(t, "777", userID, "taps must land in the chat's session, not the tapper's")
	assert.Equal(t, "action_view_cart", in.Token)

	// Callbacks without an originating message fall back to the sender.
	u = decodeUpdate(t, `{"update_id":3,"callback_query":{"id":"cb-2","from":{"id":42},"data":"action_help"}}`)
	userID, _, ok = u.Utterance()
	require.True(t, ok)
	assert.Equal(t, "42", userID)

	// Update kinds the bot ignores.
	u = decodeUpdate(t, `{"update_id":4}`)
	_, _, ok = u.Utterance()
	assert.False(t, ok)
}

func TestSendPrompt_DeadlineBecomesTimeout(t *testing.T) {
	client := telegram.NewClient(
		&http.Client{Timeout: time.Second},
		"http://127.0.0.1:0", "test-token",
		resilience.NewCircuitBreaker("telegram-timeout-test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond},
	)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := client.SendPrompt(ctx, "777", domain.NewReply("hola"))
	var timeout *domain.ErrTimeout
	require.ErrorAs(t, err, &timeout)
}

func TestSendPrompt_OpenBreakerBecomesCircuitOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := telegram.NewClient(
		&http.Client{Timeout: time.Second},
		srv.URL, "test-token",
		resilience.NewCircuitBreaker("telegram-breaker-test"),
		resilience.Config{MaxRetries: 0},
	)

	// The breaker trips after five straight failures; the next call is
	// rejected without touching the Bot API.
	var err error
	for i := 0; i < 6; i++ {
		err = client.SendPrompt(context.Background(), "777", domain.NewReply("hola"))
		require.Error(t, err)
	}

	var circuitOpen *domain.ErrCircuitOpen
	require.ErrorAs(t, err, &circuitOpen)
	assert.Equal(t, "telegram", circuitOpen.Service)
}
