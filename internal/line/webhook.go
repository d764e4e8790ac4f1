package line

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

// SignatureHeader carries the webhook signature computed by LINE.
const SignatureHeader = "X-Line-Signature"

// MessageHandler is called for each incoming text message with the sender's
// user id, the event's one-time reply token, and the message body.
type MessageHandler func(userID, replyToken, text string)

// WebhookHandler verifies and dispatches LINE webhook deliveries.
type WebhookHandler struct {
	channelSecret string
	onMessage     MessageHandler
	log           zerolog.Logger
}

func NewWebhookHandler(channelSecret string, onMessage MessageHandler, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		channelSecret: channelSecret,
		onMessage:     onMessage,
		log:           log,
	}
}

// HandleIncoming processes a webhook POST. The signature is verified against
// the raw body before any event processing; a delivery that fails
// verification is rejected whole. Events within one delivery are processed
// sequentially because later events from the same user may depend on session
// state mutated by earlier ones.
func (h *WebhookHandler) HandleIncoming(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.log.Error().Err(err).Msg("webhook: failed to read body")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if !ValidateSignature(h.channelSecret, body, r.Header.Get(SignatureHeader)) {
		h.log.Warn().Msg("webhook: signature verification failed")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.log.Error().Err(err).Msg("webhook: failed to decode payload")
		// LINE resends on non-2xx; a malformed body will never parse, so ack it.
		w.WriteHeader(http.StatusOK)
		return
	}

	for _, ev := range payload.Events {
		h.dispatch(ev)
	}

	w.WriteHeader(http.StatusOK)
}

// dispatch isolates one event: a panic while handling it must not abort the
// sibling events in the same delivery.
func (h *WebhookHandler) dispatch(ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Str("user", ev.Source.UserID).Msg("webhook: event handler panicked")
		}
	}()

	if ev.Type != "message" || ev.Message == nil || ev.Message.Type != "text" {
		return
	}
	if ev.Source.UserID == "" {
		return
	}
	h.onMessage(ev.Source.UserID, ev.ReplyToken, ev.Message.Text)
}
