package bot

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yuemei/linebot/internal/booking"
	"github.com/yuemei/linebot/internal/line"
	"github.com/yuemei/linebot/internal/session"
)

// Sender is the outbound messaging surface. *line.Client satisfies it; tests
// inject a recorder.
type Sender interface {
	Reply(ctx context.Context, replyToken string, msgs []line.Message) error
	Push(ctx context.Context, to string, msgs []line.Message) error
}

// Classifier maps free-form text to one of the router's intent names. It is
// optional; a nil classifier or any classifier error falls back to the
// deterministic help reply.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Handler processes inbound text messages: active sessions go through the
// booking step machine, everything else through the intent router.
type Handler struct {
	sender     Sender
	repo       booking.Repository
	sessions   session.Store
	locks      *session.LockManager
	flow       *booking.Flow
	adminID    string
	classifier Classifier
	log        zerolog.Logger
	intents    []intent
}

func NewHandler(sender Sender, repo booking.Repository, sessions session.Store, locks *session.LockManager, flow *booking.Flow, adminID string, classifier Classifier, log zerolog.Logger) *Handler {
	h := &Handler{
		sender:     sender,
		repo:       repo,
		sessions:   sessions,
		locks:      locks,
		flow:       flow,
		adminID:    adminID,
		classifier: classifier,
		log:        log,
	}
	h.intents = defaultIntents()
	return h
}

// HandleMessage is the line.MessageHandler entry point. Processing for one
// user is serialized through the lock manager so two rapid messages cannot
// race the session read-modify-write cycle.
func (h *Handler) HandleMessage(userID, replyToken, text string) {
	h.locks.WithLock(userID, func() {
		h.process(context.Background(), userID, replyToken, text)
	})
}

func (h *Handler) process(ctx context.Context, userID, replyToken, text string) {
	if s, ok := h.sessions.Get(userID); ok {
		res := h.flow.Advance(s, text)
		switch {
		case res.Cancelled:
			h.sessions.Delete(userID)
			h.reply(ctx, userID, replyToken, res.Replies)
		case res.Done:
			h.finalize(ctx, s, replyToken)
		default:
			// Set also refreshes the inactivity TTL on failed validations;
			// the user is clearly still engaged.
			h.sessions.Set(userID, s)
			h.reply(ctx, userID, replyToken, res.Replies)
		}
		return
	}

	h.reply(ctx, userID, replyToken, h.route(ctx, userID, text))
}

// finalize persists the assembled booking and fans out the two
// notifications. The session is deleted before anything else so a
// persistence failure cannot trap the user in a dead dialogue; they just
// start over.
func (h *Handler) finalize(ctx context.Context, s *session.Session, replyToken string) {
	h.sessions.Delete(s.UserID)

	b, err := h.repo.Insert(booking.Assemble(s))
	if err != nil {
		h.log.Error().Err(err).Str("user", s.UserID).Msg("bot: booking insert failed")
		h.reply(ctx, s.UserID, replyToken, []line.Message{booking.FailureMessage()})
		return
	}

	h.log.Info().Uint64("booking", b.ID).Str("user", s.UserID).Msg("bot: booking created")
	h.reply(ctx, s.UserID, replyToken, []line.Message{booking.Confirmation(b)})
	h.notifyAdmin(ctx, booking.AdminAlert(b))
}

func (h *Handler) reply(ctx context.Context, userID, replyToken string, msgs []line.Message) {
	if len(msgs) == 0 {
		return
	}
	if err := h.sender.Reply(ctx, replyToken, msgs); err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("bot: failed to send reply")
	}
}

func (h *Handler) notifyAdmin(ctx context.Context, msg line.Message) {
	if h.adminID == "" {
		return
	}
	if err := h.sender.Push(ctx, h.adminID, []line.Message{msg}); err != nil {
		h.log.Error().Err(err).Msg("bot: failed to notify admin")
	}
}
