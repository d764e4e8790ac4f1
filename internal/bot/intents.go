package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuemei/linebot/internal/booking"
	"github.com/yuemei/linebot/internal/line"
	"github.com/yuemei/linebot/internal/session"
)

// Intent names, also the vocabulary the optional classifier answers in.
const (
	IntentCancelBooking = "cancel_booking"
	IntentStartBooking  = "start_booking"
	IntentQueryBookings = "query_bookings"
	IntentGreeting      = "greeting"
	IntentTreatmentInfo = "treatment_info"
	IntentFallback      = "fallback"
)

// maxQueryResults is bounded by the reply API's per-call message cap.
const maxQueryResults = line.MaxMessagesPerSend

// cancelIDRe extracts the numeric booking id from a cancellation command
// like "cancel booking #42" or "取消預約 42".
var cancelIDRe = regexp.MustCompile(`(?i)(?:cancel|取消)\D*?(\d+)`)

type intent struct {
	name   string
	match  func(text string) bool
	handle func(ctx context.Context, h *Handler, userID, text string) []line.Message
}

// defaultIntents is the router table; slice order is priority order. The
// more specific predicates must come before the booking trigger: "cancel
// booking #42" and every query phrase ("我的預約", "my bookings") contain a
// booking keyword, so the trigger would swallow them.
func defaultIntents() []intent {
	return []intent{
		{
			name:  IntentCancelBooking,
			match: cancelIDRe.MatchString,
			handle: func(ctx context.Context, h *Handler, userID, text string) []line.Message {
				return h.cancelBooking(ctx, userID, text)
			},
		},
		{
			name:  IntentQueryBookings,
			match: containsAny("我的預約", "查詢", "my booking", "my bookings"),
			handle: func(_ context.Context, h *Handler, userID, _ string) []line.Message {
				return h.queryBookings(userID)
			},
		},
		{
			name:  IntentStartBooking,
			match: booking.IsTrigger,
			handle: func(_ context.Context, h *Handler, userID, _ string) []line.Message {
				return h.startBooking(userID)
			},
		},
		{
			name:  IntentGreeting,
			match: containsAny("你好", "哈囉", "嗨", "hello", "hi"),
			handle: func(_ context.Context, _ *Handler, _, _ string) []line.Message {
				return []line.Message{greetingReply()}
			},
		},
		{
			name:  IntentTreatmentInfo,
			match: containsAny("療程", "價格", "價目", "treatment", "price", "info"),
			handle: func(_ context.Context, _ *Handler, _, _ string) []line.Message {
				return []line.Message{treatmentInfoReply()}
			},
		},
	}
}

func containsAny(keywords ...string) func(string) bool {
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		return false
	}
}

// route classifies an out-of-session message and dispatches it. When no
// deterministic predicate matches, the optional classifier gets one shot;
// anything it cannot resolve lands on the help reply, so a failed or
// malformed model response degrades to the deterministic behavior.
func (h *Handler) route(ctx context.Context, userID, text string) []line.Message {
	for _, it := range h.intents {
		if it.match(text) {
			h.log.Debug().Str("intent", it.name).Str("user", userID).Msg("bot: matched intent")
			return it.handle(ctx, h, userID, text)
		}
	}

	if h.classifier != nil {
		name, err := h.classifier.Classify(ctx, text)
		if err != nil {
			h.log.Warn().Err(err).Msg("bot: intent classifier failed")
		} else {
			for _, it := range h.intents {
				if it.name == name {
					h.log.Debug().Str("intent", name).Str("user", userID).Msg("bot: classifier matched intent")
					return it.handle(ctx, h, userID, text)
				}
			}
		}
	}

	return []line.Message{fallbackReply()}
}

func (h *Handler) startBooking(userID string) []line.Message {
	s := session.New(userID)
	h.sessions.Set(userID, s)
	return h.flow.Begin()
}

func (h *Handler) queryBookings(userID string) []line.Message {
	list, err := h.repo.ListByUser(userID, maxQueryResults)
	if err != nil {
		h.log.Error().Err(err).Str("user", userID).Msg("bot: booking query failed")
		return []line.Message{line.NewText("查詢預約時發生問題，請稍後再試。")}
	}
	if len(list) == 0 {
		return []line.Message{line.NewText("您目前沒有預約紀錄。輸入「預約」即可開始預約療程。")}
	}

	msgs := make([]line.Message, 0, len(list))
	for _, b := range list {
		msgs = append(msgs, booking.Summary(b))
	}
	return msgs
}

// cancelBooking handles cancellation-by-id. A booking owned by someone else
// is reported as not found so ids cannot be probed. Cancelling twice is an
// idempotent no-op; completed bookings are terminal.
func (h *Handler) cancelBooking(ctx context.Context, userID, text string) []line.Message {
	// The classifier can route here without the regex having matched, so the
	// id may genuinely be absent.
	m := cancelIDRe.FindStringSubmatch(text)
	if len(m) < 2 {
		return []line.Message{line.NewText("請告訴我要取消的預約編號，例如：cancel #42。輸入「我的預約」可查看編號。")}
	}
	id, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return []line.Message{line.NewText("找不到這筆預約編號，請確認後再試一次。")}
	}

	b, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Uint64("booking", id).Msg("bot: booking lookup failed")
		return []line.Message{line.NewText("查詢預約時發生問題，請稍後再試。")}
	}
	if b == nil || b.UserID != userID {
		return []line.Message{line.NewText(fmt.Sprintf("找不到編號 #%d 的預約，請輸入「我的預約」查看您的預約。", id))}
	}

	switch b.Status {
	case booking.StatusCancelled:
		return []line.Message{line.NewText(fmt.Sprintf("預約 #%d 已經取消過了。", id))}
	case booking.StatusCompleted:
		return []line.Message{line.NewText(fmt.Sprintf("預約 #%d 已完成，無法取消。", id))}
	}

	if err := h.repo.UpdateStatus(id, booking.StatusCancelled); err != nil {
		h.log.Error().Err(err).Uint64("booking", id).Msg("bot: booking cancel failed")
		return []line.Message{line.NewText("取消預約時發生問題，請稍後再試，或直接來電診所。")}
	}

	h.log.Info().Uint64("booking", id).Str("user", userID).Msg("bot: booking cancelled")
	h.notifyAdmin(ctx, booking.AdminCancelAlert(*b))
	return []line.Message{line.NewText(fmt.Sprintf("預約 #%d 已為您取消。", id))}
}

func greetingReply() line.Message {
	return line.NewText("您好，歡迎光臨悅美診所！輸入「預約」即可預約療程，輸入「我的預約」可查詢預約紀錄。")
}

func treatmentInfoReply() line.Message {
	var sb strings.Builder
	sb.WriteString("我們提供以下療程類別：\n")
	for _, c := range booking.Categories {
		sb.WriteString("• " + c.Name + "\n")
	}
	sb.WriteString("\n輸入「預約」即可開始預約，詳細價目歡迎來電洽詢。")
	return line.NewText(sb.String())
}

func fallbackReply() line.Message {
	return line.NewText("抱歉，我不太明白您的意思。您可以輸入「預約」預約療程、「我的預約」查詢預約，或「療程」了解服務項目。")
}
