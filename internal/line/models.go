package line

// --- Incoming webhook payload ---
// Reference: https://developers.line.biz/en/reference/messaging-api/#webhook-event-objects

type WebhookPayload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string       `json:"type"`
	Timestamp  int64        `json:"timestamp"`
	ReplyToken string       `json:"replyToken"`
	Source     EventSource  `json:"source"`
	Message    *TextMessage `json:"message,omitempty"`
}

type EventSource struct {
	Type    string `json:"type"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
}

// TextMessage covers the message object for both text and non-text events;
// only Type == "text" carries a usable Text field.
type TextMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// --- Outgoing messages ---
// Reference: https://developers.line.biz/en/reference/messaging-api/#message-objects

// Message is one outbound message object. Text messages leave QuickReply nil;
// choice menus attach quick-reply items whose tap delivers the item label as
// ordinary text, so menu selections and typed input hit the same code path.
type Message struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

type QuickReplyItem struct {
	Type   string        `json:"type"`
	Action MessageAction `json:"action"`
}

// MessageAction sends Text into the chat as if the user typed it.
type MessageAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// NewText builds a plain text message.
func NewText(text string) Message {
	return Message{Type: "text", Text: text}
}

// NewMenu builds a text message with one quick-reply item per option.
// The item label and its injected text are identical.
func NewMenu(text string, options []string) Message {
	items := make([]QuickReplyItem, len(options))
	for i, opt := range options {
		items[i] = QuickReplyItem{
			Type: "action",
			Action: MessageAction{
				Type:  "message",
				Label: opt,
				Text:  opt,
			},
		}
	}
	return Message{
		Type:       "text",
		Text:       text,
		QuickReply: &QuickReply{Items: items},
	}
}

type replyRequest struct {
	ReplyToken string    `json:"replyToken"`
	Messages   []Message `json:"messages"`
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}
