package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const apiURL = "https://api.line.me/v2/bot"

// MaxMessagesPerSend is the LINE Messaging API cap on message objects per
// reply or push call.
const MaxMessagesPerSend = 5

type Client struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

func NewClient(accessToken string) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     apiURL,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point the client at a local server.
func NewClientWithBaseURL(accessToken, baseURL string) *Client {
	c := NewClient(accessToken)
	c.baseURL = baseURL
	return c
}

// Reply sends up to MaxMessagesPerSend messages against a one-time reply
// token. The token is consumed whether or not the call succeeds.
func (c *Client) Reply(ctx context.Context, replyToken string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > MaxMessagesPerSend {
		msgs = msgs[:MaxMessagesPerSend]
	}
	return c.send(ctx, "/message/reply", replyRequest{ReplyToken: replyToken, Messages: msgs}, false)
}

// Push sends messages to a durable user id, independent of any inbound event.
func (c *Client) Push(ctx context.Context, to string, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if len(msgs) > MaxMessagesPerSend {
		msgs = msgs[:MaxMessagesPerSend]
	}
	return c.send(ctx, "/message/push", pushRequest{To: to, Messages: msgs}, true)
}

func (c *Client) send(ctx context.Context, path string, body any, retryKey bool) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")
	if retryKey {
		// Push is not tied to a one-time token, so give LINE an idempotency
		// key in case the caller retries on a network error.
		req.Header.Set("X-Line-Retry-Key", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("line API status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
