// Package intent provides an optional LLM-backed classifier for free-form
// messages the deterministic predicates do not match. It is an enhancement
// layered over the rule-based router: any error, timeout, or unrecognized
// model output makes the caller fall back to the deterministic reply, so the
// bot never depends on the model being up.
package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIModel    = "gpt-4.1-mini"
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
)

type Classifier struct {
	apiKey  string
	baseURL string
	labels  []string
	http    *http.Client
}

// NewClassifier builds a classifier constrained to the given intent labels.
func NewClassifier(apiKey string, labels []string) *Classifier {
	return &Classifier{
		apiKey:  apiKey,
		baseURL: openAIEndpoint,
		labels:  labels,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClassifierWithBaseURL is used by tests to point at a local server.
func NewClassifierWithBaseURL(apiKey string, labels []string, baseURL string) *Classifier {
	c := NewClassifier(apiKey, labels)
	c.baseURL = baseURL
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Classify returns one of the configured labels for text, or an error when
// the model is unreachable or answers outside the label set.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	reqBody := chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt()},
			{Role: "user", Content: text},
		},
		Temperature: 0,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("openai: unmarshal: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}

	label := strings.TrimSpace(strings.ToLower(chatResp.Choices[0].Message.Content))
	for _, l := range c.labels {
		if label == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("openai: unknown intent label %q", label)
}

func (c *Classifier) systemPrompt() string {
	return "You classify a clinic customer's chat message into exactly one intent label. " +
		"Answer with only the label, nothing else. Labels: " + strings.Join(c.labels, ", ") + "."
}
