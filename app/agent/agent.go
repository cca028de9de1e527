// Package agent is the text-generation collaborator: it turns role-tagged
// messages into a single completion via an OpenAI-compatible API. Retrieval
// supplies the grounding context; this package only renders and sends it.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"paperchat/types"

	"github.com/pkoukk/tiktoken-go"
)

type Client struct {
	logger      *slog.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float32
	client      *http.Client
}

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Input to one summary call is bounded by raw characters, matching the
// upstream contract. Token-aware bounding would track true model limits more
// closely but is not the behavior here.
const maxSummaryChars = 30000

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Client{
		logger:      slog.Default(),
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: 0.4,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
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
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the ordered messages and returns the assistant text.
func (c *Client) Complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	if count, err := countTokens(body); err == nil {
		c.logger.Info("prompt prepared", "messages", len(messages), "tokens", count)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, string(payload))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	c.logger.Info("completion received", "took", time.Since(start))
	return out.Choices[0].Message.Content, nil
}

// Chat builds the mentor conversation: system prompt, retrieved context,
// prior history, then the user turn. An empty user message or lead=true asks
// the model to open the dialogue itself.
func (c *Client) Chat(ctx context.Context, contextBlock, userMessage string, history []types.ChatMessage, lead bool) (string, error) {
	messages := []chatMessage{
		{Role: "system", Content: socraticSystemPrompt},
		{Role: "system", Content: fmt.Sprintf(ragContextHeader, contextBlock)},
	}
	for _, m := range history {
		messages = append(messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	if lead || userMessage == "" {
		userMessage = leadUserMessage
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	return c.Complete(ctx, messages)
}

// Summarize produces the accessible summary from the document's full text,
// truncated to maxSummaryChars characters before the call. The cut is by rune
// so it never leaves a broken multi-byte sequence at the end.
func (c *Client) Summarize(ctx context.Context, fullText string) (string, error) {
	if utf8.RuneCountInString(fullText) > maxSummaryChars {
		fullText = string([]rune(fullText)[:maxSummaryChars])
	}
	messages := []chatMessage{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: fmt.Sprintf(summaryUserTemplate, fullText)},
	}
	return c.Complete(ctx, messages)
}

func countTokens(data []byte) (int, error) {
	enc, err := tiktoken.EncodingForModel("gpt-3.5-turbo")
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(string(data), nil, nil)), nil
}
