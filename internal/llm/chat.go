// internal/llm/chat.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultChatBaseURL = "https://api.groq.com/openai/v1"

const answerPrompt = `You are a helpful AI assistant that answers questions based on the provided context.

Context:
%s

Question: %s

Instructions:
- Answer the question based ONLY on the provided context
- Provide a direct, helpful answer without mentioning the words "context", "context 1", etc.
- Do NOT say phrases like "based on the context" or "according to the context"
- If the context doesn't contain enough information, say "I don't have enough information to answer that question"
- Be concise and helpful
- If relevant, reference specific details from the context
- Keep your answer under 200 words

Answer:`

// ChatClient generates grounded answers via an OpenAI-compatible chat
// completions API (Groq).
type ChatClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewChatClient(apiKey, model string) *ChatClient {
	return &ChatClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultChatBaseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *ChatClient) WithBaseURL(u string) *ChatClient {
	c.baseURL = u
	return c
}

// GenerateAnswer produces an answer to question grounded in contextText.
func (c *ChatClient) GenerateAnswer(ctx context.Context, question, contextText string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": fmt.Sprintf(answerPrompt, contextText, question)},
		},
		"temperature": 0.1,
		"max_tokens":  300,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat api status %d", resp.StatusCode)
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("chat decode: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "I couldn't generate an answer at the moment.", nil
	}
	return out.Choices[0].Message.Content, nil
}
