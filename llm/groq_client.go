package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
)

type GroqClient struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func NewGroqClient(model string) LLMClient {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		// Calls fail with invalid_credentials so a fallback chain can
		// advance past this provider instead of crashing the process.
		logger.Error("GROQ_API_KEY environment variable is not set")
	}

	return &GroqClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        "https://api.groq.com/openai/v1/chat/completions",
		model:      model,
	}
}

// NewOpenAICompatClient points the Groq-shaped client at any OpenAI-compatible
// chat completions endpoint (vLLM, Ollama's OpenAI facade, OpenAI itself).
func NewOpenAICompatClient(url, apiKey, model string) LLMClient {
	return &GroqClient{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        url,
		model:      model,
	}
}

func (c *GroqClient) GetModel() string {
	return c.model
}

func (c *GroqClient) GenerateInference(ctx context.Context, messages []Message, callback func(chunk string) error, opts ...LLMOption) error {
	// Default settings
	settings := LLMSettings{
		model:       c.model,
		temperature: 0.7,
		maxTokens:   4096,
		stream:      false,
	}

	// Apply options
	for _, opt := range opts {
		opt(&settings)
	}

	if c.apiKey == "" {
		return &ModelError{Kind: KindInvalidCredentials, Cause: fmt.Errorf("no API key configured for %s", c.url)}
	}

	request := groqRequest{
		Model:       settings.model,
		Messages:    messages,
		Temperature: settings.temperature,
		MaxTokens:   settings.maxTokens,
		TopP:        settings.topP,
		Stream:      settings.stream,
	}

	// Add system prompt if provided (OpenAI-compatible APIs take it as the
	// first message in the messages array)
	if settings.system != "" {
		systemMsg := Message{
			Role:    "system",
			Content: settings.system,
		}
		request.Messages = append([]Message{systemMsg}, request.Messages...)
	}

	resp, err := c.postRequest(ctx, request)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if settings.stream {
		return c.consumeStream(resp.Body, callback)
	}
	return c.consumeComplete(resp.Body, callback)
}

func (c *GroqClient) postRequest(ctx context.Context, request groqRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ModelError{Kind: KindTransportError, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &ModelError{
			Kind:  kindFromStatus(resp.StatusCode),
			Cause: fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return resp, nil
}

func (c *GroqClient) consumeComplete(body io.Reader, callback func(chunk string) error) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return &ModelError{Kind: KindTransportError, Cause: err}
	}

	var response groqResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Choices) == 0 {
		return fmt.Errorf("no choices in response")
	}

	if content := response.Choices[0].Message.Content; content != "" {
		return callback(content)
	}
	return nil
}

// consumeStream reads an SSE chat completion stream. Each "data:" line holds
// a JSON delta; the literal "[DONE]" line terminates the stream.
func (c *GroqClient) consumeStream(body io.Reader, callback func(chunk string) error) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return nil
		}

		var chunk groqStreamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed keep-alive frames rather than aborting the stream
			continue
		}

		if len(chunk.Choices) == 0 {
			continue
		}

		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if err := callback(delta); err != nil {
				return err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return &ModelError{Kind: KindTransportError, Cause: err}
	}
	return nil
}

// Groq API types
type groqRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_completion_tokens,omitempty"`
	TopP        float64   `json:"top_p,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type groqResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []groqChoice `json:"choices"`
	Usage   groqUsage    `json:"usage"`
}

type groqChoice struct {
	Index        int         `json:"index"`
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type groqUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
