package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAIEmbedder embeds text via any OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	apiKey     string
	httpClient *http.Client
	url        string
	model      string
}

func NewOpenAIEmbedder(url, apiKey, model string) Embedder {
	return &OpenAIEmbedder{
		apiKey:     apiKey,
		httpClient: &http.Client{},
		url:        url,
		model:      model,
	}
}

func (e *OpenAIEmbedder) GetModel() string {
	return e.model
}

func (e *OpenAIEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	request := embeddingRequest{
		Model: e.model,
		Input: []string{text},
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &ModelError{Kind: KindTransportError, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ModelError{Kind: KindTransportError, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ModelError{
			Kind:  kindFromStatus(resp.StatusCode),
			Cause: fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body)),
		}
	}

	var response embeddingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	if len(response.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	return response.Data[0].Embedding, nil
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}
