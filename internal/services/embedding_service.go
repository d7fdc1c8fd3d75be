package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mailpilot-be/config"
)

// EmbeddingService defines the interface for generating embeddings
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchGenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	GetDimension() int
}

// OpenAIEmbeddingService implements EmbeddingService using the OpenAI API
type OpenAIEmbeddingService struct {
	apiKey    string
	model     string
	client    *http.Client
	dimension int
}

// GeminiEmbeddingService implements EmbeddingService using the Gemini API
type GeminiEmbeddingService struct {
	apiKey    string
	model     string
	client    *http.Client
	dimension int
}

// NewEmbeddingService creates an embedding service based on provider config
func NewEmbeddingService(cfg *config.Config) EmbeddingService {
	provider := strings.ToLower(cfg.EmbeddingProvider)
	client := &http.Client{Timeout: 30 * time.Second}

	switch provider {
	case "gemini":
		model := cfg.EmbeddingModel
		if model == "" {
			model = "text-embedding-004"
		}
		return &GeminiEmbeddingService{
			apiKey:    cfg.EmbeddingAPIKey,
			model:     model,
			client:    client,
			dimension: 768,
		}
	case "openai":
		fallthrough
	default:
		model := cfg.EmbeddingModel
		if model == "" {
			model = "text-embedding-3-small"
		}
		return &OpenAIEmbeddingService{
			apiKey:    cfg.EmbeddingAPIKey,
			model:     model,
			client:    client,
			dimension: 1536,
		}
	}
}

// GetDimension returns the embedding dimension
func (s *OpenAIEmbeddingService) GetDimension() int {
	return s.dimension
}

// GenerateEmbedding generates an embedding for a single text using OpenAI
func (s *OpenAIEmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.BatchGenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, errors.New("no embedding data in response")
	}
	return embeddings[0], nil
}

// BatchGenerateEmbeddings generates embeddings for multiple texts in one call
func (s *OpenAIEmbeddingService) BatchGenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if s.apiKey == "" {
		return nil, errors.New("OpenAI API key not configured")
	}

	inputs, err := cleanEmbeddingInputs(texts, 8000)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"model": s.model,
		"input": inputs,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	embeddings := make([][]float32, len(inputs))
	for _, d := range result.Data {
		if d.Index < len(embeddings) {
			embeddings[d.Index] = d.Embedding
		}
	}
	return embeddings, nil
}

// GetDimension returns the embedding dimension
func (s *GeminiEmbeddingService) GetDimension() int {
	return s.dimension
}

// GenerateEmbedding generates an embedding using the Gemini API
func (s *GeminiEmbeddingService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.apiKey == "" {
		return nil, errors.New("Gemini API key not configured")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty text for embedding")
	}
	if len(text) > 10000 {
		text = text[:10000]
	}

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:embedContent?key=%s", s.model, s.apiKey)
	reqBody := map[string]interface{}{
		"content": map[string]interface{}{
			"parts": []map[string]string{
				{"text": text},
			},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Gemini API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var result struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Embedding.Values, nil
}

// BatchGenerateEmbeddings generates embeddings one text at a time (the Gemini
// embed endpoint takes single documents)
func (s *GeminiEmbeddingService) BatchGenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := s.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding for text %d: %w", i, err)
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// cleanEmbeddingInputs trims and truncates texts, rejecting a batch with
// nothing usable in it.
func cleanEmbeddingInputs(texts []string, maxChars int) ([]string, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts provided")
	}
	cleaned := make([]string, len(texts))
	usable := 0
	for i, t := range texts {
		t = strings.TrimSpace(t)
		if len(t) > maxChars {
			t = t[:maxChars]
		}
		if t != "" {
			usable++
		} else {
			// The API rejects empty strings; keep positions aligned with a
			// placeholder instead of dropping the entry.
			t = " "
		}
		cleaned[i] = t
	}
	if usable == 0 {
		return nil, errors.New("no valid texts provided")
	}
	return cleaned, nil
}
