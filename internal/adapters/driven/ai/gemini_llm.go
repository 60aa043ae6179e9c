package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/raglab-core/internal/core/ports/driven"
)

// Ensure GeminiLLM implements LLMProvider
var _ driven.LLMProvider = (*GeminiLLM)(nil)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"

	// geminiMaxOutputTokens bounds a single completion. Answers and
	// hypothetical documents are short; this is headroom, not a target.
	geminiMaxOutputTokens = 2048
)

// GeminiLLM implements LLMProvider using Google's Gemini generateContent API
type GeminiLLM struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

// NewGeminiLLM creates a new Gemini LLM provider
func NewGeminiLLM(apiKey, model, baseURL string, temperature float64) (driven.LLMProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if model == "" {
		model = defaultGeminiModel
	}

	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiLLM{
		apiKey:      apiKey,
		model:       model,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for the given prompt
func (g *GeminiLLM) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     g.temperature,
			MaxOutputTokens: geminiMaxOutputTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var genResp geminiResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if genResp.Error != nil {
		return "", fmt.Errorf("Gemini API error: %s (status: %s)", genResp.Error.Message, genResp.Error.Status)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gemini API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if genResp.PromptFeedback != nil && genResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("Gemini blocked the prompt: %s", genResp.PromptFeedback.BlockReason)
	}
	if len(genResp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	completion := sb.String()
	if completion == "" {
		return "", fmt.Errorf("Gemini returned an empty completion (finish reason: %s)",
			genResp.Candidates[0].FinishReason)
	}

	return completion, nil
}

// Model returns the model name being used
func (g *GeminiLLM) Model() string {
	return g.model
}

// HealthCheck verifies the LLM provider is available by listing models
func (g *GeminiLLM) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gemini health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources held by the LLM provider
func (g *GeminiLLM) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
