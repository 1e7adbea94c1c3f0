package imagen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

const (
	openAIBaseURL      = "https://api.openai.com/v1/images/generations"
	openAIDefaultModel = "dall-e-3"
)

type openAIRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type openAIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAIProvider implements Provider using the OpenAI Images API.
type OpenAIProvider struct {
	model      string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	model := cfg.OpenAI.Model
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAIProvider{
		model:      model,
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		baseURL:    openAIBaseURL,
		httpClient: &http.Client{Timeout: cfg.TTS.Timeout},
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Generate(ctx context.Context, prompt, size, quality string) ([]byte, error) {
	reqBody := openAIRequest{
		Model:          p.model,
		Prompt:         prompt,
		N:              1,
		Size:           size,
		Quality:        quality,
		ResponseFormat: "b64_json",
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &retry.TransientError{StatusCode: 0, Body: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests ||
		res.StatusCode >= http.StatusInternalServerError {
		errBody, _ := io.ReadAll(res.Body)
		return nil, &retry.TransientError{
			StatusCode: res.StatusCode,
			Body:       string(errBody),
		}
	}

	var parsed openAIResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		msg := "unknown error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", res.StatusCode, msg)
	}

	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("OpenAI returned no image data")
	}

	// dall-e-3 answers with base64 when asked, but some gateways only
	// hand back a URL.
	if parsed.Data[0].B64JSON != "" {
		img, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
		return img, nil
	}
	if parsed.Data[0].URL != "" {
		return p.download(ctx, parsed.Data[0].URL)
	}
	return nil, fmt.Errorf("OpenAI response has neither image payload nor URL")
}

func (p *OpenAIProvider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}
	res, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &retry.TransientError{StatusCode: 0, Body: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image (status %d)", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

func (p *OpenAIProvider) Close() error { return nil }
