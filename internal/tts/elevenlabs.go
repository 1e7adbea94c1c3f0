package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

const (
	// Rachel: clear multilingual narrator, handles Tamil text well.
	elevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"

	elevenLabsBaseURL      = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsDefaultModel = "eleven_multilingual_v2"
	elevenLabsOutputFormat = "mp3_44100_128"
)

type elevenLabsRequest struct {
	Text          string                 `json:"text"`
	ModelID       string                 `json:"model_id"`
	VoiceSettings *elevenLabsVoiceParams `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceParams struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// ElevenLabsProvider implements Provider using the ElevenLabs TTS API.
type ElevenLabsProvider struct {
	voice      Voice
	model      string
	stability  float64
	similarity float64
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsProvider(cfg *config.Config, voiceOverride string) *ElevenLabsProvider {
	voiceID := cfg.ElevenLabs.DefaultVoice
	if voiceID == "" {
		voiceID = elevenLabsDefaultVoice
	}
	if voiceOverride != "" {
		voiceID = voiceOverride
	}
	model := cfg.ElevenLabs.Model
	if model == "" {
		model = elevenLabsDefaultModel
	}
	return &ElevenLabsProvider{
		voice:      Voice{ID: voiceID, Name: voiceID},
		model:      model,
		stability:  cfg.ElevenLabs.Stability,
		similarity: cfg.ElevenLabs.SimilarityBoost,
		apiKey:     os.Getenv("ELEVENLABS_API_KEY"),
		baseURL:    elevenLabsBaseURL,
		httpClient: &http.Client{Timeout: cfg.TTS.Timeout},
	}
}

func (p *ElevenLabsProvider) Name() string { return "elevenlabs" }

func (p *ElevenLabsProvider) DefaultVoice() Voice { return p.voice }

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	reqBody := elevenLabsRequest{
		Text:    text,
		ModelID: p.model,
		VoiceSettings: &elevenLabsVoiceParams{
			Stability:       p.stability,
			SimilarityBoost: p.similarity,
			UseSpeakerBoost: true,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?output_format=%s", p.baseURL, voice.ID, elevenLabsOutputFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("xi-api-key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(req)
	if err != nil {
		// Timeouts surface as transient failures, same as provider 5xx.
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

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("ElevenLabs API error (status %d): %s", res.StatusCode, string(errBody))
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}

func (p *ElevenLabsProvider) Close() error { return nil }

func elevenLabsAvailableVoices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "21m00Tcm4TlvDq8ikWAM", Name: "Rachel", Gender: "female", Description: "Calm multilingual narrator", Default: true},
		{ID: "pNInz6obpgDQGcFmaJgB", Name: "Adam", Gender: "male", Description: "Deep male, confident narrator"},
		{ID: "onwK4e9ZLuTAKqWW03F9", Name: "Daniel", Gender: "male", Description: "Authoritative news-anchor delivery"},
		{ID: "XB0fDUnXU5powFXDhCwa", Name: "Charlotte", Gender: "female", Description: "Warm and natural storyteller"},
		{ID: "pFZP5JQG7iQjIQuC4Bku", Name: "Lily", Gender: "female", Description: "Warm storyteller"},
	}
}
