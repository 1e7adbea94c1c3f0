package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	texttospeechpb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

const googleDefaultVoice = "ta-IN-Wavenet-A"

// GoogleProvider implements Provider using Google Cloud TTS, whose ta-IN
// voices read Tamil prose natively.
type GoogleProvider struct {
	voice  Voice
	client *texttospeech.Client
}

func NewGoogleProvider(cfg *config.Config, voiceOverride string) (*GoogleProvider, error) {
	voiceID := googleDefaultVoice
	if voiceOverride != "" {
		voiceID = voiceOverride
	}

	client, err := texttospeech.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("create Google TTS client: %w", err)
	}

	return &GoogleProvider{
		voice:  Voice{ID: voiceID, Name: voiceID},
		client: client,
	}, nil
}

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) DefaultVoice() Voice { return p.voice }

func (p *GoogleProvider) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageFromVoice(voice.ID),
			Name:         voice.ID,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}

	resp, err := p.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("Google TTS synthesize: %w", err)
	}

	return resp.AudioContent, nil
}

func (p *GoogleProvider) Close() error { return p.client.Close() }

// languageFromVoice extracts the language code from a voice name like
// "ta-IN-Wavenet-A".
func languageFromVoice(id string) string {
	parts := strings.SplitN(id, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "ta-IN"
}

func googleAvailableVoices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "ta-IN-Wavenet-A", Name: "Wavenet A", Gender: "female", Description: "Tamil, natural female narrator", Default: true},
		{ID: "ta-IN-Wavenet-B", Name: "Wavenet B", Gender: "male", Description: "Tamil, natural male narrator"},
		{ID: "ta-IN-Wavenet-C", Name: "Wavenet C", Gender: "female", Description: "Tamil, bright female voice"},
		{ID: "ta-IN-Wavenet-D", Name: "Wavenet D", Gender: "male", Description: "Tamil, deep male voice"},
		{ID: "ta-IN-Standard-A", Name: "Standard A", Gender: "female", Description: "Tamil, standard female voice"},
		{ID: "ta-IN-Standard-B", Name: "Standard B", Gender: "male", Description: "Tamil, standard male voice"},
	}
}
