package tts

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

// Polly has no Tamil voices; Kajal (en-IN, bilingual with Hindi) is the
// closest fit for transliterated narration.
const pollyDefaultVoice = "Kajal"

var pollyVoiceLang = map[string]types.LanguageCode{
	"Kajal":    types.LanguageCodeEnIn,
	"Matthew":  types.LanguageCodeEnUs,
	"Ruth":     types.LanguageCodeEnUs,
	"Stephen":  types.LanguageCodeEnUs,
	"Danielle": types.LanguageCodeEnUs,
	"Amy":      types.LanguageCodeEnGb,
	"Olivia":   types.LanguageCodeEnAu,
}

// PollyProvider implements Provider using AWS Polly (Generative engine).
type PollyProvider struct {
	voice  Voice
	client *polly.Client
}

func NewPollyProvider(cfg *config.Config, voiceOverride string) (*PollyProvider, error) {
	voiceID := pollyDefaultVoice
	if voiceOverride != "" {
		voiceID = voiceOverride
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load AWS config for Polly: %w", err)
	}

	return &PollyProvider{
		voice:  Voice{ID: voiceID, Name: voiceID},
		client: polly.NewFromConfig(awsCfg),
	}, nil
}

func (p *PollyProvider) Name() string { return "polly" }

func (p *PollyProvider) DefaultVoice() Voice { return p.voice }

func (p *PollyProvider) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	lang, ok := pollyVoiceLang[voice.ID]
	if !ok {
		lang = types.LanguageCodeEnIn
	}

	input := &polly.SynthesizeSpeechInput{
		Engine:       types.EngineGenerative,
		OutputFormat: types.OutputFormatMp3,
		SampleRate:   strPtr("24000"),
		Text:         &text,
		TextType:     types.TextTypeText,
		VoiceId:      types.VoiceId(voice.ID),
		LanguageCode: lang,
	}

	resp, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("Polly synthesize: %w", err)
	}
	defer resp.AudioStream.Close()

	data, err := io.ReadAll(resp.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("Polly read audio: %w", err)
	}

	return data, nil
}

func (p *PollyProvider) Close() error { return nil }

func strPtr(s string) *string { return &s }

func pollyAvailableVoices() []VoiceInfo {
	return []VoiceInfo{
		{ID: "Kajal", Name: "Kajal", Gender: "female", Description: "en-IN, Generative", Default: true},
		{ID: "Matthew", Name: "Matthew", Gender: "male", Description: "en-US, Generative"},
		{ID: "Ruth", Name: "Ruth", Gender: "female", Description: "en-US, Generative"},
		{ID: "Amy", Name: "Amy", Gender: "female", Description: "en-GB, Generative"},
		{ID: "Olivia", Name: "Olivia", Gender: "female", Description: "en-AU, Generative"},
	}
}
