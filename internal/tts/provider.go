package tts

import (
	"context"
	"fmt"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

// Voice holds a provider-specific voice identifier.
type Voice struct {
	ID   string // Provider-specific voice identifier
	Name string // Human-readable label
}

// Provider synthesizes narration audio from text.
type Provider interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
	DefaultVoice() Voice
	Close() error
}

// SynthesisError is a permanent narration failure: a provider error after
// retries are exhausted, or an empty audio response.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s synthesis failed: %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// VoiceInfo describes an available voice for display in the registry.
type VoiceInfo struct {
	ID          string
	Name        string
	Gender      string // "male" or "female"
	Description string
	Default     bool
}

// AvailableVoices returns the voice catalog for the named provider.
func AvailableVoices(providerName string) ([]VoiceInfo, error) {
	switch providerName {
	case "elevenlabs":
		return elevenLabsAvailableVoices(), nil
	case "google":
		return googleAvailableVoices(), nil
	case "polly":
		return pollyAvailableVoices(), nil
	default:
		return nil, fmt.Errorf("unknown TTS provider %q", providerName)
	}
}

// NewProvider creates a TTS provider by name. voiceOverride is an optional
// provider-specific voice ID that replaces the configured default.
func NewProvider(cfg *config.Config, name, voiceOverride string) (Provider, error) {
	switch name {
	case "elevenlabs":
		return NewElevenLabsProvider(cfg, voiceOverride), nil
	case "google":
		return NewGoogleProvider(cfg, voiceOverride)
	case "polly":
		return NewPollyProvider(cfg, voiceOverride)
	default:
		return nil, fmt.Errorf("unknown TTS provider %q: choose elevenlabs, google, or polly", name)
	}
}
