package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

// Narrator turns scene text into an audio file on disk. Transient provider
// failures are retried with bounded backoff; anything that survives the
// retries comes back as a *SynthesisError.
type Narrator struct {
	provider Provider
	voice    Voice
	sleep    retry.SleepFunc
}

// NewNarrator wraps a provider. voiceOverride, when non-empty, replaces the
// provider's default voice.
func NewNarrator(p Provider, voiceOverride string) *Narrator {
	voice := p.DefaultVoice()
	if voiceOverride != "" {
		voice = Voice{ID: voiceOverride, Name: voiceOverride}
	}
	return &Narrator{provider: p, voice: voice}
}

// Voice returns the voice the narrator will synthesize with.
func (n *Narrator) Voice() Voice { return n.voice }

// Narrate synthesizes text and writes the audio to outPath, creating
// parent directories as needed. The configuration is never mutated; the
// only side effect is the single file write.
func (n *Narrator) Narrate(ctx context.Context, text, outPath string) error {
	if text == "" {
		return &SynthesisError{Provider: n.provider.Name(), Err: errors.New("empty narration text")}
	}

	var data []byte
	err := retry.Do(ctx, n.sleep, func() error {
		audio, err := n.provider.Synthesize(ctx, text, n.voice)
		if err != nil {
			return err
		}
		if len(audio) == 0 {
			return errors.New("provider returned no audio")
		}
		data = audio
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &SynthesisError{Provider: n.provider.Name(), Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create audio directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write audio to %s: %w", outPath, err)
	}
	return nil
}
