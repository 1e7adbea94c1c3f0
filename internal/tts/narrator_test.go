package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

type stubProvider struct {
	name  string
	voice Voice
	calls int
	fn    func(call int) ([]byte, error)
}

func (s *stubProvider) Name() string        { return s.name }
func (s *stubProvider) DefaultVoice() Voice { return s.voice }
func (s *stubProvider) Close() error        { return nil }

func (s *stubProvider) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	s.calls++
	return s.fn(s.calls)
}

func noopSleep(ctx context.Context, d time.Duration) error { return nil }

func TestNarrateWritesAudioFile(t *testing.T) {
	p := &stubProvider{
		name:  "stub",
		voice: Voice{ID: "v1", Name: "Stub"},
		fn:    func(int) ([]byte, error) { return []byte("mp3-bytes"), nil },
	}
	n := NewNarrator(p, "")
	out := filepath.Join(t.TempDir(), "audio", "chapter_1_scene_1.mp3")

	if err := n.Narrate(context.Background(), "Velpari rode out.", out); err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("output mismatch: %q", data)
	}
}

func TestNarrateRetriesTransientThenSucceeds(t *testing.T) {
	p := &stubProvider{
		name:  "stub",
		voice: Voice{ID: "v1"},
		fn: func(call int) ([]byte, error) {
			if call < 3 {
				return nil, &retry.TransientError{StatusCode: 429, Body: "slow down"}
			}
			return []byte("ok"), nil
		},
	}
	n := NewNarrator(p, "")
	n.sleep = noopSleep
	out := filepath.Join(t.TempDir(), "scene.mp3")

	if err := n.Narrate(context.Background(), "text", out); err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 synthesize calls, got %d", p.calls)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected output file: %v", err)
	}
}

func TestNarrateExhaustedRetriesIsSynthesisError(t *testing.T) {
	p := &stubProvider{
		name:  "stub",
		voice: Voice{ID: "v1"},
		fn: func(int) ([]byte, error) {
			return nil, &retry.TransientError{StatusCode: 503}
		},
	}
	n := NewNarrator(p, "")
	n.sleep = noopSleep
	out := filepath.Join(t.TempDir(), "scene.mp3")

	err := n.Narrate(context.Background(), "text", out)
	var synErr *SynthesisError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SynthesisError, got %v", err)
	}
	if p.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", p.calls)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no file should be written on failure")
	}
}

func TestNarratePermanentErrorNoRetry(t *testing.T) {
	p := &stubProvider{
		name:  "stub",
		voice: Voice{ID: "v1"},
		fn:    func(int) ([]byte, error) { return nil, errors.New("bad voice") },
	}
	n := NewNarrator(p, "")
	n.sleep = noopSleep

	err := n.Narrate(context.Background(), "text", filepath.Join(t.TempDir(), "s.mp3"))
	var synErr *SynthesisError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SynthesisError, got %v", err)
	}
	if p.calls != 1 {
		t.Errorf("expected 1 attempt for a permanent error, got %d", p.calls)
	}
}

func TestNarrateEmptyText(t *testing.T) {
	p := &stubProvider{name: "stub", voice: Voice{ID: "v1"},
		fn: func(int) ([]byte, error) { return []byte("x"), nil }}
	n := NewNarrator(p, "")

	err := n.Narrate(context.Background(), "", filepath.Join(t.TempDir(), "s.mp3"))
	var synErr *SynthesisError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SynthesisError for empty text, got %v", err)
	}
	if p.calls != 0 {
		t.Errorf("provider should not be called for empty text")
	}
}

func TestNarratorVoiceOverride(t *testing.T) {
	p := &stubProvider{name: "stub", voice: Voice{ID: "default"}}
	if got := NewNarrator(p, "").Voice().ID; got != "default" {
		t.Errorf("expected default voice, got %q", got)
	}
	if got := NewNarrator(p, "custom").Voice().ID; got != "custom" {
		t.Errorf("expected custom voice, got %q", got)
	}
}
