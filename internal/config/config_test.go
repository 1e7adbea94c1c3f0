package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
directories:
  input: content/chapters
  output: output/videos
  audio: output/audio
  images: output/images
openai:
  prompts:
    "1": "A dramatic establishing shot."
    "2": "The king among his people."
`

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "velpari.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Story.ChapterPattern != "chapter_{}.txt" {
		t.Errorf("expected default chapter pattern, got %q", cfg.Story.ChapterPattern)
	}
	if cfg.Video.FPS != 24 {
		t.Errorf("expected default fps 24, got %d", cfg.Video.FPS)
	}
	if cfg.Video.VideoCodec != "libx264" {
		t.Errorf("expected default codec libx264, got %q", cfg.Video.VideoCodec)
	}
	if cfg.TTS.Provider != "elevenlabs" {
		t.Errorf("expected default provider elevenlabs, got %q", cfg.TTS.Provider)
	}
	if cfg.TTS.Timeout != time.Minute {
		t.Errorf("expected default timeout 1m, got %v", cfg.TTS.Timeout)
	}
	if len(cfg.OpenAI.Prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(cfg.OpenAI.Prompts))
	}
	if cfg.OpenAI.Prompts[1] != "A dramatic establishing shot." {
		t.Errorf("prompt 1 mismatch: %q", cfg.OpenAI.Prompts[1])
	}
}

func TestLoadResolvesDirsAgainstRoot(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML), "/project")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := filepath.Join("/project", "content/chapters")
	if cfg.Directories.Input != want {
		t.Errorf("expected input %q, got %q", want, cfg.Directories.Input)
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	yaml := `
directories:
  input: content/chapters
  output: output/videos
  audio: output/audio
openai:
  prompts:
    "1": "A scene."
`
	_, err := Load(writeConfig(t, yaml), "")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cfgErr.Field != "directories.images" {
		t.Errorf("expected field directories.images, got %q", cfgErr.Field)
	}
}

func TestLoadNoPrompts(t *testing.T) {
	yaml := `
directories:
  input: a
  output: b
  audio: c
  images: d
`
	_, err := Load(writeConfig(t, yaml), "")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cfgErr.Field != "openai.prompts" {
		t.Errorf("expected field openai.prompts, got %q", cfgErr.Field)
	}
}

func TestLoadBadPromptIndex(t *testing.T) {
	yaml := validYAML + `
    "zero": "not a number"
`
	if _, err := Load(writeConfig(t, yaml), ""); err == nil {
		t.Fatal("expected error for non-numeric prompt index")
	}
}

func TestLoadPatternSlots(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
	}{
		{"NoSlot", "chapter.txt"},
		{"TwoSlots", "chapter_{}_{}.txt"},
		{"Empty", "  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			yaml := validYAML + "\nstory:\n  chapter_pattern: \"" + tc.pattern + "\"\n"
			_, err := Load(writeConfig(t, yaml), "")
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *config.Error, got %v", err)
			}
			if cfgErr.Field != "story.chapter_pattern" {
				t.Errorf("expected field story.chapter_pattern, got %q", cfgErr.Field)
			}
		})
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	yaml := validYAML + `
tts:
  provider: espeak
`
	_, err := Load(writeConfig(t, yaml), "")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *config.Error, got %v", err)
	}
	if cfgErr.Field != "tts.provider" {
		t.Errorf("expected field tts.provider, got %q", cfgErr.Field)
	}
}

func TestFillPattern(t *testing.T) {
	if got := FillPattern("chapter_{}.txt", 7); got != "chapter_7.txt" {
		t.Errorf("FillPattern = %q", got)
	}
	if got := FillPattern("velpari_chapter_{}.mp4", 42); got != "velpari_chapter_42.mp4" {
		t.Errorf("FillPattern = %q", got)
	}
}
