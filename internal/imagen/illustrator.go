package imagen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/retry"
)

// Illustrator turns a scene into an image file on disk: it selects the
// prompt template for the scene index, interpolates chapter context, calls
// the provider, and writes the result.
type Illustrator struct {
	provider Provider
	prompts  map[int]string
	size     string
	quality  string
	sleep    retry.SleepFunc
}

func NewIllustrator(p Provider, cfg *config.Config) *Illustrator {
	return &Illustrator{
		provider: p,
		prompts:  cfg.OpenAI.Prompts,
		size:     cfg.OpenAI.Size,
		quality:  cfg.OpenAI.Quality,
	}
}

// Prompt resolves the full prompt for a scene: the optional per-chapter
// base prompt, the scene's configured template, and the scene text as
// trailing context. A scene index with no template fails with
// *PromptNotFoundError.
func (il *Illustrator) Prompt(scene int, basePrompt, sceneText string) (string, error) {
	tmpl, ok := il.prompts[scene]
	if !ok {
		return "", &PromptNotFoundError{Scene: scene}
	}

	var b strings.Builder
	if basePrompt != "" {
		b.WriteString(basePrompt)
		b.WriteString(" ")
	}
	b.WriteString(tmpl)
	if sceneText != "" {
		b.WriteString(" Context: ")
		b.WriteString(sceneText)
	}
	return b.String(), nil
}

// Illustrate generates the image for one scene and writes it to outPath,
// creating parent directories as needed.
func (il *Illustrator) Illustrate(ctx context.Context, scene int, basePrompt, sceneText, outPath string) error {
	prompt, err := il.Prompt(scene, basePrompt, sceneText)
	if err != nil {
		return err
	}

	var data []byte
	err = retry.Do(ctx, il.sleep, func() error {
		img, err := il.provider.Generate(ctx, prompt, il.size, il.quality)
		if err != nil {
			return err
		}
		if len(img) == 0 {
			return errors.New("provider returned no image")
		}
		data = img
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return &GenerationError{Provider: il.provider.Name(), Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write image to %s: %w", outPath, err)
	}
	return nil
}
