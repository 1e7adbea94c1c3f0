// Package imagen generates chapter illustrations via an image provider.
package imagen

import (
	"context"
	"fmt"
)

// Provider generates an image from a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, prompt, size, quality string) ([]byte, error)
	Close() error
}

// GenerationError is a permanent illustration failure: a provider error
// after retries are exhausted, or an empty image response. It is fatal to
// the chapter but must never abort sibling chapters in a batch.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s image generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// PromptNotFoundError reports a scene index with no configured prompt
// template. Indices past the defined range are treated the same way.
type PromptNotFoundError struct {
	Scene int
}

func (e *PromptNotFoundError) Error() string {
	return fmt.Sprintf("no prompt template configured for scene %d", e.Scene)
}
