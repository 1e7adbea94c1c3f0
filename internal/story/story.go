// Package story resolves chapters to their input text and artifact paths.
package story

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

// maxChapterSize is the maximum allowed size for a chapter file (25 MB).
const maxChapterSize = 25 * 1024 * 1024

// ChapterNotFoundError reports a chapter whose input file does not exist.
type ChapterNotFoundError struct {
	Chapter int
	Path    string
}

func (e *ChapterNotFoundError) Error() string {
	return fmt.Sprintf("chapter %d not found at %s", e.Chapter, e.Path)
}

// Scene is one narrated, illustrated unit of a chapter.
type Scene struct {
	Index     int // 1-based
	Text      string
	AudioPath string
	ImagePath string
}

// Chapter holds everything the pipeline needs for one chapter: the source
// text split into scenes and the artifact paths derived from configuration.
type Chapter struct {
	Number    int
	InputPath string
	VideoPath string
	Title     string
	Scenes    []Scene
}

// Resolver derives chapter paths from the loaded configuration. Resolution
// is pure path arithmetic keyed by the chapter number, so repeated calls
// for the same number yield identical, collision-free paths.
type Resolver struct {
	cfg *config.Config
}

func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// InputPath returns the chapter's source text path.
func (r *Resolver) InputPath(n int) string {
	return filepath.Join(r.cfg.Directories.Input, config.FillPattern(r.cfg.Story.ChapterPattern, n))
}

// VideoPath returns the chapter's final video path.
func (r *Resolver) VideoPath(n int) string {
	return filepath.Join(r.cfg.Directories.Output, config.FillPattern(r.cfg.Story.OutputPattern, n))
}

// AudioPath returns the narration path for one scene of a chapter.
func (r *Resolver) AudioPath(n, scene int) string {
	return filepath.Join(r.cfg.Directories.Audio, fmt.Sprintf("chapter_%d_scene_%d.mp3", n, scene))
}

// ImagePath returns the illustration path for one scene of a chapter.
func (r *Resolver) ImagePath(n, scene int) string {
	return filepath.Join(r.cfg.Directories.Images, fmt.Sprintf("chapter_%d_scene_%d.png", n, scene))
}

// Resolve reads chapter n, splits it into scenes, and fills in every
// artifact path. It fails with *ChapterNotFoundError when the input file
// is absent.
func (r *Resolver) Resolve(n int) (*Chapter, error) {
	if n <= 0 {
		return nil, fmt.Errorf("chapter number must be positive, got %d", n)
	}

	inputPath := r.InputPath(n)
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return nil, &ChapterNotFoundError{Chapter: n, Path: inputPath}
	}
	if err := validateFile(inputPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read chapter %d: %w", n, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("chapter %d at %s is empty", n, inputPath)
	}

	paragraphs := SplitParagraphs(text)
	grouped := groupScenes(paragraphs, r.cfg.Story.SceneCount)

	ch := &Chapter{
		Number:    n,
		InputPath: inputPath,
		VideoPath: r.VideoPath(n),
		Title:     titleFromText(text, 80),
	}
	for i, sceneText := range grouped {
		idx := i + 1
		ch.Scenes = append(ch.Scenes, Scene{
			Index:     idx,
			Text:      sceneText,
			AudioPath: r.AudioPath(n, idx),
			ImagePath: r.ImagePath(n, idx),
		})
	}
	return ch, nil
}

// BasePrompt reads the optional per-chapter illustration base prompt that
// sits next to the chapter text (e.g. chapter_5_base_prompt.txt). It
// returns "" when the file does not exist.
func (r *Resolver) BasePrompt(n int) (string, error) {
	path := r.BasePromptPath(n)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read base prompt for chapter %d: %w", n, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// BasePromptPath derives the base prompt filename from the chapter pattern
// by inserting "_base_prompt" before the extension.
func (r *Resolver) BasePromptPath(n int) string {
	name := config.FillPattern(r.cfg.Story.ChapterPattern, n)
	ext := filepath.Ext(name)
	return filepath.Join(r.cfg.Directories.Input, strings.TrimSuffix(name, ext)+"_base_prompt"+ext)
}

// SplitParagraphs splits chapter text on blank lines.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// groupScenes joins paragraphs into at most count scenes, keeping the
// groups as even as possible. count <= 0 keeps one scene per paragraph.
func groupScenes(paragraphs []string, count int) []string {
	if count <= 0 || count >= len(paragraphs) {
		return paragraphs
	}

	scenes := make([]string, 0, count)
	per := len(paragraphs) / count
	extra := len(paragraphs) % count
	start := 0
	for i := 0; i < count; i++ {
		size := per
		if i < extra {
			size++
		}
		scenes = append(scenes, strings.Join(paragraphs[start:start+size], "\n\n"))
		start += size
	}
	return scenes
}

func titleFromText(text string, maxLen int) string {
	line := text
	if idx := strings.IndexByte(text, '\n'); idx > 0 {
		line = text[:idx]
	}
	line = strings.TrimSpace(line)
	if len(line) > maxLen {
		line = line[:maxLen] + "..."
	}
	if line == "" {
		return "Untitled"
	}
	return line
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxChapterSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxChapterSize/(1024*1024))
	}
	return nil
}
