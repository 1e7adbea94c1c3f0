// Package config loads and validates the declarative pipeline configuration.
package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Slot is the substitution marker filename patterns must contain exactly once.
const Slot = "{}"

// Error describes a missing or malformed configuration field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Directories holds the four directory roots the pipeline reads and writes.
// All are resolved against a single root before the Config is handed out.
type Directories struct {
	Input  string `mapstructure:"input"`
	Output string `mapstructure:"output"`
	Audio  string `mapstructure:"audio"`
	Images string `mapstructure:"images"`
}

// Story holds the chapter filename patterns and scene grouping.
type Story struct {
	ChapterPattern string `mapstructure:"chapter_pattern"`
	OutputPattern  string `mapstructure:"output_pattern"`
	// SceneCount groups paragraphs into at most this many scenes.
	// Zero means one scene per paragraph.
	SceneCount int `mapstructure:"scene_count"`
}

// ElevenLabs holds text-to-speech parameters for the default provider.
type ElevenLabs struct {
	Model           string  `mapstructure:"model"`
	DefaultVoice    string  `mapstructure:"default_voice"`
	Stability       float64 `mapstructure:"stability"`
	SimilarityBoost float64 `mapstructure:"similarity_boost"`
}

// OpenAI holds image-generation parameters. Prompts maps a scene index
// (1, 2, 3, ...) to its base prompt template.
type OpenAI struct {
	Model   string `mapstructure:"model"`
	Size    string `mapstructure:"size"`
	Quality string `mapstructure:"quality"`
	// Prompts is decoded separately so scene indices become ints.
	Prompts map[int]string `mapstructure:"-"`
}

// Video holds the encoding parameters passed verbatim to ffmpeg.
type Video struct {
	FPS          int    `mapstructure:"fps"`
	VideoCodec   string `mapstructure:"video_codec"`
	VideoQuality string `mapstructure:"video_quality"`
	VideoPreset  string `mapstructure:"video_preset"`
	AudioCodec   string `mapstructure:"audio_codec"`
	AudioBitrate string `mapstructure:"audio_bitrate"`
	PixelFormat  string `mapstructure:"pixel_format"`
}

// TTS selects the speech provider and the network timeout for all
// provider calls.
type TTS struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Config is the process-wide settings object. It is constructed once by
// Load, validated, and read-only afterwards; chapter workers share it
// without synchronization.
type Config struct {
	Directories Directories `mapstructure:"directories"`
	Story       Story       `mapstructure:"story"`
	ElevenLabs  ElevenLabs  `mapstructure:"elevenlabs"`
	OpenAI      OpenAI      `mapstructure:"openai"`
	Video       Video       `mapstructure:"video"`
	TTS         TTS         `mapstructure:"tts"`
}

// Load reads the YAML document at path, applies defaults and VELPARI_*
// environment overrides, validates the result, and resolves every
// directory against root. It performs no filesystem writes; consumers
// create directories lazily.
func Load(path, root string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.SetEnvPrefix("VELPARI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	prompts, err := parsePrompts(v.GetStringMapString("openai.prompts"))
	if err != nil {
		return nil, err
	}
	cfg.OpenAI.Prompts = prompts

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.resolveDirs(root)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("story.chapter_pattern", "chapter_{}.txt")
	v.SetDefault("story.output_pattern", "chapter_{}.mp4")
	v.SetDefault("story.scene_count", 0)

	v.SetDefault("elevenlabs.model", "eleven_multilingual_v2")
	v.SetDefault("elevenlabs.stability", 0.5)
	v.SetDefault("elevenlabs.similarity_boost", 0.75)

	v.SetDefault("openai.model", "dall-e-3")
	v.SetDefault("openai.size", "1792x1024")
	v.SetDefault("openai.quality", "standard")

	v.SetDefault("video.fps", 24)
	v.SetDefault("video.video_codec", "libx264")
	v.SetDefault("video.video_quality", "17")
	v.SetDefault("video.video_preset", "slow")
	v.SetDefault("video.audio_codec", "aac")
	v.SetDefault("video.audio_bitrate", "320k")
	v.SetDefault("video.pixel_format", "yuv420p")

	v.SetDefault("tts.provider", "elevenlabs")
	v.SetDefault("tts.timeout", time.Minute)
}

func parsePrompts(raw map[string]string) (map[int]string, error) {
	prompts := make(map[int]string, len(raw))
	for key, tmpl := range raw {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 1 {
			return nil, &Error{Field: "openai.prompts." + key, Reason: "scene index must be a positive integer"}
		}
		if strings.TrimSpace(tmpl) == "" {
			return nil, &Error{Field: "openai.prompts." + key, Reason: "prompt template is empty"}
		}
		prompts[idx] = tmpl
	}
	return prompts, nil
}

func (c *Config) validate() error {
	dirs := []struct {
		key string
		val string
	}{
		{"directories.input", c.Directories.Input},
		{"directories.output", c.Directories.Output},
		{"directories.audio", c.Directories.Audio},
		{"directories.images", c.Directories.Images},
	}
	for _, d := range dirs {
		if strings.TrimSpace(d.val) == "" {
			return &Error{Field: d.key, Reason: "required directory is missing"}
		}
	}

	if err := validatePattern("story.chapter_pattern", c.Story.ChapterPattern); err != nil {
		return err
	}
	if err := validatePattern("story.output_pattern", c.Story.OutputPattern); err != nil {
		return err
	}
	if c.Story.SceneCount < 0 {
		return &Error{Field: "story.scene_count", Reason: "must not be negative"}
	}

	if len(c.OpenAI.Prompts) == 0 {
		return &Error{Field: "openai.prompts", Reason: "at least one scene prompt is required"}
	}
	if strings.TrimSpace(c.OpenAI.Size) == "" {
		return &Error{Field: "openai.size", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.OpenAI.Quality) == "" {
		return &Error{Field: "openai.quality", Reason: "must not be empty"}
	}

	if c.Video.FPS <= 0 {
		return &Error{Field: "video.fps", Reason: "frame rate must be a positive integer"}
	}
	if strings.TrimSpace(c.Video.VideoQuality) == "" {
		return &Error{Field: "video.video_quality", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Video.AudioBitrate) == "" {
		return &Error{Field: "video.audio_bitrate", Reason: "must not be empty"}
	}

	switch c.TTS.Provider {
	case "elevenlabs", "google", "polly":
	default:
		return &Error{Field: "tts.provider", Reason: fmt.Sprintf("unknown provider %q: choose elevenlabs, google, or polly", c.TTS.Provider)}
	}
	if c.TTS.Timeout <= 0 {
		return &Error{Field: "tts.timeout", Reason: "must be a positive duration"}
	}

	return nil
}

func validatePattern(field, pattern string) error {
	switch n := strings.Count(pattern, Slot); {
	case strings.TrimSpace(pattern) == "":
		return &Error{Field: field, Reason: "required pattern is missing"}
	case n == 0:
		return &Error{Field: field, Reason: "pattern has no " + Slot + " slot"}
	case n > 1:
		return &Error{Field: field, Reason: "pattern has more than one " + Slot + " slot"}
	}
	return nil
}

func (c *Config) resolveDirs(root string) {
	c.Directories.Input = resolve(root, c.Directories.Input)
	c.Directories.Output = resolve(root, c.Directories.Output)
	c.Directories.Audio = resolve(root, c.Directories.Audio)
	c.Directories.Images = resolve(root, c.Directories.Images)
}

func resolve(root, dir string) string {
	if filepath.IsAbs(dir) || root == "" {
		return dir
	}
	return filepath.Join(root, dir)
}

// FillPattern substitutes the chapter number into a filename pattern.
func FillPattern(pattern string, n int) string {
	return strings.Replace(pattern, Slot, strconv.Itoa(n), 1)
}
