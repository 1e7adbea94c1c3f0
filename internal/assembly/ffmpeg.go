// Package assembly encodes narration audio and illustrations into videos.
package assembly

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

// Clip pairs one illustration with the narration it stays on screen for.
type Clip struct {
	Image string
	Audio string
}

// Assembler produces a video from clips. The pipeline depends on this
// interface so tests can substitute a stub encoder.
type Assembler interface {
	Assemble(ctx context.Context, clips []Clip, output string) error
}

// EncodingError reports a failed encode: a missing input artifact or a
// non-zero ffmpeg exit. Detail carries the tool's diagnostic output.
// Encoding is never retried; failures are deterministic given fixed inputs.
type EncodingError struct {
	Op     string
	Detail string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("encoding failed (%s): %v\n%s", e.Op, e.Err, e.Detail)
	}
	return fmt.Sprintf("encoding failed (%s): %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// FFmpegAssembler drives the ffmpeg binary with the configured codec,
// quality, preset, framerate, audio codec, bitrate, and pixel format
// passed through verbatim.
type FFmpegAssembler struct {
	video config.Video
}

func NewFFmpegAssembler(cfg *config.Config) *FFmpegAssembler {
	return &FFmpegAssembler{video: cfg.Video}
}

// CheckInstalled verifies the ffmpeg binary is on PATH.
func CheckInstalled() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found on PATH — install it first")
	}
	return nil
}

// Assemble encodes each clip (still image held for the duration of its
// audio), concatenates the clips, and moves the result to output. The
// output path exists if and only if the whole encode succeeded.
func (a *FFmpegAssembler) Assemble(ctx context.Context, clips []Clip, output string) error {
	if len(clips) == 0 {
		return &EncodingError{Op: "assemble", Err: fmt.Errorf("no clips to assemble")}
	}
	for _, c := range clips {
		if _, err := os.Stat(c.Audio); err != nil {
			return &EncodingError{Op: "assemble", Err: fmt.Errorf("missing audio input %s: %w", c.Audio, err)}
		}
		if _, err := os.Stat(c.Image); err != nil {
			return &EncodingError{Op: "assemble", Err: fmt.Errorf("missing image input %s: %w", c.Image, err)}
		}
	}

	tmpDir, err := os.MkdirTemp("", "velpari-*")
	if err != nil {
		return fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	clipPaths := make([]string, 0, len(clips))
	for i, c := range clips {
		clipPath := filepath.Join(tmpDir, fmt.Sprintf("clip_%d.mp4", i))
		if err := a.encodeClip(ctx, c, clipPath); err != nil {
			return err
		}
		clipPaths = append(clipPaths, clipPath)
	}

	listPath := filepath.Join(tmpDir, "concat.txt")
	if err := writeConcatList(clipPaths, listPath); err != nil {
		return fmt.Errorf("build concat list: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Encode next to the final path, then rename, so a failed run never
	// leaves a half-written video at the output path.
	partial := output + ".partial"
	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(partial, ffmpeg.KwArgs{"c": "copy", "f": "mp4"}).
		OverWriteOutput()
	if err := runFFmpeg(ctx, stream, "concat"); err != nil {
		os.Remove(partial)
		return err
	}

	info, err := os.Stat(partial)
	if err != nil {
		return &EncodingError{Op: "concat", Err: fmt.Errorf("output not created: %w", err)}
	}
	if info.Size() == 0 {
		os.Remove(partial)
		return &EncodingError{Op: "concat", Err: fmt.Errorf("output is empty")}
	}

	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// encodeClip loops the still image for exactly the audio's duration.
func (a *FFmpegAssembler) encodeClip(ctx context.Context, c Clip, out string) error {
	duration, err := probeDuration(c.Audio)
	if err != nil {
		return &EncodingError{Op: "probe", Err: err}
	}

	image := ffmpeg.Input(c.Image, ffmpeg.KwArgs{
		"loop":      "1",
		"framerate": strconv.Itoa(a.video.FPS),
	})
	audio := ffmpeg.Input(c.Audio)

	stream := ffmpeg.Output([]*ffmpeg.Stream{image, audio}, out, ffmpeg.KwArgs{
		"c:v":     a.video.VideoCodec,
		"preset":  a.video.VideoPreset,
		"crf":     a.video.VideoQuality,
		"pix_fmt": a.video.PixelFormat,
		// yuv420p needs even dimensions; arbitrary stills may not have them.
		"vf":  "scale=trunc(iw/2)*2:trunc(ih/2)*2",
		"c:a": a.video.AudioCodec,
		"b:a": a.video.AudioBitrate,
		"r":   strconv.Itoa(a.video.FPS),
		"t":   fmt.Sprintf("%.3f", duration),
	}).OverWriteOutput()

	return runFFmpeg(ctx, stream, "clip")
}

// runFFmpeg executes a compiled ffmpeg argument list, capturing stderr for
// diagnostics.
func runFFmpeg(ctx context.Context, stream *ffmpeg.Stream, op string) error {
	args := stream.GetArgs()
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = nil

	if err := cmd.Run(); err != nil {
		return &EncodingError{Op: op, Detail: stderr.String(), Err: err}
	}
	return nil
}

// probeDuration returns the media duration in seconds via ffprobe.
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}
	var probed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probed); err != nil {
		return 0, fmt.Errorf("parse probe output for %s: %w", path, err)
	}
	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q for %s: %w", probed.Format.Duration, path, err)
	}
	return duration, nil
}

// Duration formats the media duration at path as M:SS, or "" when the
// file cannot be probed. Used for the final summary only.
func Duration(path string) string {
	secs, err := probeDuration(path)
	if err != nil {
		return ""
	}
	mins := int(secs) / 60
	remain := int(secs) % 60
	return fmt.Sprintf("%d:%02d", mins, remain)
}

func writeConcatList(paths []string, listPath string) error {
	var lines []string
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("file '%s'", p))
	}
	return os.WriteFile(listPath, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
