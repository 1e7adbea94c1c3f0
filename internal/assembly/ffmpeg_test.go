package assembly

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/thamizhmedia/velpari-studio/internal/config"
)

func testAssembler() *FFmpegAssembler {
	return NewFFmpegAssembler(&config.Config{
		Video: config.Video{
			FPS:          24,
			VideoCodec:   "libx264",
			VideoQuality: "17",
			VideoPreset:  "slow",
			AudioCodec:   "aac",
			AudioBitrate: "320k",
			PixelFormat:  "yuv420p",
		},
	})
}

func TestAssembleEmptyClips(t *testing.T) {
	err := testAssembler().Assemble(context.Background(), nil, filepath.Join(t.TempDir(), "out.mp4"))
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
}

func TestAssembleMissingAudioInput(t *testing.T) {
	dir := t.TempDir()
	img := touch(t, dir, "scene_1.png")
	out := filepath.Join(dir, "out.mp4")

	clips := []Clip{{Image: img, Audio: filepath.Join(dir, "missing.mp3")}}
	err := testAssembler().Assemble(context.Background(), clips, out)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("failed assembly must not leave an output file")
	}
}

func TestAssembleMissingImageInput(t *testing.T) {
	dir := t.TempDir()
	audio := touch(t, dir, "scene_1.mp3")
	out := filepath.Join(dir, "out.mp4")

	clips := []Clip{{Image: filepath.Join(dir, "missing.png"), Audio: audio}}
	err := testAssembler().Assemble(context.Background(), clips, out)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("failed assembly must not leave an output file")
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "concat.txt")
	if err := writeConcatList([]string{"/tmp/clip_0.mp4", "/tmp/clip_1.mp4"}, listPath); err != nil {
		t.Fatalf("writeConcatList failed: %v", err)
	}
	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	want := "file '/tmp/clip_0.mp4'\nfile '/tmp/clip_1.mp4'\n"
	if string(data) != want {
		t.Errorf("concat list mismatch:\n got %q\nwant %q", data, want)
	}
}
