package assembly

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestFindPairsNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"scene_1", "scene_2", "scene_10"} {
		touch(t, dir, n+".mp3")
		touch(t, dir, n+".png")
	}

	clips, err := FindPairs(dir)
	if err != nil {
		t.Fatalf("FindPairs failed: %v", err)
	}
	if len(clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(clips))
	}
	want := []string{"scene_1.mp3", "scene_2.mp3", "scene_10.mp3"}
	for i, w := range want {
		if filepath.Base(clips[i].Audio) != w {
			t.Errorf("clip %d: expected %s, got %s", i, w, filepath.Base(clips[i].Audio))
		}
	}
}

func TestFindPairsMixedImageExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.mp3")
	touch(t, dir, "a.jpg")
	touch(t, dir, "b.mp3")
	touch(t, dir, "b.png")

	clips, err := FindPairs(dir)
	if err != nil {
		t.Fatalf("FindPairs failed: %v", err)
	}
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips, got %d", len(clips))
	}
}

func TestFindPairsSkipsUnmatchedAudio(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "matched.mp3")
	touch(t, dir, "matched.png")
	touch(t, dir, "orphan.mp3")

	clips, err := FindPairs(dir)
	if err != nil {
		t.Fatalf("FindPairs failed: %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("expected 1 clip, got %d", len(clips))
	}
	if filepath.Base(clips[0].Audio) != "matched.mp3" {
		t.Errorf("unexpected clip: %s", clips[0].Audio)
	}
}

func TestFindPairsEmptyDir(t *testing.T) {
	if _, err := FindPairs(t.TempDir()); err == nil {
		t.Error("expected error for directory with no pairs")
	}
}

func TestNaturalLess(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"scene_2.mp3", "scene_10.mp3", true},
		{"scene_10.mp3", "scene_2.mp3", false},
		{"a.mp3", "b.mp3", true},
		{"scene_1.mp3", "scene_1.mp3", false},
	}
	for _, tc := range cases {
		if got := naturalLess(tc.a, tc.b); got != tc.want {
			t.Errorf("naturalLess(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
