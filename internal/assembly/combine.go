package assembly

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// FindPairs scans dir for audio files (*.mp3) and images sharing the same
// base name, returning them as clips in natural sort order (part2 before
// part10). Audio files without a matching image are skipped with a
// warning line on stderr.
func FindPairs(dir string) ([]Clip, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read media directory %s: %w", dir, err)
	}

	images := make(map[string]string)
	var audios []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case ext == ".mp3":
			audios = append(audios, name)
		case imageExts[ext]:
			images[stem] = name
		}
	}

	sort.Slice(audios, func(i, j int) bool {
		return naturalLess(audios[i], audios[j])
	})

	var clips []Clip
	for _, audio := range audios {
		stem := strings.TrimSuffix(audio, filepath.Ext(audio))
		img, ok := images[stem]
		if !ok {
			fmt.Fprintf(os.Stderr, "  Warning: no matching image for %s\n", audio)
			continue
		}
		clips = append(clips, Clip{
			Audio: filepath.Join(dir, audio),
			Image: filepath.Join(dir, img),
		})
	}

	if len(clips) == 0 {
		return nil, fmt.Errorf("no matching audio-image pairs found in %s", dir)
	}
	return clips, nil
}

var chunkPattern = regexp.MustCompile(`(\d+|\D+)`)

// naturalLess orders strings so embedded numbers compare numerically.
func naturalLess(a, b string) bool {
	as := chunkPattern.FindAllString(a, -1)
	bs := chunkPattern.FindAllString(b, -1)
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return an < bn
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}
