// Package pipeline orchestrates chapter processing: resolve text, narrate
// and illustrate scenes concurrently, then assemble the video.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/thamizhmedia/velpari-studio/internal/assembly"
	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/imagen"
	"github.com/thamizhmedia/velpari-studio/internal/progress"
	"github.com/thamizhmedia/velpari-studio/internal/story"
	"github.com/thamizhmedia/velpari-studio/internal/tts"
)

// Stage is a chapter's position in the processing state machine:
// Pending → TextResolved → NarrationReady → IllustrationReady → Assembled.
// On failure the recorded stage is the one the chapter was working toward.
type Stage string

const (
	StagePending           Stage = "pending"
	StageTextResolved      Stage = "text_resolved"
	StageNarrationReady    Stage = "narration_ready"
	StageIllustrationReady Stage = "illustration_ready"
	StageAssembled         Stage = "assembled"
)

// Error is a chapter failure annotated with the stage it occurred in.
type Error struct {
	Stage   Stage
	Chapter int
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[chapter %d/%s] %v", e.Chapter, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the terminal state of one chapter run.
type Result struct {
	Chapter   int
	Stage     Stage
	VideoPath string
	Err       error
}

// Failed reports whether the chapter ended in a failure state.
func (r Result) Failed() bool { return r.Err != nil }

// Options configures a batch run.
type Options struct {
	Chapters   []int
	Workers    int
	Force      bool
	OnProgress progress.Callback
}

// Pipeline wires the resolver, requesters, and assembler together. The
// configuration is injected at construction and shared read-only across
// chapter workers.
type Pipeline struct {
	cfg      *config.Config
	resolver *story.Resolver
	narrator *tts.Narrator
	illus    *imagen.Illustrator
	asm      assembly.Assembler
	log      *slog.Logger
}

func New(cfg *config.Config, narrator *tts.Narrator, illus *imagen.Illustrator, asm assembly.Assembler, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		resolver: story.NewResolver(cfg),
		narrator: narrator,
		illus:    illus,
		asm:      asm,
		log:      log,
	}
}

// Run processes the requested chapters on a bounded worker pool. A
// chapter's failure is recorded in its Result and never aborts siblings;
// the returned error is non-nil when at least one chapter failed.
func (p *Pipeline) Run(ctx context.Context, opts Options) ([]Result, error) {
	if len(opts.Chapters) == 0 {
		return nil, fmt.Errorf("no chapters requested")
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cb := opts.OnProgress
	if cb == nil {
		cb = progress.NopCallback
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	results := make([]Result, len(opts.Chapters))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, n := range opts.Chapters {
		g.Go(func() error {
			results[i] = p.runChapter(ctx, n, opts.Force, cb)
			return nil
		})
	}
	// Workers never return errors; failures live in results.
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d chapters failed", failed, len(results))
	}
	return results, nil
}

func (p *Pipeline) runChapter(ctx context.Context, n int, force bool, cb progress.Callback) Result {
	start := time.Now()
	tracer := otel.Tracer("velpari/pipeline")
	ctx, span := tracer.Start(ctx, "chapter",
		trace.WithAttributes(attribute.Int("chapter", n)))
	defer span.End()

	fail := func(stage Stage, err error) Result {
		span.RecordError(err)
		p.log.ErrorContext(ctx, "chapter failed",
			"chapter", n, "stage", string(stage), "error", err)
		cb(progress.Event{Stage: progress.StageComplete, Chapter: n, Error: err, Elapsed: time.Since(start)})
		return Result{Chapter: n, Stage: stage, Err: &Error{Stage: stage, Chapter: n, Err: err}}
	}

	cb(progress.NewEvent(progress.StageResolve, n, fmt.Sprintf("Chapter %d: resolving text...", n), 0.05, start))
	ch, err := p.resolver.Resolve(n)
	if err != nil {
		return fail(StageTextResolved, err)
	}
	basePrompt, err := p.resolver.BasePrompt(n)
	if err != nil {
		return fail(StageTextResolved, err)
	}
	p.log.InfoContext(ctx, "chapter resolved",
		"chapter", n, "title", ch.Title, "scenes", len(ch.Scenes))

	// Narration and illustration are independent; run both and join
	// before assembly. A failure on one side cancels the other through
	// the group context, but only within this chapter.
	g, gctx := errgroup.WithContext(ctx)
	var narrErr, illErr error
	g.Go(func() error {
		narrErr = p.narrateScenes(gctx, ch, force, cb, start)
		return narrErr
	})
	g.Go(func() error {
		illErr = p.illustrateScenes(gctx, ch, basePrompt, force, cb, start)
		return illErr
	})
	if err := g.Wait(); err != nil {
		if narrErr != nil && !errors.Is(narrErr, context.Canceled) {
			return fail(StageNarrationReady, narrErr)
		}
		if illErr != nil && !errors.Is(illErr, context.Canceled) {
			return fail(StageIllustrationReady, illErr)
		}
		return fail(StageNarrationReady, err)
	}

	cb(progress.NewEvent(progress.StageAssemble, n, fmt.Sprintf("Chapter %d: assembling video...", n), 0.85, start))
	if force || !fileExists(ch.VideoPath) {
		clips := make([]assembly.Clip, 0, len(ch.Scenes))
		for _, sc := range ch.Scenes {
			clips = append(clips, assembly.Clip{Image: sc.ImagePath, Audio: sc.AudioPath})
		}
		if err := p.asm.Assemble(ctx, clips, ch.VideoPath); err != nil {
			return fail(StageAssembled, err)
		}
	} else {
		p.log.DebugContext(ctx, "video exists, skipping assembly", "chapter", n, "path", ch.VideoPath)
	}

	done := progress.NewEvent(progress.StageComplete, n, fmt.Sprintf("Chapter %d assembled", n), 1.0, start)
	done.OutputFile = ch.VideoPath
	if info, err := os.Stat(ch.VideoPath); err == nil {
		done.SizeMB = float64(info.Size()) / (1024 * 1024)
		done.Duration = assembly.Duration(ch.VideoPath)
	}
	cb(done)

	p.log.InfoContext(ctx, "chapter assembled", "chapter", n, "video", ch.VideoPath)
	return Result{Chapter: n, Stage: StageAssembled, VideoPath: ch.VideoPath}
}

func (p *Pipeline) narrateScenes(ctx context.Context, ch *story.Chapter, force bool, cb progress.Callback, start time.Time) error {
	for i, sc := range ch.Scenes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !force && fileExists(sc.AudioPath) {
			p.log.DebugContext(ctx, "narration exists, skipping",
				"chapter", ch.Number, "scene", sc.Index)
			continue
		}
		e := progress.NewEvent(progress.StageNarrate, ch.Number,
			fmt.Sprintf("Chapter %d: narrating scene %d/%d...", ch.Number, sc.Index, len(ch.Scenes)),
			0.1+0.35*float64(i)/float64(len(ch.Scenes)), start)
		e.SceneNum = sc.Index
		e.SceneTotal = len(ch.Scenes)
		cb(e)
		if err := p.narrator.Narrate(ctx, sc.Text, sc.AudioPath); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) illustrateScenes(ctx context.Context, ch *story.Chapter, basePrompt string, force bool, cb progress.Callback, start time.Time) error {
	for i, sc := range ch.Scenes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !force && fileExists(sc.ImagePath) {
			p.log.DebugContext(ctx, "illustration exists, skipping",
				"chapter", ch.Number, "scene", sc.Index)
			continue
		}
		e := progress.NewEvent(progress.StageIllustrate, ch.Number,
			fmt.Sprintf("Chapter %d: illustrating scene %d/%d...", ch.Number, sc.Index, len(ch.Scenes)),
			0.45+0.35*float64(i)/float64(len(ch.Scenes)), start)
		e.SceneNum = sc.Index
		e.SceneTotal = len(ch.Scenes)
		cb(e)
		if err := p.illus.Illustrate(ctx, sc.Index, basePrompt, sc.Text, sc.ImagePath); err != nil {
			return err
		}
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
