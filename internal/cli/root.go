// Package cli implements the velpari command surface.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thamizhmedia/velpari-studio/internal/assembly"
	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/imagen"
	"github.com/thamizhmedia/velpari-studio/internal/observability"
	"github.com/thamizhmedia/velpari-studio/internal/pipeline"
	"github.com/thamizhmedia/velpari-studio/internal/progress"
	"github.com/thamizhmedia/velpari-studio/internal/tts"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "velpari",
	Short: "Turn Velpari chapters into narrated, illustrated videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		flagTUI = true
		return runGenerate(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("velpari %s\n", Version)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate narrated videos for one or more chapters",
	RunE:  runGenerate,
}

var listVoicesCmd = &cobra.Command{
	Use:   "list-voices",
	Short: "List available voices for all TTS providers",
	RunE:  runListVoices,
}

var (
	flagConfig           string
	flagChapter          int
	flagChapters         string
	flagVoice            string
	flagTTS              string
	flagWorkers          int
	flagForce            bool
	flagVerbose          bool
	flagTUI              bool
	flagElevenLabsAPIKey string
	flagOpenAIAPIKey     string
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(illustrateCmd)
	rootCmd.AddCommand(listVoicesCmd)

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "configs/velpari.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")

	generateCmd.Flags().IntVarP(&flagChapter, "chapter", "n", 0, "Single chapter number to process")
	generateCmd.Flags().StringVarP(&flagChapters, "chapters", "N", "", "Chapter set, e.g. \"1-10\" or \"1,3,7\"")
	generateCmd.Flags().StringVar(&flagVoice, "voice", "", "Voice ID (overrides the configured default)")
	generateCmd.Flags().StringVarP(&flagTTS, "tts", "T", "", "TTS provider: elevenlabs, google, or polly (overrides config)")
	generateCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 2, "Number of chapters to process concurrently")
	generateCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Regenerate audio, images, and video even when files exist")
	generateCmd.Flags().BoolVarP(&flagTUI, "tui", "t", false, "Interactive setup wizard for generation options")
	generateCmd.Flags().StringVar(&flagElevenLabsAPIKey, "elevenlabs-api-key", "", "ElevenLabs API key (overrides ELEVENLABS_API_KEY env var)")
	generateCmd.Flags().StringVar(&flagOpenAIAPIKey, "openai-api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
}

func Execute() error {
	// A missing .env is fine; real env vars win over file values.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if flagTUI {
		if err := runInteractiveSetup(); err != nil {
			return err
		}
	}

	chapters, err := parseChapterSet(flagChapter, flagChapters)
	if err != nil {
		return err
	}
	if flagWorkers < 1 {
		return fmt.Errorf("invalid workers count %d: must be at least 1", flagWorkers)
	}

	cfg, err := config.Load(flagConfig, "")
	if err != nil {
		return err
	}

	provider := cfg.TTS.Provider
	if flagTTS != "" {
		switch flagTTS {
		case "elevenlabs", "google", "polly":
			provider = flagTTS
		default:
			return fmt.Errorf("invalid TTS provider %q: must be elevenlabs, google, or polly", flagTTS)
		}
	}

	if err := checkAPIKeys(provider); err != nil {
		return err
	}
	if err := assembly.CheckInstalled(); err != nil {
		return err
	}

	logger := observability.InitLogger(flagVerbose)
	tp, err := observability.InitTracer(cmd.Context(), "velpari", Version)
	if err != nil {
		return err
	}
	if tp != nil {
		defer tp.Shutdown(cmd.Context())
	}

	ttsProvider, err := tts.NewProvider(cfg, provider, flagVoice)
	if err != nil {
		return err
	}
	defer ttsProvider.Close()

	p := pipeline.New(cfg,
		tts.NewNarrator(ttsProvider, flagVoice),
		imagen.NewIllustrator(imagen.NewOpenAIProvider(cfg), cfg),
		assembly.NewFFmpegAssembler(cfg),
		logger,
	)

	opts := pipeline.Options{
		Chapters: chapters,
		Workers:  flagWorkers,
		Force:    flagForce,
	}
	if !flagVerbose {
		r := progress.NewBarRenderer(os.Stdout)
		defer r.Finish()
		opts.OnProgress = r.Handle
	}

	results, runErr := p.Run(cmd.Context(), opts)
	printSummary(results)
	return runErr
}

// parseChapterSet merges --chapter and --chapters into a sorted,
// deduplicated list. Accepts single numbers, comma lists, and N-M ranges.
func parseChapterSet(single int, set string) ([]int, error) {
	seen := map[int]bool{}
	add := func(n int) error {
		if n < 1 {
			return fmt.Errorf("invalid chapter number %d: must be positive", n)
		}
		seen[n] = true
		return nil
	}

	if single != 0 {
		if err := add(single); err != nil {
			return nil, err
		}
	}
	if set != "" {
		for _, part := range strings.Split(set, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if lo, hi, ok := strings.Cut(part, "-"); ok {
				start, err1 := strconv.Atoi(strings.TrimSpace(lo))
				end, err2 := strconv.Atoi(strings.TrimSpace(hi))
				if err1 != nil || err2 != nil || start > end {
					return nil, fmt.Errorf("invalid chapter range %q", part)
				}
				for n := start; n <= end; n++ {
					if err := add(n); err != nil {
						return nil, err
					}
				}
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid chapter number %q", part)
			}
			if err := add(n); err != nil {
				return nil, err
			}
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("either --chapter (-n) or --chapters (-N) is required")
	}

	chapters := make([]int, 0, len(seen))
	for n := range seen {
		chapters = append(chapters, n)
	}
	sort.Ints(chapters)
	return chapters, nil
}

func printSummary(results []pipeline.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Println()
	for _, r := range results {
		if r.Failed() {
			fmt.Printf("  chapter %d: FAILED (%v)\n", r.Chapter, r.Err)
		} else {
			fmt.Printf("  chapter %d: %s\n", r.Chapter, r.VideoPath)
		}
	}
}

func runListVoices(cmd *cobra.Command, args []string) error {
	providers := []struct {
		name  string
		label string
	}{
		{"elevenlabs", "ELEVENLABS"},
		{"google", "GOOGLE CLOUD TTS"},
		{"polly", "AMAZON POLLY"},
	}

	fmt.Println("\nAvailable voices:")

	for _, p := range providers {
		voices, err := tts.AvailableVoices(p.name)
		if err != nil {
			return err
		}

		fmt.Printf("\n  %s\n", p.label)
		fmt.Printf("  %s\n", strings.Repeat("─", 50))
		fmt.Printf("  %-28s %-16s %-8s %s\n", "ID", "NAME", "GENDER", "DESCRIPTION")
		for _, v := range voices {
			def := ""
			if v.Default {
				def = " (default)"
			}
			fmt.Printf("  %-28s %-16s %-8s %s%s\n", v.ID, v.Name, v.Gender, v.Description, def)
		}
	}
	fmt.Println()
	return nil
}

func checkAPIKeys(ttsProvider string) error {
	// Flag values take precedence and are exported so providers pick
	// them up at construction.
	if flagElevenLabsAPIKey != "" {
		os.Setenv("ELEVENLABS_API_KEY", flagElevenLabsAPIKey)
	}

	var missing []string
	if err := checkOpenAIKey(); err != nil {
		missing = append(missing, "OPENAI_API_KEY")
	}
	switch ttsProvider {
	case "elevenlabs":
		if os.Getenv("ELEVENLABS_API_KEY") == "" {
			missing = append(missing, "ELEVENLABS_API_KEY")
		}
	case "google":
		// Uses Application Default Credentials
	case "polly":
		// Uses the default AWS credential chain
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variable(s): %s\nYou can also pass these via --elevenlabs-api-key and --openai-api-key flags", strings.Join(missing, ", "))
	}
	return nil
}

func checkOpenAIKey() error {
	if flagOpenAIAPIKey != "" {
		os.Setenv("OPENAI_API_KEY", flagOpenAIAPIKey)
	}
	if os.Getenv("OPENAI_API_KEY") == "" {
		return fmt.Errorf("missing required environment variable OPENAI_API_KEY")
	}
	return nil
}
