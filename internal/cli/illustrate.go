package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thamizhmedia/velpari-studio/internal/config"
	"github.com/thamizhmedia/velpari-studio/internal/imagen"
	"github.com/thamizhmedia/velpari-studio/internal/story"
)

var illustrateCmd = &cobra.Command{
	Use:   "illustrate",
	Short: "Regenerate the illustration for a single scene",
	Long: `Regenerates one scene's illustration in place, overwriting any
existing image. Useful when a generated image needs another roll without
rerunning the whole chapter.`,
	RunE: runIllustrate,
}

var (
	flagIllustrateChapter int
	flagIllustrateScene   int
)

func init() {
	illustrateCmd.Flags().IntVarP(&flagIllustrateChapter, "chapter", "n", 0, "Chapter number (required)")
	illustrateCmd.Flags().IntVarP(&flagIllustrateScene, "scene", "s", 0, "Scene number within the chapter (required)")
}

func runIllustrate(cmd *cobra.Command, args []string) error {
	if flagIllustrateChapter < 1 {
		return fmt.Errorf("--chapter (-n) is required and must be positive")
	}
	if flagIllustrateScene < 1 {
		return fmt.Errorf("--scene (-s) is required and must be positive")
	}

	cfg, err := config.Load(flagConfig, "")
	if err != nil {
		return err
	}
	if err := checkOpenAIKey(); err != nil {
		return err
	}

	resolver := story.NewResolver(cfg)
	ch, err := resolver.Resolve(flagIllustrateChapter)
	if err != nil {
		return err
	}
	if flagIllustrateScene > len(ch.Scenes) {
		return fmt.Errorf("chapter %d has only %d scenes", ch.Number, len(ch.Scenes))
	}
	basePrompt, err := resolver.BasePrompt(ch.Number)
	if err != nil {
		return err
	}
	scene := ch.Scenes[flagIllustrateScene-1]

	il := imagen.NewIllustrator(imagen.NewOpenAIProvider(cfg), cfg)
	fmt.Printf("Illustrating chapter %d scene %d...\n", ch.Number, scene.Index)
	if err := il.Illustrate(cmd.Context(), scene.Index, basePrompt, scene.Text, scene.ImagePath); err != nil {
		return err
	}
	fmt.Printf("Image saved to %s\n", scene.ImagePath)
	return nil
}
