package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thamizhmedia/velpari-studio/internal/assembly"
	"github.com/thamizhmedia/velpari-studio/internal/config"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine existing audio/image pairs from a directory into a video",
	Long: `Scans a directory for narration files (*.mp3) and matching
illustrations (*.png, *.jpg) with the same stem, orders them naturally
(scene_2 before scene_10), and encodes a single video.`,
	RunE: runCombine,
}

var (
	flagCombineDir    string
	flagCombineOutput string
)

func init() {
	combineCmd.Flags().StringVarP(&flagCombineDir, "dir", "d", "", "Directory holding the audio/image pairs (required)")
	combineCmd.Flags().StringVarP(&flagCombineOutput, "output", "o", "", "Output video path (required)")
}

func runCombine(cmd *cobra.Command, args []string) error {
	if flagCombineDir == "" {
		return fmt.Errorf("--dir (-d) is required")
	}
	if flagCombineOutput == "" {
		return fmt.Errorf("--output (-o) is required")
	}
	if err := assembly.CheckInstalled(); err != nil {
		return err
	}

	cfg, err := config.Load(flagConfig, "")
	if err != nil {
		return err
	}

	clips, err := assembly.FindPairs(flagCombineDir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d audio/image pairs in %s\n", len(clips), flagCombineDir)

	asm := assembly.NewFFmpegAssembler(cfg)
	if err := asm.Assemble(cmd.Context(), clips, flagCombineOutput); err != nil {
		return err
	}

	if d := assembly.Duration(flagCombineOutput); d != "" {
		fmt.Printf("Video saved to %s (%s)\n", flagCombineOutput, d)
	} else {
		fmt.Printf("Video saved to %s\n", flagCombineOutput)
	}
	return nil
}
