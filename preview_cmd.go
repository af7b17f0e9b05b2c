package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/flickguess/internal/canvas"
)

var (
	flagReveal    int
	flagPixelated bool
	flagOut       string
	flagWidth     int
	flagSeed      int64
)

var previewCmd = &cobra.Command{
	Use:   "preview <image>",
	Short: "Render a reveal frame for a local poster",
	Long: `Renders what a player would see for the given poster at a reveal
percentage: the scratch overlay composite, or the pixelated view with
--pixelated. Handy for tuning the overlay and pixelation curves.

Examples:
  flickguess preview poster.jpg --reveal 30
  flickguess preview poster.webp --reveal 60 --pixelated --out pixel.png`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().IntVar(&flagReveal, "reveal", 30, "Reveal percentage (0-100)")
	previewCmd.Flags().BoolVar(&flagPixelated, "pixelated", false, "Render the pixelation view instead of the overlay")
	previewCmd.Flags().StringVar(&flagOut, "out", "frame.png", "Output PNG path")
	previewCmd.Flags().IntVar(&flagWidth, "width", 0, "Rendering width (defaults to CANVAS_WIDTH)")
	previewCmd.Flags().Int64Var(&flagSeed, "seed", 1, "Overlay pattern seed")
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, err := renderPreview(data, flagReveal, flagWidth, flagSeed, flagPixelated)
	if err != nil {
		return err
	}
	f, err := os.Create(flagOut)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", flagOut, err)
	}
	log.Info().Str("out", flagOut).Int("reveal", flagReveal).Bool("pixelated", flagPixelated).Msg("preview written")
	return nil
}

// renderPreview runs poster bytes through a throwaway engine.
func renderPreview(data []byte, reveal, width int, seed int64, pixelated bool) (image.Image, error) {
	if width <= 0 {
		width = cfg.CanvasWidth
	}
	eng := canvas.NewEngine(canvas.Options{Width: width})
	eng.Begin(1, seed, reveal)
	p, err := eng.LoadPoster(1, data)
	if err != nil {
		return nil, err
	}
	if pixelated {
		return canvas.Pixelate(p.Image, reveal), nil
	}
	return eng.Frame(), nil
}
