package cli

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/imglayout"
)

// defaultMapSize is the longest side of a placement map in pixels.
const defaultMapSize = 512

// maxMapScale caps the magnification of small layouts.
const maxMapScale = 16

var (
	mapBackground = color.RGBA{0x20, 0x20, 0x28, 0xff}
	mapBorder     = color.RGBA{0x10, 0x10, 0x10, 0xff}
	mapLabel      = color.RGBA{0xff, 0xff, 0xff, 0xff}

	// levelColors cycles over mip levels.
	levelColors = []color.RGBA{
		{0x4e, 0x79, 0xa7, 0xff},
		{0xf2, 0x8e, 0x2b, 0xff},
		{0xe1, 0x57, 0x59, 0xff},
		{0x76, 0xb7, 0xb2, 0xff},
		{0x59, 0xa1, 0x4f, 0xff},
		{0xed, 0xc9, 0x48, 0xff},
		{0xb0, 0x7a, 0xa1, 0xff},
		{0xff, 0x9d, 0xa7, 0xff},
	}
)

func levelColor(level int) color.RGBA {
	return levelColors[level%len(levelColors)]
}

func (c *CLI) renderCommand() *cobra.Command {
	var (
		spec requestSpec
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the level and slice placement of a layout as PNG",
		Example: `  imglayout render --width 256 --height 256 --levels 9 --out mips.png
  imglayout render --kind 3d --width 64 --height 64 --depth 8 --levels 4 --out volume.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := c.caps()
			if err != nil {
				return err
			}
			req, err := spec.request()
			if err != nil {
				return err
			}

			p := imglayout.NewPlanner(caps)
			defer p.Close()
			l, err := p.Plan(req)
			if err != nil {
				return err
			}

			img := renderMap(l, size)
			if err := writePNG(out, img); err != nil {
				return err
			}
			b := img.Bounds()
			printSuccess(cmd.OutOrStdout(), "%s %s", StyleTitle.Render(out),
				StyleDim.Render(fmt.Sprintf("%dx%d px, %v", b.Dx(), b.Dy(), l.Walk)))
			return nil
		},
	}

	addRequestFlags(cmd, &spec)
	cmd.Flags().StringVarP(&out, "out", "o", "layout.png", "output PNG file")
	cmd.Flags().IntVar(&size, "size", defaultMapSize, "longest side of the image in pixels")
	return cmd
}

// mapScale returns the factor that fits a w x h footprint into size pixels.
func mapScale(w, h, size int) float64 {
	if size <= 0 {
		size = defaultMapSize
	}
	return math.Min(float64(size)/float64(max(w, h, 1)), maxMapScale)
}

// renderMap draws every slice of every level of l at its position in the
// footprint, scaled so the longest side is size pixels.
func renderMap(l *imglayout.Layout, size int) *image.RGBA {
	s := mapScale(l.Width, l.Height, size)
	scale := func(v int) int { return int(math.Round(float64(v) * s)) }

	img := image.NewRGBA(image.Rect(0, 0, max(scale(l.Width), 1), max(scale(l.Height), 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(mapBackground), image.Point{}, draw.Src)

	n := 1
	if !l.InterleavedSamples {
		n = l.SampleCount
	}
	for lv := range l.LevelCount {
		info := l.Levels[lv]
		fill := image.NewUniform(levelColor(lv))
		for slice := range l.SliceCount(lv) * n {
			x, y, err := l.SlicePos(lv, slice)
			if err != nil {
				continue
			}
			r := image.Rect(scale(x), scale(y), scale(x+info.SliceWidth), scale(y+info.SliceHeight))
			drawBox(img, r, fill)
			if slice == 0 {
				drawLabel(img, r, "L"+strconv.Itoa(lv))
			}
		}
	}
	return img
}

// drawBox fills r and outlines it one pixel wide.
func drawBox(img *image.RGBA, r image.Rectangle, fill image.Image) {
	draw.Draw(img, r, fill, image.Point{}, draw.Src)
	if r.Dx() < 3 || r.Dy() < 3 {
		return
	}
	border := image.NewUniform(mapBorder)
	for _, e := range []image.Rectangle{
		{r.Min, image.Pt(r.Max.X, r.Min.Y+1)},
		{image.Pt(r.Min.X, r.Max.Y-1), r.Max},
		{r.Min, image.Pt(r.Min.X+1, r.Max.Y)},
		{image.Pt(r.Max.X-1, r.Min.Y), r.Max},
	} {
		draw.Draw(img, e, border, image.Point{}, draw.Src)
	}
}

// drawLabel writes text in the top-left corner of r when it fits.
func drawLabel(img *image.RGBA, r image.Rectangle, text string) {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text).Ceil()
	if r.Dx() < adv+6 || r.Dy() < face.Height+4 {
		return
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(mapLabel),
		Face: face,
		Dot:  fixed.P(r.Min.X+3, r.Min.Y+2+face.Ascent),
	}
	d.DrawString(text)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
