package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/spf13/cobra"

	"github.com/gogpu/imglayout"
	"github.com/gogpu/imglayout/descriptor"
	"github.com/gogpu/imglayout/resource"
)

// zsFormats maps the --format names of the zs command to texture formats.
var zsFormats = map[string]gputypes.TextureFormat{
	"d16":    gputypes.TextureFormatDepth16Unorm,
	"d24":    gputypes.TextureFormatDepth24Plus,
	"d24s8":  gputypes.TextureFormatDepth24PlusStencil8,
	"d32f":   gputypes.TextureFormatDepth32Float,
	"d32fs8": gputypes.TextureFormatDepth32FloatStencil8,
	"s8":     gputypes.TextureFormatStencil8,
}

type zsOptions struct {
	format        string
	width, height int
	levels, array int
	cube          bool
	noHiZ         bool
	null          bool

	level, base, count int
	zReadOnly          bool
	sReadOnly          bool
}

func (c *CLI) zsCommand() *cobra.Command {
	var o zsOptions

	cmd := &cobra.Command{
		Use:   "zs",
		Short: "Build depth/stencil buffer records",
		Long: `Create a depth/stencil texture, bind one level of it and print the
packed depth, stencil and HiZ buffer records.`,
		Example: `  imglayout zs --format d24s8 --width 1920 --height 1080
  imglayout zs --gen gen6 --format d32fs8 --width 256 --height 256 --levels 4 --level 2
  imglayout zs --null`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caps, err := c.caps()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if o.null {
				printDescriptor(out, descriptor.Null(caps))
				return nil
			}
			return c.runZS(out, caps, &o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.format, "format", "d24s8", "depth/stencil format (d16, d24, d24s8, d32f, d32fs8, s8)")
	f.IntVar(&o.width, "width", 64, "width in pixels")
	f.IntVar(&o.height, "height", 64, "height in pixels")
	f.IntVar(&o.levels, "levels", 1, "mip level count")
	f.IntVar(&o.array, "array", 1, "array size")
	f.BoolVar(&o.cube, "cube", false, "cube map (array must be 6)")
	f.BoolVar(&o.noHiZ, "no-hiz", false, "plan without HiZ")
	f.BoolVar(&o.null, "null", false, "print the null depth buffer")
	f.IntVar(&o.level, "level", 0, "bound level")
	f.IntVar(&o.base, "base", 0, "first bound slice")
	f.IntVar(&o.count, "count", 0, "bound slice count (0 = all)")
	f.BoolVar(&o.zReadOnly, "z-readonly", false, "disable depth writes")
	f.BoolVar(&o.sReadOnly, "s-readonly", false, "disable stencil writes")
	return cmd
}

func (c *CLI) runZS(out io.Writer, caps imglayout.Caps, o *zsOptions) error {
	format, ok := zsFormats[strings.ToLower(o.format)]
	if !ok {
		return fmt.Errorf("unknown depth/stencil format %q", o.format)
	}

	desc := &hal.TextureDescriptor{
		Label: "zs",
		Size: hal.Extent3D{
			Width:              uint32(o.width),
			Height:             uint32(o.height),
			DepthOrArrayLayers: uint32(o.array),
		},
		MipLevelCount: uint32(o.levels),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	}

	p := imglayout.NewPlanner(caps)
	defer p.Close()
	mgr := resource.NewMemoryManager(resource.MemoryManagerConfig{})
	defer mgr.Close()

	tex, err := resource.NewTexture(p, mgr, desc, resource.Options{Cube: o.cube, DisableHiZ: o.noHiZ})
	if err != nil {
		return err
	}
	defer tex.Release()

	count := o.count
	if count == 0 {
		count = tex.Main.SliceCount(o.level) - o.base
	}
	info, err := tex.DepthStencilInfo(o.level, o.base, count)
	if err != nil {
		return err
	}
	info.ZReadOnly = o.zReadOnly
	info.SReadOnly = o.sReadOnly

	d, err := descriptor.Build(caps, info)
	if err != nil {
		return err
	}

	printLayout(out, "depth", tex.Main)
	if tex.Stencil != nil {
		printLayout(out, "stencil", tex.Stencil)
	}
	for _, bo := range mgr.BOs() {
		printDetail(out, "%v", bo)
	}
	printDescriptor(out, d)
	logTexture(c.Logger, tex, mgr)
	return nil
}

// printDescriptor prints the packed records in hex.
func printDescriptor(w io.Writer, d *descriptor.Descriptor) {
	printTitle(w, "%v depth/stencil descriptor", d.Gen)

	t := newTable("record", "dwords")
	t.Row("depth", hexWords(d.Depth[:]))
	if d.Stencil != [3]uint32{} {
		t.Row("stencil", hexWords(d.Stencil[:]))
	}
	if d.HiZEnabled() {
		t.Row("hiz", hexWords(d.HiZ[:]))
	}
	fmt.Fprintln(w, t.Render())
}

func hexWords(words []uint32) string {
	parts := make([]string, len(words))
	for i, v := range words {
		parts[i] = fmt.Sprintf("%08x", v)
	}
	return strings.Join(parts, " ")
}
