package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/imglayout"
)

func (c *CLI) capsCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "caps",
		Short: "Print the capability table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gens := imglayout.Gens()
			if !all {
				caps, err := c.caps()
				if err != nil {
					return err
				}
				gens = []imglayout.Gen{caps.Gen}
			}
			return printCaps(cmd.OutOrStdout(), gens)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every generation side by side")
	return cmd
}

// capsRow is one printed capability.
type capsRow struct {
	name  string
	value func(*imglayout.Caps) string
}

func flag(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

func sampleCounts(c *imglayout.Caps) string {
	var parts []string
	for n := 1; n <= 16; n *= 2 {
		if c.SupportsSamples(n) {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	return strings.Join(parts, ",")
}

var capsRows = []capsRow{
	{"max threads", func(c *imglayout.Caps) string { return num(c.MaxThreads) }},
	{"max 2D size", func(c *imglayout.Caps) string { return num(c.MaxSurfaceSize) }},
	{"max 3D size", func(c *imglayout.Caps) string { return num(c.Max3DSize) }},
	{"max array", func(c *imglayout.Caps) string { return num(c.MaxArraySlices) }},
	{"aperture", func(c *imglayout.Caps) string { return num(c.MappableAperture>>20) + " MB" }},
	{"samples", sampleCounts},
	{"compact arrays", func(c *imglayout.Caps) string { return flag(c.CompactArraySpacing) }},
	{"interleaved MSAA", func(c *imglayout.Caps) string { return flag(c.InterleavedSamplesOnly) }},
	{"interleaved ZS", func(c *imglayout.Caps) string { return flag(c.InterleavedDepthStencil) }},
	{"W surfaces", func(c *imglayout.Caps) string { return flag(c.WTiledSurfaces) }},
	{"Y 128bpp RT", func(c *imglayout.Caps) string { return flag(c.YTiled128bppRT) }},
	{"valign 4", func(c *imglayout.Caps) string { return flag(c.ForceVAlign4) }},
	{"MCS", func(c *imglayout.Caps) string { return flag(c.MCS) }},
	{"linear pad", func(c *imglayout.Caps) string { return flag(c.LinearSamplerPad) }},
	{"qpitch rows", func(c *imglayout.Caps) string { return strconv.Itoa(c.QPitchTailRows) }},
	{"MSAA erratum", func(c *imglayout.Caps) string { return flag(c.QPitchMSAAErratum) }},
	{"depth align", func(c *imglayout.Caps) string {
		return fmt.Sprintf("%dx%d", c.Align.Depth.I, c.Align.Depth.J)
	}},
	{"stencil align", func(c *imglayout.Caps) string {
		return fmt.Sprintf("%dx%d", c.Align.Stencil.I, c.Align.Stencil.J)
	}},
	{"HiZ LOD walk", func(c *imglayout.Caps) string { return flag(c.HiZLODWalk) }},
	{"mip stencil", func(c *imglayout.Caps) string { return flag(c.MipmappedStencil) }},
	{"QPitch fields", func(c *imglayout.Caps) string { return flag(c.ExplicitQPitch) }},
}

func printCaps(w io.Writer, gens []imglayout.Gen) error {
	caps := make([]imglayout.Caps, len(gens))
	headers := []string{"capability"}
	for i, g := range gens {
		c, err := imglayout.CapsFor(g)
		if err != nil {
			return err
		}
		caps[i] = c
		headers = append(headers, g.String())
	}

	t := newTable(headers...)
	for _, r := range capsRows {
		row := []string{r.name}
		for i := range caps {
			row = append(row, r.value(&caps[i]))
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.Render())
	return nil
}
