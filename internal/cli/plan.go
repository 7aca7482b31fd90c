package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/imglayout"
)

func (c *CLI) planCommand() *cobra.Command {
	var (
		spec    requestSpec
		file    string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute image layouts",
		Long: `Compute the layout of one image described by flags, or of every
[[request]] of a TOML request file.`,
		Example: `  imglayout plan --width 1920 --height 1080 --usage rt|scanout
  imglayout plan --gen gen6 --format d24x8 --usage zs --width 64 --height 64 --levels 3
  imglayout plan --file requests.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := []requestSpec{spec}
			if file != "" {
				f, err := loadRequestFile(file)
				if err != nil {
					return err
				}
				if f.Gen != "" && !cmd.Flags().Changed("gen") {
					c.gen = f.Gen
				}
				specs = f.Requests
			}

			caps, err := c.caps()
			if err != nil {
				return err
			}
			return c.runPlan(cmd, caps, specs, workers)
		},
	}

	addRequestFlags(cmd, &spec)
	cmd.Flags().StringVarP(&file, "file", "f", "", "TOML request file")
	cmd.Flags().IntVar(&workers, "workers", 0, "planner workers (0 = GOMAXPROCS)")
	return cmd
}

func (c *CLI) runPlan(cmd *cobra.Command, caps imglayout.Caps, specs []requestSpec, workers int) error {
	out := cmd.OutOrStdout()

	reqs := make([]imglayout.Request, len(specs))
	for i := range specs {
		r, err := specs[i].request()
		if err != nil {
			return fmt.Errorf("%s: %w", specs[i].label(i), err)
		}
		reqs[i] = r
	}

	p := imglayout.NewPlanner(caps, imglayout.WithWorkers(workers))
	defer p.Close()

	start := time.Now()
	results, err := p.PlanAll(cmd.Context(), reqs)
	if err != nil {
		return err
	}
	logBatch(c.Logger, caps.Gen, results, time.Since(start), p.Stats())

	failed := 0
	for i, res := range results {
		name := specs[i].label(i)
		if res.Err != nil {
			printError(out, "%s: %v", name, res.Err)
			failed++
			continue
		}
		printLayout(out, name, res.Layout)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(results))
	}
	return nil
}

// printLayout prints the summary and level table of a layout.
func printLayout(w io.Writer, name string, l *imglayout.Layout) {
	printSuccess(w, "%s %s", StyleTitle.Render(name),
		StyleDim.Render(fmt.Sprintf("%v %v %dx%dx%d", l.Kind, l.Format, l.Width0, l.Height0, l.Depth0)))

	printKeyValue(w, "walk", l.Walk.String())
	printKeyValue(w, "tiling", fmt.Sprintf("%v (valid %v)", l.Tiling, l.ValidTilings))
	printKeyValue(w, "align", fmt.Sprintf("%dx%d", l.AlignI, l.AlignJ))
	printKeyValue(w, "footprint", fmt.Sprintf("%dx%d px", l.Width, l.Height))
	printKeyValue(w, "buffer", fmt.Sprintf("%s bytes x %s rows = %s bytes",
		num(l.Stride), num(l.Rows), num(l.Size())))
	if s := l.LayerStride(); s != 0 {
		printKeyValue(w, "layer stride", num(s)+" rows")
	}
	if l.SampleCount > 1 {
		printKeyValue(w, "samples", fmt.Sprintf("%d (interleaved %v)", l.SampleCount, l.InterleavedSamples))
	}
	printAux(w, l)

	t := newTable("level", "x", "y", "slice w", "slice h", "slices")
	for lv := range l.LevelCount {
		v := l.Levels[lv]
		t.Row(strconv.Itoa(lv), num(v.X), num(v.Y), num(v.SliceWidth), num(v.SliceHeight),
			strconv.Itoa(l.SliceCount(lv)))
	}
	fmt.Fprintln(w, t.Render())
}

func printAux(w io.Writer, l *imglayout.Layout) {
	switch a := l.Aux.(type) {
	case *imglayout.HiZ:
		printKeyValue(w, "hiz", fmt.Sprintf("%s x %s = %s bytes, levels %0*b",
			num(a.Stride), num(a.Rows), num(l.AuxSize()), l.LevelCount, a.Enables))
		if len(a.LODOffsets) > 0 {
			printDetail(w, "level offsets %v", a.LODOffsets)
		}
		if a.LayerStride != 0 {
			printDetail(w, "layer stride %d rows", a.LayerStride)
		}
	case *imglayout.MCS:
		printKeyValue(w, "mcs", fmt.Sprintf("%s x %s = %s bytes",
			num(a.Stride), num(a.Rows), num(l.AuxSize())))
	default:
		printKeyValue(w, "aux", "none")
	}
}
