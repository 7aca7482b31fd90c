package imglayout

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/imglayout/internal/invariant"
)

// auxKind is the aux decision made before the aux surface is sized.
type auxKind uint8

const (
	auxNone auxKind = iota
	auxHiZ
	auxMCS
)

// planner carries the state of one Compute call.
type planner struct {
	caps *Caps
	req  *Request
	out  *Layout

	aux auxKind

	// extent of the placed levels before padding
	maxX, maxY int
}

// Compute plans the physical layout of req on the hardware described by
// caps. It is a pure function: identical inputs give identical layouts, and
// a failed call returns no layout.
func Compute(caps Caps, req Request) (*Layout, error) {
	if err := req.validate(&caps); err != nil {
		return nil, err
	}

	p := &planner{
		caps: &caps,
		req:  &req,
		out:  newLayout(&req),
	}

	if req.bindsGPU() || req.LevelCount > 1 {
		if err := p.initHardwareLayout(); err != nil {
			return nil, err
		}
	} else {
		p.initTransferLayout()
	}

	l := p.out

	// Alignments that are multiples of the block dimensions keep the slices
	// on block boundaries and the buffer a whole number of blocks.
	invariant.Check(l.AlignI%req.BlockWidth == 0 && l.AlignJ%req.BlockHeight == 0,
		"alignment %dx%d does not divide into %dx%d blocks", l.AlignI, l.AlignJ, req.BlockWidth, req.BlockHeight)
	invariant.Check(isPow2(l.AlignI) && isPow2(l.AlignJ),
		"alignment %dx%d is not a power of two", l.AlignI, l.AlignJ)

	p.placeLevels()

	invariant.Check(l.LayerStride()%req.BlockHeight == 0,
		"layer stride %d not a multiple of block height %d", l.LayerStride(), req.BlockHeight)
	invariant.Check(l.Width%req.BlockWidth == 0 && l.Height%req.BlockHeight == 0,
		"footprint %dx%d not a multiple of %dx%d blocks", l.Width, l.Height, req.BlockWidth, req.BlockHeight)

	if err := p.setFootprint(); err != nil {
		return nil, err
	}

	switch p.aux {
	case auxHiZ:
		l.Aux = p.hiz()
	case auxMCS:
		mcs, err := p.mcs()
		if err != nil {
			return nil, err
		}
		l.Aux = mcs
	}

	Logger().Debug("layout planned",
		slog.String("gen", caps.Gen.String()),
		slog.String("kind", req.Kind.String()),
		slog.Int("width", req.Width),
		slog.Int("height", req.Height),
		slog.String("walk", l.Walk.String()),
		slog.String("tiling", l.Tiling.String()),
		slog.Int("stride", l.Stride),
		slog.Int("rows", l.Rows),
		slog.Any("aux", l.Aux),
	)

	return l, nil
}

func newLayout(req *Request) *Layout {
	return &Layout{
		Kind:        req.Kind,
		Format:      req.Format,
		Width0:      req.Width,
		Height0:     req.Height,
		Depth0:      req.Depth,
		ArraySize:   req.ArraySize,
		LevelCount:  req.LevelCount,
		SampleCount: req.SampleCount,
		BlockWidth:  req.BlockWidth,
		BlockHeight: req.BlockHeight,
		BlockSize:   req.BlockSize,
		Scanout:     req.Usage.Has(UsageScanout),
	}
}

// initTransferLayout lays out images no hardware unit accesses, which are
// only ever read and written by the CPU.
func (p *planner) initTransferLayout() {
	l := p.out
	l.Walk = LODWalk{}
	l.InterleavedSamples = false
	l.ValidTilings = TilingMaskNone
	l.Tiling = TilingNone
	l.AlignI = p.req.BlockWidth
	l.AlignJ = p.req.BlockHeight
	p.aux = auxNone
}

func (p *planner) initHardwareLayout() error {
	l := p.out
	l.Walk = p.walk()
	l.InterleavedSamples = p.interleavedSamples()

	l.ValidTilings = p.validTilings()
	if l.ValidTilings == 0 {
		return fmt.Errorf("%w: usage %v on %v", ErrNoValidTiling, p.req.Usage, p.caps.Gen)
	}
	l.Tiling = p.pickTiling(l.ValidTilings)

	switch {
	case p.hizEnabled():
		p.aux = auxHiZ
	case p.caps.MCS && p.mcsEnabled(l.Tiling):
		p.aux = auxMCS
	default:
		p.aux = auxNone
	}

	l.AlignI, l.AlignJ = p.alignments(l.Tiling)
	return nil
}

func align(v, a int) int {
	return (v + a - 1) / a * a
}

func minify(v, level int) int {
	return max(v>>level, 1)
}
