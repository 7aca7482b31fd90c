package imglayout

import (
	"fmt"

	"github.com/gogpu/imglayout/internal/invariant"
)

// hizAlignJ is the vertical alignment of HiZ levels. Every two rows of a
// level are packed into one memory row.
const hizAlignJ = 8

// hiz sizes the hierarchical depth surface of the image.
func (p *planner) hiz() *HiZ {
	req, l := p.req, p.out
	caps := p.caps

	switch l.Walk.(type) {
	case LayerWalk, VolumeWalk:
	default:
		invariant.Check(false, "HiZ for %v walk", l.Walk)
	}

	// Without LOD support every level needs its own HiZ buffer; they share
	// one allocation packed LOD-major.
	walk := l.Walk
	if caps.HiZLODWalk {
		walk = LODWalk{}
	}

	hz := &HiZ{}
	var width, height int

	switch walk.(type) {
	case LayerWalk:
		lw := l.Walk.(LayerWalk)
		qpitch := align(lw.H0, hizAlignJ) + align(lw.H1, hizAlignJ) + caps.QPitchTailRows*hizAlignJ

		width = align(l.Levels[0].SliceWidth, 16)
		height = qpitch * req.ArraySize / 2
		if caps.HiZAlignRows8 {
			height = align(height, 8)
		}
		hz.LayerStride = qpitch

	case LODWalk:
		var tileX, tileY [MaxLevels]int
		curX, curY := 0, 0
		for lv := 0; lv < req.LevelCount; lv++ {
			tileX[lv], tileY[lv] = curX, curY

			tw := align(l.Levels[lv].SliceWidth, 16)
			th := align(l.Levels[lv].SliceHeight, hizAlignJ) * req.ArraySize / 2
			// in Y tiles
			tw = (tw + 127) / 128
			th = (th + 31) / 32

			width = max(width, curX+tw)
			height = max(height, curY+th)

			if lv == 0 {
				curX += tw
			} else {
				curY += th
			}
		}

		hz.LODOffsets = make([]uint32, req.LevelCount)
		for lv := range hz.LODOffsets {
			hz.LODOffsets[lv] = uint32((tileY[lv]*width + tileX[lv]) * 4096)
		}
		width *= 128
		height *= 32

	case VolumeWalk:
		width = align(l.Levels[0].SliceWidth, 16)
		for lv := 0; lv < req.LevelCount; lv++ {
			// slices are packed vertically
			height += align(l.Levels[lv].SliceHeight, hizAlignJ) * minify(req.Depth, lv)
		}
		height /= 2
	}

	// Levels must be aligned to 8x4 sample blocks to be cleared or
	// resolved.
	clearW, clearH := 8, 4
	switch req.SampleCount {
	case 2:
		clearW /= 2
	case 4:
		clearW /= 2
		clearH /= 2
	case 8:
		clearW /= 4
		clearH /= 2
	case 16:
		clearW /= 4
		clearH /= 4
	}
	for lv := 0; lv < req.LevelCount; lv++ {
		if minify(req.Width, lv)%clearW != 0 || minify(req.Height, lv)%clearH != 0 {
			break
		}
		hz.Enables |= 1 << lv
	}

	// padded in padFootprint
	if req.LevelCount == 1 && req.ArraySize == 1 && req.Depth == 1 {
		hz.Enables |= 1
	}

	hz.Stride = align(width, 128)
	hz.Rows = align(height, 32)
	return hz
}

// mcs sizes the multisample control surface of the image.
func (p *planner) mcs() (*MCS, error) {
	req, l := p.req, p.out

	var width, height, cpp int
	if req.SampleCount > 1 {
		// An OWord of MCS covers 8x2 pixels at 4x and 2x2 pixels at 8x.
		var dx, dy int
		switch req.SampleCount {
		case 2, 4:
			dx, dy, cpp = 8, 2, 1
		case 8:
			dx, dy, cpp = 2, 2, 4
		case 16:
			dx, dy, cpp = 2, 1, 8
		default:
			return nil, fmt.Errorf("%w: MCS for %d samples", ErrUnsupportedSampleCount, req.SampleCount)
		}

		// the scaled-down clear rectangle is aligned to 2x2
		width = align(req.Width, dx*2)
		height = align(req.Height, dy*2)
	} else {
		// One bit per 128-byte block of the render target, 8x16 blocks
		// per OWord.
		var dx, dy int
		switch l.Tiling {
		case TilingX:
			dx, dy = 64/req.BlockSize, 2
		case TilingY:
			dx, dy = 32/req.BlockSize, 4
		default:
			return nil, fmt.Errorf("%w: MCS for %v tiling", ErrNoValidTiling, l.Tiling)
		}
		dx *= 8
		dy *= 16

		// 16x16 hashing across slices doubles the clear rectangle
		// alignment to 4x4
		width = align(req.Width, dx*4) / dx
		height = align(req.Height, dy*4) / dy
		cpp = 16
	}

	return &MCS{
		Enables: uint16(1<<req.LevelCount - 1),
		Stride:  align(width*cpp, 128),
		Rows:    align(height, 32),
	}, nil
}
