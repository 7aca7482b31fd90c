package imglayout

import "github.com/gogpu/imglayout/internal/invariant"

// sliceSize returns the aligned size of one slice of level.
func (p *planner) sliceSize(level int) (w, h int) {
	req, l := p.req, p.out

	w = align(minify(req.Width, level), req.BlockWidth)
	h = align(minify(req.Height, level), req.BlockHeight)

	// Interleaved samples widen each pixel into a block of samples:
	// 4x stores a 2x2 pixel quad as 4x4 samples.
	if l.InterleavedSamples {
		switch req.SampleCount {
		case 2:
			w = align(w, 2) * 2
		case 4:
			w = align(w, 2) * 2
			h = align(h, 2) * 2
		case 8:
			w = align(w, 2) * 4
			h = align(h, 2) * 2
		case 16:
			w = align(w, 2) * 4
			h = align(h, 2) * 4
		}
	}

	return align(w, l.AlignI), align(h, l.AlignJ)
}

// layerCount returns the number of layers stored for each level. Samples of
// the same index form a layer unless they are interleaved.
func (p *planner) layerCount() int {
	n := p.req.ArraySize
	if !p.out.InterleavedSamples {
		n *= p.req.SampleCount
	}
	return n
}

func (p *planner) placeLevels() {
	req, l := p.req, p.out
	layers := p.layerCount()

	curX, curY := 0, 0
	maxX, maxY := 0, 0
	for lv := 0; lv < req.LevelCount; lv++ {
		sw, sh := p.sliceSize(lv)
		l.Levels[lv] = Level{X: curX, Y: curY, SliceWidth: sw, SliceHeight: sh}

		var lodW, lodH int
		switch l.Walk.(type) {
		case LayerWalk:
			lodW, lodH = sw, sh
			// level 1 goes right of level 0, the rest below level 1
			if lv == 0 {
				curX += lodW
			} else {
				curY += lodH
			}
		case LODWalk:
			lodW, lodH = sw, sh*layers
			if lv == 0 {
				curX += lodW
			} else {
				curY += lodH
			}
			// every level starts on a tile boundary
			if req.LevelCount > 1 {
				invariant.Check(req.Format == FormatS8, "LOD walk of %d levels for %v", req.LevelCount, req.Format)
				curX = align(curX, 64)
				curY = align(curY, 64)
			}
		case VolumeWalk:
			slices := minify(req.Depth, lv)
			perRow := 1 << lv
			rows := (slices + perRow - 1) / perRow
			lodW, lodH = sw*perRow, sh*rows
			curY += lodH
		}

		maxX = max(maxX, l.Levels[lv].X+lodW)
		maxY = max(maxY, l.Levels[lv].Y+lodH)
	}

	if _, ok := l.Walk.(LayerWalk); ok {
		w := p.layerWalk()
		l.Walk = w
		if layers > 1 {
			maxY += w.Stride * (layers - 1)
		}
	}

	p.maxX, p.maxY = maxX, maxY
	p.padFootprint()
}

// layerWalk computes the heights of the first two levels and the layer
// stride, QPitch = h0 + h1 + K * align_j, of a layer walk. Compressed images
// need no division by the block height since heights are in pixels.
func (p *planner) layerWalk() LayerWalk {
	req, l := p.req, p.out

	w := LayerWalk{H0: l.Levels[0].SliceHeight}
	if req.LevelCount > 1 {
		w.H1 = l.Levels[1].SliceHeight
	} else {
		_, w.H1 = p.sliceSize(1)
	}

	if p.layerCount() == 1 {
		return w
	}

	w.Stride = w.H0 + w.H1 + p.caps.QPitchTailRows*l.AlignJ

	// sampled multisample layers are 4 rows further apart for heights
	// 1, 5, 9, 13 and so on
	if p.caps.QPitchMSAAErratum && req.SampleCount > 1 && req.Height%4 == 1 {
		w.Stride += 4
	}
	return w
}

// padFootprint applies the usage-specific padding to the placed levels.
func (p *planner) padFootprint() {
	req, l := p.req, p.out
	alignW, alignH, padH := 1, 1, 0

	// Sampled images extend to the alignment unit. Cube maps need two more
	// rows and compressed images an even compressed row.
	if req.Usage.Has(UsageSampler) {
		alignW = max(alignW, l.AlignI)
		alignH = max(alignH, l.AlignJ)
		if req.Kind == KindCube {
			padH += 2
		}
		if req.Compressed {
			alignH = max(alignH, l.AlignJ*2)
		}
	}

	// a final row below odd-height render targets
	if req.Usage.Has(UsageRenderTarget) {
		alignH = max(alignH, 2)
	}

	// HiZ clears and resolves work in 8x4 sample blocks
	if p.aux == auxHiZ && req.LevelCount == 1 && req.ArraySize == 1 && req.Depth == 1 {
		alignW = max(alignW, 8)
		alignH = max(alignH, 4)
	}

	l.Width = align(p.maxX, alignW)
	l.Height = align(p.maxY+padH, alignH)
}
