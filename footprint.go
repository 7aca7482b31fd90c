package imglayout

import "fmt"

// linearSamplerPad is the padding in bytes required below untiled sampled
// images on hardware with LinearSamplerPad.
const linearSamplerPad = 64

// setFootprint converts the padded pixel footprint into the stride and row
// count of the buffer.
func (p *planner) setFootprint() error {
	req, l := p.req, p.out

	stride := l.Width / req.BlockWidth * req.BlockSize
	rows := l.Height / req.BlockHeight

	// Tiled pitches must be a multiple of the tile width. The untiled grid
	// is merely a good enough value for every bind point.
	gridW, gridH := l.Tiling.boGrid()

	if req.ForceStride != 0 {
		if req.ForceStride%gridW != 0 || req.ForceStride < stride {
			return fmt.Errorf("%w: %d bytes for %v tiling, need a multiple of %d of at least %d",
				ErrInvalidForcedStride, req.ForceStride, l.Tiling, gridW, stride)
		}
		l.Stride = req.ForceStride
	} else {
		l.Stride = align(stride, gridW)
	}

	// The pad is counted in rows of the final stride, so a wider image
	// never ends up with fewer rows.
	if p.caps.LinearSamplerPad && req.Usage.Has(UsageSampler) && l.Tiling == TilingNone {
		rows += (linearSamplerPad + l.Stride - 1) / l.Stride
	}
	l.Rows = align(rows, gridH)

	return nil
}
