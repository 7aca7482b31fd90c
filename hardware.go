package imglayout

import "github.com/gogpu/imglayout/internal/invariant"

// Tiling heuristic thresholds, in estimated bytes.
const (
	// LinearMaxSize is the largest image that is always left untiled.
	LinearMaxSize = 64
	// XTilingMinSize is the largest image for which X tiling is never
	// chosen over leaving the image untiled.
	XTilingMinSize = 2048
)

// A full mip chain is estimated as 4/3 of its base level. The series
// actually converges to 4/3 only for square power-of-two images; the
// approximation is kept as is since it decides which images get tiled.
const (
	MipChainInflateNum = 4
	MipChainInflateDen = 3
)

func (p *planner) walk() Walk {
	req := p.req
	if req.Kind == Kind3D {
		return VolumeWalk{}
	}

	if p.caps.CompactArraySpacing {
		// depth and stencil buffers imply full array spacing
		if req.Usage.Has(UsageDepthStencil) || req.LevelCount > 1 {
			return LayerWalk{}
		}
		return LODWalk{}
	}

	// The separate stencil buffer cannot be mip-mapped. Its levels are
	// packed LOD-major and the descriptor offsets to the bound level.
	if req.separateStencil() {
		return LODWalk{}
	}
	return LayerWalk{}
}

// interleavedSamples reports whether the samples of a pixel are stored next
// to each other instead of in separate layers.
func (p *planner) interleavedSamples() bool {
	return p.caps.InterleavedSamplesOnly || p.req.Usage.Has(UsageDepthStencil)
}

func (p *planner) validTilings() TilingMask {
	req := p.req
	valid := TilingMaskAll
	if req.ValidTilings != 0 {
		valid &= req.ValidTilings
	}

	// display engines cannot scan out Y-tiled memory
	if req.Usage.Has(UsageScanout) {
		valid &= TilingMaskX
	}
	if req.Usage.Has(UsageCursor) {
		valid &= TilingMaskNone
	}

	// depth is always Y-tiled and separate stencil always W-tiled
	if req.Usage.Has(UsageDepthStencil) {
		if req.Format == FormatS8 {
			valid &= TilingMaskW
		} else {
			valid &= TilingMaskY
		}
	}

	if req.Usage.surface() {
		if req.SampleCount > 1 {
			valid &^= TilingMaskNone
		}
		if !p.caps.WTiledSurfaces {
			valid &^= TilingMaskW
		}
	}

	if req.Usage.Has(UsageRenderTarget) && req.BlockSize == 16 && !p.caps.YTiled128bppRT {
		valid &^= TilingMaskY
	}

	return valid
}

// estimatedSize approximates the byte size of the image without padding.
func (p *planner) estimatedSize() uint64 {
	req := p.req
	sliceSize := uint64(req.Width) * uint64(req.Height) * uint64(req.BlockSize) /
		uint64(req.BlockWidth*req.BlockHeight)
	size := sliceSize * uint64(req.Depth) * uint64(req.ArraySize) * uint64(req.SampleCount)
	if req.LevelCount > 1 {
		size = size * MipChainInflateNum / MipChainInflateDen
	}
	return size
}

func (p *planner) pickTiling(valid TilingMask) Tiling {
	if t, ok := valid.single(); ok {
		return t
	}

	req := p.req
	if valid.Has(TilingNone) {
		// Tiling pays off only when vertically adjacent blocks are accessed
		// together.
		if req.Height == 1 || !req.Usage.surface() {
			return TilingNone
		}

		size := p.estimatedSize()
		if size <= LinearMaxSize ||
			(req.PreferLinearThreshold != 0 && size > req.PreferLinearThreshold) {
			return TilingNone
		}
		if size <= XTilingMinSize {
			valid &^= TilingMaskX
		}
	}

	switch {
	case valid.Has(TilingY):
		return TilingY
	case valid.Has(TilingX):
		return TilingX
	default:
		return TilingNone
	}
}

func (p *planner) hizEnabled() bool {
	req := p.req
	if !req.Usage.Has(UsageDepthStencil) || req.Format == FormatS8 || req.InterleavedStencil {
		return false
	}
	// 1D images cannot be padded to 8x4 blocks
	if req.Kind == Kind1D {
		return false
	}
	return !req.AuxDisabled && !req.DisableHiZ
}

func (p *planner) mcsEnabled(tiling Tiling) bool {
	req := p.req
	if !req.Usage.Has(UsageSampler) && !req.Usage.Has(UsageRenderTarget) {
		return false
	}

	// required for every multisampled render target and texture
	if req.SampleCount > 1 {
		invariant.Check(p.caps.Gen >= Gen8 || !req.Integer,
			"multisampled integer image with MCS on %v", p.caps.Gen)
		return true
	}

	if req.AuxDisabled {
		return false
	}

	// fast clears of single-sampled render targets
	if !req.Usage.Has(UsageRenderTarget) || tiling == TilingNone ||
		req.LevelCount > 1 || req.ArraySize > 1 {
		return false
	}
	switch req.BlockSize {
	case 4, 8, 16:
		return true
	default:
		return false
	}
}

func (p *planner) alignments(tiling Tiling) (i, j int) {
	req := p.req
	table := &p.caps.Align

	if req.Compressed {
		return req.BlockWidth, req.BlockHeight
	}

	if req.Usage.Has(UsageDepthStencil) {
		var rule AlignRule
		switch req.Format {
		case FormatD16:
			rule = table.Depth16
		case FormatS8:
			rule = table.Stencil
		default:
			rule = table.Depth
		}
		return rule.I, rule.J
	}

	i, j = table.ColorI, table.ColorJ
	if req.SampleCount == 1 && req.BlockSize == 12 && table.RGB32FloatJ != 0 {
		j = table.RGB32FloatJ
	}
	if req.SampleCount > 1 {
		j = max(j, table.MultisampleJ)
	}
	if p.caps.ForceVAlign4 {
		j = max(j, 4)
	}
	if tiling == TilingY && req.Usage.Has(UsageRenderTarget) && table.YTiledRenderTargetJ != 0 {
		j = max(j, table.YTiledRenderTargetJ)
	}
	return i, j
}
