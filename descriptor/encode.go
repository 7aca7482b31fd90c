package descriptor

import (
	"github.com/gogpu/imglayout"
	"github.com/gogpu/imglayout/internal/invariant"
)

// Depth buffer record fields shared by both layouts.
const (
	depthDW1TypeShift   = 29
	depthDW1FormatShift = 18
)

// Gen6 depth buffer record.
const (
	gen6DepthDW1TilingShift     = 26
	gen6DepthDW1HiZEnable       = 1 << 22
	gen6DepthDW1SeparateStencil = 1 << 21

	gen6DepthDW3HeightShift     = 19
	gen6DepthDW3WidthShift      = 6
	gen6DepthDW3LODShift        = 2
	gen6DepthDW3MipLayoutBelow  = 0 << 1
	gen6DepthDW4DepthShift      = 21
	gen6DepthDW4MinArrayShift   = 10
	gen6DepthDW4ViewExtentShift = 1
)

// Gen7+ depth buffer record.
const (
	gen7DepthDW1DepthWrite   = 1 << 28
	gen7DepthDW1StencilWrite = 1 << 27
	gen7DepthDW1HiZEnable    = 1 << 22

	gen7DepthDW3HeightShift     = 18
	gen7DepthDW3WidthShift      = 4
	gen7DepthDW3LODShift        = 0
	gen7DepthDW4DepthShift      = 21
	gen7DepthDW4MinArrayShift   = 10
	gen7DepthDW6ViewExtentShift = 21
)

// gen75StencilDW1Enable is the explicit stencil buffer enable.
const gen75StencilDW1Enable = 1 << 31

// depthWords encodes the depth buffer record of a validated binding.
func (b *builder) depthWords() ([5]uint32, error) {
	var words [5]uint32
	info := b.info

	width, height, err := b.extent()
	if err != nil {
		return words, err
	}
	depth, base, viewExtent, err := b.slices()
	if err != nil {
		return words, err
	}

	dw1 := uint32(info.Kind)<<depthDW1TypeShift | uint32(info.Format)<<depthDW1FormatShift

	if b.caps.Descriptor == imglayout.DescriptorGen6 {
		// read-only flags have no Gen6 encoding
		dw1 |= uint32(imglayout.TilingY) << gen6DepthDW1TilingShift
		if info.Z != nil {
			dw1 |= uint32(info.Z.Stride - 1)
		}
		if info.HiZMem != nil || info.Z == nil {
			dw1 |= gen6DepthDW1HiZEnable | gen6DepthDW1SeparateStencil
		}

		words[0] = dw1
		words[2] = height<<gen6DepthDW3HeightShift |
			width<<gen6DepthDW3WidthShift |
			uint32(info.Level)<<gen6DepthDW3LODShift |
			gen6DepthDW3MipLayoutBelow
		words[3] = depth<<gen6DepthDW4DepthShift |
			base<<gen6DepthDW4MinArrayShift |
			viewExtent<<gen6DepthDW4ViewExtentShift
		return words, nil
	}

	if info.Z != nil {
		if !info.ZReadOnly {
			dw1 |= gen7DepthDW1DepthWrite
		}
		if info.HiZMem != nil {
			dw1 |= gen7DepthDW1HiZEnable
		}
		dw1 |= uint32(info.Z.Stride - 1)
	}
	if info.S != nil && !info.SReadOnly {
		dw1 |= gen7DepthDW1StencilWrite
	}

	dw6 := viewExtent << gen7DepthDW6ViewExtentShift
	if b.caps.ExplicitQPitch && info.Z != nil {
		dw6 |= qpitch(info.Z.LayerStride())
	}

	words[0] = dw1
	words[2] = height<<gen7DepthDW3HeightShift |
		width<<gen7DepthDW3WidthShift |
		uint32(info.Level)<<gen7DepthDW3LODShift
	words[3] = depth<<gen7DepthDW4DepthShift | base<<gen7DepthDW4MinArrayShift
	words[4] = dw6
	return words, nil
}

// qpitch encodes a layer stride in units of 4 rows.
func qpitch(rows int) uint32 {
	invariant.Check(rows%4 == 0, "layer stride %d is not a multiple of 4", rows)
	return uint32(rows / 4)
}

func stencilWords(caps *imglayout.Caps, info *Info) [3]uint32 {
	var words [3]uint32
	img := info.S

	// Two rows of stencil are interleaved in each memory row.
	words[0] = uint32(img.Stride*2 - 1)
	if caps.StencilBufferEnable {
		words[0] |= gen75StencilDW1Enable
	}

	// offset to the level when stencil is not mip-mapped
	if !caps.MipmappedStencil {
		x, y, err := img.SlicePos(info.Level, 0)
		invariant.Check(err == nil, "stencil level %d: %v", info.Level, err)
		memX, memY := img.PosToMem(x, y)
		words[1] = uint32(img.MemToRaw(memX, memY))
	}

	if caps.ExplicitQPitch {
		words[2] = qpitch(img.LayerStride())
	}
	return words
}

func hizWords(caps *imglayout.Caps, info *Info) [3]uint32 {
	var words [3]uint32
	hz, ok := info.Z.HiZ()
	invariant.Check(ok, "HiZ memory bound to an image without HiZ")
	if !ok {
		return words
	}

	words[0] = uint32(hz.Stride - 1)

	// offset to the level when HiZ is not mip-mapped
	if caps.HiZLODWalk && info.Level < len(hz.LODOffsets) {
		words[1] = hz.LODOffsets[info.Level]
	}

	if caps.ExplicitQPitch {
		words[2] = qpitch(hz.LayerStride)
	}
	return words
}
