package imglayout

import (
	"fmt"
	"strings"
)

// Gen identifies a hardware generation. Values are scaled by ten so that
// half generations (Gen7.5) order naturally.
type Gen int

// Supported generations.
const (
	Gen6  Gen = 60
	Gen7  Gen = 70
	Gen75 Gen = 75
	Gen8  Gen = 80
)

// String returns the generation as "gen7.5" style text.
func (g Gen) String() string {
	if g%10 == 0 {
		return fmt.Sprintf("gen%d", g/10)
	}
	return fmt.Sprintf("gen%d.%d", g/10, g%10)
}

// ParseGen parses "6", "gen7", "7.5" or "gen7.5".
func ParseGen(s string) (Gen, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "gen")
	for _, g := range Gens() {
		if strings.TrimPrefix(g.String(), "gen") == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGen, s)
}

// Gens returns all generations of the capability table, oldest first.
func Gens() []Gen {
	return []Gen{Gen6, Gen7, Gen75, Gen8}
}

// AlignRule is a horizontal/vertical pixel alignment pair.
type AlignRule struct {
	I, J int
}

// AlignTable holds the mip-level alignments of one generation.
type AlignTable struct {
	// Depth16, Depth and Stencil apply to depth/stencil bound surfaces.
	Depth16 AlignRule
	Depth   AlignRule
	Stencil AlignRule

	// ColorI and ColorJ are the default alignments of other surfaces.
	ColorI int
	ColorJ int

	// RGB32FloatJ, when non-zero, replaces ColorJ for single-sampled
	// 96 bits-per-element surfaces.
	RGB32FloatJ int

	// YTiledRenderTargetJ, when non-zero, is the minimum vertical alignment
	// of Y-tiled render targets.
	YTiledRenderTargetJ int

	// MultisampleJ is the minimum vertical alignment of multisampled
	// non-depth surfaces.
	MultisampleJ int
}

// DescriptorLayout selects one of the depth/stencil record encodings.
type DescriptorLayout uint8

const (
	// DescriptorGen6 packs tiling, HiZ enable and separate stencil bits
	// into the first word.
	DescriptorGen6 DescriptorLayout = iota
	// DescriptorGen7 carries per-plane write enables and, with
	// ExplicitQPitch, a quarter-resolution layer stride.
	DescriptorGen7
)

// Caps is the read-only capability table of a hardware generation. Both the
// layout calculator and the descriptor builder consult it instead of
// comparing generation numbers.
type Caps struct {
	Gen Gen

	// MaxThreads is the number of hardware threads of a GT2 part.
	MaxThreads int
	// MaxSurfaceSize is the maximum width/height of 1D/2D/cube surfaces.
	MaxSurfaceSize int
	// Max3DSize is the maximum width/height/depth of 3D surfaces.
	Max3DSize int
	// MaxArraySlices is the maximum array size of 1D/2D/cube surfaces.
	MaxArraySlices int
	// MappableAperture is the CPU-mappable aperture size in bytes.
	MappableAperture uint64

	// SampleCounts lists the supported sample counts as a bit set
	// (bit n set means 1<<n samples).
	SampleCounts uint8

	// CompactArraySpacing allows LOD-major packing of single-level arrays.
	CompactArraySpacing bool
	// InterleavedSamplesOnly stores every multisampled surface interleaved.
	InterleavedSamplesOnly bool
	// InterleavedDepthStencil allows combined depth+stencil formats.
	InterleavedDepthStencil bool
	// WTiledSurfaces allows W tiling for sampler/render/typed surfaces.
	WTiledSurfaces bool
	// YTiled128bppRT allows Y tiling for 128 bpp render targets.
	YTiled128bppRT bool
	// ForceVAlign4 forces a vertical alignment of 4 for color surfaces.
	ForceVAlign4 bool
	// MCS enables multisample/color compression surfaces.
	MCS bool
	// LinearSamplerPad adds 64 bytes of padding below untiled sampler
	// surfaces.
	LinearSamplerPad bool
	// QPitchTailRows is the K of QPitch = h0 + h1 + K * align_j.
	QPitchTailRows int
	// QPitchMSAAErratum adds 4 rows to the layer stride of multisampled
	// surfaces whose height is 1 (mod 4).
	QPitchMSAAErratum bool
	// Align is the alignment table.
	Align AlignTable

	// HiZLODWalk packs all HiZ levels LOD-major with a per-level offset
	// table, for hardware whose HiZ cannot address mip levels.
	HiZLODWalk bool
	// HiZAlignRows8 rounds the HiZ height to 8 rows.
	HiZAlignRows8 bool
	// MipmappedStencil reports whether the stencil buffer addresses mip
	// levels itself; otherwise the descriptor offsets to the level.
	MipmappedStencil bool

	// Descriptor selects the depth/stencil record encoding.
	Descriptor DescriptorLayout
	// ExplicitQPitch emits QPitch fields in the depth/stencil/HiZ records.
	ExplicitQPitch bool
	// StencilBufferEnable emits the explicit stencil buffer enable bit.
	StencilBufferEnable bool
}

// SupportsSamples reports whether n samples per pixel are supported.
func (c Caps) SupportsSamples(n int) bool {
	for bit := 0; bit < 8; bit++ {
		if 1<<bit == n {
			return c.SampleCounts&(1<<bit) != 0
		}
	}
	return false
}

func sampleBits(counts ...int) uint8 {
	var bits uint8
	for _, n := range counts {
		for bit := 0; bit < 8; bit++ {
			if 1<<bit == n {
				bits |= 1 << bit
			}
		}
	}
	return bits
}

var capsTable = map[Gen]Caps{
	Gen6: {
		Gen:              Gen6,
		MaxThreads:       60,
		MaxSurfaceSize:   8192,
		Max3DSize:        2048,
		MaxArraySlices:   512,
		MappableAperture: 256 << 20,
		SampleCounts:     sampleBits(1, 4),

		InterleavedSamplesOnly:  true,
		InterleavedDepthStencil: true,
		QPitchTailRows:          11,
		QPitchMSAAErratum:       true,
		Align: AlignTable{
			Depth16:      AlignRule{4, 4},
			Depth:        AlignRule{4, 4},
			Stencil:      AlignRule{4, 2},
			ColorI:       4,
			ColorJ:       4,
			RGB32FloatJ:  2,
			MultisampleJ: 4,
		},

		HiZLODWalk: true,

		Descriptor: DescriptorGen6,
	},
	Gen7: {
		Gen:              Gen7,
		MaxThreads:       128,
		MaxSurfaceSize:   16384,
		Max3DSize:        2048,
		MaxArraySlices:   2048,
		MappableAperture: 256 << 20,
		SampleCounts:     sampleBits(1, 4, 8),

		CompactArraySpacing: true,
		MCS:                 true,
		QPitchTailRows:      12,
		Align:               gen7Align,

		HiZAlignRows8:    true,
		MipmappedStencil: true,

		Descriptor: DescriptorGen7,
	},
	Gen75: {
		Gen:              Gen75,
		MaxThreads:       140,
		MaxSurfaceSize:   16384,
		Max3DSize:        2048,
		MaxArraySlices:   2048,
		MappableAperture: 256 << 20,
		SampleCounts:     sampleBits(1, 4, 8),

		CompactArraySpacing: true,
		YTiled128bppRT:      true,
		MCS:                 true,
		LinearSamplerPad:    true,
		QPitchTailRows:      12,
		Align:               gen7Align,

		HiZAlignRows8:    true,
		MipmappedStencil: true,

		Descriptor:          DescriptorGen7,
		StencilBufferEnable: true,
	},
	Gen8: {
		Gen:              Gen8,
		MaxThreads:       168,
		MaxSurfaceSize:   16384,
		Max3DSize:        2048,
		MaxArraySlices:   2048,
		MappableAperture: 256 << 20,
		SampleCounts:     sampleBits(1, 2, 4, 8, 16),

		CompactArraySpacing: true,
		WTiledSurfaces:      true,
		YTiled128bppRT:      true,
		ForceVAlign4:        true,
		MCS:                 true,
		LinearSamplerPad:    true,
		QPitchTailRows:      12,
		Align:               gen7Align,

		HiZAlignRows8:    true,
		MipmappedStencil: true,

		Descriptor:          DescriptorGen7,
		ExplicitQPitch:      true,
		StencilBufferEnable: true,
	},
}

var gen7Align = AlignTable{
	Depth16:             AlignRule{8, 4},
	Depth:               AlignRule{4, 4},
	Stencil:             AlignRule{8, 8},
	ColorI:              4,
	ColorJ:              2,
	YTiledRenderTargetJ: 4,
	MultisampleJ:        4,
}

// CapsFor returns a copy of the capability table entry for gen.
func CapsFor(gen Gen) (Caps, error) {
	c, ok := capsTable[gen]
	if !ok {
		return Caps{}, fmt.Errorf("%w: %v", ErrUnknownGen, gen)
	}
	return c, nil
}

// MustCaps is like CapsFor but panics on unknown generations.
func MustCaps(gen Gen) Caps {
	c, err := CapsFor(gen)
	if err != nil {
		panic(err)
	}
	return c
}
