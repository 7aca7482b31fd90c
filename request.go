package imglayout

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxLevels is the maximum number of mip levels of an image.
const MaxLevels = 15

// Kind is the surface type. Values match the hardware encoding.
type Kind uint8

// Surface kinds.
const (
	Kind1D   Kind = 0
	Kind2D   Kind = 1
	Kind3D   Kind = 2
	KindCube Kind = 3
	KindNull Kind = 7
)

func (k Kind) String() string {
	switch k {
	case Kind1D:
		return "1d"
	case Kind2D:
		return "2d"
	case Kind3D:
		return "3d"
	case KindCube:
		return "cube"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses "1d", "2d", "3d" or "cube".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d":
		return Kind1D, nil
	case "2d", "":
		return Kind2D, nil
	case "3d":
		return Kind3D, nil
	case "cube":
		return KindCube, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedSurfaceKind, s)
}

// Format is the hardware format class of an image. Only the classes that
// change alignment, tiling or aux decisions are distinguished.
type Format uint8

// Format classes.
const (
	FormatColor Format = iota
	// FormatRGB32Float is a 96 bits-per-element color format.
	FormatRGB32Float
	FormatD16
	FormatD24X8
	FormatD32Float
	// FormatS8 is the separate stencil format.
	FormatS8
	FormatD24S8
	FormatD32FloatS8X24
)

var formatNames = [...]string{
	FormatColor:         "color",
	FormatRGB32Float:    "rgb32f",
	FormatD16:           "d16",
	FormatD24X8:         "d24x8",
	FormatD32Float:      "d32f",
	FormatS8:            "s8",
	FormatD24S8:         "d24s8",
	FormatD32FloatS8X24: "d32fs8x24",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat parses a format class name as printed by Format.String.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FormatColor, nil
	}
	for i, name := range formatNames {
		if name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidRequest, s)
}

// IsDepth reports whether the format has a depth component.
func (f Format) IsDepth() bool {
	switch f {
	case FormatD16, FormatD24X8, FormatD32Float, FormatD24S8, FormatD32FloatS8X24:
		return true
	}
	return false
}

// HasStencil reports whether the format has a stencil component.
func (f Format) HasStencil() bool {
	return f == FormatS8 || f == FormatD24S8 || f == FormatD32FloatS8X24
}

// Usage is a set of intended bind points.
type Usage uint8

// Bind points.
const (
	UsageSampler Usage = 1 << iota
	UsageRenderTarget
	UsageTypedStore
	UsageDepthStencil
	UsageScanout
	UsageCursor
)

// Has reports whether all bits of u2 are set.
func (u Usage) Has(u2 Usage) bool {
	return u&u2 == u2
}

// surface reports whether the image is bound through a surface state.
func (u Usage) surface() bool {
	return u&(UsageSampler|UsageRenderTarget|UsageTypedStore) != 0
}

var usageNames = []struct {
	u    Usage
	name string
}{
	{UsageSampler, "sampler"},
	{UsageRenderTarget, "rt"},
	{UsageTypedStore, "typed"},
	{UsageDepthStencil, "zs"},
	{UsageScanout, "scanout"},
	{UsageCursor, "cursor"},
}

func (u Usage) String() string {
	var parts []string
	for _, n := range usageNames {
		if u&n.u != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseUsage parses a list of bind point names separated by '|' or ','.
func ParseUsage(s string) (Usage, error) {
	var u Usage
	for _, f := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		f = strings.ToLower(strings.TrimSpace(f))
		found := false
		for _, n := range usageNames {
			if n.name == f {
				u |= n.u
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown usage %q", ErrInvalidRequest, f)
		}
	}
	return u, nil
}

// Request describes a logical image to lay out. The zero values of
// ValidTilings, ForceStride and PreferLinearThreshold mean "no constraint".
//
// Request is comparable and is used as a cache key by Planner.
type Request struct {
	Kind   Kind
	Format Format

	Width, Height, Depth int

	// BlockWidth and BlockHeight are the pixel dimensions of a format
	// block, BlockSize its size in bytes.
	BlockWidth, BlockHeight, BlockSize int

	LevelCount  int
	ArraySize   int
	SampleCount int

	Usage Usage

	// InterleavedStencil marks a combined depth/stencil format.
	InterleavedStencil bool
	// AuxDisabled disables HiZ and single-sample MCS.
	AuxDisabled bool
	Compressed  bool
	Integer     bool
	// DisableHiZ turns HiZ off for this request only.
	DisableHiZ bool

	// ValidTilings restricts the tiling modes the planner may choose.
	ValidTilings TilingMask
	// ForceStride forces the row stride in bytes of the buffer.
	ForceStride int
	// PreferLinearThreshold keeps images estimated larger than this many
	// bytes untiled.
	PreferLinearThreshold uint64
}

// isPow2 reports whether v is a positive power of two.
func isPow2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// maxLevelsFor returns the length of a full mip chain for an extent.
func maxLevelsFor(extent int) int {
	if extent < 1 {
		return 1
	}
	return bits.Len(uint(extent))
}

func (r *Request) validate(caps *Caps) error {
	switch {
	case r.Width < 1 || r.Height < 1 || r.Depth < 1:
		return fmt.Errorf("%w: extent %dx%dx%d", ErrInvalidRequest, r.Width, r.Height, r.Depth)
	case !isPow2(r.BlockWidth) || !isPow2(r.BlockHeight):
		return fmt.Errorf("%w: block %dx%d is not a power of two", ErrInvalidRequest, r.BlockWidth, r.BlockHeight)
	case !r.Compressed && (r.BlockWidth != 1 || r.BlockHeight != 1):
		return fmt.Errorf("%w: %dx%d block of an uncompressed format", ErrInvalidRequest, r.BlockWidth, r.BlockHeight)
	case r.BlockSize < 1:
		return fmt.Errorf("%w: block size %d", ErrInvalidRequest, r.BlockSize)
	case r.LevelCount < 1 || r.LevelCount > MaxLevels:
		return fmt.Errorf("%w: level count %d", ErrInvalidRequest, r.LevelCount)
	case r.ArraySize < 1:
		return fmt.Errorf("%w: array size %d", ErrInvalidRequest, r.ArraySize)
	case r.SampleCount < 1:
		return fmt.Errorf("%w: sample count %d", ErrUnsupportedSampleCount, r.SampleCount)
	}

	maxExtent := max(r.Width, r.Height)
	switch r.Kind {
	case Kind1D:
		if r.Height != 1 || r.Depth != 1 {
			return fmt.Errorf("%w: 1D image with height %d depth %d", ErrInvalidRequest, r.Height, r.Depth)
		}
	case Kind2D:
		if r.Depth != 1 {
			return fmt.Errorf("%w: 2D image with depth %d", ErrInvalidRequest, r.Depth)
		}
	case KindCube:
		if r.Depth != 1 || r.ArraySize%6 != 0 {
			return fmt.Errorf("%w: cube image with depth %d and %d faces", ErrInvalidRequest, r.Depth, r.ArraySize)
		}
	case Kind3D:
		if r.ArraySize != 1 {
			return fmt.Errorf("%w: 3D image with array size %d", ErrInvalidRequest, r.ArraySize)
		}
		maxExtent = max(maxExtent, r.Depth)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedSurfaceKind, r.Kind)
	}

	if r.Kind == Kind3D {
		if maxExtent > caps.Max3DSize {
			return fmt.Errorf("%w: 3D extent %d exceeds %d", ErrInvalidRequest, maxExtent, caps.Max3DSize)
		}
	} else {
		if maxExtent > caps.MaxSurfaceSize {
			return fmt.Errorf("%w: extent %d exceeds %d", ErrInvalidRequest, maxExtent, caps.MaxSurfaceSize)
		}
		if r.ArraySize > caps.MaxArraySlices {
			return fmt.Errorf("%w: array size %d exceeds %d", ErrInvalidRequest, r.ArraySize, caps.MaxArraySlices)
		}
	}

	if r.LevelCount > maxLevelsFor(maxExtent) {
		return fmt.Errorf("%w: %d levels for extent %d", ErrInvalidRequest, r.LevelCount, maxExtent)
	}

	if !caps.SupportsSamples(r.SampleCount) {
		return fmt.Errorf("%w: %d samples on %v", ErrUnsupportedSampleCount, r.SampleCount, caps.Gen)
	}
	if r.SampleCount > 1 && (r.Kind != Kind2D || r.LevelCount != 1) {
		return fmt.Errorf("%w: %d samples on a %v image with %d levels",
			ErrUnsupportedSampleCount, r.SampleCount, r.Kind, r.LevelCount)
	}

	if r.Usage.Has(UsageDepthStencil) && r.InterleavedStencil && !caps.InterleavedDepthStencil {
		return fmt.Errorf("%w: interleaved depth/stencil on %v", ErrInvalidRequest, caps.Gen)
	}

	return nil
}

// bindsGPU reports whether any hardware unit accesses the image.
func (r *Request) bindsGPU() bool {
	return r.Usage != 0
}

// separateStencil reports whether the request is a depth/stencil-bound
// separate stencil image.
func (r *Request) separateStencil() bool {
	return r.Usage.Has(UsageDepthStencil) && r.Format == FormatS8
}
