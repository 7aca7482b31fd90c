package descriptor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/imglayout"
)

var (
	// ErrInvalidDescriptor is returned when a binding cannot be encoded.
	ErrInvalidDescriptor = errors.New("descriptor: invalid depth/stencil binding")

	// ErrUnsupported is returned for operations the generation cannot do.
	ErrUnsupported = errors.New("descriptor: unsupported on this generation")
)

// BufferObject is the memory a VMA points into. The descriptor only keeps a
// reference for the command stream writer to relocate against.
type BufferObject interface {
	Name() string
}

// VMA is a range of a buffer object an image is bound to.
type VMA struct {
	BO        BufferObject
	Offset    uint64
	Alignment uint64
	Size      uint64
}

// ZFormat is the depth buffer format field.
type ZFormat uint8

// Depth formats. Values match the hardware encoding.
const (
	ZFormatD32FloatS8X24 ZFormat = 0
	ZFormatD32Float      ZFormat = 1
	ZFormatD24S8         ZFormat = 2
	ZFormatD24X8         ZFormat = 3
	ZFormatD16           ZFormat = 5
)

func (f ZFormat) String() string {
	switch f {
	case ZFormatD32FloatS8X24:
		return "D32_FLOAT_S8X24_UINT"
	case ZFormatD32Float:
		return "D32_FLOAT"
	case ZFormatD24S8:
		return "D24_UNORM_S8_UINT"
	case ZFormatD24X8:
		return "D24_UNORM_X8_UINT"
	case ZFormatD16:
		return "D16_UNORM"
	default:
		return fmt.Sprintf("ZFormat(%d)", uint8(f))
	}
}

// ZFormatFor returns the depth format field of an image format class.
// Stencil-only bindings program D32_FLOAT.
func ZFormatFor(f imglayout.Format) (ZFormat, error) {
	switch f {
	case imglayout.FormatD16:
		return ZFormatD16, nil
	case imglayout.FormatD24X8:
		return ZFormatD24X8, nil
	case imglayout.FormatD24S8:
		return ZFormatD24S8, nil
	case imglayout.FormatD32Float, imglayout.FormatS8:
		return ZFormatD32Float, nil
	case imglayout.FormatD32FloatS8X24:
		return ZFormatD32FloatS8X24, nil
	}
	return 0, fmt.Errorf("%w: %v is not a depth format", ErrInvalidDescriptor, f)
}

// Info describes one depth/stencil binding.
type Info struct {
	// Z is the depth image and S the separate stencil image. Interleaved
	// depth/stencil formats bind Z only.
	Z, S *imglayout.Layout

	// ZMem and SMem are required exactly when Z and S are set. HiZMem
	// enables hierarchical depth for the bound level.
	ZMem, SMem, HiZMem *VMA

	// Kind is the surface type the binding is viewed as. A 2D view of a
	// cube image is allowed.
	Kind   imglayout.Kind
	Format ZFormat

	Level      int
	SliceBase  int
	SliceCount int

	ZReadOnly bool
	SReadOnly bool
}

// Descriptor holds the packed depth, stencil and HiZ buffer records.
// The zero words of a record mean the buffer is not bound.
type Descriptor struct {
	Gen imglayout.Gen

	// Depth holds DW1-DW4 and DW6 (DW7 from Gen8 on) of the depth buffer
	// record.
	Depth [5]uint32
	// Stencil holds DW1-DW2 and, from Gen8 on, DW4.
	Stencil [3]uint32
	// HiZ holds DW1-DW2 and, from Gen8 on, DW4.
	HiZ [3]uint32

	ZMem, SMem, HiZMem *VMA

	ZReadOnly bool
	SReadOnly bool

	layout imglayout.DescriptorLayout
}

// Build validates info and packs the records for the hardware described
// by caps.
func Build(caps imglayout.Caps, info Info) (*Descriptor, error) {
	d := &Descriptor{
		Gen:       caps.Gen,
		ZMem:      info.ZMem,
		SMem:      info.SMem,
		HiZMem:    info.HiZMem,
		ZReadOnly: info.ZReadOnly,
		SReadOnly: info.SReadOnly,
		layout:    caps.Descriptor,
	}

	if info.Z == nil && info.S == nil {
		if info.ZMem != nil || info.SMem != nil || info.HiZMem != nil {
			return nil, fmt.Errorf("%w: memory bound without a depth or stencil image", ErrInvalidDescriptor)
		}
		d.setNullDepth()
	} else {
		b := builder{caps: &caps, info: &info}
		if err := b.validate(); err != nil {
			return nil, err
		}
		words, err := b.depthWords()
		if err != nil {
			return nil, err
		}
		d.Depth = words
	}

	if info.S != nil {
		d.Stencil = stencilWords(&caps, &info)
	}
	if info.Z != nil && info.HiZMem != nil {
		d.HiZ = hizWords(&caps, &info)
	}

	imglayout.Logger().Debug("depth/stencil descriptor built",
		slog.String("gen", caps.Gen.String()),
		slog.String("kind", info.Kind.String()),
		slog.String("format", info.Format.String()),
		slog.Int("level", info.Level),
		slog.Bool("hiz", d.HiZMem != nil),
	)
	return d, nil
}

// Null returns the descriptor of an unbound depth/stencil unit.
func Null(caps imglayout.Caps) *Descriptor {
	d := &Descriptor{Gen: caps.Gen, layout: caps.Descriptor}
	d.setNullDepth()
	return d
}

func (d *Descriptor) setNullDepth() {
	d.Depth = [5]uint32{}
	d.Depth[0] = uint32(imglayout.KindNull)<<depthDW1TypeShift |
		uint32(ZFormatD32Float)<<depthDW1FormatShift
	if d.layout == imglayout.DescriptorGen6 {
		d.Depth[0] |= uint32(imglayout.TilingY) << gen6DepthDW1TilingShift
	}
}

// DisableHiZ turns hierarchical depth off. It does nothing when HiZ is not
// enabled. Gen6 cannot disable HiZ without also disabling separate stencil
// and returns ErrUnsupported.
func (d *Descriptor) DisableHiZ() error {
	if d.layout == imglayout.DescriptorGen6 {
		return fmt.Errorf("%w: disabling HiZ on %v", ErrUnsupported, d.Gen)
	}
	if d.HiZMem != nil {
		d.Depth[0] &^= gen7DepthDW1HiZEnable
		d.HiZ = [3]uint32{}
		d.HiZMem = nil
	}
	return nil
}

// HiZEnabled reports whether the descriptor binds a HiZ buffer.
func (d *Descriptor) HiZEnabled() bool {
	return d.HiZMem != nil
}
