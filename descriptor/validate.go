package descriptor

import (
	"fmt"

	"github.com/gogpu/imglayout"
)

// vmaAlignment is the alignment required of every depth/stencil binding.
const vmaAlignment = 4096

// builder carries the state of one Build call.
type builder struct {
	caps *imglayout.Caps
	info *Info
}

// image returns the layout the shared fields are taken from.
func (b *builder) image() *imglayout.Layout {
	if b.info.Z != nil {
		return b.info.Z
	}
	return b.info.S
}

func checkVMA(name string, img *imglayout.Layout, mem *VMA) error {
	switch {
	case img == nil && mem == nil:
		return nil
	case img == nil:
		return fmt.Errorf("%w: %s memory without an image", ErrInvalidDescriptor, name)
	case mem == nil:
		return fmt.Errorf("%w: %s image without memory", ErrInvalidDescriptor, name)
	case mem.Alignment%vmaAlignment != 0 || mem.Alignment == 0:
		return fmt.Errorf("%w: %s memory aligned to %d bytes", ErrInvalidDescriptor, name, mem.Alignment)
	}
	return nil
}

func (b *builder) validate() error {
	info := b.info

	if err := checkVMA("depth", info.Z, info.ZMem); err != nil {
		return err
	}
	if err := checkVMA("stencil", info.S, info.SMem); err != nil {
		return err
	}

	if info.Z != nil && info.Z.Tiling != imglayout.TilingY {
		return fmt.Errorf("%w: depth image is %v-tiled", ErrInvalidDescriptor, info.Z.Tiling)
	}
	if info.S != nil && info.S.Tiling != imglayout.TilingW {
		return fmt.Errorf("%w: stencil image is %v-tiled", ErrInvalidDescriptor, info.S.Tiling)
	}

	if info.HiZMem != nil {
		if info.Z == nil {
			return fmt.Errorf("%w: HiZ memory without a depth image", ErrInvalidDescriptor)
		}
		if _, ok := info.Z.HiZ(); !ok || !info.Z.AuxEnabled(info.Level) {
			return fmt.Errorf("%w: HiZ not available for level %d", ErrInvalidDescriptor, info.Level)
		}
		if info.HiZMem.Alignment%vmaAlignment != 0 || info.HiZMem.Alignment == 0 {
			return fmt.Errorf("%w: HiZ memory aligned to %d bytes", ErrInvalidDescriptor, info.HiZMem.Alignment)
		}
	}

	// The stencil buffer shares the type, size, LOD and array fields of
	// the depth buffer.
	if info.Z != nil && info.S != nil && info.Z != info.S {
		z, s := info.Z, info.S
		if z.Kind != s.Kind || z.Height0 != s.Height0 || z.Depth0 != s.Depth0 {
			return fmt.Errorf("%w: depth %v %dx%d, stencil %v %dx%d",
				imglayout.ErrInconsistentDepthStencil,
				z.Kind, z.Height0, z.Depth0, s.Kind, s.Height0, s.Depth0)
		}
	}

	img := b.image()
	if info.Kind != img.Kind && (info.Kind != imglayout.Kind2D || img.Kind != imglayout.KindCube) {
		return fmt.Errorf("%w: %v view of a %v image", ErrInvalidDescriptor, info.Kind, img.Kind)
	}

	if err := b.validateFormat(); err != nil {
		return err
	}

	if info.Level < 0 || info.Level >= img.LevelCount {
		return fmt.Errorf("%w: level %d of %d", imglayout.ErrLevelOutOfRange, info.Level, img.LevelCount)
	}
	if img.Stride == 0 {
		return fmt.Errorf("%w: image has no stride", ErrInvalidDescriptor)
	}

	if info.Kind == imglayout.KindCube && img.Width0 != img.Height0 {
		return fmt.Errorf("%w: cube image of %dx%d", ErrInvalidDescriptor, img.Width0, img.Height0)
	}
	return nil
}

func (b *builder) validateFormat() error {
	format := b.info.Format

	if b.caps.Descriptor != imglayout.DescriptorGen6 {
		switch format {
		case ZFormatD32Float, ZFormatD24X8, ZFormatD16:
			return nil
		}
		return fmt.Errorf("%w: depth format %v on %v", ErrInvalidDescriptor, format, b.caps.Gen)
	}

	switch format {
	case ZFormatD32FloatS8X24, ZFormatD32Float, ZFormatD24S8, ZFormatD24X8, ZFormatD16:
	default:
		return fmt.Errorf("%w: depth format %v", ErrInvalidDescriptor, format)
	}

	// Separate stencil is enabled together with HiZ. D24X8 requires
	// separate stencil and D24S8 forbids it.
	if b.info.HiZMem != nil && format == ZFormatD24S8 {
		return fmt.Errorf("%w: %v with HiZ on %v", ErrInvalidDescriptor, format, b.caps.Gen)
	}
	if b.info.HiZMem == nil && format == ZFormatD24X8 {
		return fmt.Errorf("%w: %v without HiZ on %v", ErrInvalidDescriptor, format, b.caps.Gen)
	}
	return nil
}

// maxExtent returns the largest width and height of the bound kind.
func (b *builder) maxExtent() (w, h int) {
	switch b.info.Kind {
	case imglayout.Kind1D:
		return b.caps.MaxSurfaceSize, 1
	case imglayout.Kind3D:
		return b.caps.Max3DSize, b.caps.Max3DSize
	default:
		return b.caps.MaxSurfaceSize, b.caps.MaxSurfaceSize
	}
}

// hizAlignment returns the pixel block HiZ operations work on.
func hizAlignment(samples int) (w, h int) {
	switch samples {
	case 2:
		return 4, 4
	case 4:
		return 4, 2
	case 8:
		return 2, 2
	case 16:
		return 2, 1
	default:
		return 8, 4
	}
}

// extent returns the encoded width and height, both minus one.
func (b *builder) extent() (w, h uint32, err error) {
	info, img := b.info, b.image()
	width, height := img.Width0, img.Height0

	if info.HiZMem != nil {
		aw, ah := hizAlignment(info.Z.SampleCount)
		// only level 0 can be padded to the block
		if info.Level != 0 && (width%aw != 0 || height%ah != 0) {
			return 0, 0, fmt.Errorf("%w: %dx%d level %d is not HiZ aligned",
				ErrInvalidDescriptor, width, height, info.Level)
		}
		width = alignUp(width, aw)
		height = alignUp(height, ah)
	}

	maxW, maxH := b.maxExtent()
	if width < 1 || height < 1 || width > maxW || height > maxH {
		return 0, 0, fmt.Errorf("%w: extent %dx%d exceeds %dx%d for %v",
			ErrInvalidDescriptor, width, height, maxW, maxH, info.Kind)
	}
	return uint32(width - 1), uint32(height - 1), nil
}

// slices returns the encoded depth, minimum array element and render target
// view extent.
func (b *builder) slices() (depth, base, extent uint32, err error) {
	info, img := b.info, b.image()

	var maxSlice, d int
	switch info.Kind {
	case imglayout.Kind1D, imglayout.Kind2D, imglayout.KindCube:
		if img.ArraySize > b.caps.MaxArraySlices {
			return 0, 0, 0, fmt.Errorf("%w: %d array slices", ErrInvalidDescriptor, img.ArraySize)
		}
		maxSlice = img.ArraySize
		d = info.SliceCount

		// cube depth buffers cannot be arrays and always bind all faces
		if info.Kind == imglayout.KindCube {
			if info.SliceBase != 0 || d != 6 {
				return 0, 0, 0, fmt.Errorf("%w: cube faces %d+%d", ErrInvalidDescriptor, info.SliceBase, d)
			}
			d /= 6
		}
	case imglayout.Kind3D:
		if img.Depth0 > b.caps.Max3DSize {
			return 0, 0, 0, fmt.Errorf("%w: depth %d", ErrInvalidDescriptor, img.Depth0)
		}
		maxSlice = max(img.Depth0>>info.Level, 1)
		d = img.Depth0
	default:
		return 0, 0, 0, fmt.Errorf("%w: %v", imglayout.ErrUnsupportedSurfaceKind, info.Kind)
	}

	if info.SliceCount < 1 || info.SliceBase < 0 || info.SliceBase+info.SliceCount > maxSlice {
		return 0, 0, 0, fmt.Errorf("%w: slices %d+%d of %d",
			ErrInvalidDescriptor, info.SliceBase, info.SliceCount, maxSlice)
	}

	return uint32(d - 1), uint32(info.SliceBase), uint32(info.SliceCount - 1), nil
}

func alignUp(v, a int) int {
	return (v + a - 1) / a * a
}
