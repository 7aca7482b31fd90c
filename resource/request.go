package resource

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imglayout"
)

var (
	// ErrUnsupportedFormat is returned for formats FormatInfo does not know.
	ErrUnsupportedFormat = errors.New("resource: unsupported texture format")

	// ErrInvalidDescriptor is returned for texture descriptors that cannot
	// describe an image.
	ErrInvalidDescriptor = errors.New("resource: invalid texture descriptor")
)

// Options carry the bind points and placement hints gputypes usage flags
// cannot express.
type Options struct {
	// Cube views a 2D array of 6n layers as cube faces.
	Cube bool
	// Staging marks CPU upload/download images: no aux surfaces, and
	// linear when larger than a quarter of the mappable aperture.
	Staging bool
	// Linear forces untiled memory.
	Linear bool
	// Scanout and Cursor add the display bind points.
	Scanout bool
	Cursor  bool
	// DisableHiZ plans depth images without HiZ.
	DisableHiZ bool
}

// Split is the set of requests a texture is made of.
type Split struct {
	// Main is the color or depth image.
	Main imglayout.Request
	// Stencil is the separate stencil image, valid when SeparateStencil.
	Stencil         imglayout.Request
	SeparateStencil bool

	// Format is the format class the caller asked for, before any split.
	Format imglayout.Format
}

// RequestFromDescriptor translates a texture descriptor into layout
// requests for the hardware described by caps. Zero counts default to 1.
// Combined depth/stencil formats bound as depth/stencil are split into a
// depth image and a separate S8 stencil image where the hardware allows.
func RequestFromDescriptor(caps imglayout.Caps, desc *hal.TextureDescriptor, opts Options) (Split, error) {
	if desc == nil {
		return Split{}, fmt.Errorf("%w: nil descriptor", ErrInvalidDescriptor)
	}
	fd, ok := FormatInfo(desc.Format)
	if !ok {
		return Split{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, desc.Format)
	}

	req := imglayout.Request{
		Format:      fd.Class,
		Width:       int(desc.Size.Width),
		Height:      int(desc.Size.Height),
		Depth:       1,
		BlockWidth:  fd.BlockWidth,
		BlockHeight: fd.BlockHeight,
		BlockSize:   fd.BlockSize,
		LevelCount:  int(max(desc.MipLevelCount, 1)),
		ArraySize:   1,
		SampleCount: int(max(desc.SampleCount, 1)),
		Compressed:  fd.Compressed,
		Integer:     fd.Integer,
		DisableHiZ:  opts.DisableHiZ,
	}
	layers := int(max(desc.Size.DepthOrArrayLayers, 1))

	switch desc.Dimension {
	case gputypes.TextureDimension1D:
		req.Kind = imglayout.Kind1D
		req.ArraySize = layers
	case gputypes.TextureDimension2D:
		req.Kind = imglayout.Kind2D
		if opts.Cube {
			req.Kind = imglayout.KindCube
		}
		req.ArraySize = layers
	case gputypes.TextureDimension3D:
		if opts.Cube {
			return Split{}, fmt.Errorf("%w: 3D cube", ErrInvalidDescriptor)
		}
		req.Kind = imglayout.Kind3D
		req.Depth = layers
	default:
		return Split{}, fmt.Errorf("%w: dimension %v", ErrInvalidDescriptor, desc.Dimension)
	}

	req.Usage = usageFor(desc.Usage, fd.Class)
	if opts.Scanout {
		req.Usage |= imglayout.UsageScanout
	}
	if opts.Cursor {
		req.Usage |= imglayout.UsageCursor
	}
	if opts.Linear {
		req.ValidTilings = imglayout.TilingMaskNone
	}
	if opts.Staging {
		req.AuxDisabled = true
		// tiled images are mapped through the aperture
		req.PreferLinearThreshold = caps.MappableAperture / 4
	}

	s := Split{Format: fd.Class}
	if req.Usage.Has(imglayout.UsageDepthStencil) && separateStencil(&caps, fd.Class, req.LevelCount) {
		d := depthOnly(fd.Class)
		s.Stencil = req
		s.Stencil.Format = imglayout.FormatS8
		s.Stencil.BlockSize = 1
		s.Stencil.DisableHiZ = false
		// no stencil texturing
		s.Stencil.Usage &^= imglayout.UsageSampler
		s.SeparateStencil = true

		req.Format = d.Class
		req.BlockSize = d.BlockSize
	} else {
		req.InterleavedStencil = fd.Class == imglayout.FormatD24S8 || fd.Class == imglayout.FormatD32FloatS8X24
	}
	s.Main = req
	return s, nil
}

func usageFor(u gputypes.TextureUsage, class imglayout.Format) imglayout.Usage {
	var out imglayout.Usage
	if u&gputypes.TextureUsageTextureBinding != 0 {
		out |= imglayout.UsageSampler
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		if class.IsDepth() || class == imglayout.FormatS8 {
			out |= imglayout.UsageDepthStencil
		} else {
			out |= imglayout.UsageRenderTarget
		}
	}
	if u&gputypes.TextureUsageStorageBinding != 0 {
		out |= imglayout.UsageTypedStore
	}
	return out
}

// separateStencil reports whether a combined format moves its stencil to
// an S8 image. Where HiZ and separate stencil are enabled together, a
// mip-mapped D32F_S8 stays interleaved since HiZ must cover every level.
func separateStencil(caps *imglayout.Caps, class imglayout.Format, levels int) bool {
	switch class {
	case imglayout.FormatD24S8:
		return true
	case imglayout.FormatD32FloatS8X24:
		return !hizCoupledStencil(caps) || levels == 1
	}
	return false
}

// hizCoupledStencil reports whether separate stencil can only be enabled
// together with HiZ.
func hizCoupledStencil(caps *imglayout.Caps) bool {
	return caps.Descriptor == imglayout.DescriptorGen6
}
