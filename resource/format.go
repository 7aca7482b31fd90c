package resource

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/imglayout"
)

// FormatDesc is the block geometry and class of a texture format.
type FormatDesc struct {
	Class imglayout.Format

	BlockWidth, BlockHeight, BlockSize int

	Compressed bool
	Integer    bool
}

func color(bs int) FormatDesc {
	return FormatDesc{Class: imglayout.FormatColor, BlockWidth: 1, BlockHeight: 1, BlockSize: bs}
}

func colorInt(bs int) FormatDesc {
	d := color(bs)
	d.Integer = true
	return d
}

func bc(bs int) FormatDesc {
	return FormatDesc{Class: imglayout.FormatColor, BlockWidth: 4, BlockHeight: 4, BlockSize: bs, Compressed: true}
}

func zs(class imglayout.Format, bs int) FormatDesc {
	return FormatDesc{Class: class, BlockWidth: 1, BlockHeight: 1, BlockSize: bs}
}

var formats = map[gputypes.TextureFormat]FormatDesc{
	gputypes.TextureFormatR8Unorm:        color(1),
	gputypes.TextureFormatR32Float:       color(4),
	gputypes.TextureFormatR32Uint:        colorInt(4),
	gputypes.TextureFormatRG32Float:      color(8),
	gputypes.TextureFormatRGBA8Unorm:     color(4),
	gputypes.TextureFormatRGBA8UnormSrgb: color(4),
	gputypes.TextureFormatRGBA8Uint:      colorInt(4),
	gputypes.TextureFormatBGRA8Unorm:     color(4),
	gputypes.TextureFormatBGRA8UnormSrgb: color(4),
	gputypes.TextureFormatRGBA16Float:    color(8),
	gputypes.TextureFormatRGBA32Float:    color(16),
	gputypes.TextureFormatRGBA32Uint:     colorInt(16),

	gputypes.TextureFormatBC1RGBAUnorm: bc(8),
	gputypes.TextureFormatBC3RGBAUnorm: bc(16),

	gputypes.TextureFormatStencil8:             zs(imglayout.FormatS8, 1),
	gputypes.TextureFormatDepth16Unorm:         zs(imglayout.FormatD16, 2),
	gputypes.TextureFormatDepth24Plus:          zs(imglayout.FormatD24X8, 4),
	gputypes.TextureFormatDepth24PlusStencil8:  zs(imglayout.FormatD24S8, 4),
	gputypes.TextureFormatDepth32Float:         zs(imglayout.FormatD32Float, 4),
	gputypes.TextureFormatDepth32FloatStencil8: zs(imglayout.FormatD32FloatS8X24, 8),
}

// FormatInfo returns the block geometry and class of f. Formats the
// hardware tables do not cover report false.
func FormatInfo(f gputypes.TextureFormat) (FormatDesc, bool) {
	d, ok := formats[f]
	return d, ok
}

// depthOnly returns the depth format left when the stencil of a combined
// format moves to its own image.
func depthOnly(f imglayout.Format) FormatDesc {
	switch f {
	case imglayout.FormatD24S8:
		return zs(imglayout.FormatD24X8, 4)
	case imglayout.FormatD32FloatS8X24:
		return zs(imglayout.FormatD32Float, 4)
	}
	return zs(f, 4)
}
