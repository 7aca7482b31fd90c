package resource

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imglayout"
)

func texDesc(w, h uint32, format gputypes.TextureFormat, usage gputypes.TextureUsage) *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         "test",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	}
}

func TestFormatInfo(t *testing.T) {
	tests := []struct {
		name   string
		format gputypes.TextureFormat
		want   FormatDesc
	}{
		{"rgba8", gputypes.TextureFormatRGBA8Unorm, FormatDesc{Class: imglayout.FormatColor, BlockWidth: 1, BlockHeight: 1, BlockSize: 4}},
		{"r8", gputypes.TextureFormatR8Unorm, FormatDesc{Class: imglayout.FormatColor, BlockWidth: 1, BlockHeight: 1, BlockSize: 1}},
		{"rgba32f", gputypes.TextureFormatRGBA32Float, FormatDesc{Class: imglayout.FormatColor, BlockWidth: 1, BlockHeight: 1, BlockSize: 16}},
		{"r32uint", gputypes.TextureFormatR32Uint, FormatDesc{Class: imglayout.FormatColor, BlockWidth: 1, BlockHeight: 1, BlockSize: 4, Integer: true}},
		{"bc1", gputypes.TextureFormatBC1RGBAUnorm, FormatDesc{Class: imglayout.FormatColor, BlockWidth: 4, BlockHeight: 4, BlockSize: 8, Compressed: true}},
		{"d16", gputypes.TextureFormatDepth16Unorm, FormatDesc{Class: imglayout.FormatD16, BlockWidth: 1, BlockHeight: 1, BlockSize: 2}},
		{"d24s8", gputypes.TextureFormatDepth24PlusStencil8, FormatDesc{Class: imglayout.FormatD24S8, BlockWidth: 1, BlockHeight: 1, BlockSize: 4}},
		{"d32fs8", gputypes.TextureFormatDepth32FloatStencil8, FormatDesc{Class: imglayout.FormatD32FloatS8X24, BlockWidth: 1, BlockHeight: 1, BlockSize: 8}},
		{"s8", gputypes.TextureFormatStencil8, FormatDesc{Class: imglayout.FormatS8, BlockWidth: 1, BlockHeight: 1, BlockSize: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatInfo(tt.format)
			if !ok {
				t.Fatalf("FormatInfo(%v) not found", tt.format)
			}
			if got != tt.want {
				t.Errorf("FormatInfo(%v) = %+v, want %+v", tt.format, got, tt.want)
			}
		})
	}

	if _, ok := FormatInfo(gputypes.TextureFormatUndefined); ok {
		t.Error("FormatInfo(Undefined) reported a format")
	}
}

func TestRequestFromDescriptorDefaults(t *testing.T) {
	desc := texDesc(64, 32, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding)
	desc.MipLevelCount = 0
	desc.SampleCount = 0
	desc.Size.DepthOrArrayLayers = 0

	s, err := RequestFromDescriptor(imglayout.MustCaps(imglayout.Gen7), desc, Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := imglayout.Request{
		Kind:   imglayout.Kind2D,
		Format: imglayout.FormatColor,
		Width:  64, Height: 32, Depth: 1,
		BlockWidth: 1, BlockHeight: 1, BlockSize: 4,
		LevelCount: 1, ArraySize: 1, SampleCount: 1,
		Usage: imglayout.UsageSampler,
	}
	if s.Main != want {
		t.Errorf("Main = %+v\nwant %+v", s.Main, want)
	}
	if s.SeparateStencil {
		t.Error("color image split")
	}
}

func TestRequestFromDescriptorDimensions(t *testing.T) {
	tests := []struct {
		name      string
		dim       gputypes.TextureDimension
		size      hal.Extent3D
		cube      bool
		wantKind  imglayout.Kind
		wantDepth int
		wantArray int
	}{
		{"1d array", gputypes.TextureDimension1D, hal.Extent3D{Width: 256, Height: 1, DepthOrArrayLayers: 4}, false, imglayout.Kind1D, 1, 4},
		{"2d", gputypes.TextureDimension2D, hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1}, false, imglayout.Kind2D, 1, 1},
		{"2d array", gputypes.TextureDimension2D, hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 8}, false, imglayout.Kind2D, 1, 8},
		{"cube", gputypes.TextureDimension2D, hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 6}, true, imglayout.KindCube, 1, 6},
		{"3d", gputypes.TextureDimension3D, hal.Extent3D{Width: 32, Height: 32, DepthOrArrayLayers: 8}, false, imglayout.Kind3D, 8, 1},
	}

	caps := imglayout.MustCaps(imglayout.Gen7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := texDesc(0, 0, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding)
			desc.Dimension = tt.dim
			desc.Size = tt.size

			s, err := RequestFromDescriptor(caps, desc, Options{Cube: tt.cube})
			if err != nil {
				t.Fatal(err)
			}
			r := s.Main
			if r.Kind != tt.wantKind || r.Depth != tt.wantDepth || r.ArraySize != tt.wantArray {
				t.Errorf("kind %v depth %d array %d, want %v %d %d",
					r.Kind, r.Depth, r.ArraySize, tt.wantKind, tt.wantDepth, tt.wantArray)
			}
			if _, err := imglayout.Compute(caps, r); err != nil {
				t.Errorf("Compute: %v", err)
			}
		})
	}
}

func TestRequestFromDescriptorUsage(t *testing.T) {
	tests := []struct {
		name   string
		format gputypes.TextureFormat
		usage  gputypes.TextureUsage
		want   imglayout.Usage
	}{
		{"sampled", gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding, imglayout.UsageSampler},
		{"render", gputypes.TextureFormatBGRA8Unorm, gputypes.TextureUsageRenderAttachment, imglayout.UsageRenderTarget},
		{"storage", gputypes.TextureFormatR32Float, gputypes.TextureUsageStorageBinding, imglayout.UsageTypedStore},
		{"depth", gputypes.TextureFormatDepth32Float, gputypes.TextureUsageRenderAttachment, imglayout.UsageDepthStencil},
		{"stencil", gputypes.TextureFormatStencil8, gputypes.TextureUsageRenderAttachment, imglayout.UsageDepthStencil},
		{"sampled depth", gputypes.TextureFormatDepth16Unorm,
			gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
			imglayout.UsageDepthStencil | imglayout.UsageSampler},
		{"copy only", gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst, 0},
	}

	caps := imglayout.MustCaps(imglayout.Gen7)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := RequestFromDescriptor(caps, texDesc(64, 64, tt.format, tt.usage), Options{})
			if err != nil {
				t.Fatal(err)
			}
			if s.Main.Usage != tt.want {
				t.Errorf("Usage = %v, want %v", s.Main.Usage, tt.want)
			}
		})
	}
}

func TestRequestFromDescriptorOptions(t *testing.T) {
	caps := imglayout.MustCaps(imglayout.Gen7)
	desc := texDesc(64, 64, gputypes.TextureFormatBGRA8Unorm, gputypes.TextureUsageRenderAttachment)

	s, err := RequestFromDescriptor(caps, desc, Options{Scanout: true, Linear: true})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Main.Usage.Has(imglayout.UsageScanout) || s.Main.ValidTilings != imglayout.TilingMaskNone {
		t.Errorf("usage %v tilings %v", s.Main.Usage, s.Main.ValidTilings)
	}

	s, err = RequestFromDescriptor(caps, desc, Options{Cursor: true, Staging: true})
	if err != nil {
		t.Fatal(err)
	}
	if !s.Main.Usage.Has(imglayout.UsageCursor) {
		t.Errorf("usage %v lacks cursor", s.Main.Usage)
	}
	if !s.Main.AuxDisabled || s.Main.PreferLinearThreshold != caps.MappableAperture/4 {
		t.Errorf("staging: aux disabled %v, threshold %d", s.Main.AuxDisabled, s.Main.PreferLinearThreshold)
	}
}

func TestStagingPrefersLinear(t *testing.T) {
	caps := imglayout.MustCaps(imglayout.Gen7)
	// 128 MB, above a quarter of the aperture
	desc := texDesc(8192, 4096, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding)

	for _, staging := range []bool{false, true} {
		s, err := RequestFromDescriptor(caps, desc, Options{Staging: staging})
		if err != nil {
			t.Fatal(err)
		}
		l, err := imglayout.Compute(caps, s.Main)
		if err != nil {
			t.Fatal(err)
		}
		want := imglayout.TilingY
		if staging {
			want = imglayout.TilingNone
		}
		if l.Tiling != want {
			t.Errorf("staging=%v: tiling %v, want %v", staging, l.Tiling, want)
		}
	}
}

func TestRequestFromDescriptorSeparateStencil(t *testing.T) {
	zsUsage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

	tests := []struct {
		name      string
		gen       imglayout.Gen
		format    gputypes.TextureFormat
		usage     gputypes.TextureUsage
		levels    uint32
		wantSplit bool
		wantMain  imglayout.Format
		wantBS    int
	}{
		{"gen7 d24s8", imglayout.Gen7, gputypes.TextureFormatDepth24PlusStencil8, zsUsage, 1, true, imglayout.FormatD24X8, 4},
		{"gen7 d32fs8 mipmapped", imglayout.Gen7, gputypes.TextureFormatDepth32FloatStencil8, zsUsage, 3, true, imglayout.FormatD32Float, 4},
		{"gen6 d24s8", imglayout.Gen6, gputypes.TextureFormatDepth24PlusStencil8, zsUsage, 3, true, imglayout.FormatD24X8, 4},
		{"gen6 d32fs8 single level", imglayout.Gen6, gputypes.TextureFormatDepth32FloatStencil8, zsUsage, 1, true, imglayout.FormatD32Float, 4},
		{"gen6 d32fs8 mipmapped", imglayout.Gen6, gputypes.TextureFormatDepth32FloatStencil8, zsUsage, 3, false, imglayout.FormatD32FloatS8X24, 8},
		{"sampled only", imglayout.Gen7, gputypes.TextureFormatDepth24PlusStencil8, gputypes.TextureUsageTextureBinding, 1, false, imglayout.FormatD24S8, 4},
		{"depth only", imglayout.Gen7, gputypes.TextureFormatDepth32Float, zsUsage, 1, false, imglayout.FormatD32Float, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := texDesc(64, 64, tt.format, tt.usage)
			desc.MipLevelCount = tt.levels

			s, err := RequestFromDescriptor(imglayout.MustCaps(tt.gen), desc, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if s.SeparateStencil != tt.wantSplit {
				t.Fatalf("SeparateStencil = %v, want %v", s.SeparateStencil, tt.wantSplit)
			}
			if s.Main.Format != tt.wantMain || s.Main.BlockSize != tt.wantBS {
				t.Errorf("Main format %v block size %d, want %v %d",
					s.Main.Format, s.Main.BlockSize, tt.wantMain, tt.wantBS)
			}
			if tt.wantSplit {
				if s.Main.InterleavedStencil {
					t.Error("split depth image keeps interleaved stencil")
				}
				st := s.Stencil
				if st.Format != imglayout.FormatS8 || st.BlockSize != 1 {
					t.Errorf("Stencil format %v block size %d", st.Format, st.BlockSize)
				}
				if st.Usage != imglayout.UsageDepthStencil {
					t.Errorf("Stencil usage %v, want zs only", st.Usage)
				}
				if st.LevelCount != int(tt.levels) || st.Width != 64 || st.Height != 64 {
					t.Errorf("Stencil extent %dx%d levels %d", st.Width, st.Height, st.LevelCount)
				}
			} else {
				wantInterleaved := tt.wantMain.HasStencil()
				if s.Main.InterleavedStencil != wantInterleaved {
					t.Errorf("InterleavedStencil = %v, want %v", s.Main.InterleavedStencil, wantInterleaved)
				}
			}
		})
	}
}

func TestRequestFromDescriptorErrors(t *testing.T) {
	caps := imglayout.MustCaps(imglayout.Gen7)

	tests := []struct {
		name string
		desc *hal.TextureDescriptor
		opts Options
		want error
	}{
		{"nil", nil, Options{}, ErrInvalidDescriptor},
		{"undefined format", texDesc(64, 64, gputypes.TextureFormatUndefined, gputypes.TextureUsageTextureBinding), Options{}, ErrUnsupportedFormat},
		{"3d cube", func() *hal.TextureDescriptor {
			d := texDesc(64, 64, gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding)
			d.Dimension = gputypes.TextureDimension3D
			return d
		}(), Options{Cube: true}, ErrInvalidDescriptor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequestFromDescriptor(caps, tt.desc, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
