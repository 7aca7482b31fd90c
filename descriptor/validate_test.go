package descriptor

import (
	"errors"
	"testing"

	"github.com/gogpu/imglayout"
)

func TestBuildRejects(t *testing.T) {
	gen7 := imglayout.Gen7
	z := plan(t, gen7, zsRequest(64, 64, imglayout.FormatD24X8))
	s := plan(t, gen7, zsRequest(64, 64, imglayout.FormatS8))
	short := plan(t, gen7, zsRequest(64, 32, imglayout.FormatS8))

	noHiZReq := zsRequest(64, 64, imglayout.FormatD24X8)
	noHiZReq.DisableHiZ = true
	noHiZ := plan(t, gen7, noHiZReq)

	rect := zsRequest(64, 32, imglayout.FormatD32Float)
	rect.Kind = imglayout.KindCube
	rect.ArraySize = 6
	rectCube := plan(t, gen7, rect)

	wide := plan(t, gen7, zsRequest(16384, 16, imglayout.FormatD24X8))

	misaligned := &VMA{BO: testBO("z"), Alignment: 256}

	base := func() Info {
		return Info{
			Z: z, ZMem: mem("z"),
			Kind: imglayout.Kind2D, Format: ZFormatD24X8, SliceCount: 1,
		}
	}

	tests := []struct {
		name string
		gen  imglayout.Gen
		edit func(*Info)
		want error
	}{
		{"depth without memory", gen7, func(i *Info) { i.ZMem = nil }, ErrInvalidDescriptor},
		{"memory without depth", gen7, func(i *Info) { i.S, i.SMem, i.ZMem = s, mem("s"), mem("z"); i.Z = nil }, ErrInvalidDescriptor},
		{"misaligned memory", gen7, func(i *Info) { i.ZMem = misaligned }, ErrInvalidDescriptor},
		{"misaligned HiZ", gen7, func(i *Info) { i.HiZMem = misaligned }, ErrInvalidDescriptor},
		{"depth not Y", gen7, func(i *Info) { i.Z = s }, ErrInvalidDescriptor},
		{"stencil not W", gen7, func(i *Info) { i.S, i.SMem = z, mem("s") }, ErrInvalidDescriptor},
		{"HiZ without depth", gen7, func(i *Info) { i.Z, i.ZMem, i.S, i.SMem, i.HiZMem = nil, nil, s, mem("s"), mem("hiz") }, ErrInvalidDescriptor},
		{"HiZ not planned", gen7, func(i *Info) { i.Z, i.HiZMem = noHiZ, mem("hiz") }, ErrInvalidDescriptor},
		{"pair height", gen7, func(i *Info) { i.S, i.SMem = short, mem("s") }, imglayout.ErrInconsistentDepthStencil},
		{"3d view", gen7, func(i *Info) { i.Kind = imglayout.Kind3D }, ErrInvalidDescriptor},
		{"gen7 D24S8", gen7, func(i *Info) { i.Format = ZFormatD24S8 }, ErrInvalidDescriptor},
		{"gen7 unknown format", gen7, func(i *Info) { i.Format = ZFormat(4) }, ErrInvalidDescriptor},
		{"level", gen7, func(i *Info) { i.Level = 1 }, imglayout.ErrLevelOutOfRange},
		{"negative level", gen7, func(i *Info) { i.Level = -1 }, imglayout.ErrLevelOutOfRange},
		{"no slices", gen7, func(i *Info) { i.SliceCount = 0 }, ErrInvalidDescriptor},
		{"slice range", gen7, func(i *Info) { i.SliceBase = 1 }, ErrInvalidDescriptor},
		{"non-square cube", gen7, func(i *Info) {
			i.Z, i.Kind, i.Format, i.SliceCount = rectCube, imglayout.KindCube, ZFormatD32Float, 6
		}, ErrInvalidDescriptor},
		{"too wide for gen6", imglayout.Gen6, func(i *Info) { i.Z, i.HiZMem = wide, mem("hiz") }, ErrInvalidDescriptor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := base()
			tt.edit(&info)
			d, err := Build(imglayout.MustCaps(tt.gen), info)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if d != nil {
				t.Error("failed Build returned a descriptor")
			}
		})
	}
}

func TestBuildGen6FormatRules(t *testing.T) {
	caps := imglayout.MustCaps(imglayout.Gen6)
	z := plan(t, imglayout.Gen6, zsRequest(64, 64, imglayout.FormatD24X8))

	tests := []struct {
		format ZFormat
		hiz    bool
		ok     bool
	}{
		{ZFormatD24X8, true, true},
		{ZFormatD24X8, false, false},
		{ZFormatD24S8, true, false},
		{ZFormatD24S8, false, true},
		{ZFormatD32Float, false, true},
		{ZFormatD32FloatS8X24, false, true},
		{ZFormatD16, true, true},
	}
	for _, tt := range tests {
		info := Info{
			Z: z, ZMem: mem("z"),
			Kind: imglayout.Kind2D, Format: tt.format, SliceCount: 1,
		}
		if tt.hiz {
			info.HiZMem = mem("hiz")
		}
		_, err := Build(caps, info)
		if (err == nil) != tt.ok {
			t.Errorf("%v hiz=%v: err = %v, want ok=%v", tt.format, tt.hiz, err, tt.ok)
		}
	}
}

func TestBuildCubeFaces(t *testing.T) {
	cr := zsRequest(32, 32, imglayout.FormatD32Float)
	cr.Kind = imglayout.KindCube
	cr.ArraySize = 12
	cube := plan(t, imglayout.Gen7, cr)

	for _, tt := range []struct{ base, count int }{{0, 12}, {6, 6}, {0, 1}} {
		_, err := Build(imglayout.MustCaps(imglayout.Gen7), Info{
			Z: cube, ZMem: mem("z"), Kind: imglayout.KindCube, Format: ZFormatD32Float,
			SliceBase: tt.base, SliceCount: tt.count,
		})
		if !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("faces %d+%d: err = %v, want ErrInvalidDescriptor", tt.base, tt.count, err)
		}
	}
}

func TestHiZAlignment(t *testing.T) {
	tests := []struct{ samples, w, h int }{
		{1, 8, 4}, {2, 4, 4}, {4, 4, 2}, {8, 2, 2}, {16, 2, 1},
	}
	for _, tt := range tests {
		if w, h := hizAlignment(tt.samples); w != tt.w || h != tt.h {
			t.Errorf("hizAlignment(%d) = %dx%d, want %dx%d", tt.samples, w, h, tt.w, tt.h)
		}
	}
}
