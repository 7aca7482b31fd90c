package resource

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/imglayout"
	"github.com/gogpu/imglayout/descriptor"
)

// MaxResourceSize is the largest buffer object an image may occupy.
const MaxResourceSize = 1 << 31

var (
	// ErrResourceTooLarge is returned for images whose buffer would exceed
	// MaxResourceSize.
	ErrResourceTooLarge = errors.New("resource: image exceeds the maximum resource size")

	// ErrImportMismatch is returned when an imported buffer object cannot
	// hold the described image.
	ErrImportMismatch = errors.New("resource: imported buffer object does not match the image")

	// ErrNotDepthStencil is returned when binding a color texture as
	// depth/stencil.
	ErrNotDepthStencil = errors.New("resource: texture has no depth or stencil")

	// ErrReleased is returned by operations on a released texture.
	ErrReleased = errors.New("resource: texture released")
)

// Texture is an image with its layouts and buffer objects. The main image
// is the color or depth image; a split depth/stencil format adds a
// separate stencil image with its own buffer object.
type Texture struct {
	Label string

	// Format is the requested format class, before any split.
	Format imglayout.Format

	// Main and Stencil are the planned layouts. Stencil is nil unless
	// the stencil is stored separately.
	Main    *imglayout.Layout
	Stencil *imglayout.Layout

	caps imglayout.Caps
	mgr  *MemoryManager

	bo, auxBO, stencilBO *BO
	imported             bool
	released             bool
}

// NewTexture plans desc on the planner's hardware and allocates its buffer
// objects from mgr.
func NewTexture(p *imglayout.Planner, mgr *MemoryManager, desc *hal.TextureDescriptor, opts Options) (*Texture, error) {
	t, err := newTexture(p, mgr, desc, opts, nil)
	if err != nil {
		return nil, err
	}
	if err := t.allocate(nil); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// ImportTexture wraps a buffer object allocated elsewhere. The image is
// planned with the tiling and row stride of bo, and an imported render
// target is assumed to be a scanout. The texture does not own bo: Release
// frees only the buffer objects the import allocated.
func ImportTexture(p *imglayout.Planner, mgr *MemoryManager, desc *hal.TextureDescriptor, opts Options, bo *BO) (*Texture, error) {
	if bo == nil {
		return nil, fmt.Errorf("%w: nil buffer object", ErrImportMismatch)
	}
	t, err := newTexture(p, mgr, desc, opts, bo)
	if err != nil {
		return nil, err
	}
	if t.Main.Size() > bo.Size() {
		return nil, fmt.Errorf("%w: %d bytes needed, %v", ErrImportMismatch, t.Main.Size(), bo)
	}
	if err := t.allocate(bo); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func newTexture(p *imglayout.Planner, mgr *MemoryManager, desc *hal.TextureDescriptor, opts Options, imported *BO) (*Texture, error) {
	caps := p.Caps()
	split, err := RequestFromDescriptor(caps, desc, opts)
	if err != nil {
		return nil, err
	}

	main := split.Main
	if imported != nil {
		if err := importConstraints(&main, imported); err != nil {
			return nil, err
		}
	}

	l, err := p.Plan(main)
	if err != nil {
		return nil, err
	}

	// Where separate stencil is enabled together with HiZ, a D32F depth
	// image whose HiZ misses a level goes back to interleaved D32F_S8:
	// the per-level format change would alter the block size.
	if split.SeparateStencil && hizCoupledStencil(&caps) &&
		split.Format == imglayout.FormatD32FloatS8X24 && !hizCoversAll(l) {
		main.Format = imglayout.FormatD32FloatS8X24
		main.BlockSize = 8
		main.InterleavedStencil = true
		split.SeparateStencil = false

		if l, err = p.Plan(main); err != nil {
			return nil, err
		}
		imglayout.Logger().Debug("separate stencil dropped",
			slog.String("label", desc.Label),
			slog.Int("levels", main.LevelCount),
		)
	}

	if err := checkResourceSize(l); err != nil {
		return nil, err
	}

	t := &Texture{
		Label:  desc.Label,
		Format: split.Format,
		Main:   l,
		caps:   caps,
		mgr:    mgr,
	}

	if split.SeparateStencil {
		s, err := p.Plan(split.Stencil)
		if err != nil {
			return nil, fmt.Errorf("separate stencil: %w", err)
		}
		if err := checkResourceSize(s); err != nil {
			return nil, err
		}
		t.Stencil = s
	}
	return t, nil
}

// importConstraints forces the tiling and stride of an imported buffer
// object on req.
func importConstraints(req *imglayout.Request, bo *BO) error {
	mask := bo.Tiling().Mask()
	if req.ValidTilings != 0 && req.ValidTilings&mask == 0 {
		return fmt.Errorf("%w: %v-tiled buffer for tilings %v", ErrImportMismatch, bo.Tiling(), req.ValidTilings)
	}
	req.ValidTilings = mask
	req.ForceStride = bo.Stride()
	if req.Usage.Has(imglayout.UsageRenderTarget) {
		req.Usage |= imglayout.UsageScanout
	}
	return nil
}

func hizCoversAll(l *imglayout.Layout) bool {
	h, ok := l.HiZ()
	if !ok {
		return false
	}
	return h.Enables == uint16(1)<<l.LevelCount-1
}

func checkResourceSize(l *imglayout.Layout) error {
	if l.Size() > MaxResourceSize {
		return fmt.Errorf("%w: %d bytes", ErrResourceTooLarge, l.Size())
	}
	return nil
}

func (t *Texture) allocate(imported *BO) error {
	var err error
	if imported != nil {
		t.bo = imported
		t.imported = true
	} else {
		t.bo, err = t.mgr.Alloc(boName(t.Main), t.Main.Size(), t.Main.Tiling, t.Main.Stride)
		if err != nil {
			return err
		}
	}

	// aux surfaces are never mapped, so they need no fence
	switch t.Main.Aux.(type) {
	case *imglayout.HiZ:
		t.auxBO, err = t.mgr.Alloc("hiz texture", t.Main.AuxSize(), imglayout.TilingNone, 0)
	case *imglayout.MCS:
		t.auxBO, err = t.mgr.Alloc("mcs texture", t.Main.AuxSize(), imglayout.TilingNone, 0)
	}
	if err != nil {
		return err
	}

	if t.Stencil != nil {
		t.stencilBO, err = t.mgr.Alloc(boName(t.Stencil), t.Stencil.Size(), t.Stencil.Tiling, t.Stencil.Stride)
		if err != nil {
			return err
		}
	}
	return nil
}

// boName returns the debug name of the buffer object of l.
func boName(l *imglayout.Layout) string {
	name := "tex-" + l.Kind.String()
	if l.Kind != imglayout.Kind3D && l.ArraySize > 1 && (l.Kind != imglayout.KindCube || l.ArraySize > 6) {
		name += "-array"
	}
	return name
}

// BO returns the main buffer object, for export.
func (t *Texture) BO() *BO { return t.bo }

// AuxBO returns the HiZ or MCS buffer object, or nil.
func (t *Texture) AuxBO() *BO { return t.auxBO }

// StencilBO returns the separate stencil buffer object, or nil.
func (t *Texture) StencilBO() *BO { return t.stencilBO }

// Imported reports whether the main buffer object was imported.
func (t *Texture) Imported() bool { return t.imported }

// Size returns the total bytes of the buffer objects the texture owns.
func (t *Texture) Size() uint64 {
	var n uint64
	for _, bo := range []*BO{t.bo, t.auxBO, t.stencilBO} {
		if bo != nil && (bo != t.bo || !t.imported) {
			n += bo.Size()
		}
	}
	return n
}

// DepthStencilInfo returns the binding of slices [base, base+count) of
// level as depth/stencil buffer.
func (t *Texture) DepthStencilInfo(level, base, count int) (descriptor.Info, error) {
	if t.released {
		return descriptor.Info{}, ErrReleased
	}
	if !t.Format.IsDepth() && !t.Format.HasStencil() {
		return descriptor.Info{}, fmt.Errorf("%w: %v", ErrNotDepthStencil, t.Format)
	}

	info := descriptor.Info{
		Kind:       t.Main.Kind,
		Level:      level,
		SliceBase:  base,
		SliceCount: count,
	}

	if t.Main.Format == imglayout.FormatS8 {
		info.S = t.Main
		info.SMem = vma(t.bo)
	} else {
		info.Z = t.Main
		info.ZMem = vma(t.bo)
		if _, ok := t.Main.HiZ(); ok && t.Main.AuxEnabled(level) {
			info.HiZMem = vma(t.auxBO)
		}
		if t.Stencil != nil {
			info.S = t.Stencil
			info.SMem = vma(t.stencilBO)
		}
	}

	format, err := descriptor.ZFormatFor(t.Main.Format)
	if err != nil {
		return descriptor.Info{}, err
	}
	// Without HiZ the level falls back to interleaved stencil values.
	if hizCoupledStencil(&t.caps) && format == descriptor.ZFormatD24X8 && info.HiZMem == nil {
		format = descriptor.ZFormatD24S8
	}
	info.Format = format
	return info, nil
}

// Release frees the buffer objects the texture owns. It is idempotent.
func (t *Texture) Release() {
	if t.released {
		return
	}
	t.released = true

	owned := []*BO{t.auxBO, t.stencilBO}
	if !t.imported {
		owned = append(owned, t.bo)
	}
	for _, bo := range owned {
		if bo == nil {
			continue
		}
		if err := t.mgr.Free(bo); err != nil && !errors.Is(err, ErrManagerClosed) {
			imglayout.Logger().Warn("buffer object release failed",
				slog.String("label", t.Label),
				slog.String("error", err.Error()),
			)
		}
	}
}

func vma(bo *BO) *descriptor.VMA {
	if bo == nil {
		return nil
	}
	return &descriptor.VMA{BO: bo, Alignment: BOAlignment, Size: bo.Size()}
}
