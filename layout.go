package imglayout

import (
	"fmt"
	"slices"

	"github.com/gogpu/imglayout/internal/invariant"
)

// Walk is the strategy used to pack the levels and layers of an image.
// It is one of LODWalk, LayerWalk or VolumeWalk.
type Walk interface {
	fmt.Stringer
	isWalk()
}

// LODWalk packs all layers of a level before moving on to the next level.
type LODWalk struct{}

// LayerWalk packs all levels of a layer, then repeats the mip tree for each
// layer at a fixed vertical distance.
type LayerWalk struct {
	// H0 and H1 are the slice heights of levels 0 and 1. H1 is computed
	// even for single-level images.
	H0, H1 int
	// Stride is the vertical distance in pixels between two layers, or 0
	// when the image has a single layer.
	Stride int
}

// VolumeWalk packs the depth slices of each level of a 3D image in rows of
// 2^level slices.
type VolumeWalk struct{}

func (LODWalk) isWalk()    {}
func (LayerWalk) isWalk()  {}
func (VolumeWalk) isWalk() {}

func (LODWalk) String() string    { return "lod" }
func (LayerWalk) String() string  { return "layer" }
func (VolumeWalk) String() string { return "3d" }

// Aux is an auxiliary surface planned alongside an image. It is either *HiZ
// or *MCS; a nil Aux means the image has none.
type Aux interface {
	fmt.Stringer
	// Footprint returns the row stride in bytes and the row count of the
	// Y-tiled aux buffer.
	Footprint() (stride, rows int)
	// Enabled reports whether the aux surface covers level.
	Enabled(level int) bool
	isAux()
}

// HiZ is a hierarchical depth surface.
type HiZ struct {
	Stride int
	Rows   int
	// Enables has bit n set when level n may use HiZ.
	Enables uint16
	// LayerStride is the HiZ layer stride in rows for layer walks.
	LayerStride int
	// LODOffsets holds the byte offset of each level when HiZ levels are
	// packed LOD-major. It is nil otherwise.
	LODOffsets []uint32
}

// MCS is a multisample control / fast clear surface.
type MCS struct {
	Stride  int
	Rows    int
	Enables uint16
}

func (*HiZ) isAux() {}
func (*MCS) isAux() {}

func (*HiZ) String() string { return "hiz" }
func (*MCS) String() string { return "mcs" }

func (h *HiZ) Footprint() (int, int) { return h.Stride, h.Rows }
func (m *MCS) Footprint() (int, int) { return m.Stride, m.Rows }

func (h *HiZ) Enabled(level int) bool { return levelBit(h.Enables, level) }
func (m *MCS) Enabled(level int) bool { return levelBit(m.Enables, level) }

func levelBit(mask uint16, level int) bool {
	return level >= 0 && level < MaxLevels && mask&(1<<level) != 0
}

// Level is the placement of one mip level, in pixels.
type Level struct {
	X, Y int
	// SliceWidth and SliceHeight are the aligned size of one slice.
	SliceWidth, SliceHeight int
}

// Layout is the physical memory layout of an image. Layouts are immutable
// once returned by Compute; use Clone before modifying one.
type Layout struct {
	// Logical description the layout was computed from.
	Kind        Kind
	Format      Format
	Width0      int
	Height0     int
	Depth0      int
	ArraySize   int
	LevelCount  int
	SampleCount int
	BlockWidth  int
	BlockHeight int
	BlockSize   int
	Scanout     bool

	Walk               Walk
	InterleavedSamples bool

	ValidTilings TilingMask
	Tiling       Tiling

	AlignI, AlignJ int

	// Levels holds LevelCount valid entries.
	Levels [MaxLevels]Level

	// Width and Height are the padded footprint in pixels.
	Width, Height int

	// Stride is the distance in bytes between two block rows and Rows the
	// number of block rows of the buffer.
	Stride int
	Rows   int

	Aux Aux
}

// LayerStride returns the distance in pixels between two layers of a layer
// walk, or 0.
func (l *Layout) LayerStride() int {
	if w, ok := l.Walk.(LayerWalk); ok {
		return w.Stride
	}
	return 0
}

// Size returns the size in bytes of the main buffer.
func (l *Layout) Size() uint64 {
	return uint64(l.Stride) * uint64(l.Rows)
}

// AuxSize returns the size in bytes of the aux buffer, or 0.
func (l *Layout) AuxSize() uint64 {
	if l.Aux == nil {
		return 0
	}
	stride, rows := l.Aux.Footprint()
	return uint64(stride) * uint64(rows)
}

// AuxEnabled reports whether the aux surface covers level.
func (l *Layout) AuxEnabled(level int) bool {
	return l.Aux != nil && l.Aux.Enabled(level)
}

// HiZ returns the HiZ surface of the layout, if any.
func (l *Layout) HiZ() (*HiZ, bool) {
	h, ok := l.Aux.(*HiZ)
	return h, ok
}

// MCS returns the MCS surface of the layout, if any.
func (l *Layout) MCS() (*MCS, bool) {
	m, ok := l.Aux.(*MCS)
	return m, ok
}

// SliceCount returns the number of slices of level: the minified depth
// of 3D images, the array size otherwise.
func (l *Layout) SliceCount(level int) int {
	if l.Kind == Kind3D {
		return minify(l.Depth0, level)
	}
	return l.ArraySize
}

// Clone returns a deep copy of l.
func (l *Layout) Clone() *Layout {
	c := *l
	switch a := l.Aux.(type) {
	case *HiZ:
		h := *a
		h.LODOffsets = slices.Clone(a.LODOffsets)
		c.Aux = &h
	case *MCS:
		m := *a
		c.Aux = &m
	}
	return &c
}

func (l *Layout) checkLevel(level int) error {
	if level < 0 || level >= l.LevelCount {
		return fmt.Errorf("%w: level %d of %d", ErrLevelOutOfRange, level, l.LevelCount)
	}
	return nil
}

// PosToMem converts a block-aligned pixel position to a 2D memory offset:
// bytes from the start of the row and rows from the top.
func (l *Layout) PosToMem(x, y int) (memX, memY int) {
	invariant.Check(x%l.BlockWidth == 0 && y%l.BlockHeight == 0,
		"position (%d,%d) not aligned to %dx%d blocks", x, y, l.BlockWidth, l.BlockHeight)
	return x / l.BlockWidth * l.BlockSize, y / l.BlockHeight
}

// MemToLinear converts a 2D memory offset to a linear byte offset.
func (l *Layout) MemToLinear(memX, memY int) int {
	return memY*l.Stride + memX
}

// MemToRaw converts a tile-aligned 2D memory offset to the byte offset of
// that tile in the buffer.
func (l *Layout) MemToRaw(memX, memY int) int {
	tileW, tileH := l.Tiling.TileSize()
	invariant.Check(memX%tileW == 0 && memY%tileH == 0,
		"memory offset (%d,%d) not aligned to %v tiles", memX, memY, l.Tiling)
	return memY*l.Stride + memX*tileH
}

// PixelOffset returns the byte offset of the block containing pixel (x, y)
// of the footprint, following the swizzle of the tiling mode.
func (l *Layout) PixelOffset(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, l.Width, l.Height)
	}
	memX, memY := l.PosToMem(x-x%l.BlockWidth, y-y%l.BlockHeight)
	if l.Tiling == TilingNone {
		return l.MemToLinear(memX, memY), nil
	}

	tileW, tileH := l.Tiling.TileSize()
	inX, inY := memX%tileW, memY%tileH
	return l.MemToRaw(memX-inX, memY-inY) + inTileOffset(l.Tiling, inX, inY), nil
}

// inTileOffset returns the offset of byte (x, y) within a tile.
func inTileOffset(t Tiling, x, y int) int {
	switch t {
	case TilingX:
		// 512-byte rows
		return y*512 + x
	case TilingY:
		// columns of 16 bytes by 32 rows
		return x/16*512 + y*16 + x%16
	case TilingW:
		// 8x8 blocks of 8x8 bytes, each interleaving rows in pairs
		return 512*(x/8) + 64*(y/8) +
			32*((y/4)%2) + 16*((x/4)%2) +
			8*((y/2)%2) + 4*((x/2)%2) +
			2*(y%2) + x%2
	default:
		return 0
	}
}

// SliceStride returns the distance in bytes between two slices of level.
// 3D levels other than 0 have no single stride.
func (l *Layout) SliceStride(level int) (int, error) {
	if err := l.checkLevel(level); err != nil {
		return 0, err
	}

	var h int
	switch w := l.Walk.(type) {
	case LODWalk:
		h = l.Levels[level].SliceHeight
	case LayerWalk:
		h = w.Stride
	case VolumeWalk:
		if level != 0 {
			return 0, fmt.Errorf("%w: 3D level %d", ErrNoSliceStride, level)
		}
		h = l.Levels[0].SliceHeight
	}
	invariant.Check(h%l.BlockHeight == 0, "slice stride %d not aligned to block height %d", h, l.BlockHeight)
	return h / l.BlockHeight * l.Stride, nil
}

// SliceSize returns the size in bytes of one slice of level.
func (l *Layout) SliceSize(level int) (int, error) {
	if err := l.checkLevel(level); err != nil {
		return 0, err
	}
	lv := l.Levels[level]
	return lv.SliceWidth / l.BlockWidth * l.BlockSize * (lv.SliceHeight / l.BlockHeight), nil
}

// SlicePos returns the pixel position of a slice of level. Separately
// stored samples count as slices.
func (l *Layout) SlicePos(level, slice int) (x, y int, err error) {
	if err := l.checkLevel(level); err != nil {
		return 0, 0, err
	}
	n := l.SliceCount(level)
	if !l.InterleavedSamples {
		n *= l.SampleCount
	}
	if slice < 0 || slice >= n {
		return 0, 0, fmt.Errorf("%w: slice %d of %d", ErrOutOfBounds, slice, n)
	}

	lv := l.Levels[level]
	switch w := l.Walk.(type) {
	case LODWalk:
		x, y = lv.X, lv.Y+lv.SliceHeight*slice
	case LayerWalk:
		x, y = lv.X, lv.Y+w.Stride*slice
	case VolumeWalk:
		// slices are packed horizontally, wrapping every 2^level slices
		sx := slice & (1<<level - 1)
		sy := slice >> level
		x, y = lv.X+lv.SliceWidth*sx, lv.Y+lv.SliceHeight*sy
		if level+1 < l.LevelCount {
			invariant.Check(y+lv.SliceHeight <= l.Levels[level+1].Y,
				"slice %d of level %d overlaps the next level", slice, level)
		}
	}
	invariant.Check(y+lv.SliceHeight <= l.Rows*l.BlockHeight,
		"slice %d of level %d exceeds the buffer", slice, level)
	return x, y, nil
}
