package imglayout

import "strings"

// Tiling is a memory tiling mode. Values match the hardware encoding.
type Tiling uint8

// Tiling modes.
const (
	TilingNone Tiling = 0
	TilingW    Tiling = 1
	TilingX    Tiling = 2
	TilingY    Tiling = 3
)

// String returns the short name of the tiling mode.
func (t Tiling) String() string {
	switch t {
	case TilingNone:
		return "none"
	case TilingW:
		return "W"
	case TilingX:
		return "X"
	case TilingY:
		return "Y"
	default:
		return "unknown"
	}
}

// Mask returns the single-mode mask of t.
func (t Tiling) Mask() TilingMask {
	return 1 << t
}

// TileSize returns the width in bytes and height in rows of one tile.
// Untiled memory is treated as 1x1 tiles.
func (t Tiling) TileSize() (w, h int) {
	switch t {
	case TilingX:
		return 512, 8
	case TilingY:
		return 128, 32
	case TilingW:
		return 64, 64
	default:
		return 1, 1
	}
}

// boGrid returns the granularity a buffer footprint is rounded to.
func (t Tiling) boGrid() (w, h int) {
	if t == TilingNone {
		return 64, 2
	}
	return t.TileSize()
}

// TilingMask is a set of tiling modes, one bit per Tiling value.
type TilingMask uint8

// Common masks.
const (
	TilingMaskNone TilingMask = 1 << TilingNone
	TilingMaskW    TilingMask = 1 << TilingW
	TilingMaskX    TilingMask = 1 << TilingX
	TilingMaskY    TilingMask = 1 << TilingY
	TilingMaskAll             = TilingMaskNone | TilingMaskW | TilingMaskX | TilingMaskY
)

// Has reports whether t is in the mask.
func (m TilingMask) Has(t Tiling) bool {
	return m&t.Mask() != 0
}

// single returns the only mode of a one-bit mask.
func (m TilingMask) single() (Tiling, bool) {
	switch m {
	case TilingMaskNone:
		return TilingNone, true
	case TilingMaskX:
		return TilingX, true
	case TilingMaskY:
		return TilingY, true
	case TilingMaskW:
		return TilingW, true
	}
	return 0, false
}

// String lists the modes of the mask, e.g. "none|X|Y".
func (m TilingMask) String() string {
	if m == 0 {
		return "-"
	}
	var parts []string
	for _, t := range []Tiling{TilingNone, TilingW, TilingX, TilingY} {
		if m.Has(t) {
			parts = append(parts, t.String())
		}
	}
	return strings.Join(parts, "|")
}

// ParseTiling parses a tiling name as printed by Tiling.String.
func ParseTiling(s string) (Tiling, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "linear":
		return TilingNone, true
	case "w":
		return TilingW, true
	case "x":
		return TilingX, true
	case "y":
		return TilingY, true
	}
	return 0, false
}
