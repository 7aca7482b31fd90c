// Package imglayout plans the physical memory layout of images on tiled
// GPUs of the Gen6 to Gen8 class.
//
// # Overview
//
// Given a logical image description (extent, format block geometry, level,
// layer and sample counts, and the hardware units it will be bound to),
// Compute returns the exact layout the hardware requires: the tiling mode,
// the alignment grid, the position of every mip level, the padded footprint,
// the row stride and row count of the buffer, and the geometry of the
// hierarchical depth (HiZ) or multisample control (MCS) aux surface.
//
// # Quick Start
//
//	caps, _ := imglayout.CapsFor(imglayout.Gen7)
//	l, err := imglayout.Compute(caps, imglayout.Request{
//		Kind:  imglayout.Kind2D,
//		Width: 1920, Height: 1080, Depth: 1,
//		BlockWidth: 1, BlockHeight: 1, BlockSize: 4,
//		LevelCount: 1, ArraySize: 1, SampleCount: 1,
//		Usage: imglayout.UsageSampler | imglayout.UsageRenderTarget,
//	})
//	if err != nil {
//		return err
//	}
//	size := l.Size() // allocate Stride x Rows bytes
//
// # Capabilities
//
// Generation differences live in the Caps table returned by CapsFor. The
// planner never compares generation numbers; it consults the table, so a
// new part is described by a new table entry.
//
// # Descriptors
//
// Package descriptor packs layouts into depth, stencil and HiZ buffer
// records. Package resource translates gputypes texture descriptors into
// requests and allocates buffers for them.
//
// # Concurrency
//
// Compute and the Layout methods are pure and safe for concurrent use.
// Planner adds memoization and batch planning on a worker pool.
package imglayout

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
