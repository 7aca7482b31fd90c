package imglayout

import "errors"

// Planning errors. Compute wraps them with context; match with errors.Is.
var (
	// ErrNoValidTiling is returned when the usage constraints leave no
	// legal tiling mode.
	ErrNoValidTiling = errors.New("imglayout: no valid tiling mode")

	// ErrUnsupportedSampleCount is returned for sample counts outside the
	// generation's capability, or for surfaces that cannot be multisampled.
	ErrUnsupportedSampleCount = errors.New("imglayout: unsupported sample count")

	// ErrUnsupportedSurfaceKind is returned for unknown surface kinds.
	ErrUnsupportedSurfaceKind = errors.New("imglayout: unsupported surface kind")

	// ErrInvalidForcedStride is returned when a caller-supplied row stride is
	// not a multiple of the tile width or is smaller than the minimum.
	ErrInvalidForcedStride = errors.New("imglayout: invalid forced stride")

	// ErrInconsistentDepthStencil is returned when a depth and a stencil
	// image cannot be bound together.
	ErrInconsistentDepthStencil = errors.New("imglayout: inconsistent depth/stencil pair")

	// ErrLevelOutOfRange is returned when a mip level is not in the image.
	ErrLevelOutOfRange = errors.New("imglayout: level out of range")

	// ErrInvalidRequest is returned when a request violates the basic
	// dimension and count invariants.
	ErrInvalidRequest = errors.New("imglayout: invalid request")

	// ErrOutOfBounds is returned by the offset helpers for positions
	// outside the image footprint.
	ErrOutOfBounds = errors.New("imglayout: position out of bounds")

	// ErrNoSliceStride is returned when the slices of a level are not
	// evenly spaced.
	ErrNoSliceStride = errors.New("imglayout: level has no single slice stride")

	// ErrPlannerClosed is returned by PlanAll after Close.
	ErrPlannerClosed = errors.New("imglayout: planner closed")

	// ErrUnknownGen is returned for generations missing from the
	// capability table.
	ErrUnknownGen = errors.New("imglayout: unknown hardware generation")
)
