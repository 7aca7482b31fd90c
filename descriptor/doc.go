// Package descriptor packs depth, stencil and hierarchical depth buffer
// records for the depth/stencil unit.
//
// A Descriptor is built from up to two planned layouts, one depth image and
// one separate stencil image, plus the memory they are bound to:
//
//	d, err := descriptor.Build(caps, descriptor.Info{
//		Z:          zLayout,
//		ZMem:       &descriptor.VMA{BO: bo, Alignment: 4096},
//		Kind:       imglayout.Kind2D,
//		Format:     descriptor.ZFormatD24X8,
//		SliceCount: 1,
//	})
//
// Build validates the binding against the capability table and returns an
// error wrapping ErrInvalidDescriptor, imglayout.ErrInconsistentDepthStencil
// or imglayout.ErrLevelOutOfRange when the hardware cannot address it.
// Descriptors do not own memory; the VMAs they reference must outlive them.
package descriptor
