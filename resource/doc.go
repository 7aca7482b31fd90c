// Package resource turns gputypes texture descriptors into planned images
// backed by buffer objects.
//
// RequestFromDescriptor maps a hal.TextureDescriptor onto layout requests,
// splitting combined depth/stencil formats into a depth image and a
// separate S8 stencil image where the hardware requires it. NewTexture
// plans those requests on an imglayout.Planner and allocates the main, aux
// and stencil buffer objects from a MemoryManager:
//
//	p := imglayout.NewPlanner(imglayout.MustCaps(imglayout.Gen7))
//	mgr := resource.NewMemoryManager(resource.MemoryManagerConfig{})
//	tex, err := resource.NewTexture(p, mgr, desc, resource.Options{})
//	if err != nil {
//		return err
//	}
//	defer tex.Release()
//
//	info, err := tex.DepthStencilInfo(0, 0, 1)
//	if err != nil {
//		return err
//	}
//	d, err := descriptor.Build(p.Caps(), info)
//
// ImportTexture wraps a buffer object allocated elsewhere, planning the
// image with the tiling and row stride of that buffer object.
package resource
