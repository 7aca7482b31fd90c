package resource

import (
	"container/list"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/imglayout"
)

// Memory management errors.
var (
	// ErrBudgetExceeded is returned when an allocation would exceed the
	// budget of the manager.
	ErrBudgetExceeded = errors.New("resource: memory budget exceeded")

	// ErrManagerClosed is returned when operating on a closed manager.
	ErrManagerClosed = errors.New("resource: memory manager closed")

	// ErrUnknownBO is returned when freeing a buffer object the manager
	// does not own.
	ErrUnknownBO = errors.New("resource: buffer object not owned by this manager")
)

// Default memory limits.
const (
	// DefaultBudgetMB is the default memory budget (256 MB).
	DefaultBudgetMB = 256

	// MinBudgetMB is the minimum allowed memory budget (16 MB).
	MinBudgetMB = 16

	// BOAlignment is the size and address alignment of buffer objects.
	BOAlignment = 4096
)

// MemoryStats contains buffer-object usage statistics.
type MemoryStats struct {
	// TotalBytes is the total memory budget in bytes.
	TotalBytes uint64

	// UsedBytes is the currently allocated memory in bytes.
	UsedBytes uint64

	// AvailableBytes is the remaining memory budget.
	AvailableBytes uint64

	// BOCount is the number of live buffer objects.
	BOCount int

	// Allocations and Frees count calls since creation.
	Allocations uint64
	Frees       uint64

	// Utilization is the fraction of the budget used (0.0 to 1.0).
	Utilization float64
}

// String returns a human-readable string of memory stats.
func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d KB, %d BOs]",
		s.Utilization*100,
		s.UsedBytes/1024,
		s.TotalBytes/1024,
		s.BOCount)
}

// BO is a buffer object: an opaque, page-aligned allocation an image is
// bound to. It satisfies descriptor.BufferObject.
type BO struct {
	id     uuid.UUID
	name   string
	size   uint64
	tiling imglayout.Tiling
	stride int

	manager *MemoryManager
	element *list.Element
}

// ID returns the handle of the buffer object.
func (b *BO) ID() uuid.UUID { return b.id }

// Name returns the debug name given at allocation.
func (b *BO) Name() string { return b.name }

// Size returns the size in bytes, a multiple of BOAlignment.
func (b *BO) Size() uint64 { return b.size }

// Tiling returns the fence tiling of the buffer object. W-tiled images
// are allocated untiled since no fence can detile them.
func (b *BO) Tiling() imglayout.Tiling { return b.tiling }

// Stride returns the row stride in bytes the buffer object was allocated
// with, or 0 when unknown.
func (b *BO) Stride() int { return b.stride }

func (b *BO) String() string {
	return fmt.Sprintf("%s[%s %d bytes %v]", b.name, b.id.String()[:8], b.size, b.tiling)
}

// MemoryManager tracks buffer-object allocations and enforces a budget.
// Unlike a texture cache it never evicts: every buffer object is owned by
// a texture until released.
//
// MemoryManager is safe for concurrent use.
type MemoryManager struct {
	mu sync.RWMutex

	budgetBytes uint64
	usedBytes   uint64

	bos map[uuid.UUID]*BO
	// allocation order, oldest first
	order *list.List

	allocs, frees uint64

	closed bool
}

// MemoryManagerConfig holds configuration for creating a MemoryManager.
type MemoryManagerConfig struct {
	// BudgetMB is the memory budget in megabytes. Values below
	// MinBudgetMB select DefaultBudgetMB.
	BudgetMB int
}

// NewMemoryManager creates a new buffer-object allocator.
func NewMemoryManager(config MemoryManagerConfig) *MemoryManager {
	budgetMB := config.BudgetMB
	if budgetMB < MinBudgetMB {
		budgetMB = DefaultBudgetMB
	}

	//nolint:gosec // G115: budgetMB is bounded by MinBudgetMB minimum
	return &MemoryManager{
		budgetBytes: uint64(budgetMB) * 1024 * 1024,
		bos:         make(map[uuid.UUID]*BO),
		order:       list.New(),
	}
}

// Alloc allocates a buffer object of at least size bytes. The tiling and
// row stride are recorded for CPU access and export.
func (m *MemoryManager) Alloc(name string, size uint64, tiling imglayout.Tiling, stride int) (*BO, error) {
	if size == 0 {
		return nil, fmt.Errorf("resource: zero-sized buffer object %q", name)
	}
	size = alignUp64(size, BOAlignment)

	if tiling == imglayout.TilingW {
		tiling = imglayout.TilingNone
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}
	if size > m.budgetBytes-m.usedBytes {
		return nil, fmt.Errorf("%w: %q needs %d KB, %d of %d KB available",
			ErrBudgetExceeded, name, size/1024,
			(m.budgetBytes-m.usedBytes)/1024, m.budgetBytes/1024)
	}

	bo := &BO{
		id:      uuid.New(),
		name:    name,
		size:    size,
		tiling:  tiling,
		stride:  stride,
		manager: m,
	}
	m.registerLocked(bo)

	imglayout.Logger().Info("buffer object allocated",
		slog.String("name", name),
		slog.String("id", bo.id.String()),
		slog.Uint64("size", size),
		slog.String("tiling", tiling.String()),
	)
	return bo, nil
}

// Free releases a buffer object. Freeing nil does nothing.
func (m *MemoryManager) Free(bo *BO) error {
	if bo == nil {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrManagerClosed
	}
	if bo.manager != m || m.bos[bo.id] != bo {
		return fmt.Errorf("%w: %v", ErrUnknownBO, bo)
	}
	m.unregisterLocked(bo)
	return nil
}

// Contains reports whether bo is a live buffer object of this manager.
func (m *MemoryManager) Contains(bo *BO) bool {
	if bo == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bos[bo.id] == bo
}

// BOs returns the live buffer objects, oldest first.
func (m *MemoryManager) BOs() []*BO {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*BO, 0, m.order.Len())
	for e := m.order.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*BO))
	}
	return out
}

// Stats returns current memory usage statistics.
func (m *MemoryManager) Stats() MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var utilization float64
	if m.budgetBytes > 0 {
		utilization = float64(m.usedBytes) / float64(m.budgetBytes)
	}

	return MemoryStats{
		TotalBytes:     m.budgetBytes,
		UsedBytes:      m.usedBytes,
		AvailableBytes: m.budgetBytes - m.usedBytes,
		BOCount:        len(m.bos),
		Allocations:    m.allocs,
		Frees:          m.frees,
		Utilization:    utilization,
	}
}

// Close releases every buffer object. Further operations return
// ErrManagerClosed. Close is idempotent.
func (m *MemoryManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	for e := m.order.Front(); e != nil; e = e.Next() {
		e.Value.(*BO).manager = nil
	}
	m.bos = nil
	m.order.Init()
	m.usedBytes = 0
	m.closed = true
}

func (m *MemoryManager) registerLocked(bo *BO) {
	bo.element = m.order.PushBack(bo)
	m.bos[bo.id] = bo
	m.usedBytes += bo.size
	m.allocs++
}

func (m *MemoryManager) unregisterLocked(bo *BO) {
	m.order.Remove(bo.element)
	delete(m.bos, bo.id)
	m.usedBytes -= bo.size
	m.frees++
	bo.element = nil
	bo.manager = nil
}

func alignUp64(v, a uint64) uint64 {
	return (v + a - 1) / a * a
}
