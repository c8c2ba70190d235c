package burnfade

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/burnfade/engine/model"
)

// DefaultChunkSize is the number of vertices each worker task evaluates.
const DefaultChunkSize = 2048

// ReferenceBurner evaluates the burn kernel on the CPU, splitting the vertex range into
// chunks processed by a reusable worker pool. Its output matches the compute shader up to
// floating-point differences between the host and the GPU.
type ReferenceBurner struct {
	pool      worker.DynamicWorkerPool
	chunkSize int
}

// NewReferenceBurner creates a burner backed by a dynamic worker pool.
//
// Parameters:
//   - workers: the maximum number of workers; values < 1 use NumCPU-1 (minimum 1)
//   - chunkSize: vertices per task; values < 1 use DefaultChunkSize
//
// Returns:
//   - *ReferenceBurner: the burner
func NewReferenceBurner(workers, chunkSize int) *ReferenceBurner {
	if workers < 1 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &ReferenceBurner{
		pool:      worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		chunkSize: chunkSize,
	}
}

// Burn evaluates every vertex of src and returns a new slice.
//
// Parameters:
//   - src: the source vertices
//   - params: the burn parameter block
//
// Returns:
//   - []model.GPUVertex: the burned vertices
func (b *ReferenceBurner) Burn(src []model.GPUVertex, params GPUBurnFadeParams) []model.GPUVertex {
	dst := make([]model.GPUVertex, len(src))
	// dst is sized to src so BurnInto cannot fail
	_ = b.BurnInto(dst, src, params)
	return dst
}

// BurnInto evaluates every vertex of src into dst. Blocks until all chunks complete.
//
// Parameters:
//   - dst: destination slice, at least len(src) long
//   - src: the source vertices
//   - params: the burn parameter block
//
// Returns:
//   - error: an error if dst is shorter than src
func (b *ReferenceBurner) BurnInto(dst, src []model.GPUVertex, params GPUBurnFadeParams) error {
	if len(dst) < len(src) {
		return fmt.Errorf("destination holds %d vertices, need %d", len(dst), len(src))
	}
	if len(src) <= b.chunkSize {
		BurnVertices(dst, src, params)
		return nil
	}

	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(src); start += b.chunkSize {
		end := min(start+b.chunkSize, len(src))
		wg.Add(1)
		s, e := start, end
		b.pool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				BurnVertices(dst[s:e], src[s:e], params)
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return nil
}
