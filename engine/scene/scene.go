package scene

import (
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-mmd/engine/animator"
)

// Scene manages a set of Animators, one per model instance, and advances them together.
// Instances share no mutable state, so Update fans each animator out to a worker pool and
// waits for all of them before returning. Within one animator the update steps always run
// in their fixed order on a single goroutine.
// Scenes can be hot-swapped via the Active flag; the engine only ticks active scenes.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently ticked by the engine.
	Active() bool

	// SetActive sets whether this scene is ticked by the engine.
	SetActive(active bool)

	// AddAnimator registers an animator with the scene and assigns it an ID.
	//
	// Parameters:
	//   - a: the animator to add
	//
	// Returns:
	//   - uint64: the assigned ID, never 0
	AddAnimator(a animator.Animator) uint64

	// RemoveAnimator unregisters an animator by ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the animator's ID
	RemoveAnimator(id uint64)

	// Animator retrieves an animator by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the animator's ID
	//
	// Returns:
	//   - animator.Animator: the animator or nil
	Animator(id uint64) animator.Animator

	// Animators returns the registered animators in the order they were added.
	//
	// Returns:
	//   - []animator.Animator: a snapshot of the animator list
	Animators() []animator.Animator

	// Count returns the number of registered animators.
	Count() int

	// Clear removes all animators from the scene.
	Clear()

	// Update advances every animator by deltaTime in parallel and blocks until all of them
	// have finished their update.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last update in seconds
	Update(deltaTime float32)

	// StagedWriteData drains the pending GPU uploads of every animator into one slice,
	// ordered by animator registration. Each write carries its animator's label.
	//
	// Returns:
	//   - []animator.BufferWrite: the coalesced writes; valid until the next call
	StagedWriteData() []animator.BufferWrite
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	animators map[uint64]animator.Animator
	order     []uint64
	nextID    uint64

	// Pre-allocated slice reused each frame to avoid per-frame allocations.
	writePool []animator.BufferWrite

	// computePool manages a bounded set of reusable goroutines for the parallel
	// update phase. Workers persist across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new, inactive Scene with the given name.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		animators:      make(map[uint64]animator.Animator),
		nextID:         1,
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) AddAnimator(a animator.Animator) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addAnimator(a)
}

// addAnimator registers a. Caller must hold s.mu write lock.
func (s *scene) addAnimator(a animator.Animator) uint64 {
	id := s.nextID
	s.nextID++
	s.animators[id] = a
	s.order = append(s.order, id)
	return id
}

func (s *scene) RemoveAnimator(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.animators[id]; !ok {
		return
	}
	delete(s.animators, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *scene) Animator(id uint64) animator.Animator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.animators[id]
}

func (s *scene) Animators() []animator.Animator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]animator.Animator, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.animators[id])
	}
	return out
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.animators)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.animators = make(map[uint64]animator.Animator)
	s.order = nil
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// A WaitGroup provides the per-frame barrier; pool.Wait() is unsuitable because it
	// blocks until workers idle-exit.
	var wg sync.WaitGroup
	for taskID, id := range s.order {
		a := s.animators[id]
		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				a.Update(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) StagedWriteData() []animator.BufferWrite {
	s.mu.Lock()
	defer s.mu.Unlock()

	allWrites := s.writePool[:0]
	for _, id := range s.order {
		allWrites = append(allWrites, s.animators[id].StagedWriteData()...)
	}
	s.writePool = allWrites
	return allWrites
}
