package engine

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-mmd/engine/profiler"
	"github.com/Carmen-Shannon/oxy-mmd/engine/scene"
)

// engine implements the Engine interface.
// Coordinates the fixed-rate tick goroutine and the quit signal.
type engine struct {
	mu sync.RWMutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	ticks   atomic.Uint64
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    *sync.Once // Ensures quitChannel is only closed once per run
	stopped     bool       // A previous Run returned; the next Run re-arms the quit signal

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)

	scenes map[int]scene.Scene
}

// Engine is the main entry point for the headless animation runtime.
// It drives every active scene at a fixed tick rate; consumers read each animator's
// outputs (skinning palette, morphed positions, staged GPU writes) from the tick callback.
type Engine interface {
	// EnableProfiler enables update-rate and memory statistics output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in updates per second.
	//
	// Parameters:
	//   - fps: target updates per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called after the scenes have been updated on each tick.
	//
	// Parameters:
	//   - callback: function to call each tick, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// AddScene registers a scene at the given key.
	// Scenes are updated in ascending key order on each tick.
	//
	// Parameters:
	//   - key: the ordering key (lower updates first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given key.
	//
	// Parameters:
	//   - key: the key of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the key of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by ordering key.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Step runs a single tick synchronously with the given delta time: every active scene is
	// updated, then the tick callback fires.
	//
	// Parameters:
	//   - deltaTime: the time step in seconds
	Step(deltaTime float32)

	// Ticks returns the number of ticks executed so far, by Run or Step.
	Ticks() uint64

	// Run starts the tick loop and blocks until Quit is called.
	// The engine may be run again after Run returns.
	Run()

	// Quit signals the tick loop to stop. Safe to call multiple times and from the tick callback.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, scenes)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		quitOnce:         &sync.Once{},
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(time.Second),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Run() {
	e.mu.Lock()
	if e.stopped {
		e.quitChannel = make(chan struct{})
		e.quitOnce = &sync.Once{}
		e.stopped = false
	}
	quit := e.quitChannel
	e.mu.Unlock()

	e.running.Store(true)
	e.wg.Add(2)
	go e.handleEngine(quit)
	go e.handleQuit(quit)
	e.wg.Wait()
	e.running.Store(false)

	e.mu.Lock()
	e.stopped = true
	e.mu.Unlock()
}

// Quit signals all engine goroutines to stop.
// Safe to call multiple times; subsequent calls are no-ops until the next Run.
// A Quit issued before Run makes that Run return immediately.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the current quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.mu.RLock()
	once, quit := e.quitOnce, e.quitChannel
	e.mu.RUnlock()
	once.Do(func() {
		close(quit)
	})
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Listens for dynamic rate changes via tickRateChannel and exits when the quit channel is closed.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleEngine(quit <-chan struct{}) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] tick goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	e.mu.RLock()
	rate := e.engineTickRate
	e.mu.RUnlock()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit(quit <-chan struct{}) {
	defer e.wg.Done()
	<-quit
}

func (e *engine) Step(deltaTime float32) {
	for _, s := range e.activeScenes() {
		s.Update(deltaTime)
	}

	e.mu.RLock()
	callback := e.tickCallback
	profiling := e.profilingEnabled
	e.mu.RUnlock()

	e.ticks.Add(1)
	if callback != nil {
		callback(deltaTime)
	}
	if profiling && e.profiler != nil {
		e.profiler.Tick()
	}
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

// activeScenes returns the active scenes in ascending key order.
func (e *engine) activeScenes() []scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in updates per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
		return
	}
	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

// tickInterval converts a rate in updates per second to a ticker period, defaulting to 60Hz.
func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
