package loader

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache  map[string]model.Model
	motionCache map[string]*model.Motion

	names   encoding.Encoding
	verbose bool

	models  modelBackend
	motions motionBackend
}

// Loader defines the public-facing interface for loading and caching MMD models and motions.
// It abstracts the file format behind format backends selected by extension and keeps a
// cache of everything previously loaded, keyed by path or by the caller-supplied name.
type Loader interface {
	// LoadModel imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.pmd → PMD backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat for unknown extensions, or the wrapped parse error
	LoadModel(path string) (model.Model, error)

	// LoadModelReader imports a PMD model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadModelReader(name string, r io.Reader) (model.Model, error)

	// LoadMotion imports a motion file and caches the result.
	// The backend is selected based on the file extension (.vmd → VMD backend).
	//
	// Parameters:
	//   - path: the file path to the motion file
	//
	// Returns:
	//   - *model.Motion: the loaded and cached motion
	//   - error: ErrUnsupportedFormat for unknown extensions, or the wrapped parse error
	LoadMotion(path string) (*model.Motion, error)

	// LoadMotionReader imports a VMD motion from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded motion
	//   - r: the reader providing motion data
	//
	// Returns:
	//   - *model.Motion: the loaded motion
	//   - error: error if loading fails
	LoadMotionReader(name string, r io.Reader) (*model.Motion, error)

	// Model retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Model(name string) model.Model

	// Motion retrieves a cached motion by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.Motion: the cached motion or nil
	Motion(name string) *model.Motion

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the PMD and VMD backends and the provided options applied.
// Names inside the files are decoded as Shift-JIS unless WithNameEncoding overrides it.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new Loader instance
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:          sync.RWMutex{},
		modelCache:  make(map[string]model.Model),
		motionCache: make(map[string]*model.Motion),
		names:       japanese.ShiftJIS,
	}

	for _, option := range options {
		option(l)
	}

	l.models = newPMDLoaderBackend(newPMDParser(l.names))
	l.motions = newVMDLoaderBackend(newVMDParser(l.names))
	return l
}

func (l *loader) LoadModel(path string) (model.Model, error) {
	if cached := l.Model(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveModelBackend(path)
	if err != nil {
		return nil, err
	}

	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.storeModel(path, imported), nil
}

func (l *loader) LoadModelReader(name string, r io.Reader) (model.Model, error) {
	if cached := l.Model(name); cached != nil {
		return cached, nil
	}

	imported, err := l.models.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.storeModel(name, imported), nil
}

func (l *loader) LoadMotion(path string) (*model.Motion, error) {
	if cached := l.Motion(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveMotionBackend(path)
	if err != nil {
		return nil, err
	}

	motion, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.storeMotion(path, motion), nil
}

func (l *loader) LoadMotionReader(name string, r io.Reader) (*model.Motion, error) {
	if cached := l.Motion(name); cached != nil {
		return cached, nil
	}

	motion, err := l.motions.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.storeMotion(name, motion), nil
}

func (l *loader) Model(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Motion(name string) *model.Motion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.motionCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// storeModel caches the converted model. When two goroutines load the same key
// concurrently the first stored model wins so every caller shares one instance.
func (l *loader) storeModel(key string, imported *model.ImportedModel) model.Model {
	m := model.FromImported(imported)

	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.modelCache[key]; ok {
		return existing
	}
	l.modelCache[key] = m
	if l.verbose {
		log.Printf("[Loader] model %q: %d bones, %d IK chains, %d morphs, %d vertices",
			key, len(m.Skeleton().Bones), len(m.Skeleton().IKChains), len(m.Morphs()), len(m.Vertices()))
	}
	return m
}

func (l *loader) storeMotion(key string, motion *model.Motion) *model.Motion {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.motionCache[key]; ok {
		return existing
	}
	l.motionCache[key] = motion
	if l.verbose {
		log.Printf("[Loader] motion %q: %d bone tracks, %d morph tracks, last frame %d",
			key, len(motion.BoneTracks), len(motion.MorphTracks), motion.MaxFrame())
	}
	return motion
}

// resolveModelBackend selects a model backend based on the file extension.
func (l *loader) resolveModelBackend(path string) (modelBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pmd":
		return l.models, nil
	default:
		return nil, fmt.Errorf("%w: model %q has extension %q", ErrUnsupportedFormat, path, ext)
	}
}

// resolveMotionBackend selects a motion backend based on the file extension.
func (l *loader) resolveMotionBackend(path string) (motionBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vmd":
		return l.motions, nil
	default:
		return nil, fmt.Errorf("%w: motion %q has extension %q", ErrUnsupportedFormat, path, ext)
	}
}
