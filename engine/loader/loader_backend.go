package loader

import (
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
)

// modelBackend loads model files or streams into an ImportedModel.
// Concrete implementations (e.g., pmdLoaderBackend) handle format-specific details.
type modelBackend interface {
	// Load performs a full model import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(r io.Reader) (*model.ImportedModel, error)
}

// motionBackend loads motion files or streams into a Motion.
type motionBackend interface {
	// Load performs a full motion import from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Motion: the imported motion
	//   - error: error if loading fails
	Load(path string) (*model.Motion, error)

	// LoadReader imports a motion from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing motion data
	//
	// Returns:
	//   - *model.Motion: the imported motion
	//   - error: error if loading fails
	LoadReader(r io.Reader) (*model.Motion, error)
}

// pmdLoaderBackendImpl is the modelBackend for .pmd files.
type pmdLoaderBackendImpl struct {
	parser pmdParser
}

var _ modelBackend = &pmdLoaderBackendImpl{}

func newPMDLoaderBackend(parser pmdParser) modelBackend {
	return &pmdLoaderBackendImpl{parser: parser}
}

func (b *pmdLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.parser.Parse(data)
}

func (b *pmdLoaderBackendImpl) LoadReader(r io.Reader) (*model.ImportedModel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return b.parser.Parse(data)
}

// vmdLoaderBackendImpl is the motionBackend for .vmd files.
type vmdLoaderBackendImpl struct {
	parser vmdParser
}

var _ motionBackend = &vmdLoaderBackendImpl{}

func newVMDLoaderBackend(parser vmdParser) motionBackend {
	return &vmdLoaderBackendImpl{parser: parser}
}

func (b *vmdLoaderBackendImpl) Load(path string) (*model.Motion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return b.parser.Parse(data)
}

func (b *vmdLoaderBackendImpl) LoadReader(r io.Reader) (*model.Motion, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return b.parser.Parse(data)
}
