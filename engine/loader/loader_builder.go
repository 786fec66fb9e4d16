package loader

import (
	"github.com/Carmen-Shannon/oxy-mmd/engine/model"
	"golang.org/x/text/encoding"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = m
	}
}

// WithMotion is an option builder that pre-populates the motion cache with a motion.
//
// Parameters:
//   - key: the cache key for the motion
//   - motion: the motion to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the motion option to a loader
func WithMotion(key string, motion *model.Motion) LoaderBuilderOption {
	return func(l *loader) {
		l.motionCache[key] = motion
	}
}

// WithNameEncoding is an option builder that sets the character encoding used for the
// fixed-width names stored in model and motion files. A nil encoding keeps raw bytes.
//
// Parameters:
//   - enc: the text encoding, e.g. japanese.ShiftJIS
//
// Returns:
//   - LoaderBuilderOption: a function that applies the encoding option to a loader
func WithNameEncoding(enc encoding.Encoding) LoaderBuilderOption {
	return func(l *loader) {
		l.names = enc
	}
}

// WithVerbose enables a one-line summary log for every newly loaded file.
func WithVerbose(verbose bool) LoaderBuilderOption {
	return func(l *loader) {
		l.verbose = verbose
	}
}
