package loader

import (
	"os"
	"path/filepath"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/signalhouse/wsjtx-bridge/errors"
)

// Library is an open shared library with symbol lookup.
// Loading is all-or-nothing: a failed Resolve closes the library and the
// caller must start over with Open.
type Library struct {
	log    *zap.Logger
	path   string
	handle uintptr
	closed bool
}

// Option configures Open.
type Option func(*Library)

// WithLogger sets the logger used for load and resolution events.
func WithLogger(l *zap.Logger) Option {
	return func(lib *Library) {
		lib.log = l
	}
}

// ResolveLibraryPath derives the expected engine library location: the
// directory containing the running executable plus the platform-specific
// library file name.
func ResolveLibraryPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", errors.PathResolution(err)
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(exe))
	if err != nil {
		return "", errors.PathResolution(err)
	}
	return filepath.Join(dir, LibraryFileName()), nil
}

// Open loads the shared library at path.
func Open(path string, opts ...Option) (*Library, error) {
	lib := &Library{path: path}
	for _, opt := range opts {
		opt(lib)
	}
	if lib.log == nil {
		lib.log = zap.NewNop()
	}

	handle, err := open(path)
	if err != nil {
		return nil, errors.LibraryLoad(path, err)
	}

	lib.handle = handle
	lib.log.Debug("library loaded", zap.String("path", path))
	return lib, nil
}

// Path returns the path the library was opened from.
func (l *Library) Path() string {
	return l.path
}

// Sym looks up a single entry point. A missing symbol returns address 0 and
// an error; the library stays open.
func (l *Library) Sym(name string) (uintptr, error) {
	if l.closed {
		return 0, errors.Closed("library")
	}
	addr, err := lookup(l.handle, name)
	if err != nil || addr == 0 {
		return 0, errors.New(errors.PhaseLink, errors.KindMissingSymbol).
			Symbol(name).
			Cause(err).
			Build()
	}
	return addr, nil
}

// Resolve looks up every named entry point. If any is missing the whole
// operation fails with a MissingSymbolsError naming each gap, and the
// library is closed before returning so no partially-linked state survives.
func (l *Library) Resolve(names ...string) (map[string]uintptr, error) {
	if l.closed {
		return nil, errors.Closed("library")
	}

	addrs := make(map[string]uintptr, len(names))
	var missing []string
	for _, name := range names {
		addr, err := lookup(l.handle, name)
		if err != nil || addr == 0 {
			missing = append(missing, name)
			continue
		}
		addrs[name] = addr
	}

	if len(missing) > 0 {
		l.log.Warn("symbol resolution failed",
			zap.String("library", filepath.Base(l.path)),
			zap.Strings("missing", missing))
		l.Close()
		return nil, errors.NewMissingSymbolsError(filepath.Base(l.path), missing)
	}

	l.log.Debug("symbols resolved", zap.Int("count", len(addrs)))
	return addrs, nil
}

// Bind registers addr as the implementation of the Go function pointed to by
// fptr. fptr must be a pointer to a function variable with a C-compatible
// signature.
func Bind(fptr any, addr uintptr) {
	purego.RegisterFunc(fptr, addr)
}

// Close unloads the library. Safe to call more than once.
func (l *Library) Close() error {
	if l.closed || l.handle == 0 {
		return nil
	}
	l.closed = true
	err := unload(l.handle)
	l.handle = 0
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindLibraryLoad, err, "unload library")
	}
	return nil
}
