//go:build darwin || linux

package loader

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// LibraryFileName returns the platform-specific engine library file name.
func LibraryFileName() string {
	if runtime.GOOS == "darwin" {
		return "wsjtx_bridge.dylib"
	}
	return "wsjtx_bridge.so"
}

// open loads with RTLD_NOW so unresolved engine-internal references fail at
// load time rather than at first call. dlopen with an absolute path already
// searches the library's own directory for co-located dependencies via the
// embedded rpath, so no search-path manipulation is needed here.
func open(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func lookup(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func unload(handle uintptr) error {
	return purego.Dlclose(handle)
}
