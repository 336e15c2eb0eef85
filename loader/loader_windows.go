//go:build windows

package loader

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// LibraryFileName returns the platform-specific engine library file name.
func LibraryFileName() string {
	return "wsjtx_bridge.dll"
}

// open extends the DLL search path to the library's own directory for the
// duration of the load so the engine can find co-located dependencies
// (libgcc, libwinpthread, Fortran runtime). The search path is restored
// even when loading fails.
func open(path string) (uintptr, error) {
	dir := filepath.Dir(path)
	if err := windows.SetDllDirectory(dir); err != nil {
		return 0, err
	}
	defer windows.SetDllDirectory("")

	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

func lookup(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func unload(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
