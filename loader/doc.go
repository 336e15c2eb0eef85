// Package loader opens the engine's shared library and resolves its entry
// points at runtime.
//
// The loader has one strategy on every platform: locate the library adjacent
// to the running executable, open it, resolve a fixed symbol set, and fail
// atomically if anything is missing. Partial resolution never leaves a
// usable Library behind; callers retry from Open rather than patching a
// failed load.
//
// Unix platforms go through dlopen/dlsym (via purego, no cgo required);
// Windows uses LoadLibrary/GetProcAddress with the DLL search path
// temporarily extended to the library's own directory during the load.
package loader
