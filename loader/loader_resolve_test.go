//go:build darwin || linux

package loader

import (
	stderrors "errors"
	"testing"

	bridgeerrors "github.com/signalhouse/wsjtx-bridge/errors"
)

// openSystemLibrary opens a library known to exist on the host so symbol
// resolution itself can be exercised against a real loaded image. Returns
// the library and the name of a symbol it is known to export.
func openSystemLibrary(t *testing.T) (*Library, string) {
	t.Helper()
	candidates := []struct{ path, known string }{
		{"libm.so.6", "cos"},
		{"libc.so.6", "strlen"},
		{"libSystem.B.dylib", "strlen"},
	}
	for _, c := range candidates {
		if lib, err := Open(c.path); err == nil {
			return lib, c.known
		}
	}
	t.Skip("no known system library available")
	return nil, ""
}

func TestResolveReportsEveryMissingSymbol(t *testing.T) {
	lib, known := openSystemLibrary(t)

	_, err := lib.Resolve(known, "wsjtx_create", "wsjtx_decode")
	if err == nil {
		t.Fatal("expected resolution failure")
	}

	// One failed resolution reports the whole gap, not just the first hit,
	// and resolvable names are not listed.
	var missing *bridgeerrors.MissingSymbolsError
	if !stderrors.As(err, &missing) {
		t.Fatalf("expected MissingSymbolsError, got %T: %v", err, err)
	}
	want := []string{"wsjtx_create", "wsjtx_decode"}
	if len(missing.Symbols) != len(want) {
		t.Fatalf("missing symbols = %v, want %v", missing.Symbols, want)
	}
	for i := range want {
		if missing.Symbols[i] != want[i] {
			t.Errorf("missing[%d] = %q, want %q", i, missing.Symbols[i], want[i])
		}
	}

	// The failed Resolve closed the library; no partially-linked state
	// survives.
	if _, err := lib.Sym(known); err == nil {
		t.Error("Sym after failed Resolve should report the library closed")
	}
	if _, err := lib.Resolve(known); err == nil {
		t.Error("Resolve after failed Resolve should report the library closed")
	}
}

func TestResolveSucceedsWhenAllPresent(t *testing.T) {
	lib, known := openSystemLibrary(t)
	defer lib.Close()

	addrs, err := lib.Resolve(known)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", known, err)
	}
	if addrs[known] == 0 {
		t.Errorf("address of %q is zero", known)
	}
}
