package measure_test

import (
	"strings"
	"testing"

	"benchcore/testutil"
)

// The quantity package is the leaf of the module: everything else builds on
// it, so it must not import the container model, the internal packages, or
// any third-party code beyond the decimal arithmetic library.
func TestQuantityPackageStaysLeaf(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.PlateImportForbidden,
		"measure sits below the container model")
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"measure is consumed standalone")
	testutil.AssertNoTransitiveDependency(t, ".", func(path string) bool {
		if !strings.Contains(path, ".") {
			return false // standard library
		}
		return !strings.HasPrefix(path, "github.com/shopspring/decimal")
	}, "measure depends only on the decimal library")
}
