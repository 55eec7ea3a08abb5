package plate

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestPublicPackagesStayBelowInternal ensures the exported data-model
// packages never reach up into internal ones. Callers embed pkg/measure and
// pkg/plate on their own; the protocol session depends on them, not the
// other way around.
func TestPublicPackagesStayBelowInternal(t *testing.T) {
	publicPrefix := "benchcore/pkg/"
	internalPrefix := "benchcore/internal/"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "benchcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if !strings.HasPrefix(pkg.PkgPath, publicPrefix) {
			continue
		}
		for importPath := range pkg.Imports {
			if strings.HasPrefix(importPath, internalPrefix) {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of an internal package: %s", v)
		}
		t.Fatalf("found %d forbidden internal imports from pkg packages", len(violations))
	}
}
