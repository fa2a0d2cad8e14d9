package core

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestCoreStaysFreeOfInfraImports ensures the reconciliation core depends
// only on the domain package. Stores, transports, and file adapters are
// injected through the collaborator interfaces, never imported.
func TestCoreStaysFreeOfInfraImports(t *testing.T) {
	forbidden := []string{
		"feedstockcore/internal/infra",
		"feedstockcore/internal/adapters",
		"feedstockcore/internal/blob",
		"feedstockcore/internal/refdata",
		"feedstockcore/internal/reports",
		"feedstockcore/internal/soiltemp",
		"feedstockcore/internal/gis",
		"feedstockcore/internal/config",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports}
	pkgs, err := packages.Load(cfg, "feedstockcore/internal/core")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			for _, prefix := range forbidden {
				if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
					violations = append(violations, pkg.PkgPath+": "+importPath)
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden core import: %s", v)
		}
		t.Fatalf("found %d forbidden imports in the core", len(violations))
	}
}
