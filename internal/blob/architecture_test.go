package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestDriverPackagesStayBehindTheirFactories walks the whole module and
// checks that driver trees under internal/infra are only imported by the
// package that wraps them. Blob drivers (fs, memory, s3) are reachable only
// through this package's factory; the SQL artifact stores are wired up in the
// command entrypoint and nowhere else. Everything in between works against
// the Store and reports.Artifacts interfaces.
func TestDriverPackagesStayBehindTheirFactories(t *testing.T) {
	rules := []struct {
		driverTree string
		importers  []string
	}{
		{
			driverTree: "feedstockcore/internal/infra/blob",
			importers:  []string{"feedstockcore/internal/blob"},
		},
		{
			driverTree: "feedstockcore/internal/infra/persistence",
			importers:  []string{"feedstockcore/cmd/feedstockcore"},
		},
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "feedstockcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	inTree := func(path, tree string) bool {
		return path == tree || strings.HasPrefix(path, tree+"/")
	}

	var violations []string
	for _, pkg := range pkgs {
		path := pkg.PkgPath
		// Test variants load as "pkg [pkg.test]"; judge them by the real path.
		if i := strings.Index(path, " ["); i >= 0 {
			path = path[:i]
		}
		path = strings.TrimSuffix(path, ".test")
		for _, rule := range rules {
			if inTree(path, rule.driverTree) {
				continue
			}
			allowed := false
			for _, importer := range rule.importers {
				if inTree(path, importer) {
					allowed = true
					break
				}
			}
			if allowed {
				continue
			}
			for importPath := range pkg.Imports {
				if inTree(importPath, rule.driverTree) {
					violations = append(violations, path+" imports "+importPath)
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("driver package imported outside its factory: %s", v)
		}
		t.Fatalf("found %d layering violations", len(violations))
	}
}
