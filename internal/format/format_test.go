package format

import (
	"errors"
	"testing"

	"siteforge/pkg/domain"
)

func TestParseTarget(t *testing.T) {
	for name, want := range map[string]Target{
		"site": TargetSite,
		"urdf": TargetRobot,
		"sdf":  TargetSimulation,
	} {
		got, err := ParseTarget(name)
		if err != nil || got != want {
			t.Fatalf("ParseTarget(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := ParseTarget("dxf"); err == nil {
		t.Fatal("unknown target must be rejected")
	}
}

func TestTargetForPath(t *testing.T) {
	for path, want := range map[string]Target{
		"depot.site.json": TargetSite,
		"depot.urdf":      TargetRobot,
		"out/depot.sdf":   TargetSimulation,
	} {
		got, err := TargetForPath(path)
		if err != nil || got != want {
			t.Fatalf("TargetForPath(%q) = %v, %v", path, got, err)
		}
	}
	if _, err := TargetForPath("depot.yaml"); err == nil {
		t.Fatal("unknown extension must be rejected")
	}
}

func TestExportDispatch(t *testing.T) {
	site := testSite()
	for _, target := range []Target{TargetSite, TargetRobot, TargetSimulation} {
		data, err := Export(site, target)
		if err != nil {
			t.Fatalf("export %s: %v", target, err)
		}
		if len(data) == 0 {
			t.Fatalf("export %s produced no output", target)
		}
	}
	_, err := Export(site, Target("dxf"))
	var exportErr domain.ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("unsupported target = %v, want ExportError", err)
	}
}

func TestImportDispatchRejectsUnknownSource(t *testing.T) {
	_, err := Import(nil, Source("dxf"))
	var importErr domain.ImportError
	if !errors.As(err, &importErr) {
		t.Fatalf("unsupported source = %v, want ImportError", err)
	}
}
