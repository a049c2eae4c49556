package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Substeps != 15 {
		t.Errorf("Substeps = %d, want 15", cfg.Simulation.Substeps)
	}
	if cfg.Derived.Gravity32 != [3]float32{0, -9.8, 0} {
		t.Errorf("Gravity32 = %v", cfg.Derived.Gravity32)
	}
	if len(cfg.Cloths) == 0 {
		t.Fatal("no default cloths")
	}
	if idx, ok := cfg.Derived.ClothIndex[cfg.Cloths[0].Name]; !ok || idx != 0 {
		t.Errorf("ClothIndex[%q] = %d, %v", cfg.Cloths[0].Name, idx, ok)
	}
	want := cfg.Derived.DT32 / 15
	if d := cfg.Derived.SubDT32 - want; d > 1e-9 || d < -1e-9 {
		t.Errorf("SubDT32 = %v, want %v", cfg.Derived.SubDT32, want)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := `
simulation:
  substeps: 5
cloths:
  - name: flag
    cols: 8
    rows: 4
    pin: corners
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Substeps != 5 {
		t.Errorf("Substeps = %d, want 5", cfg.Simulation.Substeps)
	}
	if cfg.Simulation.DT == 0 {
		t.Error("DT default lost on partial override")
	}
	if len(cfg.Cloths) != 1 || cfg.Cloths[0].Name != "flag" {
		t.Fatalf("Cloths = %+v, want single flag", cfg.Cloths)
	}
	flag := cfg.Cloths[0]
	if flag.Bending != BendingPerformant || flag.Thickness != 0.01 || flag.Width != 1 {
		t.Errorf("cloth defaults not filled: %+v", flag)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"zero substeps", "simulation:\n  substeps: 0\n", "substeps"},
		{"bad pin", "cloths:\n  - {name: a, cols: 3, rows: 3, pin: sideways}\n", "pin mode"},
		{"bad bending", "cloths:\n  - {name: a, cols: 3, rows: 3, bending: wobbly}\n", "bending mode"},
		{"tiny grid", "cloths:\n  - {name: a, cols: 1, rows: 3}\n", "2x2"},
		{"duplicate", "cloths:\n  - {name: a, cols: 3, rows: 3}\n  - {name: a, cols: 3, rows: 3}\n", "duplicate"},
		{"format", "snapshot:\n  format: bmp\n", "snapshot.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Cloths[0].BendCompliance = 0.123

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Cloths[0].BendCompliance != 0.123 {
		t.Errorf("BendCompliance = %v, want 0.123", back.Cloths[0].BendCompliance)
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg did not panic")
		}
	}()
	Cfg()
}
