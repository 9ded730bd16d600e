package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const schemaPath = "../../schemas/rover_config.cue"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rover_config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"), schemaPath)
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `{"default_speed": 80, "ir_priority": false}`)

	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultSpeed != 80 {
		t.Errorf("default_speed = %d, want 80", cfg.DefaultSpeed)
	}
	if cfg.IRPriority {
		t.Error("ir_priority should be overridden to false")
	}
	// Absent keys keep their stock values.
	if cfg.StudyInterval != 30 || cfg.MinObstacleArea != 1500 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.CameraResolution != [2]int{320, 240} {
		t.Errorf("camera_resolution = %v", cfg.CameraResolution)
	}
}

func TestLoad_SchemaRejectsOutOfRangeSpeed(t *testing.T) {
	path := writeConfig(t, `{"default_speed": 250}`)

	if _, err := Load(path, schemaPath); err == nil {
		t.Fatal("expected validation error for duty cycle above 100")
	}
}

func TestLoad_SchemaRejectsBadTypes(t *testing.T) {
	path := writeConfig(t, `{"study_interval": "often"}`)

	if _, err := Load(path, schemaPath); err == nil {
		t.Fatal("expected validation error for non-int study_interval")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.AutoStudyEnabled || !cfg.IRPriority || !cfg.LogToFile {
		t.Errorf("stock flags wrong: %+v", cfg)
	}
	if cfg.StudyInterval != 30 || cfg.DefaultSpeed != 50 || cfg.MinObstacleArea != 1500 {
		t.Errorf("stock values wrong: %+v", cfg)
	}
}

func TestRender_RoundTrips(t *testing.T) {
	data, err := Render(Default())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("rendered config should end with a newline")
	}

	path := writeConfig(t, string(data))
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load rendered config: %v", err)
	}
	if cfg != Default() {
		t.Errorf("round trip changed config: %+v", cfg)
	}
}
