// Rover config loader with CUE validation integration
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// RoverConfig is the on-disk rover configuration. The provisioner writes
// it and the control loop reads it; missing fields fall back to the
// defaults the rover has always shipped with.
type RoverConfig struct {
	AutoStudyEnabled bool   `json:"auto_study_enabled" yaml:"auto_study_enabled"`
	StudyInterval    int    `json:"study_interval" yaml:"study_interval"` // seconds
	DefaultSpeed     int    `json:"default_speed" yaml:"default_speed"`   // PWM duty, 0-100
	IRPriority       bool   `json:"ir_priority" yaml:"ir_priority"`
	LogToFile        bool   `json:"log_to_file" yaml:"log_to_file"`
	CameraResolution [2]int `json:"camera_resolution" yaml:"camera_resolution"` // width, height
	MinObstacleArea  int    `json:"min_obstacle_area" yaml:"min_obstacle_area"` // px^2
}

// Default returns the stock configuration written at provision time.
func Default() RoverConfig {
	return RoverConfig{
		AutoStudyEnabled: true,
		StudyInterval:    30,
		DefaultSpeed:     50,
		IRPriority:       true,
		LogToFile:        true,
		CameraResolution: [2]int{320, 240},
		MinObstacleArea:  1500,
	}
}

// Load reads the rover config, validates it against the CUE schema, and
// merges it over the defaults. A missing config file is not an error:
// the rover runs on pure defaults then.
func Load(configPath, cueSchemaPath string) (RoverConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read rover config: %w", err)
	}

	if err := ValidateWithCue(data, cueSchemaPath); err != nil {
		return cfg, err
	}

	// Unmarshal over the defaults so absent keys keep their default value.
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal rover config: %w", err)
	}
	return cfg, nil
}

// Render marshals cfg the way the provisioner writes it to disk.
func Render(cfg RoverConfig) ([]byte, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
