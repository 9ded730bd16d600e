package provision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"roverd/internal/config"
	"roverd/internal/logging"
)

// Step is one unit of desired state. Check reports whether the host
// already matches; Apply converges it. Apply is only called after Check
// returned false.
type Step interface {
	Name() string
	Check(ctx context.Context) (bool, error)
	Apply(ctx context.Context) error
}

// packagesStep converges the apt package set.
type packagesStep struct {
	runner Runner
	spec   Packages
}

func (s *packagesStep) Name() string { return "packages" }

func (s *packagesStep) Check(ctx context.Context) (bool, error) {
	if s.spec.Upgrade {
		// A requested dist upgrade always diverges.
		return false, nil
	}
	for _, pkg := range s.spec.Install {
		if _, err := s.runner.Output(ctx, "dpkg", "-s", pkg); err != nil {
			return false, nil
		}
	}
	return true, nil
}

func (s *packagesStep) Apply(ctx context.Context) error {
	if s.spec.UpdateIndex {
		if err := s.runner.Run(ctx, "apt-get", "update"); err != nil {
			return err
		}
	}
	if s.spec.Upgrade {
		if err := s.runner.Run(ctx, "apt-get", "-y", "upgrade"); err != nil {
			return err
		}
	}
	if len(s.spec.Install) == 0 {
		return nil
	}
	args := append([]string{"-y", "install"}, s.spec.Install...)
	return s.runner.Run(ctx, "apt-get", args...)
}

// pipStep installs the Python dependencies of the rover programs.
type pipStep struct {
	runner       Runner
	requirements string
}

func (s *pipStep) Name() string { return "pip-requirements" }

func (s *pipStep) Check(ctx context.Context) (bool, error) {
	if _, err := os.Stat(s.requirements); err != nil {
		return false, fmt.Errorf("requirements manifest: %w", err)
	}
	// pip resolves already-satisfied requirements itself.
	return false, nil
}

func (s *pipStep) Apply(ctx context.Context) error {
	return s.runner.Run(ctx, "python3", "-m", "pip", "install", "-r", s.requirements)
}

// i2cStep enables the I2C bus through raspi-config.
type i2cStep struct {
	runner Runner
}

func (s *i2cStep) Name() string { return "i2c-bus" }

func (s *i2cStep) Check(ctx context.Context) (bool, error) {
	out, err := s.runner.Output(ctx, "raspi-config", "nonint", "get_i2c")
	if err != nil {
		return false, err
	}
	// raspi-config reports 0 when the bus is enabled.
	return strings.TrimSpace(out) == "0", nil
}

func (s *i2cStep) Apply(ctx context.Context) error {
	return s.runner.Run(ctx, "raspi-config", "nonint", "do_i2c", "0")
}

// groupsStep grants the rover user its device groups.
type groupsStep struct {
	runner Runner
	user   string
	groups []string
}

func (s *groupsStep) Name() string { return "groups" }

func (s *groupsStep) missing(ctx context.Context) ([]string, error) {
	out, err := s.runner.Output(ctx, "id", "-nG", s.user)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool)
	for _, g := range strings.Fields(out) {
		have[g] = true
	}
	var missing []string
	for _, g := range s.groups {
		if !have[g] {
			missing = append(missing, g)
		}
	}
	return missing, nil
}

func (s *groupsStep) Check(ctx context.Context) (bool, error) {
	missing, err := s.missing(ctx)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *groupsStep) Apply(ctx context.Context) error {
	missing, err := s.missing(ctx)
	if err != nil {
		return err
	}
	return s.runner.Run(ctx, "usermod", "-aG", strings.Join(missing, ","), s.user)
}

// dirsStep creates the rover data directories.
type dirsStep struct {
	dirs []string
}

func (s *dirsStep) Name() string { return "directories" }

func (s *dirsStep) Check(ctx context.Context) (bool, error) {
	for _, d := range s.dirs {
		info, err := os.Stat(d)
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", d)
		}
	}
	return true, nil
}

func (s *dirsStep) Apply(ctx context.Context) error {
	for _, d := range s.dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// configFileStep writes the rover configuration file.
type configFileStep struct {
	spec ConfigFile
	cfg  config.RoverConfig
}

func (s *configFileStep) Name() string { return "config-file" }

func (s *configFileStep) Check(ctx context.Context) (bool, error) {
	existing, err := os.ReadFile(s.spec.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if s.spec.KeepExisting {
		return true, nil
	}
	want, err := config.Render(s.cfg)
	if err != nil {
		return false, err
	}
	return bytes.Equal(existing, want), nil
}

func (s *configFileStep) Apply(ctx context.Context) error {
	data, err := config.Render(s.cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.spec.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.spec.Path, data, 0o644)
}

// busScanStep runs the diagnostic I2C address scan. It never converges;
// the scan output is the point.
type busScanStep struct {
	runner Runner
}

func (s *busScanStep) Name() string { return "bus-scan" }

func (s *busScanStep) Check(ctx context.Context) (bool, error) {
	return false, nil
}

func (s *busScanStep) Apply(ctx context.Context) error {
	out, err := s.runner.Output(ctx, "i2cdetect", "-y", "1")
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("i2c bus scan", "map", out)
	return nil
}
