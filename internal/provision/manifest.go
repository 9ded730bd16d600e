// YAML manifest loader with CUE validation integration
package provision

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"roverd/internal/config"
)

// Packages declares the desired apt state.
type Packages struct {
	UpdateIndex bool     `yaml:"update_index"`
	Upgrade     bool     `yaml:"upgrade"`
	Install     []string `yaml:"install"`
}

// ConfigFile declares the rover config artifact. KeepExisting protects a
// file already customized on the host from being rewritten.
type ConfigFile struct {
	Path         string `yaml:"path"`
	KeepExisting bool   `yaml:"keep_existing"`
}

// Manifest is the desired host state the engine converges to.
type Manifest struct {
	User            string     `yaml:"user"`
	Packages        Packages   `yaml:"packages"`
	PipRequirements string     `yaml:"pip_requirements"`
	I2CEnabled      bool       `yaml:"i2c_enabled"`
	Groups          []string   `yaml:"groups"`
	Directories     []string   `yaml:"directories"`
	ConfigFile      ConfigFile `yaml:"config_file"`
	BusScan         bool       `yaml:"bus_scan"`

	// Config is the rover configuration rendered into ConfigFile.Path.
	// Nil means the stock defaults. Decoded separately so declared keys
	// merge over the defaults.
	Config *config.RoverConfig `yaml:"-"`
}

// DefaultManifest is the stock rover host: the package list, bus
// enable, device groups, data directories, and config file a fresh
// Raspberry Pi needs.
func DefaultManifest(home string) Manifest {
	return Manifest{
		User: "pi",
		Packages: Packages{
			UpdateIndex: true,
			Install: []string{
				"python3-pip",
				"python3-opencv",
				"i2c-tools",
				"libatlas-base-dev",
				"python3-picamera2",
			},
		},
		PipRequirements: home + "/rover/requirements.txt",
		I2CEnabled:      true,
		Groups:          []string{"i2c", "gpio", "video", "spi"},
		Directories: []string{
			home + "/rover",
			home + "/rover/logs",
			home + "/rover/captures",
		},
		ConfigFile: ConfigFile{Path: home + "/rover/rover_config.json"},
		BusScan:    true,
	}
}

// LoadManifest reads a YAML manifest and validates it against a CUE schema.
func LoadManifest(path, cueSchemaPath string) (Manifest, error) {
	var m Manifest

	data, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read manifest: %w", err)
	}

	if err := validateYAMLWithCue(path, data, cueSchemaPath); err != nil {
		return m, err
	}

	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("unmarshal manifest: %w", err)
	}

	// A config block overrides the stock rover configuration field by
	// field, the same merge the rover's own loader applies.
	var raw struct {
		// yaml.v3 leaves *yaml.Node fields as zero nodes; a value field
		// is required for the node to be captured.
		Config yaml.Node `yaml:"config"`
	}
	if err := yaml.Unmarshal(data, &raw); err == nil && !raw.Config.IsZero() {
		cfg := config.Default()
		if err := raw.Config.Decode(&cfg); err != nil {
			return m, fmt.Errorf("unmarshal manifest config: %w", err)
		}
		m.Config = &cfg
	}
	return m, nil
}

// validateYAMLWithCue validates YAML manifest bytes against a CUE schema file.
func validateYAMLWithCue(name string, yamlBytes []byte, cueFile string) error {
	ctx := cuecontext.New()

	manifestAST, err := cueyaml.Extract(name, yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse manifest: %w", err)
	}
	manifestVal := ctx.BuildFile(manifestAST)
	if manifestVal.Err() != nil {
		return fmt.Errorf("cannot compile manifest: %w", manifestVal.Err())
	}

	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("cannot read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes)
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}

	final := manifestVal.Unify(schemaVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
