// CUE schema validation code
package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
)

// ValidateWithCue validates JSON config bytes against a CUE schema file.
func ValidateWithCue(configJSON []byte, cueFile string) error {
	ctx := cuecontext.New()

	configVal := ctx.CompileBytes(configJSON)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot compile config: %w", configVal.Err())
	}

	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("cannot read CUE schema: %w", err)
	}
	schemaVal := ctx.CompileBytes(schemaBytes)
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}

	// Merge values with schema
	final := configVal.Unify(schemaVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}

	// Validate final structure
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
