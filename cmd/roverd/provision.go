package main

import (
	"os"

	"github.com/spf13/cobra"

	"roverd/internal/logging"
	"roverd/internal/provision"
)

var (
	provisionManifestPath string
	provisionSchemaPath   string
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Converge the rover host to the provisioning manifest",
	Long:  "provision installs packages, enables the I2C bus, grants device groups, creates data directories, and writes the rover configuration. Re-running only applies what diverged.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		log := logging.FromContext(ctx)

		var manifest provision.Manifest
		if provisionManifestPath != "" {
			m, err := provision.LoadManifest(provisionManifestPath, provisionSchemaPath)
			if err != nil {
				return err
			}
			manifest = m
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			manifest = provision.DefaultManifest(home)
		}

		engine := provision.NewEngine(provision.ExecRunner{})
		report, err := engine.Converge(ctx, manifest)
		for _, res := range report.Results {
			log.Info("step result", "step", res.Name, "changed", res.Changed, "err", res.Err)
		}
		if err != nil {
			return err
		}
		log.Info("host converged", "steps", len(report.Results), "changed", report.Changed())
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionManifestPath, "manifest", "", "Path to provisioning manifest YAML (default: built-in manifest)")
	provisionCmd.Flags().StringVar(&provisionSchemaPath, "schema", "schemas/provision.cue", "Path to CUE schema file")
}
