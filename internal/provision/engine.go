// Convergence engine applying a manifest to the host
package provision

import (
	"context"
	"fmt"

	"roverd/internal/config"
	"roverd/internal/logging"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Name    string
	Changed bool
	Err     error
}

// Report aggregates step outcomes for one converge run.
type Report struct {
	Results []StepResult
}

// Failed returns the steps that errored.
func (r Report) Failed() []StepResult {
	var failed []StepResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Changed returns how many steps applied a change.
func (r Report) Changed() int {
	n := 0
	for _, res := range r.Results {
		if res.Changed && res.Err == nil {
			n++
		}
	}
	return n
}

// Engine converges a host to a manifest.
type Engine struct {
	runner Runner
}

// NewEngine creates an Engine using the given command runner.
func NewEngine(r Runner) *Engine {
	return &Engine{runner: r}
}

// steps builds the ordered step list for a manifest. Order matters:
// packages install the tools (raspi-config, i2cdetect) later steps call.
func (e *Engine) steps(m Manifest) []Step {
	cfg := config.Default()
	if m.Config != nil {
		cfg = *m.Config
	}

	var steps []Step
	if len(m.Packages.Install) > 0 || m.Packages.Upgrade {
		steps = append(steps, &packagesStep{runner: e.runner, spec: m.Packages})
	}
	if m.PipRequirements != "" {
		steps = append(steps, &pipStep{runner: e.runner, requirements: m.PipRequirements})
	}
	if m.I2CEnabled {
		steps = append(steps, &i2cStep{runner: e.runner})
	}
	if len(m.Groups) > 0 {
		steps = append(steps, &groupsStep{runner: e.runner, user: m.User, groups: m.Groups})
	}
	if len(m.Directories) > 0 {
		steps = append(steps, &dirsStep{dirs: m.Directories})
	}
	if m.ConfigFile.Path != "" {
		steps = append(steps, &configFileStep{spec: m.ConfigFile, cfg: cfg})
	}
	if m.BusScan {
		steps = append(steps, &busScanStep{runner: e.runner})
	}
	return steps
}

// Converge walks every step, applying only where the host diverges.
// Step failures are collected, not fatal: remaining steps still run and
// the run as a whole reports an error if anything failed.
func (e *Engine) Converge(ctx context.Context, m Manifest) (Report, error) {
	log := logging.FromContext(ctx)
	var report Report

	for _, step := range e.steps(m) {
		res := StepResult{Name: step.Name()}

		converged, err := step.Check(ctx)
		switch {
		case err != nil:
			res.Err = fmt.Errorf("check %s: %w", step.Name(), err)
		case converged:
			log.Info("step converged", "step", step.Name())
		default:
			log.Info("applying step", "step", step.Name())
			if err := step.Apply(ctx); err != nil {
				res.Err = fmt.Errorf("apply %s: %w", step.Name(), err)
			} else {
				res.Changed = true
			}
		}
		if res.Err != nil {
			log.Error("step failed", "step", step.Name(), "err", res.Err)
		}
		report.Results = append(report.Results, res)
	}

	if failed := report.Failed(); len(failed) > 0 {
		return report, fmt.Errorf("%d of %d steps failed", len(failed), len(report.Results))
	}
	return report, nil
}
