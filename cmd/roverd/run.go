package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"roverd/internal/admin"
	"roverd/internal/config"
	"roverd/internal/logging"
	"roverd/internal/rover"
	"roverd/internal/telemetry"
)

var (
	runConfigPath   string
	runSchemaPath   string
	runTick         time.Duration
	runPrintOnly    bool
	runTUI          bool
	runLogFile      string
	runAdminAddr    string
	runSeed         int64
	runObstacleRate float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rover control loop",
	Long:  "run starts the rover: sensing, navigation, study mode, and data logging, with an embedded status server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()
		log := logging.FromContext(ctx)

		cfg, err := config.Load(runConfigPath, runSchemaPath)
		if err != nil {
			return err
		}

		logFile := ""
		if cfg.LogToFile {
			logFile = runLogFile
		}
		writer, cleanup, err := newWriters(runPrintOnly, runTUI, false, logFile)
		if err != nil {
			return err
		}
		defer cleanup()

		name := os.Getenv("ROVER_NAME")
		if name == "" {
			name = "rover-01"
		}

		tickInterval := runTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		sensors := rover.NewSensorManager(
			rover.NewSimEnvironment(runSeed),
			rover.NewSimSoilProbe(runSeed+1),
			rover.NewSimIRArray(runSeed+2, runObstacleRate),
		)
		cams := rover.NewSimCameraArray(runSeed+3,
			cfg.CameraResolution[0], cfg.CameraResolution[1], runObstacleRate,
			telemetry.DirFront, telemetry.DirBack, telemetry.DirLeft, telemetry.DirRight)

		rv := rover.NewRover(name, cfg, sensors, cams, rover.NoopDrive{}, writer, tickInterval)

		srv := admin.NewServer(rv)
		go func() {
			log.Info("status server listening", "addr", runAdminAddr)
			if err := srv.Start(ctx, runAdminAddr); err != nil && err != http.ErrServerClosed {
				log.Error("status server failed", "err", err)
			}
		}()

		rv.Run(ctx)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "rover_config.json", "Path to rover configuration JSON")
	runCmd.Flags().StringVar(&runSchemaPath, "schema", "schemas/rover_config.cue", "Path to CUE schema file")
	runCmd.Flags().DurationVar(&runTick, "tick", 500*time.Millisecond, "Control loop tick interval (e.g. 500ms, 2s)")
	runCmd.Flags().BoolVar(&runPrintOnly, "print-only", false, "Print log entries to STDOUT instead of writing to DB")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "Render a live terminal dashboard")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "rover_data_log.json", "Path to the data log (JSONL), honored when log_to_file is set")
	runCmd.Flags().StringVar(&runAdminAddr, "admin", ":8080", "Status server listen address")
	runCmd.Flags().Int64Var(&runSeed, "seed", time.Now().UnixNano(), "Seed for the simulated sensors")
	runCmd.Flags().Float64Var(&runObstacleRate, "obstacle-rate", 0.1, "Probability of a simulated obstacle per sensor read")
}
