// Coop Core - solar-scheduled coop door controller.
//
// coopctl keeps a chicken coop door in step with the sun: it opens the
// door after sunrise, closes it after sunset plus a configurable buffer,
// and accepts manual overrides through persisted records, one-shot
// commands and MQTT.
//
// Usage:
//
//	coopctl                 run the control loop
//	coopctl standby         run the control loop (alias for no command)
//	coopctl open            open the door and switch to manual mode
//	coopctl close           close the door and switch to manual mode
//	coopctl auto            return the door to the solar schedule
//	coopctl manual          switch to manual mode without moving the door
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nerrad567/coop-core/internal/door"
	"github.com/nerrad567/coop-core/internal/infrastructure/config"
	"github.com/nerrad567/coop-core/internal/infrastructure/database"
	"github.com/nerrad567/coop-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/coop-core/internal/infrastructure/logging"
	"github.com/nerrad567/coop-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/coop-core/internal/solar"
	"github.com/nerrad567/coop-core/internal/statestore"
	"github.com/nerrad567/coop-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

var (
	configFlag   = flag.String("c", "", "path to config file (overrides COOPCTL_CONFIG)")
	simulateFlag = flag.Bool("simulate", false, "use a simulated actuator instead of GPIO hardware")
)

func main() {
	flag.Parse()

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// With no arguments (or the standby command) it starts the control loop;
// any other command argument performs the one-shot command against the
// persisted records and exits.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Remaining command line arguments after flags
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string) error {
	// Use the default logger until config is loaded.
	log := logging.Default()
	log.Info("starting coopctl",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings.
	log = logging.New(cfg.Logging, version)

	stateSlot := statestore.NewSlot(cfg.Door.StateFile, string(door.StateOpen), string(door.StateClosed))
	modeSlot := statestore.NewSlot(cfg.Door.ModeFile, string(door.ModeAuto), string(door.ModeManual))

	if len(args) > 0 && !strings.EqualFold(strings.TrimSpace(args[0]), "standby") {
		return runCommand(args[0], stateSlot, modeSlot, log)
	}

	return standby(ctx, cfg, stateSlot, modeSlot, log)
}

// runCommand performs a one-shot command against the persisted records.
//
// The records are the manual-override channel: a running control loop
// picks the change up on its next iteration, and a loop started later
// honours it on its first. Commands never touch the actuator directly.
func runCommand(command string, stateSlot, modeSlot *statestore.Slot, log *logging.Logger) error {
	handler := door.NewCommandHandler(stateSlot, modeSlot, log)
	if err := handler("cli", []byte(command)); err != nil {
		return err
	}
	log.Info("command applied", "command", command)
	return nil
}

// standby runs the control loop until the context is cancelled.
//
// Entering standby always resumes the solar schedule: the mode record is
// set to auto before the loop starts, so a manual pin from a previous run
// does not carry across a restart.
func standby(ctx context.Context, cfg *config.Config, stateSlot, modeSlot *statestore.Slot, log *logging.Logger) error {
	if err := modeSlot.Write(string(door.ModeAuto)); err != nil {
		return fmt.Errorf("setting auto mode: %w", err)
	}
	log.Info("door mode set", "mode", string(door.ModeAuto))

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.Files()); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	events := door.NewSQLiteEventRepository(db.DB)

	// Surface where a previous run left the door.
	if recent, histErr := events.GetRecent(ctx, 1); histErr != nil {
		log.Warn("reading door history", "error", histErr)
	} else if len(recent) > 0 {
		log.Info("last door movement",
			"action", string(recent[0].Action),
			"source", recent[0].Source,
			"at", recent[0].CreatedAt,
		)
	}

	// Actuator
	actuator, release, err := buildActuator(cfg, log)
	if err != nil {
		return fmt.Errorf("setting up actuator: %w", err)
	}
	if release != nil {
		defer func() {
			log.Info("releasing actuator")
			if releaseErr := release(); releaseErr != nil {
				log.Error("error releasing actuator", "error", releaseErr)
			}
		}()
	}

	// Solar calculator
	calc := solar.NewCalculator(
		cfg.Site.Location.Latitude,
		cfg.Site.Location.Longitude,
		cfg.GetBufferAfterSunset(),
		cfg.Door.EarliestOpen,
		cfg.Location(),
	)

	options := door.ControllerOptions{
		StateSlot:    stateSlot,
		ModeSlot:     modeSlot,
		Actuator:     actuator,
		Calculator:   calc,
		PollInterval: cfg.GetPollInterval(),
		Events:       events,
		Logger:       log,
	}

	// Connect to MQTT broker (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		// Remote commands land in the same records the CLI writes.
		commandHandler := door.NewCommandHandler(stateSlot, modeSlot, log)
		topic := mqtt.Topics{}.DoorCommand()
		if err := mqttClient.Subscribe(topic, byte(cfg.MQTT.QoS), commandHandler); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		log.Info("command topic subscribed", "topic", topic)

		options.Status = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)

		options.Telemetry = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	controller, err := door.NewController(options)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	log.Info("entering standby",
		"poll_interval", cfg.GetPollInterval().String(),
		"latitude", cfg.Site.Location.Latitude,
		"longitude", cfg.Site.Location.Longitude,
	)

	if err := controller.Run(ctx); err != nil {
		return fmt.Errorf("control loop: %w", err)
	}

	log.Info("coopctl stopped")
	return nil
}

// buildActuator constructs the door actuator from config.
//
// Returns the actuator, an optional release function for hardware cleanup,
// and an error if hardware setup fails.
func buildActuator(cfg *config.Config, log *logging.Logger) (door.Actuator, func() error, error) {
	if *simulateFlag {
		log.Info("using simulated actuator", "duration", cfg.GetActuationDuration().String())
		return door.NewSimulated(cfg.GetActuationDuration(), log), nil, nil
	}

	motor := door.NewMotor(door.MotorConfig{
		Chip:     cfg.GPIO.Chip,
		In1:      cfg.GPIO.In1,
		In2:      cfg.GPIO.In2,
		Enable:   cfg.GPIO.Enable,
		Duration: cfg.GetActuationDuration(),
	}, log)

	if err := motor.Setup(); err != nil {
		return nil, nil, err
	}

	return motor, motor.Release, nil
}

// getConfigPath returns the configuration file path.
// Precedence: -c flag, COOPCTL_CONFIG environment variable, default.
func getConfigPath() string {
	if *configFlag != "" {
		return *configFlag
	}
	if path := os.Getenv("COOPCTL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
