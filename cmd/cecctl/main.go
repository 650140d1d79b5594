// cecctl - HDMI-CEC control plane
//
// This is the main entry point for cecctl. It drives a CEC adapter through
// libcec's cec-client and exposes button presses, standby, active-source
// switching and command sequences over HTTP and MQTT.
//
// Configuration is read from the file named by CECCTL_CONFIG (default
// configs/config.yaml); see internal/infrastructure/config for the keys.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-cec/internal/api"
	"github.com/nerrad567/gray-logic-cec/internal/audit"
	"github.com/nerrad567/gray-logic-cec/internal/bridge"
	"github.com/nerrad567/gray-logic-cec/internal/cec"
	"github.com/nerrad567/gray-logic-cec/internal/cecclient"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/discovery"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-cec/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-cec/internal/sequence"
	"github.com/nerrad567/gray-logic-cec/migrations"
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

// peerBrowseTimeout bounds one GET /peers mDNS query.
const peerBrowseTimeout = 2 * time.Second

func main() {
	// Cancel on Ctrl+C and SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting cecctl",
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

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Bus controller
	transport := cecclient.NewExec(cfg)
	transport.SetLogger(log)
	ctrl := cec.NewController(transport)
	ctrl.SetLogger(log)
	guard := cec.NewGuard(ctrl)

	// Recorders are collected before the interpreter is built
	interpOpts := []sequence.Option{sequence.WithLogger(log)}

	// Components reported on /health
	components := make(map[string]api.HealthChecker)

	// Audit log (optional)
	var auditRepo audit.Repository
	var sightings *audit.SightingStore
	if cfg.Database.Enabled {
		db, dbErr := openDatabase(ctx, cfg)
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("database ready", "path", cfg.Database.Path)
		components["database"] = db

		repo := audit.NewSQLiteRepository(db.DB)
		recorder := audit.NewRecorder(repo)
		recorder.SetLogger(log)
		ctrl.AddCommandRecorder(recorder)
		interpOpts = append(interpOpts, sequence.WithRecorder(recorder))

		sightings = audit.NewSightingStore(db.DB)
		sightings.SetLogger(log)
		ctrl.AddScanObserver(sightings)
		auditRepo = repo
	} else {
		log.Info("audit log disabled")
	}

	// Telemetry (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		ctrl.AddCommandRecorder(influxClient)
		ctrl.AddScanObserver(influxClient)
		interpOpts = append(interpOpts, sequence.WithRecorder(influxClient))
		components["influxdb"] = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	surface := sequence.NewControllerSurface(ctrl, sequence.SurfaceOptions{BatchDelay: cfg.GetBatchDelay()})
	interp := sequence.New(surface, interpOpts...)

	// Open the adapter
	if err := ctrl.Init(ctx); err != nil {
		return fmt.Errorf("initialising CEC controller: %w", err)
	}
	if !ctrl.Connected() {
		log.Warn("CEC adapter did not open; commands will fail until restart", "port", ctrl.Port())
	}

	// MQTT bridge (optional)
	if cfg.MQTT.Enabled {
		stop, mqttClient, bridgeErr := startBridge(ctx, cfg, guard, interp, log)
		if bridgeErr != nil {
			return bridgeErr
		}
		defer stop()
		components["mqtt"] = mqttClient
	} else {
		log.Info("MQTT bridge disabled")
	}

	var peers api.PeerBrowser
	if cfg.Discovery.Enabled {
		peers = discovery.NewBrowser(cfg.Discovery, peerBrowseTimeout)
	}

	// HTTP API
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Logger:      log,
		Guard:       guard,
		Interpreter: interp,
		Audit:       auditRepo,
		Sightings:   sightingLister(sightings),
		Peers:       peers,
		Components:  components,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// mDNS advertisement (optional)
	advertiser, err := discovery.Advertise(cfg.Discovery, discovery.Info{
		Port:    cfg.API.Port,
		Version: version,
		SiteID:  cfg.Site.ID,
	})
	switch {
	case errors.Is(err, discovery.ErrDisabled):
		log.Info("mDNS discovery disabled")
	case err != nil:
		log.Warn("mDNS advertisement failed", "error", err)
	default:
		defer func() {
			if closeErr := advertiser.Close(); closeErr != nil {
				log.Error("error stopping mDNS advertisement", "error", closeErr)
			}
		}()
		log.Info("advertising API over mDNS", "service", cfg.Discovery.Service)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse order:
	// mDNS, API, MQTT bridge, InfluxDB, database.

	log.Info("cecctl stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CECCTL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CECCTL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openDatabase opens SQLite and applies pending migrations.
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// startBridge connects to the broker and starts the MQTT bridge.
//
// Parameters:
//   - ctx: Context for startup/cancellation
//   - cfg: Application configuration
//   - guard: Shared controller guard
//   - interp: Sequence interpreter
//   - log: Logger instance
//
// Returns:
//   - func(): stops the bridge and disconnects
//   - *mqtt.Client: the connected client, for health checks
//   - error: If the broker is unreachable or subscription fails
func startBridge(ctx context.Context, cfg *config.Config, guard *cec.Guard, interp *sequence.Interpreter, log *logging.Logger) (func(), *mqtt.Client, error) {
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	b, err := bridge.New(bridge.Options{
		MQTT:        mqttClient,
		Topics:      mqttClient.Topics(),
		Guard:       guard,
		Interpreter: interp,
		Version:     version,
		Logger:      log,
	})
	if err != nil {
		mqttClient.Close() //nolint:errcheck // Already failing
		return nil, nil, fmt.Errorf("creating MQTT bridge: %w", err)
	}
	guard.Controller().AddScanObserver(b)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		b.Reconnected()
	})

	if err := b.Start(ctx); err != nil {
		mqttClient.Close() //nolint:errcheck // Already failing
		return nil, nil, fmt.Errorf("starting MQTT bridge: %w", err)
	}
	log.Info("MQTT bridge started", "topic", mqttClient.Topics().AllCommands())

	stop := func() {
		log.Info("stopping MQTT bridge")
		b.Stop()
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}
	return stop, mqttClient, nil
}

// sightingLister avoids handing the API a typed nil when the audit log is off.
func sightingLister(s *audit.SightingStore) api.SightingLister {
	if s == nil {
		return nil
	}
	return s
}
