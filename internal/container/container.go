package container

import (
	"context"
	"fmt"

	"housecast/adapters/datareadiness/coercer"
	"housecast/adapters/expectation"
	"housecast/adapters/ledger"
	"housecast/adapters/predictor/baseline"
	"housecast/adapters/predictor/remote"
	"housecast/adapters/tabular"
	"housecast/app"
	"housecast/internal"
	"housecast/internal/config"
	"housecast/ports"
)

// Container holds the application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Reader *tabular.DataReader
	Writer *tabular.CSVWriter
	Ledger ports.RunLedger

	// Collaborators
	Predictor ports.Predictor
	Engine    ports.ExpectationEngine
}

// New creates a container with the file adapters and the expectation engine.
// The ledger starts as a no-op until InitLedger is called.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	internal.DefaultLogger = logger

	return &Container{
		Config: cfg,
		Logger: logger,
		Reader: tabular.NewDataReader(logger),
		Writer: tabular.NewCSVWriter(),
		Ledger: ledger.NopLedger{},
		Engine: expectation.NewEngine(coercer.Default),
	}, nil
}

// InitLedger opens the run ledger when LEDGER_DSN is set
func (c *Container) InitLedger(ctx context.Context) error {
	if !c.Config.Ledger.Enabled() {
		c.Logger.Debug("no ledger DSN configured, runs will not be recorded")
		return nil
	}

	l, err := ledger.Open(ctx, c.Config.Ledger.Driver, c.Config.Ledger.DSN)
	if err != nil {
		return err
	}
	c.Ledger = l
	c.Logger.Info("recording runs to %s ledger", c.Config.Ledger.Driver)
	return nil
}

// InitPredictor builds the predictor selected by PREDICTOR_MODE
func (c *Container) InitPredictor(ctx context.Context) error {
	switch c.Config.Predictor.Mode {
	case config.PredictorModeRemote:
		client, err := remote.NewClient(remote.Config{
			URL:     c.Config.Predictor.URL,
			Timeout: c.Config.Predictor.Timeout,
		})
		if err != nil {
			return err
		}
		c.Predictor = client
		c.Logger.Info("using remote predictor at %s", c.Config.Predictor.URL)
	default:
		p, err := baseline.Load(ctx, c.Reader, c.Config.Predictor.ReferencePath)
		if err != nil {
			return err
		}
		c.Predictor = p
		c.Logger.Info("fitted baseline predictor on %s (global median %.2f)", c.Config.Predictor.ReferencePath, p.GlobalMedian())
	}
	return nil
}

// BatchService wires the monthly batch runner. InitPredictor must have run.
func (c *Container) BatchService() *app.MonthlyBatchService {
	return app.NewMonthlyBatchService(
		app.BatchConfig{
			HoldoutPath: c.Config.Batch.HoldoutPath,
			OutputDir:   c.Config.Batch.OutputDir,
		},
		c.Reader, c.Writer, c.Predictor, c.Ledger, nil, c.Logger,
	)
}

// DataQualityService wires the split validator
func (c *Container) DataQualityService() *app.DataQualityService {
	return app.NewDataQualityService(c.Reader, c.Engine, c.Ledger, nil, c.Logger)
}

// Close releases the ledger and flushes the logger
func (c *Container) Close() error {
	err := c.Ledger.Close()
	_ = c.Logger.Sync()
	return err
}
