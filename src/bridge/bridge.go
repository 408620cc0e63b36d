package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/destel/rill"
	"github.com/google/uuid"
	"github.com/sandrolain/table-bridge/src/config"
	"github.com/sandrolain/table-bridge/src/connectors"
	"github.com/sandrolain/table-bridge/src/connectors/pgsql"
	"github.com/sandrolain/table-bridge/src/connectors/sqldb"
	"github.com/sandrolain/table-bridge/src/record"
)

// ErrSetup is returned when the destination cannot be prepared. No record is
// read in that case.
var ErrSetup = errors.New("destination setup failed")

// Summary describes a completed run.
type Summary struct {
	RunID     string
	Read      int
	Written   int
	Failed    int
	SourceErr error
	Duration  time.Duration
}

func (s Summary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run", s.RunID),
		slog.Int("read", s.Read),
		slog.Int("written", s.Written),
		slog.Int("failed", s.Failed),
		slog.Duration("duration", s.Duration),
	}
	if s.SourceErr != nil {
		attrs = append(attrs, slog.String("sourceError", s.SourceErr.Error()))
	}
	return slog.GroupValue(attrs...)
}

// StatusHandler logs write outcomes consistently and forwards them to an
// optional callback.
type StatusHandler struct {
	logger   *slog.Logger
	onStatus func(record.Status)
}

// NewStatusHandler creates a new StatusHandler instance
func NewStatusHandler(logger *slog.Logger, onStatus func(record.Status)) *StatusHandler {
	return &StatusHandler{logger: logger, onStatus: onStatus}
}

// Handle logs the status at info or error level.
func (h *StatusHandler) Handle(status record.Status) {
	if status.OK() {
		h.logger.Info("write status", "id", status.ID, "outcome", status.Outcome())
	} else {
		h.logger.Error("write status", "id", status.ID, "outcome", status.Outcome())
	}
	if h.onStatus != nil {
		h.onStatus(status)
	}
}

// TableBridge wires one source to one destination for a single run.
type TableBridge struct {
	cfg     *config.Config
	logger  *slog.Logger
	runID   string
	source  connectors.Source
	target  connectors.Target
	handler *StatusHandler
}

// Option customises a TableBridge.
type Option func(*TableBridge)

// WithStatusCallback registers fn to receive every status in input order.
func WithStatusCallback(fn func(record.Status)) Option {
	return func(b *TableBridge) {
		b.handler.onStatus = fn
	}
}

// NewTableBridge creates the source and destination connectors described by cfg.
// No connection is opened until Run.
func NewTableBridge(cfg *config.Config, logger *slog.Logger, opts ...Option) (*TableBridge, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	source, err := newSource(&cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source init: %w", err)
	}

	target, err := pgsql.NewTarget(&cfg.Destination)
	if err != nil {
		return nil, fmt.Errorf("target init: %w", err)
	}

	return newTableBridge(cfg, logger, source, target, opts...)
}

func newTableBridge(cfg *config.Config, logger *slog.Logger, source connectors.Source, target connectors.Target, opts ...Option) (*TableBridge, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	runID := uuid.NewString()
	logger = logger.With("context", "Pipeline", "run", runID)

	b := &TableBridge{
		cfg:     cfg,
		logger:  logger,
		runID:   runID,
		source:  source,
		target:  target,
		handler: NewStatusHandler(logger, nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// newSource picks the reader implementation for the configured driver.
func newSource(cfg *connectors.SourceConfig) (connectors.Source, error) {
	switch cfg.Driver {
	case connectors.SourceDriverPGX, "":
		return pgsql.NewSource(cfg)
	case connectors.SourceDriverPostgres, connectors.SourceDriverMySQL, connectors.SourceDriverSQLite:
		return sqldb.NewSource(cfg)
	}
	return nil, fmt.Errorf("unsupported source driver: %s", cfg.Driver)
}

// RunID identifies the run in every log line.
func (b *TableBridge) RunID() string {
	return b.runID
}

// Run prepares the destination, then reads every source record and writes it,
// one at a time in source order. Per-record failures are reported through
// statuses and never stop the run. The destination connection is always
// released before Run returns.
func (b *TableBridge) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: b.runID}

	b.logger.Info("starting table bridge",
		"sourceDriver", b.cfg.Source.Driver,
		"sourceTable", b.cfg.Source.Table,
		"destinationTable", b.cfg.Destination.Table,
	)

	// teardown also runs after a failed setup and when ctx was cancelled
	defer func() {
		if err := b.target.Teardown(context.WithoutCancel(ctx)); err != nil {
			b.logger.Error("failed to tear down destination", "error", err)
		}
	}()

	if err := b.target.Setup(ctx); err != nil {
		b.logger.Error("failed to set up destination", "error", err)
		return summary, fmt.Errorf("%w: %w", ErrSetup, err)
	}

	readErr := rill.ForEach(b.source.Read(ctx), 1, func(rec record.Record) error {
		summary.Read++
		b.logger.Info("record read from source", "record", rec.String())

		status := b.target.Process(ctx, rec)
		if status.OK() {
			summary.Written++
		} else {
			summary.Failed++
		}
		b.handler.Handle(status)
		return nil
	})

	summary.Duration = time.Since(start)

	if readErr != nil {
		summary.SourceErr = readErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		b.logger.Warn("run interrupted", "summary", summary)
		return summary, ctxErr
	}

	if summary.SourceErr != nil {
		b.logger.Error("run completed with source error", "summary", summary)
		if b.cfg.Pipeline.FailOnSourceError {
			return summary, summary.SourceErr
		}
		return summary, nil
	}

	b.logger.Info("run completed", "summary", summary)
	return summary, nil
}
