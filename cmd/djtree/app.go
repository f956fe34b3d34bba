package main

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/jwoglom/djtree/config"
	"github.com/jwoglom/djtree/pkg/events"
	"github.com/jwoglom/djtree/pkg/graph"
	"github.com/jwoglom/djtree/pkg/logging"
	"github.com/jwoglom/djtree/pkg/startup"
	"github.com/jwoglom/djtree/pkg/store"
	"github.com/jwoglom/djtree/pkg/store/memory"
	"github.com/jwoglom/djtree/pkg/store/postgres"
	"github.com/jwoglom/djtree/pkg/tracing"
	"github.com/jwoglom/djtree/pkg/tracing/exporters"
)

// app bundles the wired process dependencies for a single command run.
type app struct {
	cfg    *config.Config
	logger ectologger.Logger

	startup  *startup.Startup
	shutdown []func(context.Context) error

	store       store.Store
	attachments store.AttachmentStore
	emitter     events.Emitter
	family      *graph.FamilyService
}

// appOptions selects which dependencies a command needs. Kafka and graph
// are only honored when the matching config toggle is also enabled.
type appOptions struct {
	storeKind string
	withKafka bool
	withGraph bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs})
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
	}

	if cfg.TracingEnabled {
		stop, err := tracing.Setup(ctx, cfg.AppName, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
			Timeout:  time.Duration(cfg.OTLPTimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		a.shutdown = append(a.shutdown, stop)
	}

	var pg *postgresDependency
	switch opts.storeKind {
	case "memory":
		mem := memory.New()
		a.store = mem
		a.attachments = mem
	default:
		pg = &postgresDependency{cfg: cfg, logger: logger}
		a.startup.AddDependency(pg)
	}

	var kf *kafkaDependency
	if opts.withKafka && cfg.KafkaEnabled {
		kf = &kafkaDependency{cfg: cfg, logger: logger}
		a.startup.AddDependency(kf)
	}

	var gr *graphDependency
	if opts.withGraph && cfg.GraphEnabled {
		gr = &graphDependency{cfg: cfg, logger: logger}
		a.startup.AddDependency(gr)
	}

	if err := a.startup.Start(ctx); err != nil {
		return nil, err
	}

	if pg != nil {
		st := postgres.New(pg.db, logger)
		a.store = st
		a.attachments = st
	}
	if kf != nil {
		a.emitter = events.NewKafkaEmitter(kf.producer)
	}
	if gr != nil {
		a.family = graph.NewFamilyService(gr.client, logger)
	}

	return a, nil
}

// close stops startup dependencies and flushes tracing.
func (a *app) close(ctx context.Context) {
	if err := a.startup.Stop(ctx); err != nil {
		a.logger.WithContext(ctx).WithError(err).Warn("Error stopping dependencies")
	}
	for _, stop := range a.shutdown {
		if err := stop(ctx); err != nil {
			a.logger.WithContext(ctx).WithError(err).Warn("Error shutting down tracing")
		}
	}
}
