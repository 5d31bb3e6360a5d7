package app

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"cloudpick/internal/aggregate"
	"cloudpick/internal/domain"
	"cloudpick/internal/editor"
	"cloudpick/internal/objectstore"
	"cloudpick/internal/printers"
	"cloudpick/internal/prompt"
	"cloudpick/internal/registry"
	"cloudpick/internal/remote"
	"cloudpick/internal/selection"
	"cloudpick/internal/services/console"
	jobssvc "cloudpick/internal/services/jobs"
	logssvc "cloudpick/internal/services/logs"
	queuesvc "cloudpick/internal/services/queue"
	schedulesvc "cloudpick/internal/services/schedule"
	storagesvc "cloudpick/internal/services/storage"
	"cloudpick/internal/store"
	"cloudpick/internal/telemetry"
)

// Wire bundles the clients, interactive plumbing and registry for the CLI.
type Wire struct {
	Gateway  domain.Invoker
	Objects  domain.ObjectStore
	Files    domain.FileWriter
	Console  *console.Console
	Registry *registry.Registry
	Tracing  trace.TracerProvider

	shutdown     telemetry.ShutdownFunc
	shutdownOnce sync.Once
	shutdownErr  error
}

// NewWire constructs the dependency graph from cfg. Callers must Shutdown
// the returned Wire to flush spans.
func NewWire(ctx context.Context, cfg Config) (*Wire, error) {
	s := cfg.Settings

	tp, shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "cloudpick",
		Exporter:    s.Trace.Exporter,
		Endpoint:    s.Trace.Endpoint,
		Insecure:    s.Trace.Insecure,
	})
	if err != nil {
		return nil, err
	}

	// Platform CLI gateway, rate limited and traced per invocation
	gw := remote.NewCLIGateway(s.Remote.CLI,
		remote.WithProfile(s.Profile),
		remote.WithRegion(s.Region),
		remote.WithRateLimit(s.Remote.Rate, s.Remote.Burst),
		remote.WithTracer(tp.Tracer("cloudpick/remote")),
	)

	objects, err := objectstore.New(objectstore.Config{
		Endpoint: s.Storage.Endpoint,
		Secure:   s.Storage.Secure,
		Region:   s.Region,
		Profile:  s.Profile,
		PageSize: s.Storage.PageSize,
	})
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}
	files := store.NewAtomicWriter(s.Download.Dir)

	printer, err := printers.NewPrinter(s.Output)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	// Prompts go to the error stream so results stay pipeable
	con := &console.Console{
		Selector:         selection.NewFZF(s.Selector.Command, s.Selector.Height),
		Prompter:         prompt.NewTerminal(cfg.In, cfg.Err),
		Editor:           editor.New(s.Editor),
		Printer:          printer,
		Out:              cfg.Out,
		Err:              cfg.Err,
		BatchConcurrency: s.Batch.Concurrency,
	}

	reg, err := Register(
		storagesvc.New(objects, files, con).Descriptor(),
		queuesvc.New(gw, con).Descriptor(),
		logssvc.New(gw, con, logssvc.Config{
			PollInterval: s.Logs.PollInterval,
			Lookback:     s.Logs.Lookback,
		}).Descriptor(),
		jobssvc.New(gw, con, s.Aggregate.Concurrency,
			aggregate.WithTracer(tp.Tracer("cloudpick/aggregate")),
		).Descriptor(),
		schedulesvc.New(gw, con).Descriptor(),
	)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return &Wire{
		Gateway:  gw,
		Objects:  objects,
		Files:    files,
		Console:  con,
		Registry: reg,
		Tracing:  tp,
		shutdown: shutdown,
	}, nil
}

// Shutdown flushes buffered spans. Later calls return the first result.
func (w *Wire) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { w.shutdownErr = w.shutdown(ctx) })
	return w.shutdownErr
}

// Register builds a registry holding descriptors in the given order.
func Register(descriptors ...domain.DomainDescriptor) (*registry.Registry, error) {
	b := registry.NewBuilder()
	for _, d := range descriptors {
		if err := b.Register(d); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
