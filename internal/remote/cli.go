package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/time/rate"

	"cloudpick/internal/ctxlog"
	"cloudpick/internal/domain"
)

// Runner executes a binary and returns its captured output.
type Runner func(ctx context.Context, name string, args []string) (stdout, stderr []byte, err error)

// CLIGateway invokes remote operations through the platform CLI.
type CLIGateway struct {
	binary  string
	profile string
	region  string

	run     Runner
	limiter *rate.Limiter
	tracer  trace.Tracer
}

var _ domain.Invoker = (*CLIGateway)(nil)

// Option configures a CLIGateway.
type Option func(*CLIGateway)

// WithProfile passes --profile on every call.
func WithProfile(profile string) Option { return func(g *CLIGateway) { g.profile = profile } }

// WithRegion passes --region on every call.
func WithRegion(region string) Option { return func(g *CLIGateway) { g.region = region } }

// WithRunner replaces the process runner (tests).
func WithRunner(r Runner) Option { return func(g *CLIGateway) { g.run = r } }

// WithRateLimit caps invocations per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(g *CLIGateway) { g.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithTracer records a span per invocation.
func WithTracer(t trace.Tracer) Option { return func(g *CLIGateway) { g.tracer = t } }

// NewCLIGateway builds a gateway around binary (usually "aws").
func NewCLIGateway(binary string, opts ...Option) *CLIGateway {
	g := &CLIGateway{
		binary:  binary,
		run:     execRunner,
		limiter: rate.NewLimiter(rate.Inf, 1),
		tracer:  noop.NewTracerProvider().Tracer("cloudpick/remote"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Invoke runs one operation and decodes its JSON output.
func (g *CLIGateway) Invoke(ctx context.Context, ep domain.Endpoint, params domain.Params) (domain.Result, error) {
	invocationID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With(
		"component", "remote",
		"endpoint", ep.String(),
		"invocation_id", invocationID,
	)
	ctx, span := g.tracer.Start(ctx, "remote.invoke",
		trace.WithAttributes(
			attribute.String("service", ep.Service),
			attribute.String("operation", ep.Operation),
			attribute.String("invocation_id", invocationID),
		))
	defer span.End()

	if err := g.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limiter wait failed")
		return nil, &domain.TransportError{Endpoint: ep, Diagnostic: "rate limiter wait failed", Err: err}
	}

	args, err := g.args(ep, params)
	if err != nil {
		return nil, err
	}

	logger.Debug("invoking remote operation")
	stdout, stderr, err := g.run(ctx, g.binary, args)
	if err != nil {
		terr := &domain.TransportError{Endpoint: ep, Diagnostic: diagnostic(stderr, err), Err: err}
		span.RecordError(terr)
		span.SetStatus(codes.Error, "remote operation failed")
		logger.Debug("remote operation failed", "error", terr.Diagnostic)
		return nil, terr
	}

	out := domain.Result{}
	if len(bytes.TrimSpace(stdout)) == 0 {
		span.SetStatus(codes.Ok, "empty response")
		return out, nil
	}
	if err := json.Unmarshal(stdout, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode response")
		return nil, &domain.TransportError{Endpoint: ep, Diagnostic: fmt.Sprintf("decode response: %v", err), Err: err}
	}

	span.SetAttributes(attribute.Int("response_size", len(stdout)))
	span.SetStatus(codes.Ok, "remote operation completed")
	return out, nil
}

func (g *CLIGateway) args(ep domain.Endpoint, params domain.Params) ([]string, error) {
	args := []string{ep.Service, ep.Operation}
	if len(params) > 0 {
		body, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode parameters for %s: %w", ep, err)
		}
		args = append(args, "--cli-input-json", string(body))
	}
	args = append(args, "--output", "json", "--no-cli-pager", "--no-paginate")
	if g.profile != "" {
		args = append(args, "--profile", g.profile)
	}
	if g.region != "" {
		args = append(args, "--region", g.region)
	}
	return args, nil
}

// diagnostic prefers the CLI's own message over the exit status.
func diagnostic(stderr []byte, err error) string {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return msg
	}
	return err.Error()
}

func execRunner(ctx context.Context, name string, args []string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
