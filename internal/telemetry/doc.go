// Package telemetry installs the OpenTelemetry tracer provider the gateway and
// the partition aggregator record spans on.
//
// Exporting is off unless configured: the "none" exporter hands back a no-op
// provider, "otlp" batches spans to an OTLP/gRPC collector until Shutdown.
package telemetry
