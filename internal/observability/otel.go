package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc/credentials"

	"github.com/tbourn/rehab-rewards-backend/internal/config"
)

// Resource attribute keys describing how this deployment stores rows,
// mints tokens and keeps artwork.
const (
	AttrDBDriver   = attribute.Key("rehab.db.driver")
	AttrMintMode   = attribute.Key("rehab.mint.mode")
	AttrChainID    = attribute.Key("rehab.chain.id")
	AttrAssetStore = attribute.Key("rehab.asset.store")
)

// Mint modes reported under AttrMintMode.
const (
	MintModeLedger = "ledger"
	MintModeEVM    = "evm"
)

// Test seams.
var (
	newExporter = func(ctx context.Context, cfg config.OTELConfig) (sdktrace.SpanExporter, error) {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		} else {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	}

	newResource = func(ctx context.Context, attrs ...attribute.KeyValue) (*resource.Resource, error) {
		return resource.New(ctx, resource.WithAttributes(attrs...))
	}
)

// ResourceAttributes returns the service identity plus the deployment shape
// (database driver, mint mode and chain, asset store) stamped on every span.
func ResourceAttributes(cfg config.Config, version string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.OTEL.ServiceName),
		semconv.ServiceVersion(version),
		AttrDBDriver.String(cfg.DB.Driver),
		AttrAssetStore.String(cfg.Assets.Store),
	}
	if cfg.Chain.UseLedger() {
		return append(attrs, AttrMintMode.String(MintModeLedger))
	}
	return append(attrs, AttrMintMode.String(MintModeEVM), AttrChainID.Int64(cfg.Chain.ChainID))
}

// SetupOTel installs a batching OTLP tracer provider and the W3C propagators
// when tracing is enabled. Globals are left untouched on error. The returned
// function flushes and stops the provider.
func SetupOTel(ctx context.Context, cfg config.Config, version string) (func(context.Context) error, error) {
	if !cfg.OTEL.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, cfg.OTEL)
	if err != nil {
		return nil, err
	}
	res, err := newResource(ctx, ResourceAttributes(cfg, version)...)
	if err != nil {
		_ = exp.Shutdown(ctx)
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.OTEL.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	return tp.Shutdown, nil
}
