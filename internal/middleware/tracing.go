package middleware

import (
	"context"

	"connectrpc.com/connect"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/mmynk/tripsplit/internal/middleware"

// TracingInterceptor opens a server span per RPC on the global tracer
// provider. With no provider configured the spans are no-ops.
func TracingInterceptor() connect.UnaryInterceptorFunc {
	tracer := otel.Tracer(tracerName)
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			procedure := req.Spec().Procedure
			ctx, span := tracer.Start(ctx, procedure,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("rpc.system", "connect_rpc"),
					attribute.String("rpc.method", procedure),
				),
			)
			defer span.End()

			resp, err := next(ctx, req)
			if err != nil {
				code := connect.CodeOf(err)
				span.SetAttributes(attribute.String("rpc.connect_rpc.error_code", code.String()))
				span.RecordError(err)
				if isServerFault(code) {
					span.SetStatus(codes.Error, err.Error())
				}
			}
			return resp, err
		}
	}
}
