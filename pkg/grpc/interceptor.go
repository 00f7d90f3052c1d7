package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"StorefrontPlatform/pkg/errors"
	"StorefrontPlatform/pkg/logger"
)

// TraceMetadataKey ключ metadata, в котором клиент может передать trace_id
const TraceMetadataKey = "x-trace-id"

// UnaryServerInterceptor логирует вызовы, переводит *errors.Error в gRPC статус
// и превращает панику обработчика в codes.Internal
func UnaryServerInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		ctx = logger.WithTraceID(ctx, incomingTraceID(ctx))
		start := time.Now()

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered in gRPC handler",
					logger.CtxField(ctx),
					logger.String("method", info.FullMethod),
					logger.Any("panic", rec),
					logger.String("stack_trace", string(debug.Stack())))
				resp, err = nil, status.Error(codes.Internal, "internal server error")
			}
		}()

		resp, err = handler(ctx, req)
		if err != nil {
			err = toStatus(err)
			log.Warn("gRPC call failed",
				logger.CtxField(ctx),
				logger.String("method", info.FullMethod),
				logger.String("code", status.Code(err).String()),
				logger.Duration("duration", time.Since(start)),
				logger.Error(err))
			return resp, err
		}

		log.Debug("gRPC call completed",
			logger.CtxField(ctx),
			logger.String("method", info.FullMethod),
			logger.Duration("duration", time.Since(start)))
		return resp, nil
	}
}

func incomingTraceID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(TraceMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.NewString()
}

// toStatus оставляет готовые статусы как есть, остальные ошибки переводит через коды pkg/errors
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	if e, ok := errors.As(err); ok {
		return e.ToGRPCErr()
	}
	return status.Error(codes.Internal, err.Error())
}
