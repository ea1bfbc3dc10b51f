package middleware

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Logging logs every call with its status code and turns handler panics into
// codes.Internal. It should be the outermost interceptor.
func Logging(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Str("method", info.FullMethod).
					Msg("handler panic")
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}

			code := status.Code(err)
			ev := log.Info()
			if code == codes.Internal || code == codes.Unknown {
				ev = log.Error().Err(err)
			}
			ev.Str("method", info.FullMethod).
				Str("code", code.String()).
				Dur("took", time.Since(start)).
				Msg("rpc")
		}()
		return next(ctx, req)
	}
}
