package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/models"
)

// LoggingInterceptor logs every RPC with the procedure, the caller and the
// duration. Failures also carry the Connect code and, when the cause is a
// ledger error, its reason label. Caller mistakes log at WARN; internal and
// unknown failures log at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			ctx, caller := withCaller(ctx)
			resp, err := next(ctx, req)

			attrs := []any{
				"procedure", req.Spec().Procedure,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if caller.UserID != "" {
				attrs = append(attrs, "user_id", caller.UserID)
			}
			if caller.Email != "" {
				attrs = append(attrs, "email", caller.Email)
			}

			if err == nil {
				slog.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			attrs = append(attrs, "code", code.String(), "error", err)
			if reason := models.ErrorReason(err); reason != "" {
				attrs = append(attrs, "reason", reason)
			}
			switch code {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
				slog.ErrorContext(ctx, "RPC failed", attrs...)
			default:
				slog.WarnContext(ctx, "RPC rejected", attrs...)
			}
			return resp, err
		}
	}
}
