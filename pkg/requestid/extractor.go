package requestid

import (
	"context"
	"log/slog"
)

// LoggerExtractor returns a logger context extractor that reports the
// request id on every record logged within a request.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if requestID := FromContext(ctx); requestID != "" {
			return slog.String("request_id", requestID), true
		}
		return slog.Attr{}, false
	}
}
