//go:build !gcloud

package logging

import (
	"context"
	"log/slog"
)

// Local builds write plain slog keys and carry no Cloud Logging trace
// correlation.
func gcpTraceAttrs(_ context.Context, _ string) []slog.Attr {
	return nil
}

func replaceAttrs(_ []string, a slog.Attr) slog.Attr {
	return a
}
