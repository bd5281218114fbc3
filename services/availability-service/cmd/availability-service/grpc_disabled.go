//go:build !protogen

package main

import (
	"context"
	"log/slog"

	"github.com/scheduleops/freebusy/services/availability-service/internal/tz"
)

func startGrpcServer(_ context.Context, _ *slog.Logger, _ tz.OffsetResolver) error {
	return nil
}
