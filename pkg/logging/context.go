package logging

import (
	"log/slog"
)

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("buffer")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithOperator creates a logger for a query operator instance.
//
// Example:
//
//	log := logging.WithOperator("leapfrog", "left.id = right.id")
//	log.Debug("materialized", "left_rows", n)
func WithOperator(operator, detail string) *slog.Logger {
	return GetLogger().With("operator", operator, "detail", detail)
}

// WithFrame creates a logger with buffer frame context.
func WithFrame(frameID uint32) *slog.Logger {
	return GetLogger().With("frame_id", frameID)
}
