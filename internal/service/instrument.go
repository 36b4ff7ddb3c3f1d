// Package service implements Warbler's business operations on top of the
// repositories.
package service

import (
	"context"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/observability"
)

// Observer bundles the logger and metrics every service reports to.
// The zero value discards everything.
type Observer struct {
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

func (o Observer) logger() *slog.Logger {
	if o.Logger == nil {
		return observability.NopLogger()
	}
	return o.Logger
}

// run executes fn inside a span named after op and counts its outcome.
func (o Observer) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "service."+op)
	err := fn(ctx)
	observability.EndSpan(span, err)
	o.Metrics.RecordOperation(op, err, isRejection)
	return err
}

// isRejection reports errors caused by the caller rather than the store.
func isRejection(err error) bool {
	switch models.ErrorCode(err) {
	case models.CodeValidation, models.CodeConstraint, models.CodeForbidden, models.CodeNotFound:
		return true
	}
	return false
}
