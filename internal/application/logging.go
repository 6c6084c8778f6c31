package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MJEvans3/roombookingslackbot/internal/catalog"
	"github.com/MJEvans3/roombookingslackbot/internal/dateparse"
	"github.com/MJEvans3/roombookingslackbot/internal/logging"
	"github.com/MJEvans3/roombookingslackbot/internal/persistence"
	"github.com/MJEvans3/roombookingslackbot/internal/recurrence"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", "BookingService", "operation", operation}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoActiveListing):
		return "no_active_listing"
	case errors.Is(err, ErrInvalidIndex):
		return "invalid_index"
	case errors.Is(err, catalog.ErrUnknownRoom):
		return "unknown_room"
	case errors.Is(err, dateparse.ErrAmbiguousDate):
		return "ambiguous_date"
	case errors.Is(err, dateparse.ErrUnrecognizedFormat):
		return "unrecognized_format"
	case errors.Is(err, recurrence.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, recurrence.ErrUnknownFrequency):
		return "unknown_frequency"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
