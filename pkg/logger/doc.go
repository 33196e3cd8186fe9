// Package logger builds configured slog.Logger instances with context-aware
// attribute injection.
//
// The factory uses functional options for level, format, output, and static
// attributes, plus environment presets:
//
//	log := logger.New(
//	    logger.WithProduction("orders"),
//	    logger.WithAttr(slog.String("version", "1.2.3")),
//	)
//
// NewFromEnv reads LOG_LEVEL and LOG_FORMAT instead:
//
//	log, err := logger.NewFromEnv()
//
// Context extractors inject request-scoped attributes at log time through a
// handler decorator:
//
//	log := logger.New(logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//	    if id, ok := ctx.Value(requestIDKey{}).(string); ok {
//	        return slog.String("request_id", id), true
//	    }
//	    return slog.Attr{}, false
//	}))
//
// Attr helpers (Error, Group, Transition, State, Field) keep workflow log
// records consistent across packages.
package logger
