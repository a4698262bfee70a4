// Package logger provides a context-aware wrapper around log/slog with
// functional options for configuration and helper attribute constructors.
//
// New builds a *slog.Logger from Option functions: output format (text or
// json), minimum level, static attributes applied to every record, and
// ContextExtractor callbacks that pull request-scoped values (for example a
// request id) out of context.Context on every Handle call.
//
//	log := logger.New(
//	    logger.WithProduction("leadflow"),
//	    logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
//	        if id := middleware.GetReqID(ctx); id != "" {
//	            return slog.String("request_id", id), true
//	        }
//	        return slog.Attr{}, false
//	    }),
//	)
//	logger.SetAsDefault(log)
//
// Attribute helpers such as Error, UserID, and Tier keep attribute naming
// consistent across the codebase.
package logger
