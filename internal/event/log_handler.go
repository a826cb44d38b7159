package event

import "log/slog"

// LogHandler writes movement events to the default logger at debug level.
func LogHandler(raw any) {
	switch evt := raw.(type) {
	case *TransitionEvent:
		slog.Debug("Movement transition",
			"kind", evt.Kind,
			"actor", evt.Actor,
			"now", evt.Now,
			"pos", formatVec(evt.Position),
			"vel", formatVec(evt.Velocity),
			"purged", evt.Purged,
		)
	case *ModifierEvent:
		slog.Debug("Modifier injected",
			"actor", evt.Actor,
			"now", evt.Now,
			"source", evt.Source,
			"count", evt.Count,
			"dir", formatVec(evt.Direction),
		)
	default:
		slog.Error("Invalid event type for LogHandler")
	}
}
