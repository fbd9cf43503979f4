package event

import "go.uber.org/zap"

// LogListener mirrors every event to logger at debug level.
func LogListener(logger *zap.Logger) Listener {
	return ListenerFunc(func(ev GameEvent) error {
		logger.Debug("combat event",
			zap.Stringer("kind", ev.Kind),
			zap.String("actor", ev.Actor.Name),
			zap.String("target", ev.Target.Name),
			zap.Int("amount", ev.Amount),
			zap.String("detail", ev.Detail),
		)
		return nil
	})
}
