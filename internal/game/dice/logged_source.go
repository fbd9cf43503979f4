package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level, giving a
// full audit trail of the randomness consumed by a battle.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
	draws  int
}

// NewLoggedSource creates a LoggedSource drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the result.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.draws++
	l.logger.Debug("random draw",
		zap.Int("draw", l.draws),
		zap.String("kind", "intn"),
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}

// Float64 draws from the wrapped source and logs the result.
func (l *LoggedSource) Float64() float64 {
	v := l.src.Float64()
	l.draws++
	l.logger.Debug("random draw",
		zap.Int("draw", l.draws),
		zap.String("kind", "float64"),
		zap.Float64("value", v),
	)
	return v
}

// Draws returns the number of values drawn so far.
func (l *LoggedSource) Draws() int { return l.draws }
