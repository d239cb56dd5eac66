package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged pool rolling.
// Every pool is logged at debug level with its size, faces, and total.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each pool to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Pool rolls count dice and logs the full result.
func (r *Roller) Pool(count int) PoolResult {
	result := RollPool(count, r.src)
	r.logger.Debug("dice pool",
		zap.Int("count", count),
		zap.Ints("dice", result.Dice),
		zap.Int("successes", result.Successes),
		zap.Int("botches", result.Botches),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollPool rolls count dice and returns only the signed total.
//
// Postcondition: return value == r.Pool(count).Total().
func (r *Roller) RollPool(count int) int {
	return r.Pool(count).Total()
}
