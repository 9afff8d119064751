package sim

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TurnAdvancer is the slice of the state owner the ticker needs.
type TurnAdvancer interface {
	AdvanceTurn() (*TurnResult, error)
}

// Ticker advances the world automatically at a fixed interval. Manual
// deployments leave it stopped and drive turns through the API instead.
type Ticker struct {
	advancer TurnAdvancer
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewTicker returns a stopped ticker advancing the given owner every
// interval.
func NewTicker(advancer TurnAdvancer, interval time.Duration, logger *zap.Logger) *Ticker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		advancer: advancer,
		ticker:   time.NewTicker(interval),
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

// Start begins advancing turns in the background.
func (t *Ticker) Start() {
	go func() {
		for {
			select {
			case <-t.ticker.C:
				result, err := t.advancer.AdvanceTurn()
				if err != nil {
					t.logger.Error("automatic turn failed", zap.Error(err))
					continue
				}
				t.logger.Info("turn advanced",
					zap.Int("actors", len(result.UpdatedActors)),
					zap.Int("events_fired", len(result.TriggeredEvents)),
					zap.Int("world_events", len(result.WorldEvents)))
			case <-t.stopChan:
				t.ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the ticker. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopChan)
	})
}
