package scheduler

import (
	"time"

	"health_notification_engine/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// TickScheduler drives the engine's daily-slot planner on a periodic cron
// tick. The engine serializes the tick against context-triggered
// evaluation passes itself; the scheduler only supplies the heartbeat.
type TickScheduler struct {
	cronEngine *cron.Cron
	engine     app.Engine
	logger     *logrus.Logger
	tickSpec   string
}

func NewTickScheduler(engine app.Engine, logger *logrus.Logger, tickSpec string, loc *time.Location) *TickScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &TickScheduler{
		cronEngine: cron.New(cron.WithLocation(loc)),
		engine:     engine,
		logger:     logger,
		tickSpec:   tickSpec,
	}
}

// Start registers the tick job and runs an immediate first tick so slots
// missed while the process was down are caught up without waiting for the
// next cron boundary.
func (s *TickScheduler) Start() error {
	s.logger.Info("Starting slot tick scheduler...")

	_, err := s.cronEngine.AddFunc(s.tickSpec, func() {
		if err := s.engine.TickSlots(); err != nil {
			s.logger.Errorf("Slot tick failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	if err := s.engine.TickSlots(); err != nil {
		s.logger.Errorf("Initial slot tick failed: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Infof("Slot tick scheduler started (spec %q).", s.tickSpec)
	return nil
}

// Stop stops the cron engine and waits for a running tick to finish.
func (s *TickScheduler) Stop() {
	s.logger.Info("Stopping slot tick scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Slot tick scheduler gracefully stopped.")
}
