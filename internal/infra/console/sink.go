package console

import (
	"time"

	"health_notification_engine/internal/domain/notify"

	"github.com/sirupsen/logrus"
)

// Sink is the development Notification Sink: it logs payloads instead of
// delivering them anywhere.
type Sink struct {
	logger *logrus.Logger
}

func NewSink(logger *logrus.Logger) *Sink {
	return &Sink{logger: logger}
}

func (s *Sink) SendNow(payload notify.Payload) error {
	s.logger.WithFields(logrus.Fields{
		"id":       payload.ID,
		"kind":     payload.Kind,
		"source":   payload.SourceID,
		"category": payload.Category,
		"priority": payload.Priority,
	}).Infof("NOTIFY: %s | %s", payload.Title, payload.Body)
	return nil
}

func (s *Sink) ScheduleAt(at time.Time, payload notify.Payload) error {
	s.logger.WithFields(logrus.Fields{
		"id":     payload.ID,
		"source": payload.SourceID,
		"at":     at.Format(time.RFC3339),
	}).Debugf("NOTIFY (scheduled): %s", payload.Title)
	return nil
}
