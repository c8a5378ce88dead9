package progressapp

import (
	"fmt"
	"github.com/burenotti/go_energy_balance/internal/app/messagebus"
	"github.com/burenotti/go_energy_balance/internal/domain"
	"github.com/burenotti/go_energy_balance/internal/domain/progress"
	"log/slog"
)

func RegisterEventHandlers(bus *messagebus.MessageBus, logger *slog.Logger) {
	bus.Register(progress.EventRecordAdded, LogRecordAdded(logger))
	bus.Register(progress.EventRecordUpdated, LogRecordUpdated(logger))
	bus.Register(progress.EventSessionAdded, LogSessionAdded(logger))
}

func LogRecordAdded(logger *slog.Logger) messagebus.EventHandler {
	return func(event domain.Event) error {
		e, ok := event.(progress.RecordAddedEvent)
		if !ok {
			return unexpectedEvent(event)
		}
		logger.Info("daily record added",
			"user_id", e.UserID,
			"record_id", e.RecordID,
			"deficit", e.Deficit,
			"on_track", e.OnTrack,
			"streak", e.Streak,
		)
		return nil
	}
}

func LogRecordUpdated(logger *slog.Logger) messagebus.EventHandler {
	return func(event domain.Event) error {
		e, ok := event.(progress.RecordUpdatedEvent)
		if !ok {
			return unexpectedEvent(event)
		}
		logger.Info("daily record updated", "user_id", e.UserID, "record_id", e.RecordID)
		return nil
	}
}

func LogSessionAdded(logger *slog.Logger) messagebus.EventHandler {
	return func(event domain.Event) error {
		e, ok := event.(progress.SessionAddedEvent)
		if !ok {
			return unexpectedEvent(event)
		}
		logger.Info("exercise session added",
			"user_id", e.UserID,
			"exercise", e.ExerciseName,
			"calories", e.CaloriesBurned,
		)
		return nil
	}
}

func unexpectedEvent(event domain.Event) error {
	return fmt.Errorf("unexpected event %T for %q", event, event.Type())
}
