// Package eventhandler содержит обработчики доменных событий.
// Обработчики реагируют на уже зафиксированные изменения и не могут
// отменить операцию, которая их породила.
package eventhandler

import (
	"github.com/vl4ks/filmorate/internal/domain/shared"
	"github.com/vl4ks/filmorate/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// AUDIT HANDLER
// Пишет каждое доменное событие в журнал и считает события по типам.
// ═══════════════════════════════════════════════════════════════════════════

// EventCounter считает события по типу (реализуется реестром метрик).
type EventCounter interface {
	RecordEvent(eventType string)
}

// AuditHandler журналирует все события каталога и социального графа.
type AuditHandler struct {
	logger  *logger.Logger
	counter EventCounter // может быть nil
}

// NewAuditHandler создаёт обработчик аудита.
func NewAuditHandler(log *logger.Logger, counter EventCounter) *AuditHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditHandler{
		logger:  log.With(logger.Component("audit")),
		counter: counter,
	}
}

// Register подписывает обработчик на все события шины.
func (h *AuditHandler) Register(bus shared.EventSubscriber) error {
	return bus.SubscribeAll(h.Handle)
}

// Handle реализует shared.EventHandler.
func (h *AuditHandler) Handle(event shared.Event) error {
	if h.counter != nil {
		h.counter.RecordEvent(string(event.EventType()))
	}

	fields := []logger.Field{
		logger.EventType(string(event.EventType())),
		logger.String("aggregate_id", event.AggregateID()),
		logger.Time("occurred_at", event.OccurredAt()),
	}
	switch e := event.(type) {
	case shared.LikeEvent:
		fields = append(fields, logger.FilmID(e.FilmID), logger.UserID(e.UserID))
	case shared.FriendshipEvent:
		fields = append(fields, logger.UserID(e.UserID), logger.FriendID(e.FriendID))
	case shared.EntityChangedEvent:
		if e.Name != "" {
			fields = append(fields, logger.String("name", e.Name))
		}
	}

	h.logger.Info("domain event", fields...)
	return nil
}
