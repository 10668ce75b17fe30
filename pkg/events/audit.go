package events

import (
	"context"
	"encoding/json"

	"github.com/example/clickmenu/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// AuditSink stores every event as an audit log entry.
type AuditSink struct {
	writer  AuditWriter
	service string
}

func NewAuditSink(writer AuditWriter, service string) *AuditSink {
	return &AuditSink{writer: writer, service: service}
}

func (s *AuditSink) Handle(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var data bson.M
	if err := json.Unmarshal(raw, &data); err != nil {
		return err
	}

	entry := &repository.AuditLog{
		Service:   s.service,
		Action:    event.Type(),
		StoreID:   storeID(event),
		EntityID:  entityID(event),
		Data:      data,
		CreatedAt: event.Time(),
	}
	if actor, ok := data["actor"].(string); ok {
		entry.Actor = actor
	}
	return s.writer.CreateAuditLog(ctx, entry)
}

// storeID is empty for events that span several stores.
func storeID(event Event) string {
	if _, ok := event.(StoresBulkUpdated); ok {
		return ""
	}
	return event.Key()
}

func entityID(event Event) string {
	switch e := event.(type) {
	case OrderCreated:
		return e.RequestID
	case OrderStatusChanged:
		return e.RequestID
	case MenuItemChanged:
		return e.StoreID + "/" + e.ItemID
	case StoresBulkUpdated:
		return e.Action
	}
	return event.Key()
}

// LogSink writes events to the logger; used when no broker is configured.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Handle(_ context.Context, event Event) error {
	s.logger.Info("Event",
		zap.String("type", event.Type()),
		zap.String("key", event.Key()),
		zap.Time("at", event.Time()))
	return nil
}
