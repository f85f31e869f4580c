// Package notify turns engine notification intents into in-app notification
// rows, with an optional live fan-out over Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pocketjobs/pocketjobs-api/internal/models"
	"github.com/pocketjobs/pocketjobs-api/internal/services"
)

// Rows is the slice of the store the sink needs.
type Rows interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

type Sink struct {
	rows  Rows
	redis *redis.Client
	log   *zap.Logger
}

// NewSink creates the sink. redis may be nil; then intents are only persisted.
func NewSink(rows Rows, rdb *redis.Client, log *zap.Logger) *Sink {
	return &Sink{rows: rows, redis: rdb, log: log}
}

// Dispatch persists the intent and, when Redis is configured, publishes it on
// the recipient's channel. The row is the record; publish failures are logged
// and swallowed.
func (s *Sink) Dispatch(ctx context.Context, intent services.NotificationIntent) error {
	n := &models.Notification{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now(),
		RecipientID: intent.RecipientID,
		Kind:        intent.Kind,
		Title:       intent.Title,
		Body:        intent.Body,
		Route:       intent.Route,
	}
	if err := s.rows.InsertNotification(ctx, n); err != nil {
		return err
	}

	if s.redis == nil {
		return nil
	}
	payload, err := json.Marshal(intent)
	if err != nil {
		s.log.Warn("notification encode failed", zap.Error(err))
		return nil
	}
	if err := s.redis.Publish(ctx, "notify:"+intent.RecipientID, payload).Err(); err != nil {
		s.log.Warn("notification publish failed",
			zap.String("recipient_id", intent.RecipientID),
			zap.Error(err))
	}
	return nil
}

// DispatchAll sends every intent; the first persistence failure stops the
// batch.
func (s *Sink) DispatchAll(ctx context.Context, intents []services.NotificationIntent) error {
	for _, intent := range intents {
		if err := s.Dispatch(ctx, intent); err != nil {
			return err
		}
	}
	return nil
}
