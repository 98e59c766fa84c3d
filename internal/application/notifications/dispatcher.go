package notifications

import (
	"context"
	"encoding/json"

	"renewmart-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventsQueueKey is the Redis list downstream delivery workers consume.
const EventsQueueKey = "events:review"

// Dispatcher records workflow events and enqueues them for delivery.
// Dispatch is fire-and-forget: failures are logged, never returned, so a
// dropped notification can never abort a reviewer's action.
type Dispatcher struct {
	DB  *gorm.DB
	Rdb *redis.Client
}

// Emit writes the event row and pushes a JSON copy onto the delivery queue.
func (d *Dispatcher) Emit(ctx context.Context, landID uuid.UUID, role, eventType string, data map[string]interface{}) {
	if d == nil || d.DB == nil {
		return
	}
	payload, _ := json.Marshal(data)
	event := &domain.ReviewEvent{
		LandID:    landID,
		Role:      role,
		EventType: eventType,
		EventData: datatypes.JSON(payload),
	}
	if err := d.DB.WithContext(ctx).Create(event).Error; err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Str("land_id", landID.String()).
			Msg("notifications: event record write failed")
		return
	}
	if d.Rdb == nil {
		return
	}
	b, _ := json.Marshal(event)
	if err := d.Rdb.LPush(ctx, EventsQueueKey, b).Err(); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Str("land_id", landID.String()).
			Msg("notifications: queue push failed")
	}
}

// History returns recorded events for a land, newest first.
func (d *Dispatcher) History(ctx context.Context, landID uuid.UUID) ([]domain.ReviewEvent, error) {
	var events []domain.ReviewEvent
	if err := d.DB.WithContext(ctx).Where("land_id = ?", landID).Order(`"createdAt" DESC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
