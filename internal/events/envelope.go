package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/vrjatclg/Time2Eat/internal/models"
)

const (
	EnvelopeVersion = 1
	DefaultTopic    = "canteen.orders"
)

// Envelope wraps every event on the feed. Payload is an OrderEvent.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(producer string, event models.OrderEvent) (Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     event.Type,
		EventVersion:  EnvelopeVersion,
		OccurredAt:    event.OccurredAt.UTC(),
		Producer:      producer,
		CorrelationID: event.OrderID,
		Payload:       payload,
	}, nil
}

// PartitionKey keeps all events of one student on one partition, so a
// consumer sees each order's transitions in order.
func PartitionKey(event models.OrderEvent) []byte {
	return []byte(event.PID)
}
