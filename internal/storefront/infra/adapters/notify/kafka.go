package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/storefront-api/internal/pkg/kafka"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

const EventComplaintRegistered = "complaint.registered"

// Event is the envelope published for every notification.
type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

var _ ports.Notifier = (*KafkaNotifier)(nil)

// KafkaNotifier publishes a complaint.registered event that the mail
// service turns into the confirmation email.
type KafkaNotifier struct {
	writer kafka.Writer
	now    func() time.Time
}

func NewKafkaNotifier(w kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: w, now: time.Now}
}

func (n *KafkaNotifier) ComplaintRegistered(ctx context.Context, c entity.Complaint) error {
	ev := Event{
		EventID:   uuid.NewString(),
		Type:      EventComplaintRegistered,
		CreatedAt: n.now().UTC(),
		Payload: map[string]any{
			"complaintNumber": c.ComplaintNumber,
			"name":            c.Name,
			"email":           c.Email,
			"userType":        c.UserType,
			"message":         c.Message,
		},
	}
	if err := kafka.PublishJSON(ctx, n.writer, c.ComplaintNumber, ev); err != nil {
		return fmt.Errorf("publish %s: %w", EventComplaintRegistered, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
