// Package notify delivers complaint confirmations.
package notify

import (
	"context"
	"log/slog"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.Notifier = LogNotifier{}

// LogNotifier only records the confirmation in the log. It is used when no
// message broker is configured.
type LogNotifier struct{}

func (LogNotifier) ComplaintRegistered(ctx context.Context, c entity.Complaint) error {
	slog.InfoContext(ctx, "complaint confirmation",
		"complaint_number", c.ComplaintNumber,
		"email", c.Email,
		"user_type", c.UserType,
	)
	return nil
}
