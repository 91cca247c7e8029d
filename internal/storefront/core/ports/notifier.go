package ports

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

// Notifier delivers the out-of-band confirmation for a registered complaint.
// Delivery is best effort: callers report failures without undoing the
// registration.
type Notifier interface {
	ComplaintRegistered(ctx context.Context, complaint entity.Complaint) error
}
