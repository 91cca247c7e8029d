package ports

import (
	"context"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
)

type ComplaintStore interface {
	// Insert persists a complaint. A duplicate ComplaintNumber yields
	// apperr.ConflictError.
	Insert(ctx context.Context, complaint *entity.Complaint) error
	List(ctx context.Context) ([]*entity.Complaint, error)
	// UpdateStatus overwrites the status and returns the updated record.
	UpdateStatus(ctx context.Context, complaintNumber, status string) (*entity.Complaint, error)
}
