package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

type RegisterComplaintInput struct {
	Name     string
	Email    string
	Message  string
	UserType string
}

type RegisterComplaintResult struct {
	Complaint *entity.Complaint
	// NotificationWarning is set when the complaint was stored but the
	// confirmation could not be delivered.
	NotificationWarning string
}

type ComplaintService struct {
	store    ports.ComplaintStore
	notifier ports.Notifier
	metrics  Metrics
	now      func() time.Time
	draw     func() int
}

func NewComplaintService(store ports.ComplaintStore, notifier ports.Notifier, metrics Metrics) *ComplaintService {
	return &ComplaintService{
		store:    store,
		notifier: notifier,
		metrics:  metricsOrNoop(metrics),
		now:      time.Now,
		draw:     func() int { return 100000 + rand.IntN(900000) },
	}
}

func (s *ComplaintService) newComplaintNumber() string {
	return fmt.Sprintf("C-%06d", s.draw())
}

// Register stores the complaint under a fresh number and then sends the
// confirmation. Only persistence decides success.
func (s *ComplaintService) Register(ctx context.Context, in RegisterComplaintInput) (*RegisterComplaintResult, error) {
	fields := map[string]bool{
		"name":     strings.TrimSpace(in.Name) == "",
		"email":    strings.TrimSpace(in.Email) == "",
		"message":  strings.TrimSpace(in.Message) == "",
		"userType": strings.TrimSpace(in.UserType) == "",
	}
	for _, bad := range fields {
		if bad {
			return nil, apperr.Validation("All fields are required.", fields)
		}
	}

	c := &entity.Complaint{
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		UserType:  in.UserType,
		CreatedAt: s.now().UTC(),
	}

	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		c.ComplaintNumber = s.newComplaintNumber()
		if err = s.store.Insert(ctx, c); !apperr.IsConflict(err) {
			break
		}
		slog.WarnContext(ctx, "complaint number collision, drawing again", "complaint_number", c.ComplaintNumber)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.ComplaintRegistered()

	result := &RegisterComplaintResult{Complaint: c}
	if s.notifier != nil {
		if nerr := s.notifier.ComplaintRegistered(ctx, *c); nerr != nil {
			s.metrics.NotificationFailed()
			slog.ErrorContext(ctx, "complaint confirmation failed",
				"complaint_number", c.ComplaintNumber,
				"error", nerr,
			)
			result.NotificationWarning = "complaint registered but the confirmation email could not be sent"
		}
	}
	return result, nil
}

func (s *ComplaintService) ListAll(ctx context.Context) ([]*entity.Complaint, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.Complaint{}
	}
	return list, nil
}

func (s *ComplaintService) UpdateStatus(ctx context.Context, complaintNumber, status string) (*entity.Complaint, error) {
	if strings.TrimSpace(complaintNumber) == "" {
		return nil, apperr.Validation("complaintId is required", map[string]bool{"complaintId": true})
	}
	return s.store.UpdateStatus(ctx, complaintNumber, status)
}
