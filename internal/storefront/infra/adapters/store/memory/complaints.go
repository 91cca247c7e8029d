package memory

import (
	"context"
	"sync"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.ComplaintStore = (*ComplaintStore)(nil)

type ComplaintStore struct {
	mu      sync.RWMutex
	byNum   map[string]*entity.Complaint
	ordered []string
}

func NewComplaintStore() *ComplaintStore {
	return &ComplaintStore{byNum: make(map[string]*entity.Complaint)}
}

func (s *ComplaintStore) Insert(_ context.Context, c *entity.Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byNum[c.ComplaintNumber]; exists {
		return apperr.Conflict("complaint", c.ComplaintNumber, "complaint number already exists")
	}
	cp := *c
	s.byNum[c.ComplaintNumber] = &cp
	s.ordered = append(s.ordered, c.ComplaintNumber)
	return nil
}

func (s *ComplaintStore) List(_ context.Context) ([]*entity.Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Complaint, 0, len(s.ordered))
	for _, num := range s.ordered {
		cp := *s.byNum[num]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *ComplaintStore) UpdateStatus(_ context.Context, complaintNumber, status string) (*entity.Complaint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byNum[complaintNumber]
	if !ok {
		return nil, apperr.NotFound("complaint", complaintNumber)
	}
	c.Status = status
	cp := *c
	return &cp, nil
}
