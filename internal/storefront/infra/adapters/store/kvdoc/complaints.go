package kvdoc

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.ComplaintStore = (*ComplaintStore)(nil)

type ComplaintStore struct {
	db *DB
}

func (s *ComplaintStore) Insert(_ context.Context, c *entity.Complaint) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	taken, err := s.db.exists(complaintKey(c.ComplaintNumber))
	if err != nil {
		return apperr.Store("insert complaint", err)
	}
	if taken {
		return apperr.Conflict("complaint", c.ComplaintNumber, "complaint number already exists")
	}
	if err := s.db.putJSON(complaintKey(c.ComplaintNumber), c); err != nil {
		return apperr.Store("insert complaint", err)
	}
	return nil
}

// List returns complaints oldest first.
func (s *ComplaintStore) List(_ context.Context) ([]*entity.Complaint, error) {
	out := []*entity.Complaint{}
	err := s.db.kv.Scan([]byte(complaintPrefix), func(_, val []byte) error {
		var c entity.Complaint
		if err := json.Unmarshal(val, &c); err != nil {
			return err
		}
		out = append(out, &c)
		return nil
	})
	if err != nil {
		return nil, apperr.Store("list complaints", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *ComplaintStore) UpdateStatus(_ context.Context, complaintNumber, status string) (*entity.Complaint, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var c entity.Complaint
	ok, err := s.db.getJSON(complaintKey(complaintNumber), &c)
	if err != nil {
		return nil, apperr.Store("update complaint", err)
	}
	if !ok {
		return nil, apperr.NotFound("complaint", complaintNumber)
	}
	c.Status = status
	if err := s.db.putJSON(complaintKey(complaintNumber), &c); err != nil {
		return nil, apperr.Store("update complaint", err)
	}
	return &c, nil
}
