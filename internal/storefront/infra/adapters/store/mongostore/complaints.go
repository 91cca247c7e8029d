package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcmexdev/storefront-api/internal/storefront/core/apperr"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/ports"
)

var _ ports.ComplaintStore = (*ComplaintStore)(nil)

type ComplaintStore struct {
	coll *mongo.Collection
}

func (s *ComplaintStore) Insert(ctx context.Context, c *entity.Complaint) error {
	_, err := s.coll.InsertOne(ctx, fromComplaint(c))
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict("complaint", c.ComplaintNumber, "complaint number already exists")
	}
	if err != nil {
		return apperr.Store("insert complaint", err)
	}
	return nil
}

func (s *ComplaintStore) List(ctx context.Context) ([]*entity.Complaint, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Store("list complaints", err)
	}
	var docs []complaintDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, apperr.Store("list complaints", err)
	}
	out := make([]*entity.Complaint, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	return out, nil
}

func (s *ComplaintStore) UpdateStatus(ctx context.Context, complaintNumber, status string) (*entity.Complaint, error) {
	var doc complaintDoc
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"complaintNumber": complaintNumber},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("complaint", complaintNumber)
	}
	if err != nil {
		return nil, apperr.Store("update complaint", err)
	}
	return doc.toEntity(), nil
}
