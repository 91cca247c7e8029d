// Package mongostore persists the storefront documents in MongoDB. Each record
// kind lives in its own collection, keyed by a unique business id index.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	cartsCollection      = "carts"
	ordersCollection     = "orders"
	complaintsCollection = "complaints"
	productsCollection   = "products"
)

// DB owns the client connection and hands out the stores.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri, pings the server and ensures the unique indexes.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	d := &DB{client: client, db: client.Database(database)}
	if err := d.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return d, nil
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	unique := map[string]string{
		cartsCollection:      "userId",
		ordersCollection:     "orderId",
		complaintsCollection: "complaintNumber",
		productsCollection:   "productId",
	}
	for coll, field := range unique {
		_, err := d.db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			return fmt.Errorf("mongo index %s.%s: %w", coll, field, err)
		}
	}

	_, err := d.db.Collection(ordersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo index orders.userId: %w", err)
	}
	return nil
}

func (d *DB) Carts() *CartStore           { return &CartStore{coll: d.db.Collection(cartsCollection)} }
func (d *DB) Orders() *OrderStore         { return &OrderStore{coll: d.db.Collection(ordersCollection)} }
func (d *DB) Complaints() *ComplaintStore { return &ComplaintStore{coll: d.db.Collection(complaintsCollection)} }
func (d *DB) Catalog() *Catalog           { return &Catalog{coll: d.db.Collection(productsCollection)} }

// Drop removes the whole database. Tests use it for cleanup.
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
