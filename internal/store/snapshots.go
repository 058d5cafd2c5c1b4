// Package store is the persistence adapter for snapshots. It enforces no
// business rules: the pipeline owns snapshot construction, this package only
// reads and wholesale-overwrites documents keyed by (domain, category, date).
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Blzofando/top-10-streamings/internal/model"
)

const snapshotCollection = "snapshots"

// Snapshots stores one document per (domain, category, date) key.
type Snapshots struct {
	col *mongo.Collection
}

func NewSnapshots(client *mongo.Client, database string) *Snapshots {
	return &Snapshots{col: client.Database(database).Collection(snapshotCollection)}
}

func key(domain, category, date string) bson.M {
	return bson.M{"domain": domain, "category": category, "date": date}
}

// Get returns the snapshot for a key, or nil when none exists.
func (s *Snapshots) Get(ctx context.Context, domain, category, date string) (*model.Snapshot, error) {
	var snap model.Snapshot
	err := s.col.FindOne(ctx, key(domain, category, date)).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s/%s/%s: %w", domain, category, date, err)
	}
	return &snap, nil
}

// Latest returns the most recent snapshot for (domain, category), or nil.
func (s *Snapshots) Latest(ctx context.Context, domain, category string) (*model.Snapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})
	var snap model.Snapshot
	err := s.col.FindOne(ctx, bson.M{"domain": domain, "category": category}, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot %s/%s: %w", domain, category, err)
	}
	return &snap, nil
}

// Put overwrites the snapshot for its key wholesale. Upsert keeps the write
// idempotent: re-running a pipeline with identical output is a no-op.
func (s *Snapshots) Put(ctx context.Context, snap *model.Snapshot) error {
	filter := key(snap.Domain, snap.Category, snap.Date)
	_, err := s.col.ReplaceOne(ctx, filter, snap, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put snapshot %s/%s/%s: %w", snap.Domain, snap.Category, snap.Date, err)
	}
	return nil
}

// DeleteBefore removes snapshots for (domain, category) older than keepDate.
// Used to keep only the current day's rankings around.
func (s *Snapshots) DeleteBefore(ctx context.Context, domain, category, keepDate string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{
		"domain":   domain,
		"category": category,
		"date":     bson.M{"$lt": keepDate},
	})
	if err != nil {
		return 0, fmt.Errorf("delete old snapshots %s/%s: %w", domain, category, err)
	}
	return res.DeletedCount, nil
}
