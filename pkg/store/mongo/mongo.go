// Package mongo implements [store.Store] on a MongoDB collection.
//
// Each chart is one document in the "charts" collection holding the chart
// metadata and the people array.
package mongo

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

// Collection is the collection charts are stored in.
const Collection = "charts"

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "kintree"

// Config holds MongoDB connection settings.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type document struct {
	store.Chart `bson:",inline"`
	Data        family.FamilyData `bson:"data"`
}

// Store is a MongoDB-backed chart store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to MongoDB and verifies the connection with a ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return New(client, cfg.Database), nil
}

// New wraps an existing client.
func New(client *mongo.Client, database string) *Store {
	return &Store{
		client: client,
		coll:   client.Database(database).Collection(Collection),
	}
}

// Save stores data under a new id.
func (s *Store) Save(ctx context.Context, data *family.FamilyData, name string) (store.Chart, error) {
	c, err := store.NewChart(data, name)
	if err != nil {
		return store.Chart{}, err
	}
	if _, err := s.coll.InsertOne(ctx, document{Chart: c, Data: *data}); err != nil {
		return store.Chart{}, fmt.Errorf("insert chart: %w", err)
	}
	return c, nil
}

// Get returns the stored snapshot.
func (s *Store) Get(ctx context.Context, id string) (*family.FamilyData, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find chart: %w", err)
	}
	return &doc.Data, nil
}

// List returns all charts, newest first.
func (s *Store) List(ctx context.Context) ([]store.Chart, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"data": 0})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list charts: %w", err)
	}
	defer cur.Close(ctx)

	var charts []store.Chart
	for cur.Next(ctx) {
		var c store.Chart
		if err := cur.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode chart: %w", err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		charts = append(charts, c)
	}
	return charts, cur.Err()
}

// Delete removes a chart.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete chart: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.NotFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}
