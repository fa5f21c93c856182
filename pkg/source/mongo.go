package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/threadline/pkg/feed"
)

// defaultDatabase is used when the connection string carries no database
// component.
const defaultDatabase = "threadline"

// MongoSource reads a feed from a MongoDB collection. Documents decode
// into records through their bson tags; extra fields are ignored.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSource connects to the deployment described by uri and verifies
// the connection. The database comes from the URI path (falling back to
// "threadline"); collection names the collection holding records.
func NewMongoSource(ctx context.Context, uri, collection string) (*MongoSource, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := databaseFromURI(uri)
	return &MongoSource{
		client:     client,
		collection: client.Database(db).Collection(collection),
	}, nil
}

// Fetch reads all records ordered by creation time.
func (s *MongoSource) Fetch(ctx context.Context) (*feed.Feed, error) {
	return observeFetch(ctx, "mongodb", s.collection.Name(), func() (*feed.Feed, error) {
		return s.fetch(ctx)
	})
}

func (s *MongoSource) fetch(ctx context.Context) (*feed.Feed, error) {
	cur, err := s.collection.Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}

	var records []feed.Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	return &feed.Feed{Version: feed.FormatVersion, Records: records}, nil
}

// Close disconnects from the deployment.
func (s *MongoSource) Close() error {
	return s.client.Disconnect(context.Background())
}

// databaseFromURI extracts the database name from a connection string.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultDatabase
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return defaultDatabase
	}
	return db
}

// Ensure MongoSource implements Source.
var _ Source = (*MongoSource)(nil)
