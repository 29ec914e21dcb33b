package artifact

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for [MongoOptions].
const (
	DefaultMongoDatabase   = "sealforge"
	DefaultMongoCollection = "seal_artifacts"
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps artifacts in a MongoDB collection, one document per
// artifact with the PNG stored as binary.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Meta `bson:",inline"`
	PNG  []byte `bson:"png"`
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Save implements Store.
func (s *MongoStore) Save(ctx context.Context, meta Meta, png []byte) (Meta, error) {
	meta = stamp(meta)
	if _, err := s.coll.InsertOne(ctx, mongoDoc{Meta: meta, PNG: png}); err != nil {
		return Meta{}, fmt.Errorf("insert artifact: %w", err)
	}
	return meta, nil
}

// Load implements Store.
func (s *MongoStore) Load(ctx context.Context, id string) (Meta, []byte, error) {
	if err := ValidateID(id); err != nil {
		return Meta{}, nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Meta{}, nil, notFound(id)
	}
	if err != nil {
		return Meta{}, nil, fmt.Errorf("find artifact: %w", err)
	}
	return doc.Meta, doc.PNG, nil
}

// Close implements Store.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
