package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/blokdust/pkg/errors"
)

const (
	DefaultMongoDatabase   = "blokdust"
	DefaultMongoCollection = "compositions"
)

// compositionDoc is the stored document shape.
type compositionDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo is a [Store] keeping one document per composition.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongo connects to uri and uses database.collection for compositions.
func NewMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if uri == "" {
		return nil, errs.New(errs.ErrCodeInvalidInput, "mongo uri required")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "mongo client")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, transport("mongo", fmt.Errorf("connect: %w", err))
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (m *Mongo) Save(ctx context.Context, id string, payload []byte) (string, error) {
	id, err := resolveID(id)
	if err != nil {
		return "", err
	}
	doc := compositionDoc{ID: id, Data: payload, UpdatedAt: time.Now().UTC()}
	_, err = m.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", mongoErr(err)
	}
	return id, nil
}

func (m *Mongo) Load(ctx context.Context, id string) ([]byte, error) {
	var doc compositionDoc
	if err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("mongo", id)
		}
		return nil, mongoErr(err)
	}
	return doc.Data, nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// mongoErr maps driver errors: network failures and timeouts are transport
// errors, everything else (validation, write conflicts) is internal.
func mongoErr(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return transport("mongo", err)
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "mongo")
}

var _ Store = (*Mongo)(nil)
