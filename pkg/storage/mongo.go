package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/format"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "mindtree"
	DefaultMongoCollection = "maps"
)

// MongoStore keeps one document per map, keyed by _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// mongoRecord is the stored shape. Data holds the envelope's raw JSON so
// that every codec round-trips byte for byte.
type mongoRecord struct {
	ID        string      `bson:"_id"`
	Meta      format.Meta `bson:"meta"`
	Format    string      `bson:"format"`
	Data      string      `bson:"data"`
	UpdatedAt time.Time   `bson:"updated_at"`
}

// NewMongoStore connects to uri and pings the deployment. Empty database
// and collection names take the defaults.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "ping mongo")
	}
	s := NewMongoStoreFromClient(client, database, collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close leaves it
// connected.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *MongoStore) Get(ctx context.Context, id string) (*format.Document, error) {
	if err := mterrors.ValidateMapID(id); err != nil {
		return nil, err
	}
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "get map %q", id)
	}
	return recordDoc(rec)
}

func recordDoc(rec mongoRecord) (*format.Document, error) {
	f, err := format.ParseFormat(rec.Format)
	if err != nil {
		return nil, err
	}
	return &format.Document{Meta: rec.Meta, Format: f, Data: json.RawMessage(rec.Data)}, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, doc *format.Document) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	if err := checkDoc(doc); err != nil {
		return err
	}
	rec := mongoRecord{
		ID:        id,
		Meta:      doc.Meta,
		Format:    string(doc.Format),
		Data:      string(doc.Data),
		UpdatedAt: time.Now().UTC(),
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return mterrors.Wrap(mterrors.ErrCodeNetwork, err, "put map %q", id)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := mterrors.ValidateMapID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return mterrors.Wrap(mterrors.ErrCodeNetwork, err, "delete map %q", id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "list maps")
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, mterrors.Wrap(mterrors.ErrCodeInternal, err, "decode map id")
		}
		ids = append(ids, row.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeNetwork, err, "list maps")
	}
	return ids, nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
