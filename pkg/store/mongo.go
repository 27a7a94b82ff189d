package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/depdistill/pkg/analyzer"
	"github.com/matzehuels/depdistill/pkg/errors"
)

// Defaults for MongoConfig.
const (
	DefaultDatabase   = "depdistill"
	DefaultCollection = "analyses"
)

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI        string
	Database   string // default: "depdistill"
	Collection string // default: "analyses"
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (c MongoConfig) WithDefaults() MongoConfig {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	return c
}

// MongoStore is a Store backed by a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// document is the stored form of an Analysis. The result is kept as its JSON
// document so that absent and empty lists survive the round trip.
type document struct {
	ID        string    `bson:"_id"`
	CreatedAt time.Time `bson:"createdAt"`
	Target    string    `bson:"target"`
	Search    string    `bson:"search,omitempty"`
	Libraries bool      `bson:"libraries,omitempty"`
	Projects  int       `bson:"projects"`
	Kept      int       `bson:"kept"`
	Skipped   int       `bson:"skipped"`
	Result    string    `bson:"result,omitempty"`
}

// OpenMongo connects to MongoDB, pings it and ensures the createdAt index.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	cfg = cfg.WithDefaults()
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, a *Analysis) error {
	prepare(a)
	doc, err := toDocument(a)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", a.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Analysis, error) {
	if err := errors.ValidateAnalysisID(id); err != nil {
		return nil, err
	}
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", id, err)
	}
	return fromDocument(doc)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Analysis, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(listLimit(limit))).
		SetProjection(bson.M{"result": 0})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer cur.Close(ctx)

	var out []Analysis
	for cur.Next(ctx) {
		var doc document
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode analysis: %w", err)
		}
		a, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, cur.Err()
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func toDocument(a *Analysis) (document, error) {
	doc := document{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		Target:    a.Target,
		Search:    a.Search,
		Libraries: a.Libraries,
		Projects:  a.Stats.Projects,
		Kept:      a.Stats.Kept,
		Skipped:   a.Stats.Skipped,
	}
	if a.Result != nil {
		data, err := json.Marshal(a.Result)
		if err != nil {
			return document{}, errors.Wrap(errors.ErrCodeInternal, err, "encode analysis %s", a.ID)
		}
		doc.Result = string(data)
	}
	return doc, nil
}

func fromDocument(doc document) (*Analysis, error) {
	a := &Analysis{
		ID:        doc.ID,
		CreatedAt: doc.CreatedAt,
		Target:    doc.Target,
		Search:    doc.Search,
		Libraries: doc.Libraries,
		Stats:     analyzer.Stats{Projects: doc.Projects, Kept: doc.Kept, Skipped: doc.Skipped},
	}
	if doc.Result != "" {
		var res analyzer.Result
		if err := json.Unmarshal([]byte(doc.Result), &res); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode analysis %s", doc.ID)
		}
		res.Stats = a.Stats
		a.Result = &res
	}
	return a, nil
}

var _ Store = (*MongoStore)(nil)
